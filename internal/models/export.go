package models

import "time"

// ExportRow is one row of the analytics export feed: an order line joined
// with its header and customer, with the order-level payment fee and shipping
// prorated onto the line by quantity. Rows are rebuilt wholesale, never
// edited in place.
type ExportRow struct {
	OrderDate                  time.Time   `json:"order_date"`
	Year                       int         `json:"year"`
	Month                      int         `json:"month"`
	Week                       int         `json:"week"`
	OrderID                    string      `json:"order_id"`
	OrderStatus                OrderStatus `json:"order_status"`
	SalesTargetFlag            int         `json:"sales_target_flag"`
	CustomerID                 string      `json:"customer_id"`
	Country                    string      `json:"country"`
	AcquisitionSource          string      `json:"acquisition_source"`
	CustomerFlag               string      `json:"customer_flag"`
	PaymentMethod              string      `json:"payment_method"`
	SKUCode                    string      `json:"sku_code"`
	ProductName                string      `json:"product_name"`
	Category                   string      `json:"category"`
	Quantity                   float64     `json:"quantity"`
	SalesAmount                float64     `json:"sales_amount"`
	CostProvisional            float64     `json:"cost_provisional"`
	CostFinal                  float64     `json:"cost_final"`
	LineProfitProvisional      float64     `json:"line_profit_provisional"`
	LineProfitFinal            float64     `json:"line_profit_final"`
	AllocatedPaymentFee        float64     `json:"allocated_payment_fee"`
	AllocatedRequestedShipping float64     `json:"allocated_requested_shipping"`
	AllocatedActualShipping    float64     `json:"allocated_actual_shipping"`
	Carrier                    string      `json:"carrier"`
	RebateRate                 float64     `json:"rebate_rate"`
}
