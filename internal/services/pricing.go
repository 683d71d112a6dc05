package services

import "example.com/salesops/internal/models"

// LineInput is one imported order line as entered by the operator, already
// parsed and validated by the presentation layer.
type LineInput struct {
	ProductName     string  `json:"product_name"`
	Category        string  `json:"category"`
	Quantity        float64 `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	LineDiscount    float64 `json:"line_discount"`
	CostProvisional float64 `json:"cost_provisional"`
	RebateRate      float64 `json:"rebate_rate"`
}

// ComputeLine derives every monetary field of an order line from its input.
// The rebate rate is a percentage: the final cost is the provisional cost
// minus cost * rate / 100.
func ComputeLine(lineNo int, in LineInput) models.OrderLine {
	salesAmount := in.Quantity*in.UnitPrice - in.LineDiscount
	rebateAmount := in.CostProvisional * in.RebateRate / 100
	costFinal := in.CostProvisional - rebateAmount

	return models.OrderLine{
		LineNo:                lineNo,
		ProductName:           in.ProductName,
		Category:              in.Category,
		Quantity:              in.Quantity,
		UnitPrice:             in.UnitPrice,
		LineDiscount:          in.LineDiscount,
		SalesAmount:           salesAmount,
		CostProvisional:       in.CostProvisional,
		RebateRate:            in.RebateRate,
		RebateAmount:          rebateAmount,
		CostFinal:             costFinal,
		LineProfitProvisional: salesAmount - in.CostProvisional,
		LineProfitFinal:       salesAmount - costFinal,
		AllocationStatus:      models.AllocationUnallocated,
	}
}

// OrderTotals are the header rollups derived from line items. Payment fee and
// shipping are deliberately excluded from the profit figures; they are only
// reconciled in the export feed.
type OrderTotals struct {
	SalesTotal             float64
	CostProvisional        float64
	CostFinal              float64
	GrossProfitProvisional float64
	GrossProfitFinal       float64
}

// SumLines computes the header totals for a set of lines
func SumLines(lines []models.OrderLine) OrderTotals {
	var t OrderTotals
	for _, l := range lines {
		t.SalesTotal += l.SalesAmount
		t.CostProvisional += l.CostProvisional
		t.CostFinal += l.CostFinal
	}
	t.GrossProfitProvisional = t.SalesTotal - t.CostProvisional
	t.GrossProfitFinal = t.SalesTotal - t.CostFinal
	return t
}

// ApplyTotals writes totals onto an order header
func ApplyTotals(order *models.OrderHeader, t OrderTotals) {
	order.SalesTotal = t.SalesTotal
	order.CostProvisional = t.CostProvisional
	order.CostFinal = t.CostFinal
	order.GrossProfitProvisional = t.GrossProfitProvisional
	order.GrossProfitFinal = t.GrossProfitFinal
}
