package services

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"example.com/salesops/config"
)

// Counter keys for the ID sequences. Order sequences are scoped per customer
// and day so the sequence part restarts at 01 for each (customer, date) pair.
const (
	counterKeyCustomer = "customer"
	counterKeySKU      = "sku"
)

// IDGenerator produces the business identifiers: PK-prefixed customer IDs,
// {customer}-ASK-{yyyyMMdd}-{seq} order IDs and SKU codes. Sequences come
// from the counter store, never from a shared cell or a table scan.
type IDGenerator struct {
	counters  CounterStore
	prefix    string
	digits    int
	orderType string
	skuDigits int
	loc       *time.Location
}

// NewIDGenerator creates an ID generator from the business constants
func NewIDGenerator(cfg config.OpsConfig, counters CounterStore) (*IDGenerator, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid timezone %q", cfg.Timezone)
	}

	return &IDGenerator{
		counters:  counters,
		prefix:    cfg.CustomerIDPrefix,
		digits:    cfg.CustomerIDDigits,
		orderType: cfg.OrderType,
		skuDigits: cfg.SKUDigits,
		loc:       loc,
	}, nil
}

// NextCustomerID returns the next customer ID, e.g. PK01
func (g *IDGenerator) NextCustomerID(ctx context.Context) (string, error) {
	n, err := g.counters.Next(ctx, counterKeyCustomer)
	if err != nil {
		return "", errors.Wrap(err, "failed to advance customer sequence")
	}
	return fmt.Sprintf("%s%0*d", g.prefix, g.digits, n), nil
}

// NextOrderID returns the next order ID for a customer and date,
// e.g. PK01-ASK-20250101-01
func (g *IDGenerator) NextOrderID(ctx context.Context, customerID string, date time.Time) (string, error) {
	datePart := date.In(g.loc).Format("20060102")
	key := fmt.Sprintf("order:%s:%s", customerID, datePart)
	n, err := g.counters.Next(ctx, key)
	if err != nil {
		return "", errors.Wrap(err, "failed to advance order sequence")
	}
	return fmt.Sprintf("%s-%s-%s-%02d", customerID, g.orderType, datePart, n), nil
}

// NextSKUCode returns the next SKU code, e.g. SKU00001
func (g *IDGenerator) NextSKUCode(ctx context.Context) (string, error) {
	n, err := g.counters.Next(ctx, counterKeySKU)
	if err != nil {
		return "", errors.Wrap(err, "failed to advance SKU sequence")
	}
	return fmt.Sprintf("SKU%0*d", g.skuDigits, n), nil
}

// Location returns the business timezone
func (g *IDGenerator) Location() *time.Location {
	return g.loc
}
