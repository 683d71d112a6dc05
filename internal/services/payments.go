package services

import "context"

// PaymentImporter ingests payment provider CSV exports (PayPal, Wise) and
// matches them to orders. The workflow reserves a seam for it but no
// implementation exists yet; the API surfaces it as not implemented.
type PaymentImporter interface {
	ImportCSV(ctx context.Context, provider string, data []byte) error
	MatchPayments(ctx context.Context) error
}
