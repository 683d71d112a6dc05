package services

import "fmt"

// ValidationError marks bad user input: empty required fields or out-of-range
// selections. Handlers map it to a 400 and nothing is written before it fires.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Validationf builds a ValidationError
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

// LineErrorReason classifies per-line allocation failures
type LineErrorReason string

const (
	ReasonSKUNotFound       LineErrorReason = "sku-not-found"
	ReasonInsufficientStock LineErrorReason = "insufficient-stock"
)

// LineError is a non-fatal per-line allocation failure. It carries the exact
// required and available quantities so shortfalls can be reported verbatim.
type LineError struct {
	LineNo      int             `json:"line_no"`
	ProductName string          `json:"product_name"`
	Reason      LineErrorReason `json:"reason"`
	Required    float64         `json:"required"`
	Available   float64         `json:"available"`
}

func (e LineError) Error() string {
	switch e.Reason {
	case ReasonInsufficientStock:
		return fmt.Sprintf("%s: insufficient stock (required: %v, available: %v)", e.ProductName, e.Required, e.Available)
	case ReasonSKUNotFound:
		return fmt.Sprintf("%s: no matching SKU", e.ProductName)
	default:
		return fmt.Sprintf("%s: %s", e.ProductName, e.Reason)
	}
}
