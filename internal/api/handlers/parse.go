package handlers

import (
	"strconv"
	"strings"

	"example.com/salesops/internal/services"
)

// ParseTSVLines parses the pasted tab-separated line-import block: a header
// row followed by data rows of
// product name, category, quantity, unit price, discount, cost, rebate rate.
// The rebate column may carry a trailing percent sign. Rows with fewer than
// six columns are skipped; unparseable numbers fall back to zero.
func ParseTSVLines(text string) ([]services.LineInput, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	rows := strings.Split(text, "\n")
	if len(rows) < 2 {
		return nil, services.Validationf("line data must contain a header row and at least one data row")
	}

	var inputs []services.LineInput
	for _, raw := range rows[1:] {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		cols := strings.Split(raw, "\t")
		if len(cols) < 6 {
			continue
		}

		in := services.LineInput{
			ProductName:     strings.TrimSpace(cols[0]),
			Category:        strings.TrimSpace(cols[1]),
			Quantity:        parseNumber(cols[2]),
			UnitPrice:       parseNumber(cols[3]),
			LineDiscount:    parseNumber(cols[4]),
			CostProvisional: parseNumber(cols[5]),
		}
		if len(cols) >= 7 {
			in.RebateRate = parseNumber(cols[6])
		}
		inputs = append(inputs, in)
	}

	if len(inputs) == 0 {
		return nil, services.Validationf("no usable data rows in line data")
	}
	return inputs, nil
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
