package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// maxScale bounds the fractional digits of an amount.
const maxScale = 18

var errExponent = errors.New("exponent notation is not allowed")

// currencySymbols may prefix an amount, before or after its sign.
const currencySymbols = "$€£¥₹"

// ParseAmount parses a signed decimal that may carry a leading currency
// symbol and grouping commas, e.g. "-$1,234.50" or "$-4.50". Exponent
// notation and more than maxScale decimal places are rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")

	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], s[1:]
	}
	s = strings.TrimLeft(s, currencySymbols)
	if sign == "" && (strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+")) {
		sign, s = s[:1], s[1:]
	}
	if sign == "+" {
		sign = ""
	}

	if strings.ContainsAny(s, "eE") {
		return decimal.Decimal{}, errExponent
	}
	d, err := decimal.NewFromString(sign + s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if d.Exponent() < -maxScale {
		return decimal.Decimal{}, fmt.Errorf("more than %d decimal places", maxScale)
	}
	return d, nil
}
