package inventory

import (
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Column limits shared by every storage engine.
const (
	MaxSerialLength = 128
	MaxTextLength   = 255
	MaxShortLength  = 64

	PriceScale = 2
)

// PriceLimit is the first magnitude a NUMERIC(14,2) column cannot hold.
var PriceLimit = decimal.New(1, 12)

// PriceProblem reports why d cannot be stored as a money amount, or "".
func PriceProblem(d decimal.Decimal) string {
	switch {
	case d.IsNegative():
		return "must not be negative"
	case !d.Equal(d.Truncate(PriceScale)):
		return fmt.Sprintf("must have at most %d decimal places", PriceScale)
	case d.GreaterThanOrEqual(PriceLimit):
		return "must be less than " + PriceLimit.String()
	}
	return ""
}

// LengthProblem reports a value longer than limit characters, or "".
func LengthProblem(value string, limit int) string {
	if utf8.RuneCountInString(value) > limit {
		return fmt.Sprintf("must be at most %d characters", limit)
	}
	return ""
}
