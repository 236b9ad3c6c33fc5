package commands

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yuzvak/resale-backoffice/internal/domain/inventory"
)

// Amount is a money field that never fails to decode. Whether it was present
// and whether it parsed are kept so validation can report them per field.
type Amount struct {
	Value   decimal.Decimal
	Set     bool
	Invalid bool
}

func NewAmount(d decimal.Decimal) Amount {
	return Amount{Value: d, Set: true}
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			a.Set, a.Invalid = true, true
			return nil
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			return nil
		}
	}

	a.Set = true
	d, err := decimal.NewFromString(raw)
	if err != nil {
		a.Invalid = true
		return nil
	}
	a.Value = d
	return nil
}

// problem describes what is wrong with a required money amount.
func (a Amount) problem() string {
	switch {
	case !a.Set:
		return "is required"
	case a.Invalid:
		return "must be a number"
	}
	return inventory.PriceProblem(a.Value)
}
