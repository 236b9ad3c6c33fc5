package sale

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/yuzvak/resale-backoffice/internal/domain/errors"
	"github.com/yuzvak/resale-backoffice/internal/domain/inventory"
)

// Sale is the immutable record produced by a confirmation.
type Sale struct {
	ID          string
	StationID   string
	Lines       []Line
	Total       decimal.Decimal
	ConfirmedAt time.Time
}

type Line struct {
	Position  int
	ItemID    string
	Serial    string
	ItemName  string
	SalePrice decimal.Decimal
}

func NewSale(id, stationID string, pending []*PendingLine, confirmedAt time.Time) (*Sale, error) {
	if id == "" {
		return nil, errors.New("sale id cannot be empty")
	}
	if len(pending) == 0 {
		return nil, domainErrors.ErrLedgerEmpty
	}

	lines := make([]Line, len(pending))
	for i, p := range pending {
		lines[i] = Line{
			Position:  i + 1,
			ItemID:    p.ItemID,
			Serial:    p.Serial,
			ItemName:  p.ItemName,
			SalePrice: p.SalePrice,
		}
	}

	total := Total(pending)
	if total.GreaterThanOrEqual(inventory.PriceLimit) {
		return nil, domainErrors.Invalid("total", "must be less than "+inventory.PriceLimit.String())
	}

	return &Sale{
		ID:          id,
		StationID:   stationID,
		Lines:       lines,
		Total:       total,
		ConfirmedAt: confirmedAt,
	}, nil
}

func (s *Sale) LineCount() int {
	return len(s.Lines)
}

type Filter struct {
	StationID string
	Limit     int
	Offset    int
}
