package sale

import (
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/yuzvak/resale-backoffice/internal/domain/errors"
	"github.com/yuzvak/resale-backoffice/internal/domain/inventory"
)

// PendingLine is an uncommitted cart line: one inventory item held at a
// station with the price it is about to be sold for.
type PendingLine struct {
	ID        string
	StationID string
	ItemID    string
	Serial    string
	ItemName  string
	SalePrice decimal.Decimal
	AddedAt   time.Time
}

func NewPendingLine(id, stationID string, item *inventory.Item, salePrice decimal.Decimal, now time.Time) (*PendingLine, error) {
	if p := inventory.PriceProblem(salePrice); p != "" {
		return nil, domainErrors.Invalid("price", p)
	}
	if err := item.CanAddToLedger(); err != nil {
		return nil, err
	}

	return &PendingLine{
		ID:        id,
		StationID: stationID,
		ItemID:    item.ID,
		Serial:    item.Serial,
		ItemName:  item.Name,
		SalePrice: salePrice,
		AddedAt:   now,
	}, nil
}

func Total(lines []*PendingLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.SalePrice)
	}
	return total
}

func LineIDs(lines []*PendingLine) []string {
	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ID
	}
	return ids
}
