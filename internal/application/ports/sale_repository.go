package ports

import (
	"context"

	"github.com/yuzvak/resale-backoffice/internal/domain/sale"
)

type LedgerRepository interface {
	// AddLine fails with ErrItemAlreadyPending if the item already has a line.
	AddLine(ctx context.Context, line *sale.PendingLine) error
	GetLine(ctx context.Context, stationID, lineID string) (*sale.PendingLine, error)
	// ListLines returns a station's lines in the order they were added.
	// Inside a transaction the rows are locked where the engine supports it.
	ListLines(ctx context.Context, stationID string) ([]*sale.PendingLine, error)
	DeleteLine(ctx context.Context, stationID, lineID string) error
	DeleteLines(ctx context.Context, stationID string, lineIDs []string) error
}

type SaleRepository interface {
	CreateSale(ctx context.Context, s *sale.Sale) error
	GetSaleByID(ctx context.Context, id string) (*sale.Sale, error)
	ListSales(ctx context.Context, filter sale.Filter) ([]*sale.Sale, error)
}
