package ports

import (
	"context"
	"time"

	"github.com/yuzvak/resale-backoffice/internal/domain/inventory"
)

type InventoryRepository interface {
	// CreateItems inserts all items or none. A duplicate serial yields ErrSerialTaken.
	CreateItems(ctx context.Context, items []*inventory.Item) error
	GetItemByID(ctx context.Context, id string) (*inventory.Item, error)
	GetItemBySerial(ctx context.Context, serial string) (*inventory.Item, error)
	ListItems(ctx context.Context, filter inventory.Filter) ([]*inventory.Item, error)
	CountByStatus(ctx context.Context) (map[inventory.Status]int, error)

	// UpdateItem writes the descriptive fields unless the stored item is sold.
	UpdateItem(ctx context.Context, item *inventory.Item) error
	// DeleteItem removes the item only while it is in stock.
	DeleteItem(ctx context.Context, id string) error
	// CompareAndSetStatus moves id from one status to another in a single
	// conditional write. It fails with ErrStatusChanged when the stored
	// status is not from.
	CompareAndSetStatus(ctx context.Context, id string, from, to inventory.Status, at time.Time) error
}
