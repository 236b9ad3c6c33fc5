package ports

import (
	"context"

	"github.com/yuzvak/resale-backoffice/internal/domain/inventory"
	"github.com/yuzvak/resale-backoffice/internal/domain/sale"
)

// EventPublisher announces committed state changes. Publishing happens after
// commit, so a failure never undoes the change it describes.
type EventPublisher interface {
	PublishItemsProcured(ctx context.Context, items []*inventory.Item) error
	PublishSaleConfirmed(ctx context.Context, s *sale.Sale) error
}
