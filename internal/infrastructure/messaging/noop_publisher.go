package messaging

import (
	"context"

	"github.com/yuzvak/resale-backoffice/internal/domain/inventory"
	"github.com/yuzvak/resale-backoffice/internal/domain/sale"
	"github.com/yuzvak/resale-backoffice/internal/pkg/logger"
)

// NoopPublisher is used when no brokers are configured. It only logs.
type NoopPublisher struct {
	log *logger.Logger
}

func NewNoopPublisher(log *logger.Logger) *NoopPublisher {
	return &NoopPublisher{log: log}
}

func (p *NoopPublisher) PublishItemsProcured(ctx context.Context, items []*inventory.Item) error {
	p.log.Debug("Items procured", "count", len(items))
	return nil
}

func (p *NoopPublisher) PublishSaleConfirmed(ctx context.Context, s *sale.Sale) error {
	p.log.Debug("Sale confirmed", "sale_id", s.ID)
	return nil
}

func (p *NoopPublisher) Close() error {
	return nil
}
