package scheduler

import (
	"context"
	"time"

	"github.com/yuzvak/resale-backoffice/internal/domain/inventory"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/monitoring"
	"github.com/yuzvak/resale-backoffice/internal/pkg/logger"
)

type StockCounter interface {
	StockCounts(ctx context.Context) (map[inventory.Status]int, error)
}

// StockReporter keeps the inventory_items gauge in line with storage.
type StockReporter struct {
	counter  StockCounter
	logger   *logger.Logger
	interval time.Duration
	stopChan chan struct{}
}

func NewStockReporter(counter StockCounter, logger *logger.Logger, interval time.Duration) *StockReporter {
	return &StockReporter{
		counter:  counter,
		logger:   logger,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (s *StockReporter) Start(ctx context.Context) {
	s.logger.Info("Starting stock reporter", "interval", s.interval.String())

	if err := s.report(ctx); err != nil {
		s.logger.Error("Failed to report initial stock", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Stock reporter stopped")
			return
		case <-s.stopChan:
			s.logger.Info("Stock reporter stopped")
			return
		case <-ticker.C:
			if err := s.report(ctx); err != nil {
				s.logger.Error("Failed to report stock", "error", err)
			}
		}
	}
}

func (s *StockReporter) Stop() {
	close(s.stopChan)
}

func (s *StockReporter) report(ctx context.Context) error {
	counts, err := s.counter.StockCounts(ctx)
	if err != nil {
		return err
	}

	for status, n := range counts {
		monitoring.SetInventoryCount(status.String(), n)
	}
	s.logger.Debug("Stock reported",
		"in_stock", counts[inventory.StatusInStock],
		"pending", counts[inventory.StatusPending],
		"sold", counts[inventory.StatusSold],
	)
	return nil
}
