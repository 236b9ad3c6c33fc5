package use_cases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yuzvak/resale-backoffice/internal/application/ports"
	domainErrors "github.com/yuzvak/resale-backoffice/internal/domain/errors"
	"github.com/yuzvak/resale-backoffice/internal/domain/inventory"
	"github.com/yuzvak/resale-backoffice/internal/domain/sale"
	"github.com/yuzvak/resale-backoffice/internal/pkg/clock"
	"github.com/yuzvak/resale-backoffice/internal/pkg/generator"
	"github.com/yuzvak/resale-backoffice/internal/pkg/logger"
)

type ConfirmationUseCase struct {
	store     ports.Store
	locker    ports.LedgerLocker
	publisher ports.EventPublisher
	clock     clock.Clock
	ids       *generator.CodeGenerator
	log       *logger.Logger

	retryAttempts int
	retryInterval time.Duration
}

func NewConfirmationUseCase(
	store ports.Store,
	locker ports.LedgerLocker,
	publisher ports.EventPublisher,
	clk clock.Clock,
	ids *generator.CodeGenerator,
	log *logger.Logger,
	retryAttempts int,
) *ConfirmationUseCase {
	if retryAttempts < 1 {
		retryAttempts = 1
	}
	return &ConfirmationUseCase{
		store:         store,
		locker:        locker,
		publisher:     publisher,
		clock:         clk,
		ids:           ids,
		log:           log,
		retryAttempts: retryAttempts,
		retryInterval: 50 * time.Millisecond,
	}
}

// Confirm turns every open line of the station into one committed Sale. It
// either sells all lines or changes nothing.
func (uc *ConfirmationUseCase) Confirm(ctx context.Context, stationID string) (_ *sale.Sale, err error) {
	ctx, span := tracer.Start(ctx, "sale.confirm")
	span.SetAttributes(attribute.String("station.id", stationID))
	defer func() { endSpan(span, err) }()

	unlock, err := uc.locker.Lock(ctx, stationID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		confirmed *sale.Sale
		attempt   int
	)
	operation := func() error {
		attempt++
		s, err := uc.attemptConfirm(ctx, stationID)
		if err == nil {
			confirmed = s
			return nil
		}

		if !domainErrors.IsTransient(err) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		uc.log.Warn("Confirm attempt failed", "attempt", attempt, "station_id", stationID, "error", err.Error())
		return err
	}

	if err = backoff.Retry(operation, uc.retryPolicy(ctx)); err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("sale.id", confirmed.ID),
		attribute.Int("sale.lines", confirmed.LineCount()),
	)
	uc.log.Info("Sale confirmed",
		"sale_id", confirmed.ID,
		"station_id", stationID,
		"lines", confirmed.LineCount(),
		"total", confirmed.Total.String(),
		"attempts", attempt,
	)

	if err := uc.publisher.PublishSaleConfirmed(ctx, confirmed); err != nil {
		uc.log.Error("Failed to publish sale confirmation", "sale_id", confirmed.ID, "error", err)
	}

	return confirmed, nil
}

func (uc *ConfirmationUseCase) retryPolicy(ctx context.Context) backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = uc.retryInterval
	policy.MaxInterval = 10 * uc.retryInterval
	policy.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(policy, uint64(uc.retryAttempts-1)), ctx)
}

func (uc *ConfirmationUseCase) attemptConfirm(ctx context.Context, stationID string) (*sale.Sale, error) {
	var confirmed *sale.Sale

	err := inTx(ctx, uc.store, func(tx ports.Store) error {
		inv := tx.Inventory()
		ledger := tx.Ledger()
		now := uc.clock.Now()

		lines, err := ledger.ListLines(ctx, stationID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return domainErrors.ErrLedgerEmpty
		}

		// Validate every line before the first write.
		for _, line := range lines {
			item, err := inv.GetItemByID(ctx, line.ItemID)
			if errors.Is(err, domainErrors.ErrItemNotFound) {
				return fmt.Errorf("%w: serial %s no longer exists", domainErrors.ErrLedgerChanged, line.Serial)
			}
			if err != nil {
				return err
			}
			if item.Status != inventory.StatusPending {
				return fmt.Errorf("%w: serial %s is %s", domainErrors.ErrLedgerChanged, line.Serial, item.Status)
			}
		}

		for _, line := range lines {
			err := inv.CompareAndSetStatus(ctx, line.ItemID, inventory.StatusPending, inventory.StatusSold, now)
			if errors.Is(err, domainErrors.ErrStatusChanged) {
				return fmt.Errorf("%w: serial %s", domainErrors.ErrLedgerChanged, line.Serial)
			}
			if err != nil {
				return err
			}
		}

		confirmed, err = sale.NewSale(uc.ids.GenerateSaleID(now), stationID, lines, now)
		if err != nil {
			return err
		}
		if err := tx.Sales().CreateSale(ctx, confirmed); err != nil {
			return err
		}

		return ledger.DeleteLines(ctx, stationID, sale.LineIDs(lines))
	})
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}
