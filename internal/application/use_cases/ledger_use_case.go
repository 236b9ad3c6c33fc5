package use_cases

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yuzvak/resale-backoffice/internal/application/ports"
	domainErrors "github.com/yuzvak/resale-backoffice/internal/domain/errors"
	"github.com/yuzvak/resale-backoffice/internal/domain/inventory"
	"github.com/yuzvak/resale-backoffice/internal/domain/sale"
	"github.com/yuzvak/resale-backoffice/internal/pkg/clock"
	"github.com/yuzvak/resale-backoffice/internal/pkg/generator"
	"github.com/yuzvak/resale-backoffice/internal/pkg/logger"
)

// LedgerUseCase manages the open sale lines of each station. Every mutation
// holds the station's ledger lock and runs in one storage transaction.
type LedgerUseCase struct {
	store  ports.Store
	locker ports.LedgerLocker
	clock  clock.Clock
	ids    *generator.CodeGenerator
	log    *logger.Logger
}

func NewLedgerUseCase(
	store ports.Store,
	locker ports.LedgerLocker,
	clk clock.Clock,
	ids *generator.CodeGenerator,
	log *logger.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		store:  store,
		locker: locker,
		clock:  clk,
		ids:    ids,
		log:    log,
	}
}

func (uc *LedgerUseCase) Add(ctx context.Context, stationID, serial string, salePrice decimal.Decimal) (_ *sale.PendingLine, err error) {
	ctx, span := tracer.Start(ctx, "ledger.add")
	span.SetAttributes(attribute.String("station.id", stationID), attribute.String("item.serial", serial))
	defer func() { endSpan(span, err) }()

	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil, domainErrors.Invalid("serial", "is required")
	}
	if salePrice.IsNegative() {
		return nil, domainErrors.Invalid("price", "must not be negative")
	}

	unlock, err := uc.locker.Lock(ctx, stationID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var line *sale.PendingLine
	err = inTx(ctx, uc.store, func(tx ports.Store) error {
		inv := tx.Inventory()
		now := uc.clock.Now()

		item, err := inv.GetItemBySerial(ctx, serial)
		if err != nil {
			return err
		}

		line, err = sale.NewPendingLine(uc.ids.GenerateLineID(), stationID, item, salePrice, now)
		if err != nil {
			return err
		}

		if err := inv.CompareAndSetStatus(ctx, item.ID, inventory.StatusInStock, inventory.StatusPending, now); err != nil {
			return explainStatusChange(ctx, inv, item.ID, err, (*inventory.Item).CanAddToLedger)
		}

		return tx.Ledger().AddLine(ctx, line)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info("Sale line added",
		"station_id", stationID,
		"line_id", line.ID,
		"serial", line.Serial,
		"sale_price", line.SalePrice.String(),
	)
	return line, nil
}

// Remove drops an open line and puts its item back in stock.
func (uc *LedgerUseCase) Remove(ctx context.Context, stationID, lineID string) (err error) {
	ctx, span := tracer.Start(ctx, "ledger.remove")
	span.SetAttributes(attribute.String("station.id", stationID), attribute.String("line.id", lineID))
	defer func() { endSpan(span, err) }()

	unlock, err := uc.locker.Lock(ctx, stationID)
	if err != nil {
		return err
	}
	defer unlock()

	err = inTx(ctx, uc.store, func(tx ports.Store) error {
		line, err := tx.Ledger().GetLine(ctx, stationID, lineID)
		if err != nil {
			return err
		}

		if err := setStatus(ctx, tx.Inventory(), line.ItemID, inventory.StatusPending, inventory.StatusInStock, uc.clock.Now()); err != nil {
			return err
		}

		return tx.Ledger().DeleteLine(ctx, stationID, lineID)
	})
	if err != nil {
		return err
	}

	uc.log.Info("Sale line removed", "station_id", stationID, "line_id", lineID)
	return nil
}

// List returns the open lines in the order they were added and their total.
func (uc *LedgerUseCase) List(ctx context.Context, stationID string) ([]*sale.PendingLine, decimal.Decimal, error) {
	lines, err := uc.store.Ledger().ListLines(ctx, stationID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return lines, sale.Total(lines), nil
}
