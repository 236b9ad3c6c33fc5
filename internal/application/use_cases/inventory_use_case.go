package use_cases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yuzvak/resale-backoffice/internal/application/ports"
	domainErrors "github.com/yuzvak/resale-backoffice/internal/domain/errors"
	"github.com/yuzvak/resale-backoffice/internal/domain/inventory"
	"github.com/yuzvak/resale-backoffice/internal/pkg/clock"
	"github.com/yuzvak/resale-backoffice/internal/pkg/generator"
	"github.com/yuzvak/resale-backoffice/internal/pkg/logger"
)

const defaultListLimit = 500

type InventoryUseCase struct {
	store ports.Store
	clock clock.Clock
	ids   *generator.CodeGenerator
	log   *logger.Logger

	maxIntakeQuantity int
}

func NewInventoryUseCase(
	store ports.Store,
	clk clock.Clock,
	ids *generator.CodeGenerator,
	log *logger.Logger,
	maxIntakeQuantity int,
) *InventoryUseCase {
	return &InventoryUseCase{
		store:             store,
		clock:             clk,
		ids:               ids,
		log:               log,
		maxIntakeQuantity: maxIntakeQuantity,
	}
}

// Create stores quantity new in-stock units. With more than one unit the
// serial is used as a prefix; see generator.SerialSequence.
func (uc *InventoryUseCase) Create(ctx context.Context, serial string, attrs inventory.Attributes, quantity int) (_ []*inventory.Item, err error) {
	ctx, span := tracer.Start(ctx, "inventory.create")
	span.SetAttributes(attribute.String("item.serial", serial), attribute.Int("item.quantity", quantity))
	defer func() { endSpan(span, err) }()

	if quantity < 1 {
		return nil, domainErrors.Invalid("quantity", "must be at least 1")
	}
	if quantity > uc.maxIntakeQuantity {
		return nil, domainErrors.Invalid("quantity", fmt.Sprintf("must not exceed %d", uc.maxIntakeQuantity))
	}

	now := uc.clock.Now()

	serial = strings.TrimSpace(serial)
	if serial == "" {
		// Reports every missing field, serial included.
		_, err := inventory.NewItem("", "", attrs, now)
		return nil, err
	}

	serials, err := generator.SerialSequence(serial, quantity)
	if err != nil {
		return nil, domainErrors.Invalid("quantity", err.Error())
	}

	items := make([]*inventory.Item, 0, len(serials))
	for _, s := range serials {
		item, err := inventory.NewItem(uc.ids.GenerateItemID(), s, attrs, now)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	err = inTx(ctx, uc.store, func(tx ports.Store) error {
		repo := tx.Inventory()
		for _, item := range items {
			_, err := repo.GetItemBySerial(ctx, item.Serial)
			switch {
			case err == nil:
				return fmt.Errorf("%w: %s", domainErrors.ErrSerialTaken, item.Serial)
			case !errors.Is(err, domainErrors.ErrItemNotFound):
				return err
			}
		}
		return repo.CreateItems(ctx, items)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info("Inventory items created", "serial", serial, "quantity", len(items))
	return items, nil
}

// Update replaces the descriptive fields of an unsold item. A non-empty serial
// must match the stored one.
func (uc *InventoryUseCase) Update(ctx context.Context, id, serial string, attrs inventory.Attributes) (*inventory.Item, error) {
	var updated *inventory.Item

	err := inTx(ctx, uc.store, func(tx ports.Store) error {
		repo := tx.Inventory()

		item, err := repo.GetItemByID(ctx, id)
		if err != nil {
			return err
		}
		if serial = strings.TrimSpace(serial); serial != "" && serial != item.Serial {
			return domainErrors.Invalid("serial", "cannot be changed after creation")
		}
		if err := item.Apply(attrs, uc.clock.Now()); err != nil {
			return err
		}

		if err := repo.UpdateItem(ctx, item); err != nil {
			return explainStatusChange(ctx, repo, id, err, (*inventory.Item).CanEdit)
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info("Inventory item updated", "item_id", id)
	return updated, nil
}

// Remove deletes an in-stock item. Pending and sold items are refused.
func (uc *InventoryUseCase) Remove(ctx context.Context, id string) error {
	repo := uc.store.Inventory()

	if err := repo.DeleteItem(ctx, id); err != nil {
		return explainStatusChange(ctx, repo, id, err, (*inventory.Item).CanRemove)
	}

	uc.log.Info("Inventory item removed", "item_id", id)
	return nil
}

func (uc *InventoryUseCase) LookupBySerial(ctx context.Context, serial string) (*inventory.Item, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil, domainErrors.Invalid("serial", "is required")
	}
	return uc.store.Inventory().GetItemBySerial(ctx, serial)
}

func (uc *InventoryUseCase) List(ctx context.Context, filter inventory.Filter) ([]*inventory.Item, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domainErrors.Invalid("status", "must be one of in_stock, pending, sold")
	}
	if filter.Limit <= 0 || filter.Limit > defaultListLimit {
		filter.Limit = defaultListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.store.Inventory().ListItems(ctx, filter)
}

// SetStatus moves one item between statuses if, and only if, it is currently
// in from.
func (uc *InventoryUseCase) SetStatus(ctx context.Context, id string, from, to inventory.Status) error {
	return setStatus(ctx, uc.store.Inventory(), id, from, to, uc.clock.Now())
}

func setStatus(ctx context.Context, repo ports.InventoryRepository, id string, from, to inventory.Status, at time.Time) error {
	if !inventory.CanTransition(from, to) {
		return fmt.Errorf("%w: %s to %s", domainErrors.ErrInvalidTransition, from, to)
	}

	if err := repo.CompareAndSetStatus(ctx, id, from, to, at); err != nil {
		// An unknown id reads back as NotFound; anything else stays a conflict.
		return explainStatusChange(ctx, repo, id, err, func(*inventory.Item) error { return nil })
	}
	return nil
}
