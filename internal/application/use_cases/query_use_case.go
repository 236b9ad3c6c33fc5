package use_cases

import (
	"context"
	"strings"

	"github.com/yuzvak/resale-backoffice/internal/application/ports"
	domainErrors "github.com/yuzvak/resale-backoffice/internal/domain/errors"
	"github.com/yuzvak/resale-backoffice/internal/domain/inventory"
	"github.com/yuzvak/resale-backoffice/internal/domain/sale"
)

const defaultSalesPageSize = 50

// QueryUseCase serves read-only views over inventory and confirmed sales.
type QueryUseCase struct {
	store     ports.Store
	inventory *InventoryUseCase
}

func NewQueryUseCase(store ports.Store, inventory *InventoryUseCase) *QueryUseCase {
	return &QueryUseCase{
		store:     store,
		inventory: inventory,
	}
}

func (uc *QueryUseCase) ListItems(ctx context.Context, filter inventory.Filter) ([]*inventory.Item, error) {
	return uc.inventory.List(ctx, filter)
}

func (uc *QueryUseCase) LookupBySerial(ctx context.Context, serial string) (*inventory.Item, error) {
	return uc.inventory.LookupBySerial(ctx, serial)
}

// ListSales returns confirmed sales, newest first.
func (uc *QueryUseCase) ListSales(ctx context.Context, filter sale.Filter) ([]*sale.Sale, error) {
	if filter.Limit <= 0 || filter.Limit > defaultListLimit {
		filter.Limit = defaultSalesPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.store.Sales().ListSales(ctx, filter)
}

func (uc *QueryUseCase) GetSale(ctx context.Context, id string) (*sale.Sale, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domainErrors.ErrSaleNotFound
	}
	return uc.store.Sales().GetSaleByID(ctx, id)
}

func (uc *QueryUseCase) StockCounts(ctx context.Context) (map[inventory.Status]int, error) {
	counts, err := uc.store.Inventory().CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	for _, st := range inventory.AllStatuses() {
		if _, ok := counts[st]; !ok {
			counts[st] = 0
		}
	}
	return counts, nil
}
