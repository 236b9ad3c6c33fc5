package ports

import "context"

// Store is the unit of work over all repositories. BeginTx returns a Store
// whose repositories share one transaction; only that Store may be used
// until CommitTx or RollbackTx.
type Store interface {
	Inventory() InventoryRepository
	Ledger() LedgerRepository
	Sales() SaleRepository

	BeginTx(ctx context.Context) (Store, error)
	CommitTx(ctx context.Context) error
	RollbackTx(ctx context.Context) error

	Ping(ctx context.Context) error
}
