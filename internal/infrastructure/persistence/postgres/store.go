package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/yuzvak/resale-backoffice/internal/application/ports"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/monitoring"
)

// Store hands out repositories bound either to the pool or, after BeginTx,
// to a single transaction.
type Store struct {
	db   *sql.DB
	tx   *sql.Tx
	isTx bool
}

func NewStore(conn *Connection) *Store {
	return &Store{
		db:   conn.GetDB(),
		isTx: false,
	}
}

func (s *Store) bind() conn {
	return conn{db: s.db, tx: s.tx, isTx: s.isTx}
}

func (s *Store) Inventory() ports.InventoryRepository {
	return &InventoryRepository{conn: s.bind()}
}

func (s *Store) Ledger() ports.LedgerRepository {
	return &LedgerRepository{conn: s.bind()}
}

func (s *Store) Sales() ports.SaleRepository {
	return &SaleRepository{conn: s.bind()}
}

// BeginTx uses read committed: every status change is a guarded UPDATE, which
// re-checks its WHERE clause after waiting on a row lock, so a losing writer
// sees zero rows instead of a serialization failure.
func (s *Store) BeginTx(ctx context.Context) (ports.Store, error) {
	if s.isTx {
		return nil, errors.New("transaction already started")
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}

	return &Store{
		db:   s.db,
		tx:   tx,
		isTx: true,
	}, nil
}

func (s *Store) CommitTx(ctx context.Context) error {
	if !s.isTx || s.tx == nil {
		return errors.New("no transaction to commit")
	}
	return s.tx.Commit()
}

func (s *Store) RollbackTx(ctx context.Context) error {
	if !s.isTx || s.tx == nil {
		return errors.New("no transaction to rollback")
	}
	return s.tx.Rollback()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// conn is what every repository shares: the pool, and the transaction when
// the repository was handed out by a transaction-bound Store.
type conn struct {
	db   *sql.DB
	tx   *sql.Tx
	isTx bool
}

func (c conn) q() monitoring.Querier {
	if c.isTx {
		return c.tx
	}
	return c.db
}

// atomically runs fn in the current transaction, or in a short one of its own.
func (c conn) atomically(ctx context.Context, fn func(q monitoring.Querier) error) (err error) {
	if c.isTx {
		return fn(c.tx)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
