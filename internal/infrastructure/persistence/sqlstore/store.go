package sqlstore

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/yuzvak/resale-backoffice/internal/application/ports"
)

// Store is the sqlx-backed unit of work for SQLite and MySQL.
type Store struct {
	db      *sqlx.DB
	tx      *sqlx.Tx
	dialect dialect
}

func NewStore(db *sqlx.DB) (*Store, error) {
	d, err := dialectFor(db.DriverName())
	if err != nil {
		return nil, err
	}
	return &Store{db: db, dialect: d}, nil
}

func (s *Store) bind() conn {
	return conn{db: s.db, tx: s.tx, dialect: s.dialect}
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

func (s *Store) BeginTx(ctx context.Context) (ports.Store, error) {
	if s.tx != nil {
		return nil, errors.New("transaction already started")
	}

	tx, err := s.db.BeginTxx(ctx, s.dialect.txOptions)
	if err != nil {
		return nil, err
	}
	return &Store{db: s.db, tx: tx, dialect: s.dialect}, nil
}

func (s *Store) CommitTx(ctx context.Context) error {
	if s.tx == nil {
		return errors.New("no transaction to commit")
	}
	return s.tx.Commit()
}

func (s *Store) RollbackTx(ctx context.Context) error {
	if s.tx == nil {
		return errors.New("no transaction to rollback")
	}
	return s.tx.Rollback()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type conn struct {
	db      *sqlx.DB
	tx      *sqlx.Tx
	dialect dialect
}

func (c conn) q() sqlx.ExtContext {
	if c.tx != nil {
		return c.tx
	}
	return c.db
}

func (c conn) atomically(ctx context.Context, fn func(q sqlx.ExtContext) error) (err error) {
	if c.tx != nil {
		return fn(c.tx)
	}

	tx, err := c.db.BeginTxx(ctx, c.dialect.txOptions)
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
