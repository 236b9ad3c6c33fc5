package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	domainErrors "github.com/yuzvak/resale-backoffice/internal/domain/errors"
	"github.com/yuzvak/resale-backoffice/internal/domain/inventory"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/monitoring"
)

const itemColumns = `id, serial, name, release_model, color, price,
	source_name, source_phone, source_address, remarks, status, created_at, updated_at`

type itemRow struct {
	ID            string          `db:"id"`
	Serial        string          `db:"serial"`
	Name          string          `db:"name"`
	ReleaseModel  string          `db:"release_model"`
	Color         string          `db:"color"`
	Price         decimal.Decimal `db:"price"`
	SourceName    string          `db:"source_name"`
	SourcePhone   string          `db:"source_phone"`
	SourceAddress string          `db:"source_address"`
	Remarks       string          `db:"remarks"`
	Status        string          `db:"status"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

func (r itemRow) toItem() *inventory.Item {
	return &inventory.Item{
		ID:     r.ID,
		Serial: r.Serial,
		Attributes: inventory.Attributes{
			Name:          r.Name,
			ReleaseModel:  r.ReleaseModel,
			Color:         r.Color,
			Price:         r.Price,
			SourceName:    r.SourceName,
			SourcePhone:   r.SourcePhone,
			SourceAddress: r.SourceAddress,
			Remarks:       r.Remarks,
		},
		Status:    inventory.Status(r.Status),
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type InventoryRepository struct {
	conn
}

func (r *InventoryRepository) CreateItems(ctx context.Context, items []*inventory.Item) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO inventory_items (` + itemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := r.atomically(ctx, func(q sqlx.ExtContext) error {
		query := q.Rebind(query)
		for _, item := range items {
			end := monitoring.TimeDBQuery("INSERT", "inventory_items")
			_, err := q.ExecContext(ctx, query,
				item.ID, item.Serial, item.Name, item.ReleaseModel, item.Color, item.Price,
				item.SourceName, item.SourcePhone, item.SourceAddress, item.Remarks,
				string(item.Status), item.CreatedAt, item.UpdatedAt,
			)
			end()
			if err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("%w: %s", domainErrors.ErrSerialTaken, item.Serial)
				}
				return err
			}
		}
		return nil
	})
	return storageError("insert inventory items", err)
}

func (r *InventoryRepository) GetItemByID(ctx context.Context, id string) (*inventory.Item, error) {
	return r.getItem(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = ?`, id)
}

func (r *InventoryRepository) GetItemBySerial(ctx context.Context, serial string) (*inventory.Item, error) {
	return r.getItem(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE serial = ?`, serial)
}

func (r *InventoryRepository) getItem(ctx context.Context, query, arg string) (*inventory.Item, error) {
	end := monitoring.TimeDBQuery("SELECT", "inventory_items")
	defer end()

	var row itemRow
	err := sqlx.GetContext(ctx, r.q(), &row, r.q().Rebind(query), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainErrors.ErrItemNotFound
	}
	if err != nil {
		return nil, storageError("select inventory item", err)
	}
	return row.toItem(), nil
}

func (r *InventoryRepository) ListItems(ctx context.Context, filter inventory.Filter) ([]*inventory.Item, error) {
	var (
		where []string
		args  []interface{}
	)
	if pattern := filter.Pattern(); pattern != "" {
		var cols []string
		for _, col := range []string{"name", "serial", "release_model", "source_name"} {
			cols = append(cols, "LOWER("+col+") LIKE ?"+r.dialect.likeEscape)
			args = append(args, pattern)
		}
		where = append(where, "("+strings.Join(cols, " OR ")+")")
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}

	query := `SELECT ` + itemColumns + ` FROM inventory_items`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	end := monitoring.TimeDBQuery("SELECT", "inventory_items")
	defer end()

	var rows []itemRow
	if err := sqlx.SelectContext(ctx, r.q(), &rows, r.q().Rebind(query), args...); err != nil {
		return nil, storageError("list inventory items", err)
	}

	items := make([]*inventory.Item, len(rows))
	for i, row := range rows {
		items[i] = row.toItem()
	}
	return items, nil
}

func (r *InventoryRepository) CountByStatus(ctx context.Context) (map[inventory.Status]int, error) {
	end := monitoring.TimeDBQuery("SELECT", "inventory_items")
	defer end()

	var rows []struct {
		Status string `db:"status"`
		N      int    `db:"n"`
	}
	err := sqlx.SelectContext(ctx, r.q(), &rows, `SELECT status, COUNT(*) AS n FROM inventory_items GROUP BY status`)
	if err != nil {
		return nil, storageError("count inventory items", err)
	}

	counts := make(map[inventory.Status]int, len(rows))
	for _, row := range rows {
		counts[inventory.Status(row.Status)] = row.N
	}
	return counts, nil
}

func (r *InventoryRepository) UpdateItem(ctx context.Context, item *inventory.Item) error {
	query := `
		UPDATE inventory_items
		SET name = ?, release_model = ?, color = ?, price = ?,
			source_name = ?, source_phone = ?, source_address = ?, remarks = ?,
			updated_at = ?
		WHERE id = ? AND status <> 'sold'
	`
	return r.guardedExec(ctx, "update inventory item", "UPDATE", query,
		item.Name, item.ReleaseModel, item.Color, item.Price,
		item.SourceName, item.SourcePhone, item.SourceAddress, item.Remarks,
		item.UpdatedAt, item.ID,
	)
}

func (r *InventoryRepository) DeleteItem(ctx context.Context, id string) error {
	query := `DELETE FROM inventory_items WHERE id = ? AND status = 'in_stock'`
	return r.guardedExec(ctx, "delete inventory item", "DELETE", query, id)
}

func (r *InventoryRepository) CompareAndSetStatus(ctx context.Context, id string, from, to inventory.Status, at time.Time) error {
	query := `UPDATE inventory_items SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	return r.guardedExec(ctx, "set item status", "UPDATE", query, string(to), at, id, string(from))
}

// guardedExec runs a conditional write and reports ErrStatusChanged when its
// condition matched no row.
func (c conn) guardedExec(ctx context.Context, op, queryType, query string, args ...interface{}) error {
	end := monitoring.TimeDBQuery(queryType, "inventory_items")
	result, err := c.q().ExecContext(ctx, c.q().Rebind(query), args...)
	end()
	if err != nil {
		return storageError(op, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return storageError(op, err)
	}
	if affected == 0 {
		return domainErrors.ErrStatusChanged
	}
	return nil
}
