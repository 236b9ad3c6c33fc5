package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	domainErrors "github.com/yuzvak/resale-backoffice/internal/domain/errors"
	"github.com/yuzvak/resale-backoffice/internal/domain/inventory"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/monitoring"
)

const itemColumns = `id, serial, name, release_model, color, price,
	source_name, source_phone, source_address, remarks, status, created_at, updated_at`

type InventoryRepository struct {
	conn
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row scanner) (*inventory.Item, error) {
	var (
		item   inventory.Item
		status string
	)
	err := row.Scan(
		&item.ID, &item.Serial, &item.Name, &item.ReleaseModel, &item.Color, &item.Price,
		&item.SourceName, &item.SourcePhone, &item.SourceAddress, &item.Remarks,
		&status, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Status = inventory.Status(status)
	return &item, nil
}

func (r *InventoryRepository) CreateItems(ctx context.Context, items []*inventory.Item) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO inventory_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	err := r.atomically(ctx, func(q monitoring.Querier) error {
		for _, item := range items {
			_, err := monitoring.InstrumentExec(ctx, q, "INSERT", "inventory_items", query,
				item.ID, item.Serial, item.Name, item.ReleaseModel, item.Color, item.Price,
				item.SourceName, item.SourcePhone, item.SourceAddress, item.Remarks,
				string(item.Status), item.CreatedAt, item.UpdatedAt,
			)
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
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE id = $1`
	return r.getItem(ctx, query, id)
}

func (r *InventoryRepository) GetItemBySerial(ctx context.Context, serial string) (*inventory.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE serial = $1`
	return r.getItem(ctx, query, serial)
}

func (r *InventoryRepository) getItem(ctx context.Context, query string, arg string) (*inventory.Item, error) {
	row := monitoring.InstrumentQueryRow(ctx, r.q(), "SELECT", "inventory_items", query, arg)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainErrors.ErrItemNotFound
	}
	if err != nil {
		return nil, storageError("select inventory item", err)
	}
	return item, nil
}

func (r *InventoryRepository) ListItems(ctx context.Context, filter inventory.Filter) ([]*inventory.Item, error) {
	var (
		where []string
		args  []interface{}
	)
	if pattern := filter.Pattern(); pattern != "" {
		args = append(args, pattern)
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(LOWER(name) LIKE $%d OR LOWER(serial) LIKE $%d OR LOWER(release_model) LIKE $%d OR LOWER(source_name) LIKE $%d)",
			n, n, n, n,
		))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + itemColumns + ` FROM inventory_items`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY seq LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := monitoring.InstrumentQuery(ctx, r.q(), "SELECT", "inventory_items", query, args...)
	if err != nil {
		return nil, storageError("list inventory items", err)
	}
	defer rows.Close()

	items := make([]*inventory.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, storageError("scan inventory item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list inventory items", err)
	}
	return items, nil
}

func (r *InventoryRepository) CountByStatus(ctx context.Context) (map[inventory.Status]int, error) {
	query := `SELECT status, COUNT(*) FROM inventory_items GROUP BY status`

	rows, err := monitoring.InstrumentQuery(ctx, r.q(), "SELECT", "inventory_items", query)
	if err != nil {
		return nil, storageError("count inventory items", err)
	}
	defer rows.Close()

	counts := make(map[inventory.Status]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, storageError("scan inventory count", err)
		}
		counts[inventory.Status(status)] = n
	}
	return counts, storageError("count inventory items", rows.Err())
}

func (r *InventoryRepository) UpdateItem(ctx context.Context, item *inventory.Item) error {
	query := `
		UPDATE inventory_items
		SET name = $2, release_model = $3, color = $4, price = $5,
			source_name = $6, source_phone = $7, source_address = $8, remarks = $9,
			updated_at = $10
		WHERE id = $1 AND status <> 'sold'
	`

	result, err := monitoring.InstrumentExec(ctx, r.q(), "UPDATE", "inventory_items", query,
		item.ID, item.Name, item.ReleaseModel, item.Color, item.Price,
		item.SourceName, item.SourcePhone, item.SourceAddress, item.Remarks,
		item.UpdatedAt,
	)
	return guardedWrite("update inventory item", result, err)
}

func (r *InventoryRepository) DeleteItem(ctx context.Context, id string) error {
	query := `DELETE FROM inventory_items WHERE id = $1 AND status = 'in_stock'`

	result, err := monitoring.InstrumentExec(ctx, r.q(), "DELETE", "inventory_items", query, id)
	return guardedWrite("delete inventory item", result, err)
}

func (r *InventoryRepository) CompareAndSetStatus(ctx context.Context, id string, from, to inventory.Status, at time.Time) error {
	query := `
		UPDATE inventory_items
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
	`

	result, err := monitoring.InstrumentExec(ctx, r.q(), "UPDATE", "inventory_items", query,
		id, string(from), string(to), at,
	)
	return guardedWrite("set item status", result, err)
}

// guardedWrite maps a conditional write that touched no row to ErrStatusChanged.
func guardedWrite(op string, result sql.Result, err error) error {
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
