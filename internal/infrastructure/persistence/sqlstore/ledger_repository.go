package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	domainErrors "github.com/yuzvak/resale-backoffice/internal/domain/errors"
	"github.com/yuzvak/resale-backoffice/internal/domain/sale"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/monitoring"
)

const lineColumns = `id, station_id, item_id, serial, item_name, sale_price, added_at`

type lineRow struct {
	ID        string          `db:"id"`
	StationID string          `db:"station_id"`
	ItemID    string          `db:"item_id"`
	Serial    string          `db:"serial"`
	ItemName  string          `db:"item_name"`
	SalePrice decimal.Decimal `db:"sale_price"`
	AddedAt   time.Time       `db:"added_at"`
}

func (r lineRow) toLine() *sale.PendingLine {
	return &sale.PendingLine{
		ID:        r.ID,
		StationID: r.StationID,
		ItemID:    r.ItemID,
		Serial:    r.Serial,
		ItemName:  r.ItemName,
		SalePrice: r.SalePrice,
		AddedAt:   r.AddedAt.UTC(),
	}
}

type LedgerRepository struct {
	conn
}

func (r *LedgerRepository) AddLine(ctx context.Context, line *sale.PendingLine) error {
	query := `INSERT INTO pending_sale_lines (` + lineColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`

	end := monitoring.TimeDBQuery("INSERT", "pending_sale_lines")
	_, err := r.q().ExecContext(ctx, r.q().Rebind(query),
		line.ID, line.StationID, line.ItemID, line.Serial, line.ItemName, line.SalePrice, line.AddedAt,
	)
	end()
	if isUniqueViolation(err) {
		return domainErrors.ErrItemAlreadyPending
	}
	return storageError("insert sale line", err)
}

func (r *LedgerRepository) GetLine(ctx context.Context, stationID, lineID string) (*sale.PendingLine, error) {
	query := `SELECT ` + lineColumns + ` FROM pending_sale_lines WHERE id = ? AND station_id = ?`

	end := monitoring.TimeDBQuery("SELECT", "pending_sale_lines")
	defer end()

	var row lineRow
	err := sqlx.GetContext(ctx, r.q(), &row, r.q().Rebind(query), lineID, stationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainErrors.ErrLineNotFound
	}
	if err != nil {
		return nil, storageError("select sale line", err)
	}
	return row.toLine(), nil
}

func (r *LedgerRepository) ListLines(ctx context.Context, stationID string) ([]*sale.PendingLine, error) {
	query := `SELECT ` + lineColumns + ` FROM pending_sale_lines WHERE station_id = ? ORDER BY seq`
	if r.tx != nil {
		query += r.dialect.lockRows
	}

	end := monitoring.TimeDBQuery("SELECT", "pending_sale_lines")
	defer end()

	var rows []lineRow
	if err := sqlx.SelectContext(ctx, r.q(), &rows, r.q().Rebind(query), stationID); err != nil {
		return nil, storageError("list sale lines", err)
	}

	lines := make([]*sale.PendingLine, len(rows))
	for i, row := range rows {
		lines[i] = row.toLine()
	}
	return lines, nil
}

func (r *LedgerRepository) DeleteLine(ctx context.Context, stationID, lineID string) error {
	err := r.deleteLine(ctx, r.q(), stationID, lineID)
	if errors.Is(err, domainErrors.ErrStatusChanged) {
		return domainErrors.ErrLineNotFound
	}
	return err
}

// DeleteLines removes exactly the given lines or fails with ErrLedgerChanged.
func (r *LedgerRepository) DeleteLines(ctx context.Context, stationID string, lineIDs []string) error {
	err := r.atomically(ctx, func(q sqlx.ExtContext) error {
		for _, id := range lineIDs {
			err := r.deleteLine(ctx, q, stationID, id)
			if errors.Is(err, domainErrors.ErrStatusChanged) {
				return domainErrors.ErrLedgerChanged
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	return storageError("delete sale lines", err)
}

func (r *LedgerRepository) deleteLine(ctx context.Context, q sqlx.ExtContext, stationID, lineID string) error {
	query := q.Rebind(`DELETE FROM pending_sale_lines WHERE id = ? AND station_id = ?`)

	end := monitoring.TimeDBQuery("DELETE", "pending_sale_lines")
	result, err := q.ExecContext(ctx, query, lineID, stationID)
	end()
	if err != nil {
		return storageError("delete sale line", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return storageError("delete sale line", err)
	}
	if affected == 0 {
		return domainErrors.ErrStatusChanged
	}
	return nil
}
