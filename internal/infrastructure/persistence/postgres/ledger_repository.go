package postgres

import (
	"context"
	"database/sql"
	"errors"

	domainErrors "github.com/yuzvak/resale-backoffice/internal/domain/errors"
	"github.com/yuzvak/resale-backoffice/internal/domain/sale"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/monitoring"
)

const lineColumns = `id, station_id, item_id, serial, item_name, sale_price, added_at`

type LedgerRepository struct {
	conn
}

func scanLine(row scanner) (*sale.PendingLine, error) {
	var line sale.PendingLine
	err := row.Scan(&line.ID, &line.StationID, &line.ItemID, &line.Serial, &line.ItemName, &line.SalePrice, &line.AddedAt)
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *LedgerRepository) AddLine(ctx context.Context, line *sale.PendingLine) error {
	query := `
		INSERT INTO pending_sale_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := monitoring.InstrumentExec(ctx, r.q(), "INSERT", "pending_sale_lines", query,
		line.ID, line.StationID, line.ItemID, line.Serial, line.ItemName, line.SalePrice, line.AddedAt,
	)
	if isUniqueViolation(err) {
		return domainErrors.ErrItemAlreadyPending
	}
	return storageError("insert sale line", err)
}

func (r *LedgerRepository) GetLine(ctx context.Context, stationID, lineID string) (*sale.PendingLine, error) {
	query := `SELECT ` + lineColumns + ` FROM pending_sale_lines WHERE id = $1 AND station_id = $2`

	row := monitoring.InstrumentQueryRow(ctx, r.q(), "SELECT", "pending_sale_lines", query, lineID, stationID)
	line, err := scanLine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainErrors.ErrLineNotFound
	}
	if err != nil {
		return nil, storageError("select sale line", err)
	}
	return line, nil
}

func (r *LedgerRepository) ListLines(ctx context.Context, stationID string) ([]*sale.PendingLine, error) {
	query := `SELECT ` + lineColumns + ` FROM pending_sale_lines WHERE station_id = $1 ORDER BY seq`
	if r.isTx {
		query += ` FOR UPDATE`
	}

	rows, err := monitoring.InstrumentQuery(ctx, r.q(), "SELECT", "pending_sale_lines", query, stationID)
	if err != nil {
		return nil, storageError("list sale lines", err)
	}
	defer rows.Close()

	lines := make([]*sale.PendingLine, 0)
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, storageError("scan sale line", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list sale lines", err)
	}
	return lines, nil
}

func (r *LedgerRepository) DeleteLine(ctx context.Context, stationID, lineID string) error {
	query := `DELETE FROM pending_sale_lines WHERE id = $1 AND station_id = $2`

	result, err := monitoring.InstrumentExec(ctx, r.q(), "DELETE", "pending_sale_lines", query, lineID, stationID)
	if err := guardedWrite("delete sale line", result, err); err != nil {
		if errors.Is(err, domainErrors.ErrStatusChanged) {
			return domainErrors.ErrLineNotFound
		}
		return err
	}
	return nil
}

// DeleteLines removes exactly the given lines or fails with ErrLedgerChanged.
func (r *LedgerRepository) DeleteLines(ctx context.Context, stationID string, lineIDs []string) error {
	query := `DELETE FROM pending_sale_lines WHERE id = $1 AND station_id = $2`

	err := r.atomically(ctx, func(q monitoring.Querier) error {
		for _, id := range lineIDs {
			result, err := monitoring.InstrumentExec(ctx, q, "DELETE", "pending_sale_lines", query, id, stationID)
			if err := guardedWrite("delete sale lines", result, err); err != nil {
				if errors.Is(err, domainErrors.ErrStatusChanged) {
					return domainErrors.ErrLedgerChanged
				}
				return err
			}
		}
		return nil
	})
	return storageError("delete sale lines", err)
}
