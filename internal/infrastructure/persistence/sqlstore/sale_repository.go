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

type saleRow struct {
	ID          string          `db:"id"`
	StationID   string          `db:"station_id"`
	Total       decimal.Decimal `db:"total"`
	ConfirmedAt time.Time       `db:"confirmed_at"`
}

type saleLineRow struct {
	SaleID    string          `db:"sale_id"`
	Position  int             `db:"position"`
	ItemID    string          `db:"item_id"`
	Serial    string          `db:"serial"`
	ItemName  string          `db:"item_name"`
	SalePrice decimal.Decimal `db:"sale_price"`
}

type SaleRepository struct {
	conn
}

func (r *SaleRepository) CreateSale(ctx context.Context, s *sale.Sale) error {
	err := r.atomically(ctx, func(q sqlx.ExtContext) error {
		end := monitoring.TimeDBQuery("INSERT", "sales")
		_, err := q.ExecContext(ctx,
			q.Rebind(`INSERT INTO sales (id, station_id, total, line_count, confirmed_at) VALUES (?, ?, ?, ?, ?)`),
			s.ID, s.StationID, s.Total, s.LineCount(), s.ConfirmedAt,
		)
		end()
		if err != nil {
			return err
		}

		lineQuery := q.Rebind(`
			INSERT INTO sale_lines (sale_id, position, item_id, serial, item_name, sale_price)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		for _, line := range s.Lines {
			end := monitoring.TimeDBQuery("INSERT", "sale_lines")
			_, err := q.ExecContext(ctx, lineQuery,
				s.ID, line.Position, line.ItemID, line.Serial, line.ItemName, line.SalePrice,
			)
			end()
			if err != nil {
				return err
			}
		}
		return nil
	})
	return storageError("insert sale", err)
}

func (r *SaleRepository) GetSaleByID(ctx context.Context, id string) (*sale.Sale, error) {
	end := monitoring.TimeDBQuery("SELECT", "sales")
	var row saleRow
	err := sqlx.GetContext(ctx, r.q(), &row,
		r.q().Rebind(`SELECT id, station_id, total, confirmed_at FROM sales WHERE id = ?`), id)
	end()
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainErrors.ErrSaleNotFound
	}
	if err != nil {
		return nil, storageError("select sale", err)
	}

	sales, err := r.withLines(ctx, []saleRow{row})
	if err != nil {
		return nil, err
	}
	return sales[0], nil
}

func (r *SaleRepository) ListSales(ctx context.Context, filter sale.Filter) ([]*sale.Sale, error) {
	query := `SELECT id, station_id, total, confirmed_at FROM sales`
	var args []interface{}
	if filter.StationID != "" {
		query += ` WHERE station_id = ?`
		args = append(args, filter.StationID)
	}
	query += ` ORDER BY confirmed_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	end := monitoring.TimeDBQuery("SELECT", "sales")
	var rows []saleRow
	err := sqlx.SelectContext(ctx, r.q(), &rows, r.q().Rebind(query), args...)
	end()
	if err != nil {
		return nil, storageError("list sales", err)
	}
	return r.withLines(ctx, rows)
}

func (r *SaleRepository) withLines(ctx context.Context, rows []saleRow) ([]*sale.Sale, error) {
	sales := make([]*sale.Sale, len(rows))
	if len(rows) == 0 {
		return sales, nil
	}

	byID := make(map[string]*sale.Sale, len(rows))
	ids := make([]string, len(rows))
	for i, row := range rows {
		sales[i] = &sale.Sale{
			ID:          row.ID,
			StationID:   row.StationID,
			Total:       row.Total,
			ConfirmedAt: row.ConfirmedAt.UTC(),
		}
		byID[row.ID] = sales[i]
		ids[i] = row.ID
	}

	query, args, err := sqlx.In(`
		SELECT sale_id, position, item_id, serial, item_name, sale_price
		FROM sale_lines
		WHERE sale_id IN (?)
		ORDER BY sale_id, position
	`, ids)
	if err != nil {
		return nil, err
	}

	end := monitoring.TimeDBQuery("SELECT", "sale_lines")
	defer end()

	var lines []saleLineRow
	if err := sqlx.SelectContext(ctx, r.q(), &lines, r.q().Rebind(query), args...); err != nil {
		return nil, storageError("list sale lines", err)
	}
	for _, l := range lines {
		s := byID[l.SaleID]
		s.Lines = append(s.Lines, sale.Line{
			Position:  l.Position,
			ItemID:    l.ItemID,
			Serial:    l.Serial,
			ItemName:  l.ItemName,
			SalePrice: l.SalePrice,
		})
	}
	return sales, nil
}
