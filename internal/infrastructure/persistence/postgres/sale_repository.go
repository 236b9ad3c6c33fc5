package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	domainErrors "github.com/yuzvak/resale-backoffice/internal/domain/errors"
	"github.com/yuzvak/resale-backoffice/internal/domain/sale"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/monitoring"
)

type SaleRepository struct {
	conn
}

func (r *SaleRepository) CreateSale(ctx context.Context, s *sale.Sale) error {
	saleQuery := `
		INSERT INTO sales (id, station_id, total, line_count, confirmed_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	lineQuery := `
		INSERT INTO sale_lines (sale_id, position, item_id, serial, item_name, sale_price)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	err := r.atomically(ctx, func(q monitoring.Querier) error {
		_, err := monitoring.InstrumentExec(ctx, q, "INSERT", "sales", saleQuery,
			s.ID, s.StationID, s.Total, s.LineCount(), s.ConfirmedAt,
		)
		if err != nil {
			return err
		}

		for _, line := range s.Lines {
			_, err := monitoring.InstrumentExec(ctx, q, "INSERT", "sale_lines", lineQuery,
				s.ID, line.Position, line.ItemID, line.Serial, line.ItemName, line.SalePrice,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	return storageError("insert sale", err)
}

func (r *SaleRepository) GetSaleByID(ctx context.Context, id string) (*sale.Sale, error) {
	query := `SELECT id, station_id, total, confirmed_at FROM sales WHERE id = $1`

	var s sale.Sale
	row := monitoring.InstrumentQueryRow(ctx, r.q(), "SELECT", "sales", query, id)
	err := row.Scan(&s.ID, &s.StationID, &s.Total, &s.ConfirmedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainErrors.ErrSaleNotFound
	}
	if err != nil {
		return nil, storageError("select sale", err)
	}

	if err := r.loadLines(ctx, []*sale.Sale{&s}); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SaleRepository) ListSales(ctx context.Context, filter sale.Filter) ([]*sale.Sale, error) {
	query := `SELECT id, station_id, total, confirmed_at FROM sales`
	args := []interface{}{}
	if filter.StationID != "" {
		args = append(args, filter.StationID)
		query += ` WHERE station_id = $1`
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(` ORDER BY confirmed_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := monitoring.InstrumentQuery(ctx, r.q(), "SELECT", "sales", query, args...)
	if err != nil {
		return nil, storageError("list sales", err)
	}
	defer rows.Close()

	sales := make([]*sale.Sale, 0)
	for rows.Next() {
		var s sale.Sale
		if err := rows.Scan(&s.ID, &s.StationID, &s.Total, &s.ConfirmedAt); err != nil {
			return nil, storageError("scan sale", err)
		}
		sales = append(sales, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list sales", err)
	}

	if err := r.loadLines(ctx, sales); err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *SaleRepository) loadLines(ctx context.Context, sales []*sale.Sale) error {
	if len(sales) == 0 {
		return nil
	}

	byID := make(map[string]*sale.Sale, len(sales))
	placeholders := make([]string, 0, len(sales))
	args := make([]interface{}, 0, len(sales))
	for i, s := range sales {
		byID[s.ID] = s
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, s.ID)
	}

	query := `
		SELECT sale_id, position, item_id, serial, item_name, sale_price
		FROM sale_lines
		WHERE sale_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY sale_id, position
	`

	rows, err := monitoring.InstrumentQuery(ctx, r.q(), "SELECT", "sale_lines", query, args...)
	if err != nil {
		return storageError("list sale lines", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			saleID string
			line   sale.Line
		)
		if err := rows.Scan(&saleID, &line.Position, &line.ItemID, &line.Serial, &line.ItemName, &line.SalePrice); err != nil {
			return storageError("scan sale line", err)
		}
		if s, ok := byID[saleID]; ok {
			s.Lines = append(s.Lines, line)
		}
	}
	return storageError("list sale lines", rows.Err())
}
