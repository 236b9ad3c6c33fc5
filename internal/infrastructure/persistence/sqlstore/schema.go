package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS inventory_items (
		seq            INTEGER PRIMARY KEY AUTOINCREMENT,
		id             TEXT NOT NULL UNIQUE,
		serial         TEXT NOT NULL UNIQUE,
		name           TEXT NOT NULL,
		release_model  TEXT NOT NULL,
		color          TEXT NOT NULL DEFAULT '',
		price          TEXT NOT NULL,
		source_name    TEXT NOT NULL,
		source_phone   TEXT NOT NULL DEFAULT '',
		source_address TEXT NOT NULL DEFAULT '',
		remarks        TEXT NOT NULL DEFAULT '',
		status         TEXT NOT NULL DEFAULT 'in_stock'
			CHECK (status IN ('in_stock', 'pending', 'sold')),
		created_at     DATETIME NOT NULL,
		updated_at     DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS inventory_items_status_idx ON inventory_items (status)`,
	`CREATE TABLE IF NOT EXISTS pending_sale_lines (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		id         TEXT NOT NULL UNIQUE,
		station_id TEXT NOT NULL,
		item_id    TEXT NOT NULL UNIQUE REFERENCES inventory_items (id),
		serial     TEXT NOT NULL,
		item_name  TEXT NOT NULL,
		sale_price TEXT NOT NULL,
		added_at   DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS pending_sale_lines_station_idx ON pending_sale_lines (station_id, seq)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id           TEXT PRIMARY KEY,
		station_id   TEXT NOT NULL,
		total        TEXT NOT NULL,
		line_count   INTEGER NOT NULL,
		confirmed_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sale_lines (
		sale_id    TEXT NOT NULL REFERENCES sales (id),
		position   INTEGER NOT NULL,
		item_id    TEXT NOT NULL,
		serial     TEXT NOT NULL,
		item_name  TEXT NOT NULL,
		sale_price TEXT NOT NULL,
		PRIMARY KEY (sale_id, position)
	)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS inventory_items (
		seq            BIGINT AUTO_INCREMENT PRIMARY KEY,
		id             VARCHAR(36) NOT NULL UNIQUE,
		serial         VARCHAR(128) NOT NULL UNIQUE,
		name           VARCHAR(255) NOT NULL,
		release_model  VARCHAR(255) NOT NULL,
		color          VARCHAR(64) NOT NULL DEFAULT '',
		price          DECIMAL(14,2) NOT NULL,
		source_name    VARCHAR(255) NOT NULL,
		source_phone   VARCHAR(64) NOT NULL DEFAULT '',
		source_address TEXT NOT NULL,
		remarks        TEXT NOT NULL,
		status         VARCHAR(16) NOT NULL DEFAULT 'in_stock',
		created_at     DATETIME(6) NOT NULL,
		updated_at     DATETIME(6) NOT NULL,
		INDEX inventory_items_status_idx (status)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS pending_sale_lines (
		seq        BIGINT AUTO_INCREMENT PRIMARY KEY,
		id         VARCHAR(36) NOT NULL UNIQUE,
		station_id VARCHAR(64) NOT NULL,
		item_id    VARCHAR(36) NOT NULL UNIQUE,
		serial     VARCHAR(128) NOT NULL,
		item_name  VARCHAR(255) NOT NULL,
		sale_price DECIMAL(14,2) NOT NULL,
		added_at   DATETIME(6) NOT NULL,
		INDEX pending_sale_lines_station_idx (station_id, seq),
		FOREIGN KEY (item_id) REFERENCES inventory_items (id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS sales (
		id           VARCHAR(64) PRIMARY KEY,
		station_id   VARCHAR(64) NOT NULL,
		total        DECIMAL(14,2) NOT NULL,
		line_count   INT NOT NULL,
		confirmed_at DATETIME(6) NOT NULL
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS sale_lines (
		sale_id    VARCHAR(64) NOT NULL,
		position   INT NOT NULL,
		item_id    VARCHAR(36) NOT NULL,
		serial     VARCHAR(128) NOT NULL,
		item_name  VARCHAR(255) NOT NULL,
		sale_price DECIMAL(14,2) NOT NULL,
		PRIMARY KEY (sale_id, position),
		FOREIGN KEY (sale_id) REFERENCES sales (id)
	) ENGINE=InnoDB`,
}

// Migrate creates any missing tables. Every statement is idempotent.
func Migrate(ctx context.Context, db *sqlx.DB, d dialect) error {
	schema := sqliteSchema
	if d.name == mysqlDialect.name {
		schema = mysqlSchema
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
