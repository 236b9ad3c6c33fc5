package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/yuzvak/resale-backoffice/internal/config"
)

// dialect holds what differs between the engines this package serves.
type dialect struct {
	name string
	// likeEscape makes backslash the LIKE escape character.
	likeEscape string
	// lockRows is appended to reads that must hold row locks in a transaction.
	lockRows string
	txOptions *sql.TxOptions
}

var (
	sqliteDialect = dialect{
		name:       config.DriverSQLite,
		likeEscape: ` ESCAPE '\'`,
	}
	mysqlDialect = dialect{
		name:       config.DriverMySQL,
		likeEscape: ` ESCAPE '\\'`,
		lockRows:   ` FOR UPDATE`,
		txOptions:  &sql.TxOptions{Isolation: sql.LevelReadCommitted},
	}
)

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case config.DriverSQLite:
		return sqliteDialect, nil
	case config.DriverMySQL:
		return mysqlDialect, nil
	default:
		return dialect{}, fmt.Errorf("driver %q is not served by sqlstore", driver)
	}
}

// Open connects with sqlx and applies the schema. SQLite gets a single
// connection, which serializes writers the way the engine wants.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	if d.name == config.DriverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime.Duration)
		db.SetConnMaxIdleTime(30 * time.Minute)
	}

	if err := Migrate(ctx, db, d); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
