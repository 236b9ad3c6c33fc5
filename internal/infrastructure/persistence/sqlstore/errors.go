package sqlstore

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	domainErrors "github.com/yuzvak/resale-backoffice/internal/domain/errors"
)

const (
	mysqlDuplicateEntry = 1062
	mysqlOutOfRange     = 1264
	mysqlDataTooLong    = 1406
)

func isUniqueViolation(err error) bool {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	return false
}

// isDataException reports a value MySQL refused to fit into its column.
// SQLite columns are untyped and never raise one.
func isDataException(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlOutOfRange || myErr.Number == mysqlDataTooLong
	}
	return false
}

func storageError(op string, err error) error {
	if err != nil && isDataException(err) {
		return fmt.Errorf("%w: %s", domainErrors.ErrValueOutOfRange, op)
	}
	return domainErrors.Transient(op, err)
}
