package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/lib/pq"

	domainErrors "github.com/yuzvak/resale-backoffice/internal/domain/errors"
)

const (
	uniqueViolation = "23505"
	// Class 22 covers numeric overflow and over-long strings.
	dataExceptionClass = "22"
)

// isUniqueViolation understands errors from both registered drivers.
func isUniqueViolation(err error) bool {
	return sqlState(err) == uniqueViolation
}

func isDataException(err error) bool {
	return strings.HasPrefix(sqlState(err), dataExceptionClass)
}

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// storageError classifies a failed statement. Values the column rejects are
// the caller's fault; everything else is worth retrying.
func storageError(op string, err error) error {
	if err != nil && isDataException(err) {
		return fmt.Errorf("%w: %s", domainErrors.ErrValueOutOfRange, op)
	}
	return domainErrors.Transient(op, err)
}
