package errors

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind sentinels. Every error produced by the core wraps exactly one of them.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrTransientStorage = errors.New("storage temporarily unavailable")
)

var (
	ErrItemNotFound       = newKindError(ErrNotFound, "inventory item not found")
	ErrSerialTaken        = newKindError(ErrConflict, "serial already exists")
	ErrItemSold           = newKindError(ErrConflict, "item is sold and can no longer be changed")
	ErrItemPending        = newKindError(ErrConflict, "item is pending in an open sale")
	ErrItemAlreadyPending = newKindError(ErrConflict, "item is already pending sale")
	ErrItemAlreadySold    = newKindError(ErrConflict, "item already sold")
	ErrStatusChanged      = newKindError(ErrConflict, "item status changed concurrently")
	ErrInvalidTransition  = newKindError(ErrConflict, "status transition not permitted")

	ErrLineNotFound  = newKindError(ErrNotFound, "sale line not found")
	ErrLedgerEmpty   = newKindError(ErrValidation, "no sale lines to confirm")
	ErrLedgerChanged = newKindError(ErrConflict, "sale lines changed before confirmation")
	ErrLedgerBusy    = newKindError(ErrTransientStorage, "another register operation is in progress")

	ErrSaleNotFound = newKindError(ErrNotFound, "sale not found")

	ErrValueOutOfRange = newKindError(ErrValidation, "value does not fit the stored column")
)

type kindError struct {
	kind error
	msg  string
}

func newKindError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// ValidationError carries per-field reasons.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(fields map[string]string) error {
	return &ValidationError{Fields: fields}
}

// Invalid builds a single-field validation error.
func Invalid(field, reason string) error {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// StorageError marks a failure of the storage engine itself, as opposed to a
// rule violation. Callers may retry the whole operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrTransientStorage, e.Err}
}

// Transient wraps a driver error. Errors that already carry a kind pass through.
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != KindInternal {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

const (
	KindValidation = "validation_error"
	KindNotFound   = "not_found"
	KindConflict   = "conflict"
	KindTransient  = "transient_storage_error"
	KindInternal   = "internal_error"
)

func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrTransientStorage),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return KindTransient
	default:
		return KindInternal
	}
}

func IsTransient(err error) bool {
	return KindOf(err) == KindTransient
}
