package use_cases

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yuzvak/resale-backoffice/internal/application/ports"
	domainErrors "github.com/yuzvak/resale-backoffice/internal/domain/errors"
	"github.com/yuzvak/resale-backoffice/internal/domain/inventory"
)

var tracer = otel.Tracer("github.com/yuzvak/resale-backoffice/internal/application/use_cases")

// inTx runs fn against a transaction-bound store. Any error from fn, or a
// failed commit, leaves storage exactly as it was.
func inTx(ctx context.Context, store ports.Store, fn func(tx ports.Store) error) (err error) {
	tx, err := store.BeginTx(ctx)
	if err != nil {
		return domainErrors.Transient("begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.RollbackTx(ctx)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.CommitTx(ctx); err != nil {
		return domainErrors.Transient("commit transaction", err)
	}
	return nil
}

// explainStatusChange turns a failed guarded write into the error a caller
// can act on by looking at what is stored now.
func explainStatusChange(ctx context.Context, repo ports.InventoryRepository, id string, cause error, explain func(*inventory.Item) error) error {
	if !errors.Is(cause, domainErrors.ErrStatusChanged) {
		return cause
	}

	item, err := repo.GetItemByID(ctx, id)
	if err != nil {
		return err
	}
	if reason := explain(item); reason != nil {
		return reason
	}
	return cause
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, domainErrors.KindOf(err))
	}
	span.End()
}
