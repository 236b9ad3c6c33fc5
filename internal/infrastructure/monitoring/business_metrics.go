package monitoring

import (
	"github.com/shopspring/decimal"

	domainErrors "github.com/yuzvak/resale-backoffice/internal/domain/errors"
)

type LedgerMetrics struct {
	operation string
}

func NewLedgerMetrics(operation string) *LedgerMetrics {
	return &LedgerMetrics{
		operation: operation,
	}
}

func (m *LedgerMetrics) RecordSuccess() {
	switch m.operation {
	case "add":
		LedgerLinesAddedTotal.Inc()
	case "remove":
		LedgerLinesRemovedTotal.Inc()
	}
}

// RecordFailure labels by error kind, not message, to keep cardinality bounded.
func (m *LedgerMetrics) RecordFailure(err error) {
	LedgerFailureTotal.WithLabelValues(m.operation, domainErrors.KindOf(err)).Inc()
}

type ConfirmMetrics struct{}

func NewConfirmMetrics() *ConfirmMetrics {
	return &ConfirmMetrics{}
}

func (m *ConfirmMetrics) RecordAttempt() {
	ConfirmAttemptsTotal.Inc()
}

func (m *ConfirmMetrics) RecordSuccess(total decimal.Decimal, lines int) {
	RecordSaleConfirmed(total, lines)
}

func (m *ConfirmMetrics) RecordFailure(err error) {
	ConfirmFailureTotal.WithLabelValues(domainErrors.KindOf(err)).Inc()
}
