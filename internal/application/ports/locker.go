package ports

import "context"

//go:generate mockgen -destination=../../mocks/mock_ports.go -package=mocks github.com/yuzvak/resale-backoffice/internal/application/ports LedgerLocker,EventPublisher

// LedgerLocker serializes mutations of one station's ledger. Lock blocks
// until the lock is held or ctx is done; the returned func releases it.
type LedgerLocker interface {
	Lock(ctx context.Context, stationID string) (unlock func(), err error)
}
