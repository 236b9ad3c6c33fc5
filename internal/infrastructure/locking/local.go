// Package locking provides the in-process ledger lock used when no Redis is
// configured.
package locking

import (
	"context"
	"sync"
	"time"

	"github.com/im7mortal/kmutex"

	domainErrors "github.com/yuzvak/resale-backoffice/internal/domain/errors"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/monitoring"
)

// LocalLocker keys one mutex per station. It only serializes callers inside
// this process.
type LocalLocker struct {
	km      *kmutex.Kmutex
	wait    time.Duration
	metrics *monitoring.LockMetrics
}

func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{
		km:      kmutex.New(),
		wait:    wait,
		metrics: monitoring.NewLockMetrics("local"),
	}
}

func (l *LocalLocker) Lock(ctx context.Context, stationID string) (func(), error) {
	l.metrics.RecordAttempt()

	acquired := make(chan struct{})
	go func() {
		l.km.Lock(stationID)
		close(acquired)
	}()

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case <-acquired:
	case <-ctx.Done():
		l.abandon(stationID, acquired)
		l.metrics.RecordFailure("canceled")
		return nil, ctx.Err()
	case <-timer.C:
		l.abandon(stationID, acquired)
		l.metrics.RecordFailure("timeout")
		return nil, domainErrors.ErrLedgerBusy
	}

	l.metrics.RecordSuccess()
	endHold := l.metrics.TimeHold()

	var once sync.Once
	return func() {
		once.Do(func() {
			endHold()
			l.km.Unlock(stationID)
		})
	}, nil
}

// abandon releases the mutex as soon as the pending acquisition completes.
func (l *LocalLocker) abandon(stationID string, acquired <-chan struct{}) {
	go func() {
		<-acquired
		l.km.Unlock(stationID)
	}()
}
