package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	domainErrors "github.com/yuzvak/resale-backoffice/internal/domain/errors"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/monitoring"
	"github.com/yuzvak/resale-backoffice/internal/pkg/logger"
)

const pollInterval = 25 * time.Millisecond

// releaseLuaScript deletes the key only while it still holds our token, so an
// expired lock taken over by another process is left alone.
const releaseLuaScript = `
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`

// LedgerLock is a per-station mutex shared by every process that talks to the
// same Redis. The TTL bounds how long a crashed holder can block a station.
type LedgerLock struct {
	client  *redis.Client
	ttl     time.Duration
	wait    time.Duration
	log     *logger.Logger
	metrics *monitoring.LockMetrics
	release *redis.Script
}

func NewLedgerLock(conn *Connection, ttl, wait time.Duration, log *logger.Logger) *LedgerLock {
	return &LedgerLock{
		client:  conn.GetClient(),
		ttl:     ttl,
		wait:    wait,
		log:     log,
		metrics: monitoring.NewLockMetrics("redis"),
		release: redis.NewScript(releaseLuaScript),
	}
}

func lockKey(stationID string) string {
	return "lock:ledger:" + stationID
}

// Lock polls SET NX until it wins, the wait budget runs out (ErrLedgerBusy)
// or ctx is done.
func (l *LedgerLock) Lock(ctx context.Context, stationID string) (func(), error) {
	key := lockKey(stationID)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	l.metrics.RecordAttempt()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			l.metrics.RecordFailure("redis_error")
			return nil, domainErrors.Transient("acquire ledger lock", err)
		}
		if ok {
			break
		}

		if time.Now().After(deadline) {
			l.metrics.RecordFailure("timeout")
			return nil, domainErrors.ErrLedgerBusy
		}

		select {
		case <-ctx.Done():
			l.metrics.RecordFailure("canceled")
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}

	l.metrics.RecordSuccess()
	endHold := l.metrics.TimeHold()

	return func() {
		endHold()
		// The caller's ctx may already be done; release must still happen.
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if err := l.release.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			l.log.Warn("Failed to release ledger lock", "station_id", stationID, "error", err)
		}
	}, nil
}
