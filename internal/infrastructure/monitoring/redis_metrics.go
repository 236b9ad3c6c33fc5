package monitoring

import (
	"context"
	"net"

	"github.com/redis/go-redis/v9"
)

type RedisHook struct{}

func (RedisHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		defer TimeRedisCommand(cmd.Name())()
		return next(ctx, cmd)
	}
}

func (RedisHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		defer TimeRedisCommand("pipeline")()
		return next(ctx, cmds)
	}
}

func (RedisHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		defer TimeRedisCommand("dial")()
		return next(ctx, network, addr)
	}
}

func InstrumentRedisClient(client *redis.Client) *redis.Client {
	client.AddHook(RedisHook{})
	return client
}

// LockMetrics records acquisitions for one kind of lock ("local", "redis").
type LockMetrics struct {
	lockType string
}

func NewLockMetrics(lockType string) *LockMetrics {
	return &LockMetrics{
		lockType: lockType,
	}
}

func (m *LockMetrics) RecordAttempt() {
	RecordLockAttempt(m.lockType)
}

func (m *LockMetrics) RecordSuccess() {
	RecordLockSuccess(m.lockType)
}

func (m *LockMetrics) RecordFailure(reason string) {
	RecordLockFailure(m.lockType, reason)
}

func (m *LockMetrics) TimeHold() func() {
	return TimeLockHold(m.lockType)
}
