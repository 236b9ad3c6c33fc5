package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	domainErrors "github.com/yuzvak/resale-backoffice/internal/domain/errors"
	"github.com/yuzvak/resale-backoffice/internal/pkg/logger"
)

func testConnection(t *testing.T) *Connection {
	t.Helper()

	addr := os.Getenv("BACKOFFICE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("BACKOFFICE_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis at %s unavailable: %v", addr, err)
	}
	t.Cleanup(func() { client.Close() })
	return NewConnectionFromClient(client)
}

func TestLedgerLockExcludesSecondHolder(t *testing.T) {
	ctx := context.Background()
	conn := testConnection(t)
	station := "test-" + uuid.NewString()[:8]

	first := NewLedgerLock(conn, 5*time.Second, 100*time.Millisecond, logger.NewNopLogger())
	second := NewLedgerLock(conn, 5*time.Second, 100*time.Millisecond, logger.NewNopLogger())

	unlock, err := first.Lock(ctx, station)
	if err != nil {
		t.Fatalf("first Lock: %v", err)
	}

	if _, err := second.Lock(ctx, station); !errors.Is(err, domainErrors.ErrLedgerBusy) {
		t.Fatalf("second Lock = %v, want ErrLedgerBusy", err)
	}

	unlock()

	unlock2, err := second.Lock(ctx, station)
	if err != nil {
		t.Fatalf("Lock after release: %v", err)
	}
	unlock2()
}

func TestLedgerLockReleaseKeepsForeignToken(t *testing.T) {
	ctx := context.Background()
	conn := testConnection(t)
	station := "test-" + uuid.NewString()[:8]

	lock := NewLedgerLock(conn, 5*time.Second, 100*time.Millisecond, logger.NewNopLogger())
	unlock, err := lock.Lock(ctx, station)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	// Simulate expiry and takeover by another process.
	if err := conn.GetClient().Set(ctx, lockKey(station), "someone-else", 5*time.Second).Err(); err != nil {
		t.Fatalf("Set: %v", err)
	}
	unlock()

	got, err := conn.GetClient().Get(ctx, lockKey(station)).Result()
	if err != nil || got != "someone-else" {
		t.Fatalf("foreign lock was released: %q, %v", got, err)
	}
	conn.GetClient().Del(ctx, lockKey(station))
}
