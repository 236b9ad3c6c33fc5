package locking

import (
	"context"

	"github.com/yuzvak/resale-backoffice/internal/application/ports"
)

// Chain takes every locker in order and releases them in reverse. Putting the
// local lock first keeps callers in this process off Redis while they queue.
type Chain []ports.LedgerLocker

func (c Chain) Lock(ctx context.Context, stationID string) (func(), error) {
	unlocks := make([]func(), 0, len(c))
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}

	for _, locker := range c {
		unlock, err := locker.Lock(ctx, stationID)
		if err != nil {
			release()
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}
	return release, nil
}
