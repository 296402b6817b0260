/*
Package runlock layers an optional cross-host lease on top of the
local-file global_state interlock. A single host only needs the file
check, but two orchestrator processes on different hosts sharing the
same catalog need a second opinion before either starts a run.
*/
package runlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrHeld is returned by [Lock.Acquire] when another host currently owns the lease.
var ErrHeld = errors.New("runlock: lease held by another host")

const leaseTTL = 5 * time.Minute

// Lock is a Redis-backed mutual-exclusion lease. A nil *Lock is valid
// and treats every call as a no-op, so the orchestrator can construct
// one unconditionally and skip it entirely when Redis is not configured.
type Lock struct {
	client *redis.Client
	key    string
	owner  string
}

// New returns a [Lock] keyed by key, identifying this process as owner.
// client may be nil, in which case the returned lock is a no-op.
func New(client *redis.Client, key, owner string) *Lock {
	return &Lock{client: client, key: key, owner: owner}
}

// Acquire takes out the lease with SET NX PX, failing with [ErrHeld] if
// another host already holds it.
func (l *Lock) Acquire(ctx context.Context) error {
	if l == nil || l.client == nil {
		return nil
	}

	ok, err := l.client.SetNX(ctx, l.key, l.owner, leaseTTL).Result()
	if err != nil {
		return fmt.Errorf("runlock: acquire: %w", err)
	}
	if !ok {
		return ErrHeld
	}
	return nil
}

// Release drops the lease if this process still owns it.
func (l *Lock) Release(ctx context.Context) error {
	if l == nil || l.client == nil {
		return nil
	}

	current, err := l.client.Get(ctx, l.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("runlock: release: %w", err)
	}
	if current != l.owner {
		return nil
	}

	if err := l.client.Del(ctx, l.key).Err(); err != nil {
		return fmt.Errorf("runlock: release: %w", err)
	}
	return nil
}
