package scheduler

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DistributedLock uses a PostgreSQL advisory lock held on one dedicated
// connection, so the unlock runs in the session that took the lock.
type DistributedLock struct {
	lockID int64
	pool   *pgxpool.Pool
}

func NewDistributedLock(pool *pgxpool.Pool, key string) *DistributedLock {
	return &DistributedLock{
		lockID: LockID(key),
		pool:   pool,
	}
}

// LockID maps a lock name to an advisory lock key.
func LockID(key string) int64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return int64(h.Sum64())
}

// WithLock runs fn while holding the lock. It returns false without running
// fn when another session holds the lock.
func (l *DistributedLock) WithLock(ctx context.Context, fn func(context.Context) error) (bool, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var acquired bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", l.lockID).Scan(&acquired); err != nil {
		return false, fmt.Errorf("pg_try_advisory_lock: %w", err)
	}
	if !acquired {
		return false, nil
	}

	// Unlock on a fresh context so a cancelled job still releases the lock.
	defer func() {
		_, _ = conn.Exec(context.WithoutCancel(ctx), "SELECT pg_advisory_unlock($1)", l.lockID)
	}()

	return true, fn(ctx)
}
