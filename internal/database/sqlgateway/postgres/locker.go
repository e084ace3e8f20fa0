package postgres

import (
	"context"
	"database/sql"
	"github.com/denismitr/zmigrate/internal/database"
	"github.com/pkg/errors"
	"hash/fnv"
)

const DefaultLockKey int64 = 99887766

// LockKeyFor maps a lock name onto the bigint key space of pg_advisory_lock
func LockKeyFor(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64())
}

// Locker holds a session level advisory lock, so it has to run on the
// same connection as the migrations
type Locker struct {
	lockKey int64
	noLock  bool
}

var _ database.Locker = (*Locker)(nil)

func NewLocker(lockKey int64, noLock bool) *Locker {
	return &Locker{lockKey: lockKey, noLock: noLock}
}

func (l *Locker) Lock(ctx context.Context, ex database.Executor) error {
	if l.noLock {
		return nil
	}

	if _, err := ex.ExecContext(ctx, "SELECT pg_advisory_lock($1)", l.lockKey); err != nil {
		return errors.Wrapf(database.ErrLockNotAcquired, "postgres advisory lock [%d]: %s", l.lockKey, err.Error())
	}

	return nil
}

func (l *Locker) Unlock(ctx context.Context, ex database.Executor) error {
	if l.noLock {
		return nil
	}

	var released sql.NullBool
	if err := ex.QueryRowxContext(ctx, "SELECT pg_advisory_unlock($1)", l.lockKey).Scan(&released); err != nil {
		return errors.Wrapf(err, "could not release postgres advisory lock [%d]", l.lockKey)
	}

	if !released.Valid || !released.Bool {
		return errors.Wrapf(database.ErrLockNotHeld, "pg_advisory_unlock [%d]", l.lockKey)
	}

	return nil
}
