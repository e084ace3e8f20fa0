package mysql

import (
	"context"
	"database/sql"
	"github.com/denismitr/zmigrate/internal/database"
	"github.com/pkg/errors"
)

const DefaultLockKey = "zmigrate_migrations"
const DefaultLockSeconds = 10

type Locker struct {
	lockKey string
	lockFor int
	noLock  bool
}

var _ database.Locker = (*Locker)(nil)

func NewLocker(lockKey string, lockFor int, noLock bool) *Locker {
	return &Locker{lockKey: lockKey, lockFor: lockFor, noLock: noLock}
}

func (l *Locker) Lock(ctx context.Context, ex database.Executor) error {
	if l.noLock {
		return nil
	}

	var acquired sql.NullInt64
	if err := ex.QueryRowxContext(ctx, "SELECT GET_LOCK(?, ?)", l.lockKey, l.lockFor).Scan(&acquired); err != nil {
		return errors.Wrapf(err, "could not obtain [%s] exclusive MySQL DB lock for [%d] seconds", l.lockKey, l.lockFor)
	}

	if !acquired.Valid || acquired.Int64 != 1 {
		return errors.Wrapf(database.ErrLockNotAcquired, "[%s] is held by another session for more than [%d] seconds", l.lockKey, l.lockFor)
	}

	return nil
}

func (l *Locker) Unlock(ctx context.Context, ex database.Executor) error {
	if l.noLock {
		return nil
	}

	var released sql.NullInt64
	if err := ex.QueryRowxContext(ctx, "SELECT RELEASE_LOCK(?)", l.lockKey).Scan(&released); err != nil {
		return errors.Wrapf(err, "could not release [%s] exclusive MySQL DB lock", l.lockKey)
	}

	// 0 means another session owns the lock, NULL means nobody does
	if !released.Valid || released.Int64 != 1 {
		return errors.Wrapf(database.ErrLockNotHeld, "RELEASE_LOCK [%s]", l.lockKey)
	}

	return nil
}
