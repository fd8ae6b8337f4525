package store

import (
	"context"
	"errors"
	"time"

	"layoffs-engine/internal/errs"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 50 * time.Millisecond

// Lock is an advisory single-writer lock on a table file, held on
// "<path>.lock". Readers never take it.
type Lock struct {
	fl *flock.Flock
}

// AcquireLock takes the writer lock for path, waiting up to timeout.
// A timeout of zero or less tries exactly once.
func AcquireLock(ctx context.Context, path string, timeout time.Duration) (*Lock, error) {
	fl := flock.New(path + ".lock")

	var (
		ok  bool
		err error
	)
	if timeout <= 0 {
		ok, err = fl.TryLock()
	} else {
		lockCtx, cancel := context.WithTimeout(ctx, timeout)
		ok, err = fl.TryLockContext(lockCtx, lockRetryDelay)
		cancel()
		if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = nil
		}
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &errs.StorageError{Op: "lock", Path: fl.Path(), Err: err}
	}
	if !ok {
		return nil, errs.ErrLocked
	}
	return &Lock{fl: fl}, nil
}

// Release drops the lock. The lock file itself stays on disk.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
