// Package flock provides cross-platform file locking utilities.
//
// Acquire retries a non-blocking exclusive lock until a timeout or the
// caller's context ends. The history file backend holds one per entity while
// it numbers and appends a revision, so concurrent processes never reuse a
// revision number.
//
// Usage:
//
//	lock, err := flock.Acquire(ctx, path+".lock", 5*time.Second)
//	if err != nil {
//	    return err // wraps errors.ErrLockTimeout on timeout
//	}
//	defer func() { _ = lock.Release() }()
package flock
