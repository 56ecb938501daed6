//go:build unix

package flock_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nferrors "github.com/mrz1836/notionflow/internal/errors"
	"github.com/mrz1836/notionflow/internal/flock"
)

func TestAcquire_CreatesDirectoryAndReleases(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "task", "abc.lock")

	lock, err := flock.Acquire(context.Background(), path, time.Second)
	require.NoError(t, err)
	assert.FileExists(t, path)
	require.NoError(t, lock.Release())

	again, err := flock.Acquire(context.Background(), path, time.Second)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestAcquire_TimesOutWhileHeld(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "held.lock")

	held, err := flock.Acquire(context.Background(), path, time.Second)
	require.NoError(t, err)
	defer func() { _ = held.Release() }()

	_, err = flock.Acquire(context.Background(), path, 120*time.Millisecond)
	require.ErrorIs(t, err, nferrors.ErrLockTimeout)
}

func TestAcquire_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := flock.Acquire(ctx, filepath.Join(t.TempDir(), "x.lock"), time.Second)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRelease_NilLock(t *testing.T) {
	t.Parallel()

	var l *flock.Lock
	assert.NoError(t, l.Release())
}
