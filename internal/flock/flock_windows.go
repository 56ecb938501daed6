//go:build windows

package flock

import (
	"os"

	"golang.org/x/sys/windows"
)

// The whole file is locked as a single byte range starting at offset zero.
const (
	rangeLow  = 1
	rangeHigh = 0
)

func tryLock(f *os.File) error {
	return windows.LockFileEx(
		windows.Handle(f.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0,
		rangeLow,
		rangeHigh,
		new(windows.Overlapped),
	)
}

func unlock(f *os.File) error {
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, rangeLow, rangeHigh, new(windows.Overlapped))
}
