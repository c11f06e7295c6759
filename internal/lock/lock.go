// Package lock provides an advisory, process-exclusive lock on a directory.
//
// The lock is held on a file named LOCK inside the directory for as long as
// the returned Lock is open. It serializes processes, not goroutines.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the lock file created inside a locked directory.
const FileName = "LOCK"

// ErrLocked is returned when another process holds the lock.
var ErrLocked = errors.New("lock: directory in use by another process")

// Lock is a held directory lock.
type Lock struct {
	f *os.File
}

// Acquire creates dir if needed and takes an exclusive, non-blocking lock on
// it. It fails with ErrLocked if the lock is already held.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("lock: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("lock: %w", err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, err
	}
	return &Lock{f: f}, nil
}

// Release drops the lock. The lock file is left in place.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	err := unlockFile(l.f)
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f = nil
	return err
}
