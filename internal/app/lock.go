package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrRunInProgress is returned when another run holds the lock.
var ErrRunInProgress = errors.New("a harvesting run is already in progress")

// RunLock is a host-wide advisory lock around a run.
type RunLock struct {
	fl *flock.Flock
}

func NewRunLock(path string) (*RunLock, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create lock dir: %w", err)
		}
	}
	return &RunLock{fl: flock.New(path)}, nil
}

// TryLock acquires the lock without blocking.
func (l *RunLock) TryLock() error {
	ok, err := l.fl.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return ErrRunInProgress
	}
	return nil
}

func (l *RunLock) Unlock() error {
	return l.fl.Unlock()
}
