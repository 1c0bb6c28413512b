package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// LockFile sits next to the index directory and serializes writers across
// processes: the MCP server and the indexer CLI take it around every rebuild.
const LockFile = "index.lock"

const lockRetryWait = 100 * time.Millisecond

// Lock is a held inter-process index lock
type Lock struct {
	file *flock.Flock
}

// LockPath returns the lock file guarding the index at indexPath
func LockPath(indexPath string) string {
	return filepath.Join(filepath.Dir(indexPath), LockFile)
}

// AcquireLock takes the lock guarding the index at indexPath, waiting up to
// timeout for another process to release it.
func AcquireLock(ctx context.Context, indexPath string, timeout time.Duration) (*Lock, error) {
	lockPath := LockPath(indexPath)
	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	startTime := time.Now()
	file := flock.New(lockPath)
	locked, err := file.TryLockContext(lockCtx, lockRetryWait)
	if err != nil {
		return nil, fmt.Errorf("timeout waiting for index lock after %v: %w", time.Since(startTime).Round(time.Millisecond), err)
	}
	if !locked {
		return nil, fmt.Errorf("index lock %s is held by another process", lockPath)
	}
	return &Lock{file: file}, nil
}

// Path returns the lock file location
func (l *Lock) Path() string {
	return l.file.Path()
}

// Release unlocks the index
func (l *Lock) Release() error {
	if err := l.file.Unlock(); err != nil {
		return fmt.Errorf("failed to release index lock: %w", err)
	}
	return nil
}
