package tools

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ragindex/mcp-server/internal/store"
)

const (
	lockTimeout = 5 * time.Second        // Max time a rebuild waits for the lock
	reloadWait  = 500 * time.Millisecond // Max time a search waits before reloading
)

// indexLock is the held inter-process lock, nil when not held
var indexLock *store.Lock

// acquireLock takes the inter-process index lock, waiting up to lockTimeout
// for another process to finish its rebuild.
func acquireLock(ctx context.Context) error {
	if indexLock != nil {
		log.Debug("Index lock already held by this process")
		return nil
	}

	startTime := time.Now()
	lock, err := store.AcquireLock(ctx, indexPath(), lockTimeout)
	if err != nil {
		return err
	}

	indexLock = lock
	log.Debug("Index lock acquired", "path", lock.Path(), "waited", time.Since(startTime).Round(time.Millisecond))
	return nil
}

// releaseLock releases the index lock if this process holds it
func releaseLock() error {
	if indexLock == nil {
		return nil
	}

	err := indexLock.Release()
	indexLock = nil
	if err != nil {
		return err
	}

	log.Debug("Index lock released")
	return nil
}
