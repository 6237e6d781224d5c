package store

import (
	"log/slog"
	"time"

	"github.com/gofrs/flock"

	"github.com/teamcomm/relaybot/internal/errors"
)

// Guard is a flock-based single-instance lock over the data directory. The
// durable stores assume a single process rewrites them; a second instance
// against the same data dir would silently lose writes.
type Guard struct {
	fileLock *flock.Flock
	path     string
}

type GuardConfig struct {
	LockTimeout time.Duration
	LockRetry   time.Duration
	MaxRetry    int
}

// AcquireGuard takes the data-dir lock, retrying until the timeout elapses.
func AcquireGuard(dataDir string, cfg GuardConfig) (*Guard, error) {
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = 10 * time.Second
	}
	if cfg.LockRetry <= 0 {
		cfg.LockRetry = 100 * time.Millisecond
	}
	if cfg.MaxRetry <= 0 {
		cfg.MaxRetry = 100
	}

	path := GuardPath(dataDir)
	fileLock := flock.New(path)

	deadline := time.Now().Add(cfg.LockTimeout)
	for attempt := 0; attempt < cfg.MaxRetry; attempt++ {
		locked, err := fileLock.TryLock()
		if err != nil {
			return nil, errors.Wrap(err, "acquire data dir lock")
		}
		if locked {
			slog.Debug("Data dir lock acquired", "path", path)
			return &Guard{fileLock: fileLock, path: path}, nil
		}
		if time.Now().After(deadline) {
			break
		}
		time.Sleep(cfg.LockRetry)
	}

	return nil, errors.Transient("data dir is locked by another instance: " + path)
}

// Release drops the lock. Safe to call once at shutdown.
func (g *Guard) Release() {
	if g == nil || g.fileLock == nil {
		return
	}
	if err := g.fileLock.Unlock(); err != nil {
		slog.Warn("Failed to release data dir lock", "path", g.path, "error", err)
	}
}
