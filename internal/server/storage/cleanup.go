package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CleanupService periodically removes upload temp files that were left in
// the shared directory by a crash or a killed process.
type CleanupService struct {
	dir      string
	maxAge   time.Duration
	interval time.Duration
	done     chan struct{}
}

// NewCleanupService creates a sweeper for dir. Temp files younger than
// maxAge are assumed to belong to an upload still in progress.
func NewCleanupService(dir string, maxAge, interval time.Duration) *CleanupService {
	return &CleanupService{
		dir:      dir,
		maxAge:   maxAge,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins the cleanup loop in a background goroutine.
func (cs *CleanupService) Start(ctx context.Context) {
	slog.Info("cleanup service started", "interval", cs.interval, "max_age", cs.maxAge)

	go func() {
		ticker := time.NewTicker(cs.interval)
		defer ticker.Stop()

		cs.Sweep(time.Now())

		for {
			select {
			case <-ticker.C:
				cs.Sweep(time.Now())
			case <-ctx.Done():
				slog.Info("cleanup service stopping")
				close(cs.done)
				return
			}
		}
	}()
}

// Wait blocks until the cleanup service has fully stopped.
func (cs *CleanupService) Wait() {
	<-cs.done
}

// Sweep removes stale temp files as of now and reports how many were
// removed and how many could not be.
func (cs *CleanupService) Sweep(now time.Time) (cleaned, failed int) {
	ents, err := os.ReadDir(cs.dir)
	if err != nil {
		slog.Error("failed to read shared directory", "dir", cs.dir, "error", err)
		return 0, 0
	}

	cutoff := now.Add(-cs.maxAge)
	for _, e := range ents {
		if e.IsDir() || !strings.HasPrefix(e.Name(), TempPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		p := filepath.Join(cs.dir, e.Name())
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			slog.Error("failed to remove stale temp file", "path", p, "error", err)
			failed++
			continue
		}
		cleaned++
		slog.Info("removed stale temp file", "path", p, "modified", info.ModTime())
	}

	if cleaned > 0 || failed > 0 {
		slog.Info("cleanup cycle complete", "cleaned", cleaned, "failed", failed)
	}
	return cleaned, failed
}
