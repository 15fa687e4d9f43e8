package workingcopy

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"

	"github.com/thiagokokada/vcs-go/internal/debounce"
)

const wakeDelay = 5 * time.Millisecond

// waitForGuard takes the cross-process guard of a persistent slot. The
// previous holder removes its lock marker and then touches the guard after
// unlocking it; events on either file wake the waiter, coalesced so a
// release costs one retry. The ticker covers filesystems without
// notifications.
func waitForGuard(ctx context.Context, guard *flock.Flock, dir string, poll time.Duration, logger *slog.Logger) error {
	locked, err := guard.TryLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", guard.Path(), err)
	}
	if locked {
		return nil
	}
	logger.Debug("working copy busy, waiting", slog.String("guard", guard.Path()))

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Debug("fsnotify unavailable, polling", slog.Any("error", err))
	} else {
		defer watcher.Close()
		if err := watcher.Add(dir); err != nil {
			logger.Debug("watch workspace dir failed, polling", slog.String("dir", dir), slog.Any("error", err))
		} else {
			events = watcher.Events
			errs = watcher.Errors
		}
	}

	guardPath := filepath.Clean(guard.Path())
	lockPath := strings.TrimSuffix(guardPath, guardSuffix) + lockSuffix
	wake := debounce.New(wakeDelay)
	defer wake.Stop()

	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrAcquireTimeout, ctx.Err())
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			name := filepath.Clean(ev.Name)
			if name == guardPath || name == lockPath {
				wake.Trigger()
			}
			continue
		case <-wake.C():
		case werr, ok := <-errs:
			if !ok {
				errs = nil
			} else {
				logger.Debug("fsnotify error", slog.Any("error", werr))
			}
			continue
		case <-ticker.C:
		}
		locked, err := guard.TryLock()
		if err != nil {
			return fmt.Errorf("lock %s: %w", guard.Path(), err)
		}
		if locked {
			return nil
		}
	}
}
