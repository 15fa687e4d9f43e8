// Package workingcopy manages checkout folders shared between callers of
// the same repository location.
package workingcopy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

const (
	slotName    = "wc"
	lockSuffix  = ".lock"
	guardSuffix = ".flock"
	tempPrefix  = "tmp-"

	defaultPollInterval    = 200 * time.Millisecond
	defaultRegistryTimeout = 5 * time.Second
)

var ErrAcquireTimeout = errors.New("timed out acquiring working copy")

// Workspace is the root directory holding one subdirectory per repository
// location.
type Workspace struct {
	root         string
	logger       *slog.Logger
	pollInterval time.Duration
	waitTimeout  time.Duration
	registry     *registry

	mu    sync.Mutex
	repos map[string]*RepositoryWorkspace
}

type Option func(*Workspace)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithPollInterval sets how often a blocked Acquire retries when no
// filesystem event arrives.
func WithPollInterval(d time.Duration) Option {
	return func(w *Workspace) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithAcquireTimeout bounds how long Acquire waits for a busy working copy.
// Work done after the copy is handed out is not affected.
func WithAcquireTimeout(d time.Duration) Option {
	return func(w *Workspace) {
		if d > 0 {
			w.waitTimeout = d
		}
	}
}

func NewWorkspace(root string, opts ...Option) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace root: %w", err)
	}
	w := &Workspace{
		root:         abs,
		logger:       slog.Default(),
		pollInterval: defaultPollInterval,
		repos:        map[string]*RepositoryWorkspace{},
	}
	for _, opt := range opts {
		opt(w)
	}
	w.registry = &registry{path: filepath.Join(abs, registryFile), timeout: defaultRegistryTimeout}
	return w, nil
}

func (w *Workspace) Root() string {
	return w.root
}

// Repository returns the workspace bound to location. Repeated calls with
// the same location return the same value.
func (w *Workspace) Repository(location string) *RepositoryWorkspace {
	w.mu.Lock()
	defer w.mu.Unlock()
	if r, ok := w.repos[location]; ok {
		return r
	}
	r := &RepositoryWorkspace{
		ws:       w,
		location: location,
		dir:      filepath.Join(w.root, dirNameForLocation(location)),
		sem:      semaphore.NewWeighted(1),
	}
	w.repos[location] = r
	return r
}

// WorkingCopies lists the persistent working copies known to the registry.
func (w *Workspace) WorkingCopies() ([]Record, error) {
	return w.registry.list()
}

// Prune deletes idle persistent working copies and returns their folders.
// Copies currently held by anyone are left alone.
func (w *Workspace) Prune(ctx context.Context) ([]string, error) {
	records, err := w.registry.list()
	if err != nil {
		return nil, err
	}
	var pruned []string
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return pruned, err
		}
		guard := flock.New(rec.Folder + guardSuffix)
		locked, err := guard.TryLock()
		if err != nil || !locked {
			continue
		}
		rmErr := errors.Join(
			os.RemoveAll(rec.Folder),
			removeIfExists(rec.Folder+lockSuffix),
		)
		if err := guard.Unlock(); err != nil {
			w.logger.Warn("unlock guard failed", slog.String("folder", rec.Folder), slog.Any("error", err))
		}
		if rmErr != nil {
			return pruned, fmt.Errorf("prune %s: %w", rec.Folder, rmErr)
		}
		if err := w.registry.remove(rec.Folder); err != nil {
			return pruned, err
		}
		w.logger.Info("pruned working copy", slog.String("location", rec.Location), slog.String("folder", rec.Folder))
		pruned = append(pruned, rec.Folder)
	}
	return pruned, nil
}

// RepositoryWorkspace hands out working copies of a single repository
// location.
type RepositoryWorkspace struct {
	ws       *Workspace
	location string
	dir      string
	sem      *semaphore.Weighted
}

func (r *RepositoryWorkspace) Location() string {
	return r.location
}

// Dir is the directory holding this location's working copies.
func (r *RepositoryWorkspace) Dir() string {
	return r.dir
}

func (r *RepositoryWorkspace) String() string {
	return fmt.Sprintf("%s (%s)", r.location, r.dir)
}

// Acquire blocks until the persistent working copy of this location is free
// and returns it locked. The folder may or may not contain a checkout.
func (r *RepositoryWorkspace) Acquire(ctx context.Context) (*LockedWorkingCopy, error) {
	waitCtx := ctx
	if r.ws.waitTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, r.ws.waitTimeout)
		defer cancel()
	}
	if err := r.sem.Acquire(waitCtx, 1); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAcquireTimeout, err)
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		r.sem.Release(1)
		return nil, fmt.Errorf("create repository workspace: %w", err)
	}

	folder := filepath.Join(r.dir, slotName)
	guard := flock.New(folder + guardSuffix)
	if err := waitForGuard(waitCtx, guard, r.dir, r.ws.pollInterval, r.ws.logger); err != nil {
		r.sem.Release(1)
		return nil, err
	}
	unlock := func() {
		if err := guard.Unlock(); err != nil {
			r.ws.logger.Warn("unlock guard failed", slog.String("guard", guard.Path()), slog.Any("error", err))
		}
		// Waiters in other processes watch the guard for this.
		touch := time.Now()
		if err := os.Chtimes(guard.Path(), touch, touch); err != nil {
			r.ws.logger.Debug("touch guard failed", slog.String("guard", guard.Path()), slog.Any("error", err))
		}
		r.sem.Release(1)
	}

	lockFile := folder + lockSuffix
	if _, err := os.Stat(lockFile); err == nil {
		// The previous holder never released, so the folder may be half
		// written.
		r.ws.logger.Warn("stale lock found, discarding working copy",
			slog.String("location", r.location),
			slog.String("folder", folder),
		)
		if err := os.RemoveAll(folder); err != nil {
			unlock()
			return nil, fmt.Errorf("remove stale working copy: %w", err)
		}
	}
	now := time.Now()
	if err := writeLockFile(lockFile, now); err != nil {
		unlock()
		return nil, err
	}
	if err := r.ws.registry.acquired(r.location, folder, now); err != nil {
		r.ws.logger.Warn("registry update failed", slog.String("folder", folder), slog.Any("error", err))
	}
	r.ws.logger.Debug("working copy acquired", slog.String("location", r.location), slog.String("folder", folder))

	return &LockedWorkingCopy{
		folder:   folder,
		lockFile: lockFile,
		unlock:   unlock,
		onReleased: func(corrupted bool) {
			if err := r.ws.registry.released(folder, corrupted, time.Now()); err != nil {
				r.ws.logger.Warn("registry update failed", slog.String("folder", folder), slog.Any("error", err))
			}
		},
		logger: r.ws.logger,
	}, nil
}

// AcquireTemp returns a fresh, uniquely named working copy that nobody else
// can see. It is always deleted on Release.
func (r *RepositoryWorkspace) AcquireTemp(ctx context.Context) (*LockedWorkingCopy, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create repository workspace: %w", err)
	}
	folder := filepath.Join(r.dir, tempPrefix+uuid.NewString())
	lockFile := folder + lockSuffix
	if err := writeLockFile(lockFile, time.Now()); err != nil {
		return nil, err
	}
	r.ws.logger.Debug("temporary working copy acquired", slog.String("location", r.location), slog.String("folder", folder))
	return &LockedWorkingCopy{
		folder:   folder,
		lockFile: lockFile,
		temp:     true,
		logger:   r.ws.logger,
	}, nil
}

func writeLockFile(path string, at time.Time) error {
	content := fmt.Sprintf("pid=%d\nacquired=%s\n", os.Getpid(), at.Format(time.RFC3339Nano))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("create lock file: %w", err)
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
