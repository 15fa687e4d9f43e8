package workingcopy

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// LockedWorkingCopy is an exclusively held checkout folder. Callers must
// Release it once done, typically with defer.
type LockedWorkingCopy struct {
	folder   string
	lockFile string
	temp     bool

	mu        sync.Mutex
	corrupted bool
	released  bool

	// unlock drops the slot guards after the files are cleaned up.
	unlock     func()
	onReleased func(corrupted bool)
	logger     *slog.Logger
}

func (c *LockedWorkingCopy) Folder() string {
	return c.folder
}

func (c *LockedWorkingCopy) LockFile() string {
	return c.lockFile
}

// Temporary reports whether the copy was handed out by AcquireTemp.
func (c *LockedWorkingCopy) Temporary() bool {
	return c.temp
}

func (c *LockedWorkingCopy) Corrupted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.corrupted
}

// SetCorrupted marks the folder as unusable; Release then deletes it.
func (c *LockedWorkingCopy) SetCorrupted(corrupted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.corrupted = corrupted
}

// Release removes the lock file and, for corrupted or temporary copies, the
// folder itself. It is safe to call more than once.
func (c *LockedWorkingCopy) Release() error {
	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return nil
	}
	c.released = true
	corrupted := c.corrupted
	c.mu.Unlock()

	var errs []error
	if corrupted || c.temp {
		if err := os.RemoveAll(c.folder); err != nil {
			errs = append(errs, fmt.Errorf("remove working copy %s: %w", c.folder, err))
		}
	}
	if err := os.Remove(c.lockFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		errs = append(errs, fmt.Errorf("remove lock file %s: %w", c.lockFile, err))
	}
	if corrupted {
		c.logger.Warn("corrupted working copy discarded", slog.String("folder", c.folder))
	} else {
		c.logger.Debug("working copy released", slog.String("folder", c.folder))
	}
	if c.onReleased != nil {
		c.onReleased(corrupted)
	}
	if c.unlock != nil {
		c.unlock()
	}
	return errors.Join(errs...)
}
