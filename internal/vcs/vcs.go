// Package vcs is a backend-agnostic version control facade. Operations that
// need a checkout borrow a locked working copy from the workspace pool and
// drive an Engine through it.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/thiagokokada/vcs-go/internal/workingcopy"
)

const DefaultBranchName = "master"

type VCS struct {
	ws            *workingcopy.RepositoryWorkspace
	engine        Engine
	defaultBranch string
	logger        *slog.Logger
}

type Option func(*VCS)

func WithDefaultBranch(name string) Option {
	return func(v *VCS) {
		if name != "" {
			v.defaultBranch = name
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(v *VCS) {
		if logger != nil {
			v.logger = logger
		}
	}
}

func New(ws *workingcopy.RepositoryWorkspace, engine Engine, opts ...Option) *VCS {
	v := &VCS{
		ws:            ws,
		engine:        engine,
		defaultBranch: DefaultBranchName,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.With(slog.String("repo", ws.Location()))
	return v
}

// Workspace returns the repository workspace the facade borrows working
// copies from.
func (v *VCS) Workspace() *workingcopy.RepositoryWorkspace {
	return v.ws
}

func (v *VCS) DefaultBranch() string {
	return v.defaultBranch
}

func (v *VCS) String() string {
	return fmt.Sprintf("VCS [url=%s, workspace=%s]", v.ws.Location(), v.ws.Dir())
}

func (v *VCS) location() string {
	return v.ws.Location()
}

func (v *VCS) branchName(b BranchRef) string {
	return b.Resolve(v.defaultBranch)
}

// ReadOption tweaks read-style operations.
type ReadOption func(*readOptions)

type readOptions struct {
	revision string
}

// WithRevision pins the operation to revision instead of the branch head.
func WithRevision(revision string) ReadOption {
	return func(o *readOptions) {
		o.revision = revision
	}
}

func collectReadOptions(opts []ReadOption) readOptions {
	var o readOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// revisionFor returns the revision a read should use. The branch has to
// exist even when a revision is pinned.
func (v *VCS) revisionFor(ctx context.Context, branch string, o readOptions) (string, error) {
	tip, err := v.engine.ResolveBranch(ctx, v.location(), branch)
	if err != nil {
		return "", err
	}
	if o.revision != "" {
		return o.revision, nil
	}
	return tip, nil
}

// Branches returns the sorted branch names starting with prefix.
func (v *VCS) Branches(ctx context.Context, prefix string) ([]string, error) {
	all, err := v.engine.Branches(ctx, v.location())
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	var branches []string
	for _, name := range all {
		if strings.HasPrefix(name, prefix) {
			branches = append(branches, name)
		}
	}
	sort.Strings(branches)
	return slices.Compact(branches), nil
}

func (v *VCS) CreateBranch(ctx context.Context, src BranchRef, name, message string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("create branch: name not specified")
	}
	from := v.branchName(src)
	branches, err := v.engine.Branches(ctx, v.location())
	if err != nil {
		return fmt.Errorf("create branch %s: %w", name, err)
	}
	if slices.Contains(branches, name) {
		return fmt.Errorf("create branch %s: %w", name, ErrBranchExists)
	}
	if !slices.Contains(branches, from) {
		return fmt.Errorf("create branch %s from %s: %w", name, from, ErrBranchNotFound)
	}
	if err := v.engine.CreateBranch(ctx, v.location(), from, name); err != nil {
		return fmt.Errorf("create branch %s: %w", name, err)
	}
	v.logger.Info("branch created",
		slog.String("branch", name),
		slog.String("from", from),
		slog.String("message", message),
	)
	return nil
}

func (v *VCS) DeleteBranch(ctx context.Context, name, message string) error {
	branches, err := v.engine.Branches(ctx, v.location())
	if err != nil {
		return fmt.Errorf("delete branch %s: %w", name, err)
	}
	if !slices.Contains(branches, name) {
		return fmt.Errorf("delete branch %s: %w", name, ErrBranchNotFound)
	}
	if err := v.engine.DeleteBranch(ctx, v.location(), name); err != nil {
		return fmt.Errorf("delete branch %s: %w", name, err)
	}
	v.logger.Info("branch deleted", slog.String("branch", name), slog.String("message", message))
	return nil
}

// HeadCommit returns the tip of branch, or nil when the branch does not
// exist.
func (v *VCS) HeadCommit(ctx context.Context, branch BranchRef) (*Commit, error) {
	name := v.branchName(branch)
	tip, err := v.engine.ResolveBranch(ctx, v.location(), name)
	if errors.Is(err, ErrBranchNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("head of %s: %w", name, err)
	}
	commit, err := v.engine.CommitInfo(ctx, v.location(), tip)
	if err != nil {
		return nil, fmt.Errorf("head of %s: %w", name, err)
	}
	return &commit, nil
}

// Checkout materializes branch into dest, outside of the workspace pool.
func (v *VCS) Checkout(ctx context.Context, branch BranchRef, dest string, opts ...ReadOption) error {
	name := v.branchName(branch)
	o := collectReadOptions(opts)
	if _, err := v.engine.ResolveBranch(ctx, v.location(), name); err != nil {
		return fmt.Errorf("checkout %s: %w", name, err)
	}
	if o.revision != "" {
		if err := v.engine.CheckoutRevision(ctx, v.location(), dest, o.revision); err != nil {
			return fmt.Errorf("checkout %s@%s: %w", name, o.revision, err)
		}
		return nil
	}
	if err := v.engine.CheckoutBranch(ctx, v.location(), dest, name); err != nil {
		return fmt.Errorf("checkout %s: %w", name, err)
	}
	return nil
}

// withWorkingCopy runs fn on the persistent working copy of the repository
// with branch checked out. A failed checkout leaves the folder in an unknown
// state, so it is marked corrupted.
func (v *VCS) withWorkingCopy(ctx context.Context, branch string, fn func(wc *workingcopy.LockedWorkingCopy) error) error {
	wc, err := v.ws.Acquire(ctx)
	if err != nil {
		return err
	}
	defer v.release(wc)
	if err := v.engine.CheckoutBranch(ctx, v.location(), wc.Folder(), branch); err != nil {
		wc.SetCorrupted(true)
		return fmt.Errorf("checkout %s: %w", branch, err)
	}
	return fn(wc)
}

func (v *VCS) release(wc *workingcopy.LockedWorkingCopy) {
	if err := wc.Release(); err != nil {
		v.logger.Warn("release working copy failed", slog.String("folder", wc.Folder()), slog.Any("error", err))
	}
}
