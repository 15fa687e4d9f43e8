// Package git implements the vcs Engine on top of go-git for repository
// reads and ref updates, and the git executable for working copies.
package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/thiagokokada/vcs-go/internal/git/gitcli"
	"github.com/thiagokokada/vcs-go/internal/vcs"
)

const (
	defaultAuthorName  = "vcs-go"
	defaultAuthorEmail = "vcs-go@localhost"
)

// Engine drives bare repositories addressed by a local path or file:// URL.
type Engine struct {
	authorName  string
	authorEmail string
	logger      *slog.Logger
}

type Option func(*Engine)

// WithAuthor sets the identity recorded on commits and tags.
func WithAuthor(name, email string) Option {
	return func(e *Engine) {
		if name != "" {
			e.authorName = name
		}
		if email != "" {
			e.authorEmail = email
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func NewEngine(opts ...Option) (*Engine, error) {
	if err := gitcli.EnsureMinGitVersion(); err != nil {
		return nil, err
	}
	e := &Engine{
		authorName:  defaultAuthorName,
		authorEmail: defaultAuthorEmail,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

var _ vcs.Engine = (*Engine)(nil)

func (e *Engine) signature() *object.Signature {
	return &object.Signature{Name: e.authorName, Email: e.authorEmail, When: time.Now()}
}

func (e *Engine) cliOptions() []gitcli.Option {
	return []gitcli.Option{
		gitcli.WithConfig("user.name", e.authorName),
		gitcli.WithConfig("user.email", e.authorEmail),
		gitcli.WithConfig("core.quotePath", "false"),
		gitcli.WithConfig("commit.gpgSign", "false"),
		gitcli.WithConfig("merge.renames", "false"),
	}
}

func (e *Engine) workingCopy(repo, folder string) (*gitcli.WorkingCopy, error) {
	remote := repo
	if !strings.HasPrefix(repo, "file://") {
		// clones record the remote verbatim, so relative paths would break
		// once git runs inside the working copy
		abs, err := filepath.Abs(repo)
		if err != nil {
			return nil, fmt.Errorf("resolve repository %s: %w", repo, err)
		}
		remote = abs
	}
	return gitcli.OpenWorkingCopy(folder, remote, e.cliOptions()...), nil
}

// repoPath turns a repository location into a filesystem path.
func repoPath(repo string) (string, error) {
	p := strings.TrimPrefix(repo, "file://")
	if p == "" {
		return "", errors.New("repository location not set")
	}
	return filepath.Abs(p)
}

func (e *Engine) open(repo string) (*gitlib.Repository, error) {
	p, err := repoPath(repo)
	if err != nil {
		return nil, err
	}
	r, err := gitlib.PlainOpen(p)
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", repo, err)
	}
	return r, nil
}

func (e *Engine) CheckoutBranch(ctx context.Context, repo, folder, branch string) error {
	e.logger.Debug("checkout branch", slog.String("folder", folder), slog.String("branch", branch))
	wc, err := e.workingCopy(repo, folder)
	if err != nil {
		return err
	}
	return wc.CheckoutBranch(ctx, branch)
}

func (e *Engine) CheckoutRevision(ctx context.Context, repo, folder, revision string) error {
	e.logger.Debug("checkout revision", slog.String("folder", folder), slog.String("revision", revision))
	wc, err := e.workingCopy(repo, folder)
	if err != nil {
		return err
	}
	return wc.CheckoutRevision(ctx, revision)
}

func (e *Engine) Commit(ctx context.Context, folder, branch, message string) (vcs.Commit, error) {
	wc := gitcli.OpenWorkingCopy(folder, "", e.cliOptions()...)
	c, err := wc.CommitAll(ctx, branch, message)
	if err != nil {
		return vcs.Commit{}, err
	}
	e.logger.Debug("committed", slog.String("branch", branch), slog.String("revision", c.Hash))
	return vcs.Commit{
		Revision: c.Hash,
		Author:   c.Author.Name,
		Email:    c.Author.Email,
		Message:  c.Message,
		Time:     c.Author.When,
		Parents:  c.ParentHashes,
	}, nil
}

func (e *Engine) Merge(ctx context.Context, folder, src, dst string) (vcs.MergeOutcome, error) {
	wc := gitcli.OpenWorkingCopy(folder, "", e.cliOptions()...)
	conflicts, err := wc.Merge(ctx, src)
	if err != nil {
		return vcs.MergeOutcome{}, err
	}
	e.logger.Debug("merge applied",
		slog.String("src", src),
		slog.String("dst", dst),
		slog.Int("conflicts", len(conflicts)),
	)
	return vcs.MergeOutcome{Conflicts: conflicts}, nil
}

func (e *Engine) Revert(ctx context.Context, folder string) error {
	return gitcli.OpenWorkingCopy(folder, "", e.cliOptions()...).Reset(ctx, "HEAD")
}
