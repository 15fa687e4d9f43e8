package gitcli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const remoteName = "origin"

// WorkingCopy is a non-bare clone of remote living in a folder.
type WorkingCopy struct {
	*Runner
	remote string
	opts   []Option
}

func OpenWorkingCopy(folder, remote string, opts ...Option) *WorkingCopy {
	return &WorkingCopy{Runner: New(folder, opts...), remote: remote, opts: opts}
}

func (w *WorkingCopy) Folder() string {
	return w.dir
}

func remoteBranch(branch string) string {
	return "refs/remotes/" + remoteName + "/" + branch
}

// Sync clones the remote into the folder if needed and fetches every
// branch. A folder that is not a clone of the remote is replaced.
func (w *WorkingCopy) Sync(ctx context.Context) error {
	reuse, err := w.clonedFromRemote(ctx)
	if err != nil {
		return err
	}
	if !reuse {
		if err := os.RemoveAll(w.dir); err != nil {
			return fmt.Errorf("clear working copy: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(w.dir), 0o755); err != nil {
			return fmt.Errorf("create working copy parent: %w", err)
		}
		cloner := New("", w.opts...)
		if _, err := cloner.Run(ctx, []string{"clone", "--quiet", "--no-checkout", "--origin", remoteName, w.remote, w.dir}, "git clone"); err != nil {
			return err
		}
		return nil
	}
	_, err = w.Run(ctx, []string{
		"fetch", "--quiet", "--prune", "--force", remoteName,
		"+refs/heads/*:refs/remotes/" + remoteName + "/*",
	}, "git fetch")
	return err
}

// clonedFromRemote reports whether the folder is a clone whose origin is
// the remote of this working copy.
func (w *WorkingCopy) clonedFromRemote(ctx context.Context) (bool, error) {
	if _, err := os.Stat(filepath.Join(w.dir, ".git")); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("inspect working copy: %w", err)
	}
	if w.remote == "" {
		return true, nil
	}
	out, err := w.Run(ctx, []string{"remote", "get-url", remoteName}, "git remote get-url")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, nil
	}
	return sameRemote(strings.TrimSpace(out), w.remote), nil
}

func sameRemote(a, b string) bool {
	return strings.TrimRight(a, "/") == strings.TrimRight(b, "/")
}

// CheckoutBranch makes the folder an exact copy of the remote branch.
func (w *WorkingCopy) CheckoutBranch(ctx context.Context, branch string) error {
	branch = strings.TrimSpace(branch)
	if branch == "" {
		return fmt.Errorf("branch not specified")
	}
	if err := w.Sync(ctx); err != nil {
		return err
	}
	w.abortMerge(ctx)
	if _, err := w.Run(ctx, []string{"checkout", "--quiet", "--force", "-B", branch, remoteBranch(branch)}, "git checkout"); err != nil {
		return err
	}
	return w.Reset(ctx, remoteBranch(branch))
}

// CheckoutRevision detaches HEAD at revision.
func (w *WorkingCopy) CheckoutRevision(ctx context.Context, revision string) error {
	if err := w.Sync(ctx); err != nil {
		return err
	}
	w.abortMerge(ctx)
	if _, err := w.Run(ctx, []string{"checkout", "--quiet", "--force", "--detach", revision}, "git checkout"); err != nil {
		return err
	}
	return w.Reset(ctx, "HEAD")
}

// Reset discards local modifications, untracked files and any merge in
// progress, then verifies the folder is clean.
func (w *WorkingCopy) Reset(ctx context.Context, target string) error {
	w.abortMerge(ctx)
	if _, err := w.Run(ctx, []string{"reset", "--quiet", "--hard", target}, "git reset"); err != nil {
		return err
	}
	if _, err := w.Run(ctx, []string{"clean", "-ffdxq"}, "git clean"); err != nil {
		return err
	}
	st, err := w.Status(ctx)
	if err != nil {
		return err
	}
	if !st.Clean() {
		return fmt.Errorf("git reset: working copy still dirty (%d unmerged)", len(st.Unmerged))
	}
	return nil
}

// Merge starts a no-fast-forward merge of the remote src branch without
// committing it. It returns the conflicting paths, if any.
func (w *WorkingCopy) Merge(ctx context.Context, src string) ([]string, error) {
	_, mergeErr := w.Run(ctx, []string{"merge", "--no-ff", "--no-commit", "--no-edit", remoteBranch(src)}, "git merge")
	st, err := w.Status(ctx)
	if err != nil {
		return nil, errors.Join(mergeErr, err)
	}
	if len(st.Unmerged) > 0 {
		return st.Unmerged, nil
	}
	if mergeErr != nil {
		return nil, mergeErr
	}
	return nil, nil
}

// CommitAll stages everything, commits and pushes HEAD to branch.
func (w *WorkingCopy) CommitAll(ctx context.Context, branch, message string) (Commit, error) {
	if _, err := w.Run(ctx, []string{"add", "--all"}, "git add"); err != nil {
		return Commit{}, err
	}
	if _, err := w.Run(ctx, []string{
		"commit", "--quiet", "--no-verify", "--allow-empty", "--allow-empty-message",
		"-m", message,
	}, "git commit"); err != nil {
		return Commit{}, err
	}
	if _, err := w.Run(ctx, []string{"push", "--quiet", remoteName, "HEAD:refs/heads/" + branch}, "git push"); err != nil {
		return Commit{}, err
	}
	return w.HeadCommit(ctx)
}

func (w *WorkingCopy) abortMerge(ctx context.Context) {
	if _, err := os.Stat(filepath.Join(w.dir, ".git", "MERGE_HEAD")); err != nil {
		return
	}
	// reset --hard below covers a failed abort
	_, _ = w.Run(ctx, []string{"merge", "--abort"}, "git merge --abort")
}
