package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/thiagokokada/vcs-go/internal/vcs"
)

// Branches returns the sorted local branch names of the repository.
func (e *Engine) Branches(ctx context.Context, repo string) ([]string, error) {
	r, err := e.open(repo)
	if err != nil {
		return nil, err
	}
	iter, err := r.Branches()
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer iter.Close()
	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func (e *Engine) CreateBranch(ctx context.Context, repo, from, name string) error {
	r, err := e.open(repo)
	if err != nil {
		return err
	}
	src, err := branchRef(r, from)
	if err != nil {
		return err
	}
	if _, err := branchRef(r, name); err == nil {
		return fmt.Errorf("%s: %w", name, vcs.ErrBranchExists)
	} else if !errors.Is(err, vcs.ErrBranchNotFound) {
		return err
	}
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), src.Hash())
	if err := r.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("create branch %s: %w", name, err)
	}
	e.logger.Debug("branch ref created", slog.String("branch", name), slog.String("hash", src.Hash().String()))
	return nil
}

func (e *Engine) DeleteBranch(ctx context.Context, repo, name string) error {
	r, err := e.open(repo)
	if err != nil {
		return err
	}
	if _, err := branchRef(r, name); err != nil {
		return err
	}
	if err := r.Storer.RemoveReference(plumbing.NewBranchReferenceName(name)); err != nil {
		return fmt.Errorf("delete branch %s: %w", name, err)
	}
	return nil
}

// ResolveBranch returns the hash at the tip of branch.
func (e *Engine) ResolveBranch(ctx context.Context, repo, branch string) (string, error) {
	r, err := e.open(repo)
	if err != nil {
		return "", err
	}
	ref, err := branchRef(r, branch)
	if err != nil {
		return "", err
	}
	return ref.Hash().String(), nil
}

func branchRef(r *gitlib.Repository, name string) (*plumbing.Reference, error) {
	ref, err := r.Reference(plumbing.NewBranchReferenceName(name), true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, fmt.Errorf("%s: %w", name, vcs.ErrBranchNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve branch %s: %w", name, err)
	}
	return ref, nil
}
