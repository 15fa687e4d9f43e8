package git

import (
	"context"
	"fmt"
	"log/slog"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const initialCommitMessage = "initial commit"

// InitRepository creates a bare repository at path whose default branch
// holds a single empty root commit, so branches can be created from it
// right away.
func (e *Engine) InitRepository(ctx context.Context, path, defaultBranch string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	branch := plumbing.NewBranchReferenceName(defaultBranch)
	r, err := gitlib.PlainInitWithOptions(path, &gitlib.PlainInitOptions{
		InitOptions: gitlib.InitOptions{DefaultBranch: branch},
		Bare:        true,
	})
	if err != nil {
		return fmt.Errorf("init repository %s: %w", path, err)
	}

	treeObj := r.Storer.NewEncodedObject()
	if err := (&object.Tree{}).Encode(treeObj); err != nil {
		return fmt.Errorf("encode empty tree: %w", err)
	}
	treeHash, err := r.Storer.SetEncodedObject(treeObj)
	if err != nil {
		return fmt.Errorf("store empty tree: %w", err)
	}

	sig := e.signature()
	commit := &object.Commit{
		Author:    *sig,
		Committer: *sig,
		Message:   initialCommitMessage + "\n",
		TreeHash:  treeHash,
	}
	commitObj := r.Storer.NewEncodedObject()
	if err := commit.Encode(commitObj); err != nil {
		return fmt.Errorf("encode initial commit: %w", err)
	}
	commitHash, err := r.Storer.SetEncodedObject(commitObj)
	if err != nil {
		return fmt.Errorf("store initial commit: %w", err)
	}
	if err := r.Storer.SetReference(plumbing.NewHashReference(branch, commitHash)); err != nil {
		return fmt.Errorf("set %s: %w", branch.Short(), err)
	}
	e.logger.Info("repository initialized",
		slog.String("path", path),
		slog.String("branch", defaultBranch),
		slog.String("commit", commitHash.String()),
	)
	return nil
}
