package vcs

import "context"

// Engine is the storage backend the facade drives. Repository-level calls
// take the repository location; working-copy calls take a checkout folder
// obtained from the workspace pool.
//
// Implementations report the package sentinel errors wrapped with %w.
type Engine interface {
	CheckoutBranch(ctx context.Context, repo, folder, branch string) error
	CheckoutRevision(ctx context.Context, repo, folder, revision string) error
	// Commit stages every change in folder, records a commit and publishes
	// it to branch.
	Commit(ctx context.Context, folder, branch, message string) (Commit, error)
	Merge(ctx context.Context, folder, src, dst string) (MergeOutcome, error)
	// Revert discards an in-progress merge and any local modification.
	Revert(ctx context.Context, folder string) error

	Branches(ctx context.Context, repo string) ([]string, error)
	CreateBranch(ctx context.Context, repo, from, name string) error
	DeleteBranch(ctx context.Context, repo, name string) error

	Tags(ctx context.Context, repo string) ([]Tag, error)
	CreateTag(ctx context.Context, repo, name, message, revision string) (Tag, error)
	DeleteTag(ctx context.Context, repo, name string) error

	// Diff returns path changes going from the tip of from to the tip of to.
	Diff(ctx context.Context, repo, from, to string) ([]FileChange, error)
	// Log returns the first-parent lineage of branch, newest first.
	Log(ctx context.Context, repo, branch string) ([]Commit, error)
	ResolveBranch(ctx context.Context, repo, branch string) (string, error)
	CommitInfo(ctx context.Context, repo, revision string) (Commit, error)
	FileContent(ctx context.Context, repo, revision, path string) ([]byte, error)
}
