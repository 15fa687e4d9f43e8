package vcs

import (
	"context"
	"fmt"
	"slices"
)

// Log returns up to limit commits of branch, newest first. A limit of zero
// returns the whole lineage.
func (v *VCS) Log(ctx context.Context, branch BranchRef, limit int) ([]Commit, error) {
	lineage, err := v.lineage(ctx, branch)
	if err != nil {
		return nil, err
	}
	return truncate(lineage, limit), nil
}

func (v *VCS) CommitMessages(ctx context.Context, branch BranchRef, limit int) ([]string, error) {
	commits, err := v.Log(ctx, branch, limit)
	if err != nil {
		return nil, err
	}
	messages := make([]string, len(commits))
	for i, c := range commits {
		messages[i] = c.Message
	}
	return messages, nil
}

// CommitsRange returns the commits of branch strictly after start up to and
// including end, oldest first. An empty start begins at the branch root and
// an empty end stops at the head.
func (v *VCS) CommitsRange(ctx context.Context, branch BranchRef, start, end string) ([]Commit, error) {
	lineage, err := v.lineage(ctx, branch)
	if err != nil {
		return nil, err
	}
	return commitsBetween(lineage, start, end)
}

// CommitsWalk walks the lineage of branch from start in the given
// direction. Asc goes toward the head (starting at the root when start is
// empty); Desc goes toward the root (starting at the head). The first
// element is start itself. A limit of zero means unlimited.
func (v *VCS) CommitsWalk(ctx context.Context, branch BranchRef, start string, dir WalkDirection, limit int) ([]Commit, error) {
	lineage, err := v.lineage(ctx, branch)
	if err != nil {
		return nil, err
	}
	return walkLineage(lineage, start, dir, limit)
}

func (v *VCS) lineage(ctx context.Context, branch BranchRef) ([]Commit, error) {
	name := v.branchName(branch)
	commits, err := v.engine.Log(ctx, v.location(), name)
	if err != nil {
		return nil, fmt.Errorf("log %s: %w", name, err)
	}
	return commits, nil
}

// commitsBetween works on a newest-first lineage.
func commitsBetween(lineage []Commit, start, end string) ([]Commit, error) {
	chrono := slices.Clone(lineage)
	slices.Reverse(chrono)

	from := 0
	if start != "" {
		i, err := indexOf(chrono, start)
		if err != nil {
			return nil, err
		}
		from = i + 1
	}
	to := len(chrono) - 1
	if end != "" {
		i, err := indexOf(chrono, end)
		if err != nil {
			return nil, err
		}
		to = i
	}
	if from > to {
		return []Commit{}, nil
	}
	return chrono[from : to+1], nil
}

func walkLineage(lineage []Commit, start string, dir WalkDirection, limit int) ([]Commit, error) {
	ordered := slices.Clone(lineage)
	if dir == Asc {
		slices.Reverse(ordered)
	}
	from := 0
	if start != "" {
		i, err := indexOf(ordered, start)
		if err != nil {
			return nil, err
		}
		from = i
	}
	return truncate(ordered[from:], limit), nil
}

func indexOf(commits []Commit, revision string) (int, error) {
	i := slices.IndexFunc(commits, func(c Commit) bool {
		return c.Revision == revision
	})
	if i < 0 {
		return 0, fmt.Errorf("%s: %w", revision, ErrRevisionNotFound)
	}
	return i, nil
}

func truncate(commits []Commit, limit int) []Commit {
	if limit > 0 && len(commits) > limit {
		return commits[:limit]
	}
	return commits
}
