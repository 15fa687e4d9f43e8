package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/thiagokokada/vcs-go/internal/vcs"
)

// Log follows first parents from the tip of branch down to the root, so
// commits merged in from other branches are left out.
func (e *Engine) Log(ctx context.Context, repo, branch string) ([]vcs.Commit, error) {
	r, err := e.open(repo)
	if err != nil {
		return nil, err
	}
	ref, err := branchRef(r, branch)
	if err != nil {
		return nil, err
	}
	var commits []vcs.Commit
	hash := ref.Hash()
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := r.CommitObject(hash)
		if err != nil {
			return nil, fmt.Errorf("load commit %s: %w", hash, err)
		}
		commits = append(commits, toCommit(c))
		if len(c.ParentHashes) == 0 {
			return commits, nil
		}
		hash = c.ParentHashes[0]
	}
}

func (e *Engine) CommitInfo(ctx context.Context, repo, revision string) (vcs.Commit, error) {
	r, err := e.open(repo)
	if err != nil {
		return vcs.Commit{}, err
	}
	hash, err := resolveRevision(r, revision)
	if err != nil {
		return vcs.Commit{}, err
	}
	c, err := r.CommitObject(hash)
	if err != nil {
		return vcs.Commit{}, fmt.Errorf("load commit %s: %w", hash, err)
	}
	return toCommit(c), nil
}

func (e *Engine) FileContent(ctx context.Context, repo, revision, path string) ([]byte, error) {
	r, err := e.open(repo)
	if err != nil {
		return nil, err
	}
	c, err := commitAt(r, revision)
	if err != nil {
		return nil, err
	}
	f, err := c.File(path)
	if errors.Is(err, object.ErrFileNotFound) || errors.Is(err, object.ErrDirectoryNotFound) {
		return nil, fmt.Errorf("%s: %w", path, vcs.ErrFileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return readFile(f)
}

// Diff compares the tip trees of two branches. Rename detection stays off.
func (e *Engine) Diff(ctx context.Context, repo, from, to string) ([]vcs.FileChange, error) {
	r, err := e.open(repo)
	if err != nil {
		return nil, err
	}
	fromTree, err := branchTree(r, from)
	if err != nil {
		return nil, err
	}
	toTree, err := branchTree(r, to)
	if err != nil {
		return nil, err
	}
	changes, err := object.DiffTreeWithOptions(ctx, fromTree, toTree, &object.DiffTreeOptions{DetectRenames: false})
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}
	res := make([]vcs.FileChange, 0, len(changes))
	for _, change := range changes {
		before, after, err := change.Files()
		if err != nil {
			return nil, fmt.Errorf("load change %s: %w", change, err)
		}
		fc := vcs.FileChange{Path: changePath(change)}
		if before != nil {
			content, err := readFile(before)
			if err != nil {
				return nil, err
			}
			fc.Before = &vcs.FileState{Content: content}
		}
		if after != nil {
			content, err := readFile(after)
			if err != nil {
				return nil, err
			}
			fc.After = &vcs.FileState{Content: content}
		}
		res = append(res, fc)
	}
	return res, nil
}

func changePath(change *object.Change) string {
	if change.To.Name != "" {
		return change.To.Name
	}
	return change.From.Name
}

func branchTree(r *gitlib.Repository, branch string) (*object.Tree, error) {
	ref, err := branchRef(r, branch)
	if err != nil {
		return nil, err
	}
	c, err := r.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("load commit %s: %w", ref.Hash(), err)
	}
	tree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("load tree of %s: %w", branch, err)
	}
	return tree, nil
}

func commitAt(r *gitlib.Repository, revision string) (*object.Commit, error) {
	hash, err := resolveRevision(r, revision)
	if err != nil {
		return nil, err
	}
	c, err := r.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("load commit %s: %w", hash, err)
	}
	return c, nil
}

func readFile(f *object.File) ([]byte, error) {
	rd, err := f.Reader()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rd.Close()
	content, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return content, nil
}

func toCommit(c *object.Commit) vcs.Commit {
	parents := make([]string, len(c.ParentHashes))
	for i, p := range c.ParentHashes {
		parents[i] = p.String()
	}
	return vcs.Commit{
		Revision: c.Hash.String(),
		Author:   c.Author.Name,
		Email:    c.Author.Email,
		Message:  strings.TrimRight(c.Message, "\n"),
		Time:     c.Author.When,
		Parents:  parents,
	}
}

