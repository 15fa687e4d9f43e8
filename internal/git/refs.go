package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/thiagokokada/vcs-go/internal/vcs"
)

// Tags lists every tag. Annotated tags carry their own message and creation
// time; lightweight tags use the commit's.
func (e *Engine) Tags(ctx context.Context, repo string) ([]vcs.Tag, error) {
	r, err := e.open(repo)
	if err != nil {
		return nil, err
	}
	iter, err := r.Tags()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer iter.Close()
	var tags []vcs.Tag
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		tag, ok, err := tagFromRef(r, ref)
		if err != nil {
			return err
		}
		if ok {
			tags = append(tags, tag)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

func (e *Engine) CreateTag(ctx context.Context, repo, name, message, revision string) (vcs.Tag, error) {
	r, err := e.open(repo)
	if err != nil {
		return vcs.Tag{}, err
	}
	hash, err := resolveRevision(r, revision)
	if err != nil {
		return vcs.Tag{}, err
	}
	var opts *gitlib.CreateTagOptions
	if message != "" {
		opts = &gitlib.CreateTagOptions{Tagger: e.signature(), Message: message}
	}
	ref, err := r.CreateTag(name, hash, opts)
	if errors.Is(err, gitlib.ErrTagExists) {
		return vcs.Tag{}, fmt.Errorf("%s: %w", name, vcs.ErrTagExists)
	}
	if err != nil {
		return vcs.Tag{}, fmt.Errorf("create tag %s: %w", name, err)
	}
	tag, _, err := tagFromRef(r, ref)
	return tag, err
}

func (e *Engine) DeleteTag(ctx context.Context, repo, name string) error {
	r, err := e.open(repo)
	if err != nil {
		return err
	}
	err = r.DeleteTag(name)
	if errors.Is(err, gitlib.ErrTagNotFound) {
		return fmt.Errorf("%s: %w", name, vcs.ErrTagNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete tag %s: %w", name, err)
	}
	return nil
}

// tagFromRef peels ref down to its commit. Tags pointing at anything other
// than a commit are skipped.
func tagFromRef(r *gitlib.Repository, ref *plumbing.Reference) (vcs.Tag, bool, error) {
	name := ref.Name().Short()
	tagObj, err := r.TagObject(ref.Hash())
	switch {
	case err == nil:
		commit, err := tagObj.Commit()
		if errors.Is(err, object.ErrUnsupportedObject) {
			return vcs.Tag{}, false, nil
		}
		if err != nil {
			return vcs.Tag{}, false, fmt.Errorf("peel tag %s: %w", name, err)
		}
		return vcs.Tag{
			Name:    name,
			Message: strings.TrimRight(tagObj.Message, "\n"),
			Author:  commit.Author.Name,
			Commit:  toCommit(commit),
			Created: tagObj.Tagger.When,
		}, true, nil
	case errors.Is(err, plumbing.ErrObjectNotFound):
		commit, err := r.CommitObject(ref.Hash())
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return vcs.Tag{}, false, nil
		}
		if err != nil {
			return vcs.Tag{}, false, fmt.Errorf("resolve tag %s: %w", name, err)
		}
		return vcs.Tag{
			Name:    name,
			Author:  commit.Author.Name,
			Commit:  toCommit(commit),
			Created: commit.Committer.When,
		}, true, nil
	default:
		return vcs.Tag{}, false, fmt.Errorf("resolve tag %s: %w", name, err)
	}
}

func resolveRevision(r *gitlib.Repository, revision string) (plumbing.Hash, error) {
	hash, err := r.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) || errors.Is(err, plumbing.ErrObjectNotFound) {
			return plumbing.ZeroHash, fmt.Errorf("%s: %w", revision, vcs.ErrRevisionNotFound)
		}
		return plumbing.ZeroHash, fmt.Errorf("resolve %s: %w", revision, err)
	}
	if _, err := r.CommitObject(*hash); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%s: %w", revision, vcs.ErrRevisionNotFound)
	}
	return *hash, nil
}
