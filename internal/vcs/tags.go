package vcs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// CreateTag creates an annotated tag on the head of branch, or on the
// revision given with WithRevision.
func (v *VCS) CreateTag(ctx context.Context, branch BranchRef, name, message string, opts ...ReadOption) (Tag, error) {
	if strings.TrimSpace(name) == "" {
		return Tag{}, errors.New("create tag: name not specified")
	}
	branchName := v.branchName(branch)
	rev, err := v.revisionFor(ctx, branchName, collectReadOptions(opts))
	if err != nil {
		return Tag{}, fmt.Errorf("create tag %s: %w", name, err)
	}
	if _, ok, err := v.findTag(ctx, name); err != nil {
		return Tag{}, fmt.Errorf("create tag %s: %w", name, err)
	} else if ok {
		return Tag{}, fmt.Errorf("create tag %s: %w", name, ErrTagExists)
	}
	tag, err := v.engine.CreateTag(ctx, v.location(), name, message, rev)
	if err != nil {
		return Tag{}, fmt.Errorf("create tag %s: %w", name, err)
	}
	v.logger.Info("tag created",
		slog.String("tag", name),
		slog.String("branch", branchName),
		slog.String("revision", rev),
	)
	return tag, nil
}

func (v *VCS) RemoveTag(ctx context.Context, name string) error {
	if _, ok, err := v.findTag(ctx, name); err != nil {
		return fmt.Errorf("remove tag %s: %w", name, err)
	} else if !ok {
		return fmt.Errorf("remove tag %s: %w", name, ErrTagNotFound)
	}
	if err := v.engine.DeleteTag(ctx, v.location(), name); err != nil {
		return fmt.Errorf("remove tag %s: %w", name, err)
	}
	v.logger.Info("tag removed", slog.String("tag", name))
	return nil
}

// Tags lists every tag in creation order.
func (v *VCS) Tags(ctx context.Context) ([]Tag, error) {
	tags, err := v.engine.Tags(ctx, v.location())
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	sortTags(tags)
	return tags, nil
}

func (v *VCS) TagsOnRevision(ctx context.Context, revision string) ([]Tag, error) {
	tags, err := v.Tags(ctx)
	if err != nil {
		return nil, err
	}
	var res []Tag
	for _, t := range tags {
		if t.Commit.Revision == revision {
			res = append(res, t)
		}
	}
	return res, nil
}

// LastTag returns the most recently created tag, or nil without tags.
func (v *VCS) LastTag(ctx context.Context) (*Tag, error) {
	tags, err := v.Tags(ctx)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, nil
	}
	last := tags[len(tags)-1]
	return &last, nil
}

func (v *VCS) findTag(ctx context.Context, name string) (Tag, bool, error) {
	tags, err := v.engine.Tags(ctx, v.location())
	if err != nil {
		return Tag{}, false, err
	}
	for _, t := range tags {
		if t.Name == name {
			return t, true, nil
		}
	}
	return Tag{}, false, nil
}

func sortTags(tags []Tag) {
	sort.SliceStable(tags, func(i, j int) bool {
		if !tags[i].Created.Equal(tags[j].Created) {
			return tags[i].Created.Before(tags[j].Created)
		}
		return tags[i].Name < tags[j].Name
	})
}
