package vcs

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	godiff "github.com/sourcegraph/go-diff/diff"
)

const diffContextLines = 3

// BranchesDiff lists what has to change in b for it to look like a.
//
// The two tips are compared directly, without looking for a merge base. A
// path present only on b is therefore reported as a Delete, even when it
// was added on b after the branches diverged. Renames are reported as a
// delete plus an add.
func (v *VCS) BranchesDiff(ctx context.Context, a, b BranchRef) ([]DiffEntry, error) {
	aName, bName := v.branchName(a), v.branchName(b)
	for _, name := range []string{aName, bName} {
		if _, err := v.engine.ResolveBranch(ctx, v.location(), name); err != nil {
			return nil, fmt.Errorf("diff %s..%s: %w", bName, aName, err)
		}
	}
	changes, err := v.engine.Diff(ctx, v.location(), bName, aName)
	if err != nil {
		return nil, fmt.Errorf("diff %s..%s: %w", bName, aName, err)
	}
	return synthesizeDiff(changes)
}

func synthesizeDiff(changes []FileChange) ([]DiffEntry, error) {
	byPath := make(map[string]DiffEntry, len(changes))
	for _, change := range changes {
		entry, ok, err := diffEntry(change)
		if err != nil {
			return nil, err
		}
		if ok {
			byPath[entry.Path] = entry
		}
	}
	entries := make([]DiffEntry, 0, len(byPath))
	for _, entry := range byPath {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries, nil
}

func diffEntry(change FileChange) (DiffEntry, bool, error) {
	var (
		changeType    ChangeType
		before, after []byte
	)
	switch {
	case change.Before == nil && change.After == nil:
		return DiffEntry{}, false, nil
	case change.Before == nil:
		changeType = Add
		after = change.After.Content
	case change.After == nil:
		changeType = Delete
		before = change.Before.Content
	default:
		before, after = change.Before.Content, change.After.Content
		if bytes.Equal(before, after) {
			return DiffEntry{}, false, nil
		}
		changeType = Modify
	}

	entry := DiffEntry{Path: change.Path, ChangeType: changeType}
	if isBinary(before) || isBinary(after) {
		entry.UnifiedDiff = fmt.Sprintf("Binary files a/%s and b/%s differ\n", change.Path, change.Path)
		return entry, true, nil
	}

	body, err := unifiedDiff(change.Path, changeType, before, after)
	if err != nil {
		return DiffEntry{}, false, fmt.Errorf("render diff for %s: %w", change.Path, err)
	}
	entry.UnifiedDiff = body
	if body != "" {
		entry.Added, entry.Deleted, err = diffStats(body)
		if err != nil {
			return DiffEntry{}, false, fmt.Errorf("parse diff for %s: %w", change.Path, err)
		}
	}
	return entry, true, nil
}

func unifiedDiff(path string, changeType ChangeType, before, after []byte) (string, error) {
	if len(before) == 0 && len(after) == 0 {
		return "", nil
	}
	ud := difflib.UnifiedDiff{
		A:        splitLines(before),
		B:        splitLines(after),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  diffContextLines,
	}
	switch changeType {
	case Add:
		ud.FromFile = "/dev/null"
	case Delete:
		ud.ToFile = "/dev/null"
	}
	return difflib.GetUnifiedDiffString(ud)
}

const noNewlineMarker = "\\ No newline at end of file\n"

// splitLines cuts content into newline terminated lines for difflib. A last
// line without a newline carries git's marker, so a change that only adds
// or drops the final newline still shows up in the diff.
func splitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	lines := strings.SplitAfter(string(content), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if last := len(lines) - 1; !strings.HasSuffix(lines[last], "\n") {
		lines[last] += "\n" + noNewlineMarker
	}
	return lines
}

func diffStats(body string) (added, deleted int, err error) {
	fd, err := godiff.ParseFileDiff([]byte(body))
	if err != nil {
		return 0, 0, err
	}
	for _, hunk := range fd.Hunks {
		for _, line := range strings.Split(string(hunk.Body), "\n") {
			switch {
			case strings.HasPrefix(line, "+"):
				added++
			case strings.HasPrefix(line, "-"):
				deleted++
			}
		}
	}
	return added, deleted, nil
}

func isBinary(content []byte) bool {
	const sniffLen = 8000
	if len(content) > sniffLen {
		content = content[:sniffLen]
	}
	return bytes.IndexByte(content, 0) >= 0
}
