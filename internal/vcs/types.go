package vcs

import (
	"fmt"
	"strings"
	"time"
)

// Commit describes a single revision in a branch lineage.
type Commit struct {
	Revision string
	Author   string
	Email    string
	Message  string
	Time     time.Time
	Parents  []string
}

// Equal reports whether both commits name the same revision.
func (c Commit) Equal(other Commit) bool {
	return c.Revision == other.Revision
}

func (c Commit) String() string {
	return fmt.Sprintf("%s %s", shortRevision(c.Revision), firstLine(c.Message))
}

// BranchRef names either the repository's default branch or an explicit one.
type BranchRef struct {
	name string
}

// DefaultBranch refers to the configured default branch.
var DefaultBranch = BranchRef{}

// Branch returns a reference to the named branch. An empty name is the
// default branch.
func Branch(name string) BranchRef {
	return BranchRef{name: name}
}

func (b BranchRef) IsDefault() bool {
	return b.name == ""
}

// Resolve returns the concrete branch name, using def for the default branch.
func (b BranchRef) Resolve(def string) string {
	if b.name == "" {
		return def
	}
	return b.name
}

func (b BranchRef) String() string {
	if b.name == "" {
		return "<default>"
	}
	return b.name
}

type Tag struct {
	Name    string
	Message string
	Author  string
	Commit  Commit
	Created time.Time
}

// Equal compares tags by name and the revision they point to.
func (t Tag) Equal(other Tag) bool {
	return t.Name == other.Name && t.Commit.Equal(other.Commit)
}

type ChangeType uint8

const (
	Add ChangeType = iota
	Modify
	Delete
)

func (c ChangeType) String() string {
	switch c {
	case Add:
		return "ADD"
	case Modify:
		return "MODIFY"
	case Delete:
		return "DELETE"
	default:
		return fmt.Sprintf("ChangeType(%d)", uint8(c))
	}
}

type DiffEntry struct {
	Path        string
	ChangeType  ChangeType
	UnifiedDiff string
	Added       int
	Deleted     int
}

type MergeResult struct {
	Success          bool
	ConflictingFiles []string
}

type WalkDirection uint8

const (
	Asc WalkDirection = iota
	Desc
)

func (d WalkDirection) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// ParseWalkDirection accepts "asc" or "desc" in any case.
func ParseWalkDirection(s string) (WalkDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	default:
		return Asc, fmt.Errorf("unknown walk direction %q", s)
	}
}

// FileState is one side of a FileChange.
type FileState struct {
	Content []byte
}

// FileChange is a raw path-level change between two trees. A nil side means
// the path does not exist there.
type FileChange struct {
	Path   string
	Before *FileState
	After  *FileState
}

// MergeOutcome is what an engine reports after attempting a merge in a
// working copy. No conflicts means the merge applied cleanly.
type MergeOutcome struct {
	Conflicts []string
}

// FileWrite is one entry of a batched file update.
type FileWrite struct {
	Path    string
	Content []byte
	Message string
}

func shortRevision(rev string) string {
	if len(rev) > 10 {
		return rev[:10]
	}
	return rev
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
