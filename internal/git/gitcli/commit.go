package gitcli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Signature struct {
	Name  string
	Email string
	When  time.Time
}

type Commit struct {
	Hash         string
	ParentHashes []string
	Author       Signature
	Message      string
}

const (
	fieldSep     = "\x1f"
	commitFormat = "%H%x1f%P%x1f%an%x1f%ae%x1f%at%x1f%B"
)

// HeadCommit describes the commit HEAD points to.
func (r *Runner) HeadCommit(ctx context.Context) (Commit, error) {
	out, err := r.Run(ctx, []string{"log", "-1", "--no-color", "--format=" + commitFormat, "HEAD"}, "git log")
	if err != nil {
		return Commit{}, err
	}
	return parseCommitRecord(out)
}

func parseCommitRecord(out string) (Commit, error) {
	fields := strings.SplitN(out, fieldSep, 6)
	if len(fields) != 6 {
		return Commit{}, fmt.Errorf("unexpected git log output: %q", out)
	}
	hash := strings.TrimSpace(fields[0])
	if hash == "" {
		return Commit{}, fmt.Errorf("unexpected git log output: %q", out)
	}
	secs, err := strconv.ParseInt(strings.TrimSpace(fields[4]), 10, 64)
	if err != nil {
		return Commit{}, fmt.Errorf("parse commit time: %w", err)
	}
	return Commit{
		Hash:         hash,
		ParentHashes: strings.Fields(fields[1]),
		Author: Signature{
			Name:  fields[2],
			Email: fields[3],
			When:  time.Unix(secs, 0),
		},
		Message: strings.TrimRight(fields[5], "\n"),
	}, nil
}
