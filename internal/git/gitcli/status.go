package gitcli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Status summarises "git status --porcelain=v2 -z".
type Status struct {
	Unmerged  []string
	Staged    bool
	Worktree  bool
	Untracked bool
}

// Clean reports whether the working copy matches HEAD exactly.
func (s Status) Clean() bool {
	return len(s.Unmerged) == 0 && !s.Staged && !s.Worktree && !s.Untracked
}

func (r *Runner) Status(ctx context.Context) (Status, error) {
	out, err := r.Run(ctx, []string{"status", "--porcelain=v2", "-z", "--untracked-files=all"}, "git status")
	if err != nil {
		return Status{}, err
	}
	st, err := ParseStatusPorcelainV2(strings.NewReader(out))
	if err != nil {
		return Status{}, fmt.Errorf("parse git status: %w", err)
	}
	return st, nil
}

// ParseStatusPorcelainV2 reads NUL separated porcelain v2 records.
func ParseStatusPorcelainV2(r io.Reader) (Status, error) {
	var st Status
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(splitNUL)
	skipNext := false
	for scanner.Scan() {
		record := scanner.Text()
		if skipNext {
			// original path of a rename record
			skipNext = false
			continue
		}
		if len(record) < 2 {
			continue
		}
		switch record[0] {
		case '1', '2':
			if record[0] == '2' {
				skipNext = true
			}
			if len(record) < 4 {
				continue
			}
			if record[2] != '.' {
				st.Staged = true
			}
			if record[3] != '.' {
				st.Worktree = true
			}
		case 'u':
			// u <XY> <sub> <m1> <m2> <m3> <mW> <h1> <h2> <h3> <path>
			fields := strings.SplitN(record, " ", 11)
			if len(fields) != 11 {
				return st, fmt.Errorf("unexpected unmerged record: %q", record)
			}
			st.Unmerged = append(st.Unmerged, fields[10])
		case '?':
			st.Untracked = true
		default:
			// '!' ignored
		}
	}
	sort.Strings(st.Unmerged)
	return st, scanner.Err()
}

func splitNUL(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
