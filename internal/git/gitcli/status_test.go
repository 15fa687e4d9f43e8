package gitcli

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseStatusPorcelainV2(t *testing.T) {
	t.Parallel()

	nul := func(records ...string) string {
		return strings.Join(records, "\x00") + "\x00"
	}

	tests := []struct {
		name string
		in   string
		want Status
	}{
		{name: "empty", in: "", want: Status{}},
		{
			name: "worktree_only",
			in:   nul("1 .M N... 100644 100644 100644 abcdef0 abcdef0 path.txt"),
			want: Status{Worktree: true},
		},
		{
			name: "staged_only",
			in:   nul("1 M. N... 100644 100644 100644 abcdef0 abcdef0 path.txt"),
			want: Status{Staged: true},
		},
		{
			name: "unmerged_with_spaces",
			in:   nul("u UU N... 100644 100644 100644 100644 abcdef0 abcdef1 abcdef2 mod file.txt"),
			want: Status{Unmerged: []string{"mod file.txt"}},
		},
		{
			name: "unmerged_sorted",
			in: nul(
				"u UU N... 100644 100644 100644 100644 abcdef0 abcdef1 abcdef2 z.txt",
				"u DU N... 100644 000000 100644 100644 abcdef0 0000000 abcdef2 folder/a.txt",
			),
			want: Status{Unmerged: []string{"folder/a.txt", "z.txt"}},
		},
		{
			name: "rename_skips_original_path",
			in: nul(
				"2 R. N... 100644 100644 100644 abcdef0 abcdef0 R100 new.txt",
				"u UU N... 100644 100644 100644 100644 abcdef0 abcdef1 abcdef2 looks-like-a-record",
			),
			want: Status{Staged: true},
		},
		{
			name: "untracked",
			in:   nul("? untracked.txt"),
			want: Status{Untracked: true},
		},
		{
			name: "ignored_ignored",
			in:   nul("! ignored.txt"),
			want: Status{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseStatusPorcelainV2(strings.NewReader(tt.in))
			if err != nil {
				t.Fatalf("ParseStatusPorcelainV2() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ParseStatusPorcelainV2() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseStatusPorcelainV2_InvalidUnmerged(t *testing.T) {
	t.Parallel()

	_, err := ParseStatusPorcelainV2(strings.NewReader("u UU short\x00"))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestParseStatusPorcelainV2_Error(t *testing.T) {
	t.Parallel()

	_, err := ParseStatusPorcelainV2(failingReader{})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestStatusClean(t *testing.T) {
	t.Parallel()

	if !(Status{}).Clean() {
		t.Fatal("zero status should be clean")
	}
	if (Status{Untracked: true}).Clean() {
		t.Fatal("untracked files are not clean")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("boom")
}
