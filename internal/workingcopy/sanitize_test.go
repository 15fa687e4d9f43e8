package workingcopy

import (
	"strings"
	"testing"
)

func TestDirNameForLocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "https", in: "https://github.com/org/repo.git", want: "github.com_org_repo.git"},
		{name: "ssh_user", in: "git@github.com:org/repo.git", want: "git_github.com_org_repo.git"},
		{name: "file_url", in: "file:///srv/git/repo", want: "srv_git_repo"},
		{name: "plain_path", in: "/srv/git/repo.git", want: "srv_git_repo.git"},
		{name: "windows_path", in: `C:\repos\my repo`, want: "C__repos_my_repo"},
		{name: "empty", in: "", want: "repo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := dirNameForLocation(tt.in)
			if !strings.HasPrefix(got, tt.want+"-") {
				t.Fatalf("dirNameForLocation(%q) = %q, want prefix %q", tt.in, got, tt.want+"-")
			}
			if suffix := strings.TrimPrefix(got, tt.want+"-"); len(suffix) != 16 {
				t.Fatalf("dirNameForLocation(%q) = %q, want a 16 character hash suffix", tt.in, got)
			}
		})
	}
}

func TestDirNameForLocationTruncatesLongNames(t *testing.T) {
	t.Parallel()

	long := "https://example.com/" + strings.Repeat("a", 200)
	other := "https://example.com/" + strings.Repeat("a", 199) + "b"
	got := dirNameForLocation(long)
	if len(got) != maxDirName {
		t.Fatalf("len = %d, want %d", len(got), maxDirName)
	}
	if got == dirNameForLocation(other) {
		t.Fatal("distinct long locations must not collide")
	}
}

func TestDirNameForLocationKeepsLookalikesApart(t *testing.T) {
	t.Parallel()

	seen := map[string]string{}
	for _, location := range []string{"/x/a b", "/x/a_b", "/x/a/b", "/x/a:b", "x/a b"} {
		got := dirNameForLocation(location)
		if prev, ok := seen[got]; ok {
			t.Fatalf("%q and %q both map to %q", prev, location, got)
		}
		seen[got] = location
	}
}
