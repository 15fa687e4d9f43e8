package gitcli

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	if err := EnsureMinGitVersion(); err != nil {
		t.Skipf("git unusable: %v", err)
	}
}

func identity() []Option {
	return []Option{
		WithConfig("user.name", "Test User"),
		WithConfig("user.email", "test@example.com"),
		WithConfig("init.defaultBranch", "master"),
	}
}

// newRemote creates a bare repository whose master branch holds one commit.
func newRemote(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	remote := filepath.Join(t.TempDir(), "remote.git")
	if _, err := New("", identity()...).Run(ctx, []string{"init", "--quiet", "--bare", remote}, "git init"); err != nil {
		t.Fatalf("init remote: %v", err)
	}
	if _, err := New(remote).Run(ctx, []string{"symbolic-ref", "HEAD", "refs/heads/master"}, "git symbolic-ref"); err != nil {
		t.Fatalf("set HEAD: %v", err)
	}
	seed := filepath.Join(t.TempDir(), "seed")
	r := New("", identity()...)
	if _, err := r.Run(ctx, []string{"clone", "--quiet", remote, seed}, "git clone"); err != nil {
		t.Fatalf("clone: %v", err)
	}
	s := New(seed, identity()...)
	for _, args := range [][]string{
		{"commit", "--quiet", "--allow-empty", "-m", "initial"},
		{"push", "--quiet", "origin", "HEAD:refs/heads/master"},
	} {
		if _, err := s.Run(ctx, args, "seed"); err != nil {
			t.Fatalf("seed %v: %v", args, err)
		}
	}
	return remote
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWorkingCopyCommitAndMerge(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	remote := newRemote(t)

	wc := OpenWorkingCopy(filepath.Join(t.TempDir(), "wc"), remote, identity()...)
	if err := wc.CheckoutBranch(ctx, "master"); err != nil {
		t.Fatalf("CheckoutBranch() error = %v", err)
	}
	writeFile(t, wc.Folder(), "file1.txt", "line 1")
	c1, err := wc.CommitAll(ctx, "master", "file1 added")
	if err != nil {
		t.Fatalf("CommitAll() error = %v", err)
	}
	if c1.Message != "file1 added" || c1.Author.Name != "Test User" {
		t.Fatalf("unexpected commit %+v", c1)
	}

	if _, err := New(remote).Run(ctx, []string{"branch", "feature", "master"}, "git branch"); err != nil {
		t.Fatal(err)
	}
	writeFile(t, wc.Folder(), "file1.txt", "line 2")
	if _, err := wc.CommitAll(ctx, "master", "master change"); err != nil {
		t.Fatal(err)
	}

	if err := wc.CheckoutBranch(ctx, "feature"); err != nil {
		t.Fatalf("CheckoutBranch(feature) error = %v", err)
	}
	writeFile(t, wc.Folder(), "file1.txt", "line 3")
	if _, err := wc.CommitAll(ctx, "feature", "feature change"); err != nil {
		t.Fatal(err)
	}

	if err := wc.CheckoutBranch(ctx, "master"); err != nil {
		t.Fatal(err)
	}
	conflicts, err := wc.Merge(ctx, "feature")
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if len(conflicts) != 1 || conflicts[0] != "file1.txt" {
		t.Fatalf("conflicts = %v, want [file1.txt]", conflicts)
	}

	if err := wc.Reset(ctx, "HEAD"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	st, err := wc.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !st.Clean() {
		t.Fatalf("status after reset = %+v", st)
	}
}

func TestWorkingCopyReplacesForeignFolder(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	remote := newRemote(t)

	folder := filepath.Join(t.TempDir(), "wc")
	writeFile(t, folder, "junk.txt", "junk")

	wc := OpenWorkingCopy(folder, remote, identity()...)
	if err := wc.CheckoutBranch(ctx, "master"); err != nil {
		t.Fatalf("CheckoutBranch() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(folder, "junk.txt")); !os.IsNotExist(err) {
		t.Fatalf("junk.txt should be gone, stat err = %v", err)
	}
}

func TestWorkingCopyReclonesFolderOfOtherRemote(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	remoteA := newRemote(t)
	remoteB := newRemote(t)
	folder := filepath.Join(t.TempDir(), "wc")

	a := OpenWorkingCopy(folder, remoteA, identity()...)
	if err := a.CheckoutBranch(ctx, "master"); err != nil {
		t.Fatal(err)
	}
	writeFile(t, folder, "only-a.txt", "a")
	if _, err := a.CommitAll(ctx, "master", "a change"); err != nil {
		t.Fatal(err)
	}

	b := OpenWorkingCopy(folder, remoteB, identity()...)
	if err := b.CheckoutBranch(ctx, "master"); err != nil {
		t.Fatalf("CheckoutBranch() error = %v", err)
	}
	out, err := b.Run(ctx, []string{"remote", "get-url", "origin"}, "git remote get-url")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out); !sameRemote(got, remoteB) {
		t.Fatalf("origin = %q, want %q", got, remoteB)
	}
	if _, err := os.Stat(filepath.Join(folder, "only-a.txt")); !os.IsNotExist(err) {
		t.Fatalf("only-a.txt leaked from the other remote, stat err = %v", err)
	}

	writeFile(t, folder, "only-b.txt", "b")
	if _, err := b.CommitAll(ctx, "master", "b change"); err != nil {
		t.Fatal(err)
	}
	if _, err := New(remoteA).Run(ctx, []string{"cat-file", "-e", "master:only-b.txt"}, "git cat-file"); err == nil {
		t.Fatal("commit for remote B was pushed to remote A")
	}
	if _, err := New(remoteB).Run(ctx, []string{"cat-file", "-e", "master:only-b.txt"}, "git cat-file"); err != nil {
		t.Fatalf("commit missing from remote B: %v", err)
	}
}

func TestSameRemote(t *testing.T) {
	if !sameRemote("/srv/git/repo.git/", "/srv/git/repo.git") {
		t.Fatal("trailing slash should not matter")
	}
	if sameRemote("/srv/git/a b", "/srv/git/a_b") {
		t.Fatal("distinct remotes reported equal")
	}
}
