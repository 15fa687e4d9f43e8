package cmd

import (
	"bytes"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "vcs-go "), out)
}

func TestRepoIsRequired(t *testing.T) {
	_, err := execute(t, "", "--workspace", t.TempDir(), "branches")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--repo")
}

func TestRoundTrip(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	repo := filepath.Join(t.TempDir(), "repo.git")
	global := []string{"--workspace", t.TempDir(), "--repo", repo}
	run := func(stdin string, args ...string) string {
		t.Helper()
		out, err := execute(t, stdin, append(global, args...)...)
		require.NoError(t, err, out)
		return out
	}

	run("", "init", repo)

	rev := strings.TrimSpace(run("line 1\n", "put", "file1.txt", "-m", "file1 added"))
	assert.Len(t, rev, 40)
	assert.Equal(t, "line 1\n", run("", "cat", "file1.txt"))
	assert.Equal(t, "true\n", run("", "exists", "file1.txt"))
	assert.Equal(t, "false\n", run("", "exists", "nope.txt"))

	run("", "branch", "create", "new-branch")
	assert.Equal(t, "master\nnew-branch\n", run("", "branches"))

	run("line 2\n", "put", "file2.txt", "-b", "new-branch", "-m", "file2 added")
	assert.Contains(t, run("", "diff", "new-branch", "--stat"), "ADD    file2.txt +1 -0")
	assert.Equal(t, "merged cleanly\n", run("", "merge", "new-branch", "-m", "merged."))
	assert.Equal(t, "line 2\n", run("", "cat", "file2.txt"))

	head := run("", "head")
	assert.Contains(t, head, "merged.")
}

func TestAcquireTimeoutDoesNotBoundCommand(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	t.Setenv("VCS_ACQUIRE_TIMEOUT", "1ms")
	repo := filepath.Join(t.TempDir(), "repo.git")
	global := []string{"--workspace", t.TempDir(), "--repo", repo}

	out, err := execute(t, "", append(global, "init", repo)...)
	require.NoError(t, err, out)
	out, err = execute(t, "line 1\n", append(global, "put", "file1.txt", "-m", "file1 added")...)
	require.NoError(t, err, out)
	out, err = execute(t, "", append(global, "cat", "file1.txt")...)
	require.NoError(t, err, out)
	assert.Equal(t, "line 1\n", out)
}

func TestColorEnabled(t *testing.T) {
	on, err := colorEnabled("always", nil)
	require.NoError(t, err)
	assert.True(t, on)

	on, err = colorEnabled("never", nil)
	require.NoError(t, err)
	assert.False(t, on)

	_, err = colorEnabled("rainbow", nil)
	assert.Error(t, err)
}

func TestWriteDiff(t *testing.T) {
	const text = "--- a/f.txt\n+++ b/f.txt\n@@ -1 +1 @@\n-old\n+new\n"

	var plain bytes.Buffer
	require.NoError(t, writeDiff(&plain, text, false))
	assert.Equal(t, text, plain.String())

	var colored bytes.Buffer
	require.NoError(t, writeDiff(&colored, text, true))
	assert.Contains(t, colored.String(), "\x1b[")
	assert.Contains(t, colored.String(), "new")
}
