package gitcli

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// Oldest git whose merge, status and clean flags match what the working
// copy commands rely on ("status --porcelain=v2 -z", "merge --abort").
var minGitVersion = gitVersion{major: 2, minor: 23, patch: 0}

type gitVersion struct {
	major int
	minor int
	patch int
}

func MinGitVersion() string {
	return minGitVersion.String()
}

func (v gitVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

func (v gitVersion) less(other gitVersion) bool {
	if v.major != other.major {
		return v.major < other.major
	}
	if v.minor != other.minor {
		return v.minor < other.minor
	}
	return v.patch < other.patch
}

// parseGitVersionOutput understands "git version 2.44.0" as well as vendor
// flavours such as "2.39.3 (Apple Git-146)" or "2.39.3.windows.1".
func parseGitVersionOutput(out string) (gitVersion, bool) {
	s := strings.TrimSpace(out)
	if idx := strings.Index(s, "git version"); idx >= 0 {
		s = strings.TrimSpace(s[idx+len("git version"):])
	}
	start := strings.IndexAny(s, "0123456789")
	if start < 0 {
		return gitVersion{}, false
	}
	s = s[start:]
	end := 0
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	parts := strings.Split(strings.Trim(s[:end], "."), ".")
	if len(parts) < 2 {
		return gitVersion{}, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return gitVersion{}, false
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return gitVersion{}, false
	}
	patch := 0
	if len(parts) >= 3 {
		if p, err := strconv.Atoi(parts[2]); err == nil {
			patch = p
		}
	}
	return gitVersion{major: major, minor: minor, patch: patch}, true
}

func validateGitVersionOutput(out string) error {
	got, ok := parseGitVersionOutput(out)
	if !ok {
		return fmt.Errorf("unable to parse git version output: %q", strings.TrimSpace(out))
	}
	if got.less(minGitVersion) {
		return fmt.Errorf("git %s is too old; vcs-go requires git >= %s", got, minGitVersion)
	}
	return nil
}

var (
	versionOnce sync.Once
	versionOut  string
	versionErr  error
)

func probeGitVersion() {
	versionOnce.Do(func() {
		outBytes, err := exec.Command("git", "--version").CombinedOutput()
		versionOut = strings.TrimSpace(string(outBytes))
		if err != nil {
			if versionOut != "" {
				versionErr = fmt.Errorf("git --version: %v: %s", err, versionOut)
				return
			}
			versionErr = fmt.Errorf("git --version: %w", err)
			return
		}
		versionErr = validateGitVersionOutput(versionOut)
	})
}

// GitVersion returns the raw "git --version" output.
func GitVersion() (string, error) {
	probeGitVersion()
	return versionOut, versionErr
}

// EnsureMinGitVersion fails when git is missing or older than MinGitVersion.
func EnsureMinGitVersion() error {
	probeGitVersion()
	return versionErr
}
