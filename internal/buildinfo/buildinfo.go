package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Version returns the module version or "dev" when unset.
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return "dev"
	}
	version := info.Main.Version
	if version == "" || version == "(devel)" {
		return "dev"
	}
	return version
}

// setting returns a build setting recorded by the go tool, if present.
func setting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// Revision returns the source control revision the binary was built from,
// with a "+dirty" suffix for modified trees.
func Revision() string {
	rev := setting("vcs.revision")
	if rev == "" {
		return ""
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if setting("vcs.modified") == "true" {
		rev += "+dirty"
	}
	return rev
}

// Tags returns the build tags recorded at compile time.
func Tags() string {
	return setting("-tags")
}

// String combines version, revision and tags for display.
func String() string {
	s := Version()
	if rev := Revision(); rev != "" {
		s = fmt.Sprintf("%s (%s)", s, rev)
	}
	if tags := Tags(); tags != "" {
		s = fmt.Sprintf("%s (tags: %s)", s, tags)
	}
	return s
}
