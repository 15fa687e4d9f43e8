package workingcopy

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// maxDirName keeps the per-location directory short enough that a full
// checkout path stays well under platform path limits.
const maxDirName = 80

// dirNameForLocation maps a repository location to a single path segment.
// The readable prefix is lossy, so a hash of the full location is always
// appended to keep distinct locations in distinct directories.
func dirNameForLocation(location string) string {
	result := make([]byte, 0, len(location))
	for _, b := range []byte(location) {
		switch b {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', '@', ' ':
			result = append(result, '_')
		default:
			result = append(result, b)
		}
	}

	s := strings.Trim(string(result), "_.")
	for _, prefix := range []string{"https___", "http___", "ssh___", "git___", "file___"} {
		if len(s) > len(prefix) && strings.HasPrefix(s, prefix) {
			s = strings.TrimLeft(s[len(prefix):], "_")
			break
		}
	}
	if s == "" {
		s = "repo"
	}

	hash := sha256.Sum256([]byte(location))
	suffix := hex.EncodeToString(hash[:8])
	if limit := maxDirName - len(suffix) - 1; len(s) > limit {
		s = s[:limit]
	}
	return s + "-" + suffix
}
