package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves $VAR references, then a leading ~, and cleans the
// result. Variables are expanded first so a value such as IFREC_RAW=~/funds
// still lands in the home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}

	path = os.ExpandEnv(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return filepath.Clean(path)
}

// expandPaths applies ExpandPath to each path in place.
func expandPaths(paths ...*string) {
	for _, p := range paths {
		*p = ExpandPath(*p)
	}
}
