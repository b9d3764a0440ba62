package diagfmt

import (
	"path/filepath"
	"strings"
)

func formatPath(path string, mode PathMode, base string) string {
	if path == "" {
		return ""
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
	case PathModeRelative:
		if base == "" {
			return path
		}
		absBase, err1 := filepath.Abs(base)
		absPath, err2 := filepath.Abs(path)
		if err1 != nil || err2 != nil {
			return path
		}
		if rel, err := filepath.Rel(absBase, absPath); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	case PathModeBasename:
		return filepath.Base(path)
	case PathModeAuto:
	}
	return path
}

// ParsePathMode maps a flag value to a PathMode.
func ParsePathMode(s string) (PathMode, bool) {
	switch strings.ToLower(s) {
	case "", "auto":
		return PathModeAuto, true
	case "absolute", "abs":
		return PathModeAbsolute, true
	case "relative", "rel":
		return PathModeRelative, true
	case "basename", "base":
		return PathModeBasename, true
	}
	return PathModeAuto, false
}
