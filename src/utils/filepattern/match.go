// Package filepattern matches file paths against the glob patterns a
// language configuration may carry alongside bare extensions.
package filepattern

import (
	"path"
	"strings"
)

// Match reports whether a slash-separated file path matches the provided
// glob pattern. Supported patterns:
// - "*" or "**/*": match all
// - standard glob wildcards (*, ?, [class]) matched against the basename
//   when the pattern has no directory component
// - directory prefix with trailing slash (e.g. "src/")
// - "prefix/**/suffix" recursive patterns, simplified to a prefix
//   containment plus a basename match on the suffix
func Match(filePath, pattern string) bool {
	if pattern == "" || pattern == "*" || pattern == "**/*" {
		return true
	}

	filePath = strings.ReplaceAll(filePath, "\\", "/")
	pattern = strings.ReplaceAll(pattern, "\\", "/")

	if strings.HasSuffix(pattern, "/") {
		return strings.Contains(filePath, pattern)
	}

	if strings.Contains(pattern, "**") {
		parts := strings.SplitN(pattern, "**", 2)
		prefix := strings.TrimSuffix(parts[0], "/")
		suffix := strings.TrimPrefix(parts[1], "/")
		if prefix != "" && !strings.Contains(filePath, prefix) {
			return false
		}
		if suffix == "" || suffix == "*" {
			return true
		}
		ok, _ := path.Match(path.Base(suffix), path.Base(filePath))
		return ok
	}

	if ok, _ := path.Match(pattern, filePath); ok {
		return true
	}
	if !strings.Contains(pattern, "/") {
		ok, _ := path.Match(pattern, path.Base(filePath))
		return ok
	}

	// Relative directory patterns like "src/gen/*.go" may sit anywhere
	// under an absolute workspace path.
	patternDir := path.Dir(pattern)
	patternFile := path.Base(pattern)
	fileDir := path.Dir(filePath)
	if fileDir == patternDir || strings.HasSuffix(fileDir, "/"+patternDir) {
		ok, _ := path.Match(patternFile, path.Base(filePath))
		return ok
	}
	return false
}
