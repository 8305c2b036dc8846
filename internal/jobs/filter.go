package jobs

import (
	"path"
	"strings"

	"github.com/sevigo/professor/internal/core"
	"github.com/sevigo/professor/internal/scm"
)

// shouldReview decides whether a changed file takes part in the review.
// Removed files have no head content to analyze; the repository policy can
// exclude whole directories and file extensions.
func shouldReview(file scm.ChangedFile, policy *core.ReviewPolicy) bool {
	if file.Status == "removed" {
		return false
	}
	if isExcludedDir(file.Filename, policy.ExcludeDirs) {
		return false
	}
	if isExcludedExt(file.Filename, policy.ExcludeExts) {
		return false
	}
	return true
}

// isExcludedDir matches any path segment against the excluded directory
// names, so "dist" excludes both "dist/a.js" and "pkg/dist/b.js".
func isExcludedDir(filename string, dirs []string) bool {
	if len(dirs) == 0 {
		return false
	}
	segments := strings.Split(path.Dir(filename), "/")
	for _, segment := range segments {
		for _, dir := range dirs {
			if segment == dir {
				return true
			}
		}
	}
	return false
}

// isExcludedExt matches the file extension; the configured value may carry
// the leading dot or not.
func isExcludedExt(filename string, exts []string) bool {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if strings.TrimPrefix(e, ".") == ext {
			return true
		}
	}
	return false
}
