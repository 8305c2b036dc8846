package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/professor/internal/core"
	"github.com/sevigo/professor/internal/scm"
)

func TestShouldReview(t *testing.T) {
	policy := &core.ReviewPolicy{
		ExcludeDirs: []string{"dist", "vendor"},
		ExcludeExts: []string{".md", "lock"},
	}

	tests := []struct {
		name string
		file scm.ChangedFile
		want bool
	}{
		{name: "plain source file", file: scm.ChangedFile{Filename: "api/server.go", Status: "modified"}, want: true},
		{name: "removed file", file: scm.ChangedFile{Filename: "api/server.go", Status: "removed"}, want: false},
		{name: "top-level excluded dir", file: scm.ChangedFile{Filename: "dist/bundle.js", Status: "added"}, want: false},
		{name: "nested excluded dir", file: scm.ChangedFile{Filename: "pkg/vendor/dep.go", Status: "modified"}, want: false},
		{name: "dir name as file name is not excluded", file: scm.ChangedFile{Filename: "src/dist.go", Status: "modified"}, want: true},
		{name: "excluded ext with dot", file: scm.ChangedFile{Filename: "README.md", Status: "modified"}, want: false},
		{name: "excluded ext without dot", file: scm.ChangedFile{Filename: "yarn.lock", Status: "modified"}, want: false},
		{name: "no extension", file: scm.ChangedFile{Filename: "Makefile", Status: "modified"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldReview(tt.file, policy))
		})
	}
}

func TestShouldReviewEmptyPolicy(t *testing.T) {
	policy := core.DefaultReviewPolicy()
	assert.True(t, shouldReview(scm.ChangedFile{Filename: "any/file.py", Status: "added"}, policy))
}
