package scm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePullRequestURL(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantOwner  string
		wantRepo   string
		wantNumber int
		wantErr    bool
	}{
		{name: "plain", url: "https://github.com/sevigo/demo/pull/123", wantOwner: "sevigo", wantRepo: "demo", wantNumber: 123},
		{name: "trailing path", url: "https://github.com/sevigo/demo/pull/9/files", wantOwner: "sevigo", wantRepo: "demo", wantNumber: 9},
		{name: "issue url", url: "https://github.com/sevigo/demo/issues/5", wantErr: true},
		{name: "repo url", url: "https://github.com/sevigo/demo", wantErr: true},
		{name: "bad number", url: "https://github.com/sevigo/demo/pull/abc", wantErr: true},
		{name: "zero number", url: "https://github.com/sevigo/demo/pull/0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, number, err := ParsePullRequestURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, owner)
			assert.Equal(t, tt.wantRepo, repo)
			assert.Equal(t, tt.wantNumber, number)
		})
	}
}
