package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReviewPolicyMissingFileReturnsDefaults(t *testing.T) {
	policy, err := LoadReviewPolicy(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPolicyNotFound))
	require.NotNil(t, policy)
	assert.Equal(t, 0, policy.MaxCriticalIssues)
	assert.Equal(t, 1, policy.MaxHighIssues)
}

func TestLoadReviewPolicyOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
max_critical_issues: 2
max_high_issues: 5
disabled_analyzers:
  - security
exclude_dirs:
  - dist
exclude_exts:
  - ".md"
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".professor.yml"), content, 0o600))

	policy, err := LoadReviewPolicy(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, policy.MaxCriticalIssues)
	assert.Equal(t, 5, policy.MaxHighIssues)
	assert.Equal(t, []string{"security"}, policy.DisabledAnalyzers)
	assert.Equal(t, []string{"dist"}, policy.ExcludeDirs)
	assert.Equal(t, []string{".md"}, policy.ExcludeExts)
}

func TestLoadReviewPolicyPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".professor.yml"), []byte("max_critical_issues: 1\n"), 0o600))

	policy, err := LoadReviewPolicy(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, policy.MaxCriticalIssues)
	assert.Equal(t, 1, policy.MaxHighIssues, "unset fields keep their defaults")
}

func TestLoadReviewPolicyMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".professor.yml"), []byte("max_critical_issues: [\n"), 0o600))

	_, err := LoadReviewPolicy(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPolicyParsing))
}

func TestParseReviewPolicy(t *testing.T) {
	policy, err := ParseReviewPolicy([]byte("max_high_issues: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, policy.MaxHighIssues)

	_, err = ParseReviewPolicy([]byte("{{"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPolicyParsing))
}
