package core

// ReviewPolicy represents the structure of the .professor.yml file a
// repository can carry to tune its own reviews.
type ReviewPolicy struct {
	// Verdict ceilings: how many critical/high findings a PR may carry and
	// still be approved.
	MaxCriticalIssues int `yaml:"max_critical_issues"`
	MaxHighIssues     int `yaml:"max_high_issues"`

	// Analyzers that should not run for this repository, by name.
	DisabledAnalyzers []string `yaml:"disabled_analyzers"`

	// High-performance exclusion of entire directories by name.
	// Example: ["dist", "build", "docs"]
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// Exclusion of files based on their extension.
	// The leading dot is optional. Example: [".md", "lock", ".log"]
	ExcludeExts []string `yaml:"exclude_exts"`
}

// DefaultReviewPolicy returns a policy with default values: zero tolerated
// critical findings, one tolerated high finding, everything enabled.
func DefaultReviewPolicy() *ReviewPolicy {
	return &ReviewPolicy{
		MaxCriticalIssues: 0,
		MaxHighIssues:     1,
		DisabledAnalyzers: []string{},
		ExcludeDirs:       []string{},
		ExcludeExts:       []string{},
	}
}
