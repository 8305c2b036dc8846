package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sevigo/professor/internal/core"
)

var (
	ErrPolicyNotFound = errors.New("policy file not found")
	ErrPolicyParsing  = errors.New("policy parsing failed")
)

// LoadReviewPolicy loads and parses the .professor.yml file from a repository
// path. A missing file is not fatal: the default policy is returned together
// with ErrPolicyNotFound so callers can log and continue.
func LoadReviewPolicy(repoPath string) (*core.ReviewPolicy, error) {
	policyPath := filepath.Join(repoPath, ".professor.yml")
	data, err := os.ReadFile(policyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return core.DefaultReviewPolicy(), ErrPolicyNotFound
		}
		return nil, fmt.Errorf("failed to read .professor.yml: %w", err)
	}

	policy := core.DefaultReviewPolicy()
	if err := yaml.Unmarshal(data, policy); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPolicyParsing, err)
	}
	return policy, nil
}

// ParseReviewPolicy parses raw .professor.yml content, for callers that fetch
// the file over an API instead of from disk.
func ParseReviewPolicy(data []byte) (*core.ReviewPolicy, error) {
	policy := core.DefaultReviewPolicy()
	if err := yaml.Unmarshal(data, policy); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPolicyParsing, err)
	}
	return policy, nil
}
