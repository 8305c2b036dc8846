package verdict

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/professor/internal/core"
)

func summary(critical, high, medium, low, info int) core.ReviewSummary {
	return core.ReviewSummary{
		TotalFindings: critical + high + medium + low + info,
		Critical:      critical,
		High:          high,
		Medium:        medium,
		Low:           low,
		Info:          info,
	}
}

func TestRejectsWhenCriticalCeilingExceeded(t *testing.T) {
	policy := Policy{MaxCritical: 0, MaxHigh: 1}
	result := policy.Evaluate(summary(1, 0, 0, 0, 0))

	assert.False(t, result.Approved)
	assert.Equal(t, Reject, result.Verdict)
	assert.Greater(t, result.Confidence, 0.0)
	assert.Less(t, result.Confidence, 1.0)
}

func TestRejectsWhenHighCeilingExceeded(t *testing.T) {
	policy := Policy{MaxCritical: 1, MaxHigh: 0}
	result := policy.Evaluate(summary(0, 1, 0, 0, 0))

	assert.False(t, result.Approved)
	assert.Equal(t, Reject, result.Verdict)
}

func TestApprovesWithinCeilings(t *testing.T) {
	policy := DefaultPolicy()
	result := policy.Evaluate(summary(0, 1, 2, 3, 4))

	assert.True(t, result.Approved)
	assert.Equal(t, Approve, result.Verdict)
	assert.Greater(t, result.Confidence, 0.0)
	assert.LessOrEqual(t, result.Confidence, 1.0)
}

func TestCleanReviewHasFullConfidence(t *testing.T) {
	result := DefaultPolicy().Evaluate(summary(0, 0, 0, 0, 0))

	assert.True(t, result.Approved)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestInfoFindingsDoNotReduceConfidence(t *testing.T) {
	policy := DefaultPolicy()
	clean := policy.Evaluate(summary(0, 0, 0, 0, 0))
	noisy := policy.Evaluate(summary(0, 0, 0, 0, 50))

	assert.Equal(t, clean.Confidence, noisy.Confidence)
	assert.True(t, noisy.Approved)
}

// Confidence must never increase when any single severity count grows.
func TestConfidenceMonotonicInEachSeverity(t *testing.T) {
	policy := DefaultPolicy()
	base := summary(1, 1, 1, 1, 1)
	baseline := policy.Evaluate(base).Confidence

	bumps := []core.ReviewSummary{
		summary(2, 1, 1, 1, 1),
		summary(1, 2, 1, 1, 1),
		summary(1, 1, 2, 1, 1),
		summary(1, 1, 1, 2, 1),
	}
	for _, bumped := range bumps {
		assert.LessOrEqual(t, policy.Evaluate(bumped).Confidence, baseline)
	}
}

func TestConfidenceClampedAboveZero(t *testing.T) {
	result := DefaultPolicy().Evaluate(summary(50, 50, 50, 50, 0))

	assert.False(t, result.Approved)
	assert.Greater(t, result.Confidence, 0.0)
	assert.LessOrEqual(t, result.Confidence, 1.0)
}

func TestSingleCeilingLevelFindingKeepsConfidenceBetweenZeroAndOne(t *testing.T) {
	policy := Policy{MaxCritical: 0, MaxHigh: 1}
	result := policy.Evaluate(summary(0, 1, 0, 0, 0))

	assert.True(t, result.Approved)
	assert.Greater(t, result.Confidence, 0.0)
	assert.Less(t, result.Confidence, 1.0)
}
