// Package verdict turns a review's severity mix into an approve/reject
// decision with a confidence score.
package verdict

import (
	"github.com/sevigo/professor/internal/core"
)

const (
	Approve = "approve"
	Reject  = "reject"
)

// Severity penalty weights for confidence scoring. Info findings carry no
// penalty. The divisor normalizes so a single ceiling-level finding lands
// clearly below 1.0 without collapsing to the floor.
const (
	criticalWeight = 3.0
	highWeight     = 2.0
	mediumWeight   = 1.0
	lowWeight      = 0.5

	penaltyScale  = 20.0
	minConfidence = 0.05
)

// Policy holds the configured ceilings: how many critical and high findings a
// review may carry before it is rejected. Both are independent.
type Policy struct {
	MaxCritical int
	MaxHigh     int
}

// DefaultPolicy tolerates zero critical and one high finding.
func DefaultPolicy() Policy {
	return Policy{MaxCritical: 0, MaxHigh: 1}
}

// Result is the policy decision for one review.
type Result struct {
	Approved   bool    `json:"approved"`
	Verdict    string  `json:"verdict"`
	Confidence float64 `json:"confidence"`
}

// Evaluate applies the policy to a review summary. The verdict rejects when
// either severity count exceeds its ceiling. Confidence lies in (0,1] and
// never increases when any severity count grows; it expresses how clearly the
// verdict holds, not the verdict itself.
func (p Policy) Evaluate(summary core.ReviewSummary) Result {
	decision := Approve
	if summary.Critical > p.MaxCritical || summary.High > p.MaxHigh {
		decision = Reject
	}

	penalty := criticalWeight*float64(summary.Critical) +
		highWeight*float64(summary.High) +
		mediumWeight*float64(summary.Medium) +
		lowWeight*float64(summary.Low)

	confidence := 1.0 - penalty/penaltyScale
	if confidence < minConfidence {
		confidence = minConfidence
	}

	return Result{
		Approved:   decision == Approve,
		Verdict:    decision,
		Confidence: confidence,
	}
}
