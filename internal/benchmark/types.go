// Package benchmark scores prediction quality against a labeled ground-truth
// corpus and gates releases of the detection pipeline on the result. All
// evaluation here is synchronous, deterministic and side-effect-free; derived
// metrics are recomputed on every call and never persisted as source of truth.
package benchmark

import (
	"fmt"

	"github.com/sevigo/professor/internal/core"
)

// LabeledFinding is a ground-truth or predicted finding reduced to the exact
// comparison key (signature, severity, category). There is no fuzzy location
// matching: the signature is free text describing "what and where".
type LabeledFinding struct {
	Signature string        `json:"signature"`
	Severity  core.Severity `json:"severity"`
	Category  core.Category `json:"category"`
}

// NewLabeledFinding builds a labeled finding from raw tokens. Severity and
// category parse case-insensitively; unknown tokens fail with a validation
// error.
func NewLabeledFinding(signature, severityToken, categoryToken string) (LabeledFinding, error) {
	severity, err := core.ParseSeverity(severityToken)
	if err != nil {
		return LabeledFinding{}, err
	}
	category, err := core.ParseCategory(categoryToken)
	if err != nil {
		return LabeledFinding{}, err
	}
	return LabeledFinding{Signature: signature, Severity: severity, Category: category}, nil
}

// matchKey is the exact comparison key for set intersection.
func (f LabeledFinding) matchKey() string {
	return fmt.Sprintf("%s|%s|%s", f.Signature, f.Severity, f.Category)
}

// Case is a single labeled PR example. The explicit blocked booleans override
// the inferred ones when present.
type Case struct {
	CaseID           string
	Language         string
	RepoFamily       string
	SourceURL        string
	Notes            string
	Expected         []LabeledFinding
	Predicted        []LabeledFinding
	ExpectedBlocked  *bool
	PredictedBlocked *bool
}

// Dataset is an ordered collection of labeled cases.
type Dataset struct {
	Cases []Case
}

// CaseMetrics are the evaluation results for one case. Ratio metrics are
// rounded to four decimals for reporting.
type CaseMetrics struct {
	CaseID         string  `json:"case_id"`
	Language       string  `json:"language"`
	TP             int     `json:"tp"`
	FP             int     `json:"fp"`
	FN             int     `json:"fn"`
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
	F1             float64 `json:"f1"`
	SevereRecall   float64 `json:"severe_recall"`
	VerdictCorrect bool    `json:"verdict_correct"`
}

// Metrics is the aggregate report over a dataset.
type Metrics struct {
	CaseMetrics      []CaseMetrics `json:"case_metrics"`
	TotalCases       int           `json:"total_cases"`
	MeanPrecision    float64       `json:"mean_precision"`
	MeanRecall       float64       `json:"mean_recall"`
	MeanF1           float64       `json:"mean_f1"`
	MeanSevereRecall float64       `json:"mean_severe_recall"`
	VerdictAccuracy  float64       `json:"verdict_accuracy"`
}

// Scorecard reports the aggregate metrics for one group of cases (per
// language or per repository family).
type Scorecard struct {
	Group           string  `json:"group"`
	Cases           int     `json:"cases"`
	MeanPrecision   float64 `json:"mean_precision"`
	MeanRecall      float64 `json:"mean_recall"`
	MeanF1          float64 `json:"mean_f1"`
	SevereRecall    float64 `json:"severe_recall"`
	VerdictAccuracy float64 `json:"verdict_accuracy"`
}

// CoverageValidation is the readiness check for a labeled corpus: enough
// cases overall and per required language.
type CoverageValidation struct {
	Valid          bool           `json:"valid"`
	Issues         []string       `json:"issues"`
	TotalCases     int            `json:"total_cases"`
	LanguageCounts map[string]int `json:"language_counts"`
}
