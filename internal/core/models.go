// Package core defines the shared data model for reviews and findings, plus
// the interfaces that decouple event sources from job execution. Components in
// other packages communicate exclusively through these types.
package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Severity is the closed set of finding severity levels, ordered from most to
// least severe.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// severityRanks gives every severity a numeric rank, higher = more severe.
var severityRanks = map[Severity]int{
	SeverityCritical: 5,
	SeverityHigh:     4,
	SeverityMedium:   3,
	SeverityLow:      2,
	SeverityInfo:     1,
}

// Rank returns the numeric rank of the severity (higher = more severe).
// Unknown severities rank below info.
func (s Severity) Rank() int {
	return severityRanks[s]
}

// AtLeast reports whether s is at least as severe as threshold.
func (s Severity) AtLeast(threshold Severity) bool {
	return s.Rank() >= threshold.Rank()
}

// IsSevere reports whether the severity counts as blocking (critical or high).
func (s Severity) IsSevere() bool {
	return s == SeverityCritical || s == SeverityHigh
}

// ParseSeverity parses a severity token case-insensitively. An unrecognized
// token is a validation error, never a silent default.
func ParseSeverity(token string) (Severity, error) {
	s := Severity(strings.ToLower(strings.TrimSpace(token)))
	if _, ok := severityRanks[s]; !ok {
		return "", fmt.Errorf("%w: unknown severity %q", ErrValidation, token)
	}
	return s, nil
}

// Category is the closed set of finding categories. Categories have no
// ordering.
type Category string

const (
	CategoryBug             Category = "bug"
	CategorySecurity        Category = "security"
	CategoryPerformance     Category = "performance"
	CategoryMaintainability Category = "maintainability"
	CategoryStyle           Category = "style"
	CategoryDocumentation   Category = "documentation"
	CategoryTesting         Category = "testing"
	CategoryArchitecture    Category = "architecture"
)

var validCategories = map[Category]struct{}{
	CategoryBug:             {},
	CategorySecurity:        {},
	CategoryPerformance:     {},
	CategoryMaintainability: {},
	CategoryStyle:           {},
	CategoryDocumentation:   {},
	CategoryTesting:         {},
	CategoryArchitecture:    {},
}

// ParseCategory parses a category token case-insensitively. An unrecognized
// token is a validation error.
func ParseCategory(token string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(token)))
	if _, ok := validCategories[c]; !ok {
		return "", fmt.Errorf("%w: unknown category %q", ErrValidation, token)
	}
	return c, nil
}

// Location points at the code a finding refers to. StartLine is 1-based and
// required; the remaining fields are optional.
type Location struct {
	FilePath    string `json:"file_path"`
	StartLine   int    `json:"start_line"`
	EndLine     int    `json:"end_line,omitempty"`
	StartColumn int    `json:"start_column,omitempty"`
	EndColumn   int    `json:"end_column,omitempty"`
}

func (l Location) String() string {
	if l.EndLine != 0 && l.EndLine != l.StartLine {
		return fmt.Sprintf("%s:%d-%d", l.FilePath, l.StartLine, l.EndLine)
	}
	return fmt.Sprintf("%s:%d", l.FilePath, l.StartLine)
}

// Finding is a single reported issue. Findings are immutable once created;
// uniqueness of ID is a convention, not enforced.
type Finding struct {
	ID         string            `json:"id"`
	Severity   Severity          `json:"severity"`
	Category   Category          `json:"category"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	Location   Location          `json:"location"`
	Suggestion string            `json:"suggestion,omitempty"`
	Snippet    string            `json:"snippet,omitempty"`
	Analyzer   string            `json:"analyzer"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

func (f Finding) String() string {
	return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(string(f.Severity)), f.Location, f.Title)
}

// ReviewStatus is the review lifecycle state. COMPLETED and FAILED are
// terminal.
type ReviewStatus string

const (
	StatusPending    ReviewStatus = "pending"
	StatusInProgress ReviewStatus = "in_progress"
	StatusCompleted  ReviewStatus = "completed"
	StatusFailed     ReviewStatus = "failed"
)

// ReviewSummary holds the incrementally maintained severity counters for a
// review. Counts are updated on every insertion, never recomputed lazily.
type ReviewSummary struct {
	TotalFindings int `json:"total_findings"`
	Critical      int `json:"critical"`
	High          int `json:"high"`
	Medium        int `json:"medium"`
	Low           int `json:"low"`
	Info          int `json:"info"`
	FilesAnalyzed int `json:"files_analyzed"`
	LinesAnalyzed int `json:"lines_analyzed"`
}

// BlockingIssues is the number of findings that block approval.
func (s ReviewSummary) BlockingIssues() int {
	return s.Critical + s.High
}

// IsApproved reports whether the review passes (no critical or high findings).
func (s ReviewSummary) IsApproved() bool {
	return s.BlockingIssues() == 0
}

// Review aggregates findings for one unit of work, typically a pull request.
// A Review is not internally synchronized: concurrent AddFinding calls require
// external serialization, usually a single goroutine consuming orchestrator
// output after the fan-out joins.
type Review struct {
	ID          string            `json:"id"`
	Status      ReviewStatus      `json:"status"`
	Findings    []Finding         `json:"findings"`
	Summary     ReviewSummary     `json:"summary"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	CompletedAt time.Time         `json:"completed_at,omitempty"`
}

// NewReview creates a pending review. An empty id gets a generated UUID.
func NewReview(id string) *Review {
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()
	return &Review{
		ID:        id,
		Status:    StatusPending,
		Metadata:  map[string]string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddFinding appends the finding and updates the summary counters in the same
// step, keeping the invariant that counts always equal the findings present.
func (r *Review) AddFinding(f Finding) {
	r.Findings = append(r.Findings, f)
	r.Summary.TotalFindings++

	switch f.Severity {
	case SeverityCritical:
		r.Summary.Critical++
	case SeverityHigh:
		r.Summary.High++
	case SeverityMedium:
		r.Summary.Medium++
	case SeverityLow:
		r.Summary.Low++
	case SeverityInfo:
		r.Summary.Info++
	}

	r.UpdatedAt = time.Now().UTC()
}

// FindingsBySeverity returns findings of the given severity in insertion order.
func (r *Review) FindingsBySeverity(s Severity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == s {
			out = append(out, f)
		}
	}
	return out
}

// FindingsByCategory returns findings of the given category in insertion order.
func (r *Review) FindingsByCategory(c Category) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Category == c {
			out = append(out, f)
		}
	}
	return out
}

// isTerminal reports whether the review has reached a final status.
func (r *Review) isTerminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// MarkInProgress moves a pending review into the in-progress state.
func (r *Review) MarkInProgress() error {
	if r.isTerminal() {
		return fmt.Errorf("%w: review %s is %s", ErrReviewTerminal, r.ID, r.Status)
	}
	r.Status = StatusInProgress
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkCompleted sets the terminal COMPLETED status. Calling it on an already
// terminal review returns ErrReviewTerminal; retrying completion is a caller
// bug we refuse to hide.
func (r *Review) MarkCompleted() error {
	if r.isTerminal() {
		return fmt.Errorf("%w: review %s is %s", ErrReviewTerminal, r.ID, r.Status)
	}
	now := time.Now().UTC()
	r.Status = StatusCompleted
	r.CompletedAt = now
	r.UpdatedAt = now
	return nil
}

// MarkFailed sets the terminal FAILED status. Same terminal-state rule as
// MarkCompleted.
func (r *Review) MarkFailed() error {
	if r.isTerminal() {
		return fmt.Errorf("%w: review %s is %s", ErrReviewTerminal, r.ID, r.Status)
	}
	r.Status = StatusFailed
	r.UpdatedAt = time.Now().UTC()
	return nil
}
