// Package corpus manages the labeled benchmark corpus document: loading,
// template generation, curation tracking and transactional batch edits. The
// document is treated as a small transactional store: full read, in-memory
// validation of the complete change set, single atomic rewrite.
package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sevigo/professor/internal/benchmark"
	"github.com/sevigo/professor/internal/core"
)

// ErrPersistence marks a corpus read or write failure. It is surfaced to the
// caller without automatic retry.
var ErrPersistence = errors.New("corpus persistence failed")

// LanguageTarget is a desired case count for one language in the corpus
// template. Order is meaningful: it fixes template generation order.
type LanguageTarget struct {
	Language string
	Count    int
}

// DefaultLanguageTargets is the standard corpus composition.
var DefaultLanguageTargets = []LanguageTarget{
	{Language: "python", Count: 10},
	{Language: "javascript", Count: 8},
	{Language: "typescript", Count: 8},
	{Language: "java", Count: 8},
	{Language: "go", Count: 8},
	{Language: "rust", Count: 4},
	{Language: "cpp", Count: 4},
}

// repoFamilyCycle assigns repo families round-robin during template
// generation.
var repoFamilyCycle = []string{"backend", "frontend", "infra", "systems", "data"}

// FindingPayload is the wire form of a labeled finding inside the corpus
// document. Tokens are validated when the payload is converted or applied.
type FindingPayload struct {
	Signature string `json:"signature"`
	Severity  string `json:"severity"`
	Category  string `json:"category"`
}

// CaseDocument is the wire form of one benchmark case.
type CaseDocument struct {
	CaseID            string           `json:"case_id"`
	Language          string           `json:"language"`
	RepoFamily        string           `json:"repo_family"`
	SourceURL         string           `json:"source_url"`
	Notes             string           `json:"notes"`
	ExpectedBlocked   *bool            `json:"expected_blocked,omitempty"`
	PredictedBlocked  *bool            `json:"predicted_blocked,omitempty"`
	ExpectedFindings  []FindingPayload `json:"expected_findings"`
	PredictedFindings []FindingPayload `json:"predicted_findings"`
}

// Meta describes the corpus document itself.
type Meta struct {
	Description     string         `json:"description"`
	TotalCases      int            `json:"total_cases"`
	LanguageTargets map[string]int `json:"language_targets"`
	CurationGuide   string         `json:"curation_guide"`
}

// Document is the full corpus file.
type Document struct {
	Meta  Meta           `json:"meta"`
	Cases []CaseDocument `json:"cases"`
}

// Store reads and writes one corpus document. A store assumes single-writer
// access to its file; concurrent writers are out of scope.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a store for the corpus file at path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Path returns the corpus file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads and parses the corpus document.
func (s *Store) Load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrPersistence, s.path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrPersistence, s.path, err)
	}
	return &doc, nil
}

// Save rewrites the corpus document atomically: the full document is written
// to a temporary file in the same directory, synced, then renamed over the
// original so a crash mid-write never leaves a half-written corpus.
func (s *Store) Save(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding corpus: %v", ErrPersistence, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".corpus-*.json")
	if err != nil {
		return fmt.Errorf("%w: creating temp file in %s: %v", ErrPersistence, dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		// Best-effort cleanup; after a successful rename this is a no-op.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: writing %s: %v", ErrPersistence, tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: syncing %s: %v", ErrPersistence, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %v", ErrPersistence, tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: renaming %s to %s: %v", ErrPersistence, tmpName, s.path, err)
	}

	s.logger.Debug("corpus persisted", "path", s.path, "cases", len(doc.Cases))
	return nil
}

// GenerateTemplate writes a fresh corpus template with empty cases for the
// given language targets and returns the generated document. Reloading the
// produced document yields the same case count and case id set.
func (s *Store) GenerateTemplate(targets []LanguageTarget) (*Document, error) {
	if len(targets) == 0 {
		targets = DefaultLanguageTargets
	}

	var cases []CaseDocument
	cursor := 0
	targetMap := make(map[string]int, len(targets))
	for _, target := range targets {
		targetMap[target.Language] = target.Count
		prefix := target.Language
		if len(prefix) > 3 {
			prefix = prefix[:3]
		}
		for index := 1; index <= target.Count; index++ {
			cases = append(cases, CaseDocument{
				CaseID:            fmt.Sprintf("%s-%03d", prefix, index),
				Language:          target.Language,
				RepoFamily:        repoFamilyCycle[cursor%len(repoFamilyCycle)],
				ExpectedFindings:  []FindingPayload{},
				PredictedFindings: []FindingPayload{},
			})
			cursor++
		}
	}

	doc := &Document{
		Meta: Meta{
			Description:     "Benchmark corpus template",
			TotalCases:      len(cases),
			LanguageTargets: targetMap,
			CurationGuide:   "Fill expected_findings with validated ground truth findings.",
		},
		Cases: cases,
	}
	if err := s.Save(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Dataset converts the document into the evaluator's in-memory form,
// validating every severity/category token strictly.
func (d *Document) Dataset() (benchmark.Dataset, error) {
	cases := make([]benchmark.Case, 0, len(d.Cases))
	for _, row := range d.Cases {
		expected, err := convertFindings(row.ExpectedFindings)
		if err != nil {
			return benchmark.Dataset{}, fmt.Errorf("case %q expected findings: %w", row.CaseID, err)
		}
		predicted, err := convertFindings(row.PredictedFindings)
		if err != nil {
			return benchmark.Dataset{}, fmt.Errorf("case %q predicted findings: %w", row.CaseID, err)
		}

		language := row.Language
		if language == "" {
			language = "unknown"
		}
		family := row.RepoFamily
		if family == "" {
			family = "unknown"
		}

		cases = append(cases, benchmark.Case{
			CaseID:           row.CaseID,
			Language:         language,
			RepoFamily:       family,
			SourceURL:        row.SourceURL,
			Notes:            row.Notes,
			Expected:         expected,
			Predicted:        predicted,
			ExpectedBlocked:  row.ExpectedBlocked,
			PredictedBlocked: row.PredictedBlocked,
		})
	}
	return benchmark.Dataset{Cases: cases}, nil
}

func convertFindings(payloads []FindingPayload) ([]benchmark.LabeledFinding, error) {
	findings := make([]benchmark.LabeledFinding, 0, len(payloads))
	for _, p := range payloads {
		f, err := benchmark.NewLabeledFinding(p.Signature, p.Severity, p.Category)
		if err != nil {
			return nil, err
		}
		findings = append(findings, f)
	}
	return findings, nil
}

// validatePayload checks a finding payload for the required fields and
// parsable tokens without mutating anything.
func validatePayload(p FindingPayload) error {
	var missing []string
	if strings.TrimSpace(p.Signature) == "" {
		missing = append(missing, "signature")
	}
	if strings.TrimSpace(p.Severity) == "" {
		missing = append(missing, "severity")
	}
	if strings.TrimSpace(p.Category) == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: finding payload missing required fields: %s",
			core.ErrValidation, strings.Join(missing, ", "))
	}
	if _, err := core.ParseSeverity(p.Severity); err != nil {
		return err
	}
	if _, err := core.ParseCategory(p.Category); err != nil {
		return err
	}
	return nil
}
