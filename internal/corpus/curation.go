package corpus

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/sevigo/professor/internal/benchmark"
	"github.com/sevigo/professor/internal/core"
)

// CurationStatus is a derived completeness snapshot of a dataset. It is
// recomputed from the dataset on each call, never persisted.
type CurationStatus struct {
	Valid           bool               `json:"valid"`
	TotalCases      int                `json:"total_cases"`
	CuratedCases    int                `json:"curated_cases"`
	CompletionRatio float64            `json:"completion_ratio"`
	ByLanguage      map[string]float64 `json:"by_language"`
	PendingCaseIDs  []string           `json:"pending_case_ids"`
	Issues          []string           `json:"issues"`
}

// CurationRequirements configure what counts as a curated case.
type CurationRequirements struct {
	MinExpectedFindings int
	RequireSourceURL    bool
}

// DefaultCurationRequirements demand one expected finding and a source URL.
func DefaultCurationRequirements() CurationRequirements {
	return CurationRequirements{MinExpectedFindings: 1, RequireSourceURL: true}
}

// EvaluateCuration reports how complete the labeled dataset is: a case is
// curated iff it has enough expected findings and, when required, a non-empty
// source reference.
func EvaluateCuration(dataset benchmark.Dataset, reqs CurationRequirements) CurationStatus {
	total := len(dataset.Cases)
	if total == 0 {
		return CurationStatus{
			ByLanguage:     map[string]float64{},
			PendingCaseIDs: []string{},
			Issues:         []string{"Dataset has no cases."},
		}
	}

	var pending []string
	languageTotals := map[string]int{}
	languageCurated := map[string]int{}
	missingSource := false
	missingFindings := false

	for _, c := range dataset.Cases {
		language := strings.ToLower(c.Language)
		languageTotals[language]++

		hasFindings := len(c.Expected) >= reqs.MinExpectedFindings
		hasSource := !reqs.RequireSourceURL || strings.TrimSpace(c.SourceURL) != ""
		if !hasFindings {
			missingFindings = true
		}
		if reqs.RequireSourceURL && strings.TrimSpace(c.SourceURL) == "" {
			missingSource = true
		}

		if hasFindings && hasSource {
			languageCurated[language]++
		} else {
			pending = append(pending, c.CaseID)
		}
	}

	curated := total - len(pending)
	byLanguage := make(map[string]float64, len(languageTotals))
	for language, count := range languageTotals {
		byLanguage[language] = round4(float64(languageCurated[language]) / float64(count))
	}

	var issues []string
	if curated < total {
		issues = append(issues, fmt.Sprintf("%d case(s) still missing curation requirements.", len(pending)))
	}
	if missingSource {
		issues = append(issues, "Some cases are missing source_url metadata.")
	}
	if missingFindings {
		issues = append(issues, "Some cases are missing expected findings labels.")
	}

	return CurationStatus{
		Valid:           len(issues) == 0,
		TotalCases:      total,
		CuratedCases:    curated,
		CompletionRatio: round4(float64(curated) / float64(total)),
		ByLanguage:      byLanguage,
		PendingCaseIDs:  pending,
		Issues:          issues,
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// UpdateItem is one entry of a batch update document. Nil fields are left
// untouched; finding payloads are appended.
type UpdateItem struct {
	CaseID           string          `json:"case_id"`
	SourceURL        *string         `json:"source_url,omitempty"`
	Notes            *string         `json:"notes,omitempty"`
	ExpectedFinding  *FindingPayload `json:"expected_finding,omitempty"`
	PredictedFinding *FindingPayload `json:"predicted_finding,omitempty"`
}

// UpdateResult summarizes one applied update.
type UpdateResult struct {
	CaseID         string `json:"case_id"`
	ExpectedCount  int    `json:"expected_count"`
	PredictedCount int    `json:"predicted_count"`
	SourceURLSet   bool   `json:"source_url_set"`
}

// UpdatesDocument is the wire form of a batch update file.
type UpdatesDocument struct {
	Meta    map[string]any `json:"meta,omitempty"`
	Updates []UpdateItem   `json:"updates"`
}

// LoadUpdates reads a batch update document from disk.
func LoadUpdates(path string) ([]UpdateItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrPersistence, path, err)
	}
	var doc UpdatesDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrPersistence, path, err)
	}
	if doc.Updates == nil {
		return nil, fmt.Errorf("%w: updates file must contain an 'updates' array", core.ErrValidation)
	}
	return doc.Updates, nil
}

// ApplyUpdates applies a batch of case updates with all-or-nothing
// semantics: every item is validated first (unknown case id or malformed
// finding payload aborts the whole batch with zero mutation), then all items
// are applied in memory and the document is persisted exactly once.
func (s *Store) ApplyUpdates(updates []UpdateItem) ([]UpdateResult, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}

	caseIndex := make(map[string]int, len(doc.Cases))
	for i, row := range doc.Cases {
		caseIndex[row.CaseID] = i
	}

	// Validation pass: nothing below may mutate the document.
	for _, update := range updates {
		caseID := strings.TrimSpace(update.CaseID)
		if caseID == "" {
			return nil, fmt.Errorf("%w: each update item must include a non-empty case_id", core.ErrValidation)
		}
		if _, ok := caseIndex[caseID]; !ok {
			return nil, fmt.Errorf("%w: case %q not found in corpus", core.ErrNotFound, caseID)
		}
		if update.ExpectedFinding != nil {
			if err := validatePayload(*update.ExpectedFinding); err != nil {
				return nil, fmt.Errorf("case %q: %w", caseID, err)
			}
		}
		if update.PredictedFinding != nil {
			if err := validatePayload(*update.PredictedFinding); err != nil {
				return nil, fmt.Errorf("case %q: %w", caseID, err)
			}
		}
	}

	// Apply pass.
	results := make([]UpdateResult, 0, len(updates))
	for _, update := range updates {
		row := &doc.Cases[caseIndex[strings.TrimSpace(update.CaseID)]]
		if update.SourceURL != nil {
			row.SourceURL = *update.SourceURL
		}
		if update.Notes != nil {
			row.Notes = *update.Notes
		}
		if update.ExpectedFinding != nil {
			row.ExpectedFindings = append(row.ExpectedFindings, *update.ExpectedFinding)
		}
		if update.PredictedFinding != nil {
			row.PredictedFindings = append(row.PredictedFindings, *update.PredictedFinding)
		}
		results = append(results, UpdateResult{
			CaseID:         row.CaseID,
			ExpectedCount:  len(row.ExpectedFindings),
			PredictedCount: len(row.PredictedFindings),
			SourceURLSet:   strings.TrimSpace(row.SourceURL) != "",
		})
	}

	if err := s.Save(doc); err != nil {
		return nil, err
	}

	s.logger.Info("corpus batch update applied", "items", len(updates), "path", s.path)
	return results, nil
}

// UpdateCase applies a single-case update; it shares the batch machinery so
// the same validation and atomic persist apply.
func (s *Store) UpdateCase(update UpdateItem) (UpdateResult, error) {
	results, err := s.ApplyUpdates([]UpdateItem{update})
	if err != nil {
		return UpdateResult{}, err
	}
	return results[0], nil
}

// GenerateWorkItems builds a batch update skeleton for pending cases, at most
// perLanguageLimit items per language, grouped deterministically.
func GenerateWorkItems(dataset benchmark.Dataset, perLanguageLimit int) UpdatesDocument {
	pendingByLanguage := map[string][]string{}
	for _, c := range dataset.Cases {
		hasFindings := len(c.Expected) > 0
		hasSource := strings.TrimSpace(c.SourceURL) != ""
		if !hasFindings || !hasSource {
			language := strings.ToLower(c.Language)
			pendingByLanguage[language] = append(pendingByLanguage[language], c.CaseID)
		}
	}

	languages := make([]string, 0, len(pendingByLanguage))
	for language := range pendingByLanguage {
		languages = append(languages, language)
	}
	sort.Strings(languages)

	var updates []UpdateItem
	for _, language := range languages {
		caseIDs := pendingByLanguage[language]
		limit := perLanguageLimit
		if limit > len(caseIDs) {
			limit = len(caseIDs)
		}
		for _, caseID := range caseIDs[:max(0, limit)] {
			sourceURL := ""
			notes := "triage:" + language
			updates = append(updates, UpdateItem{
				CaseID:    caseID,
				SourceURL: &sourceURL,
				Notes:     &notes,
				ExpectedFinding: &FindingPayload{
					Severity: string(core.SeverityHigh),
					Category: string(core.CategoryBug),
				},
			})
		}
	}

	return UpdatesDocument{
		Meta: map[string]any{
			"description":        "Curation work items",
			"per_language_limit": perLanguageLimit,
			"total_updates":      len(updates),
		},
		Updates: updates,
	}
}
