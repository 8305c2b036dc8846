package corpus

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/professor/internal/benchmark"
	"github.com/sevigo/professor/internal/core"
)

func strPtr(s string) *string { return &s }

func TestEvaluateCurationFlagsPendingCases(t *testing.T) {
	dataset := benchmark.Dataset{Cases: []benchmark.Case{
		{
			CaseID:    "ok-1",
			Language:  "python",
			SourceURL: "https://example.com/pr/1",
			Expected: []benchmark.LabeledFinding{
				{Signature: "a.py:1:x", Severity: core.SeverityHigh, Category: core.CategorySecurity},
			},
		},
		{CaseID: "todo-1", Language: "go"},
	}}

	status := EvaluateCuration(dataset, DefaultCurationRequirements())
	assert.False(t, status.Valid)
	assert.Equal(t, 2, status.TotalCases)
	assert.Equal(t, 1, status.CuratedCases)
	assert.Equal(t, 0.5, status.CompletionRatio)
	assert.Equal(t, []string{"todo-1"}, status.PendingCaseIDs)
	assert.Equal(t, 1.0, status.ByLanguage["python"])
	assert.Equal(t, 0.0, status.ByLanguage["go"])
	assert.NotEmpty(t, status.Issues)
}

func TestEvaluateCurationEmptyDataset(t *testing.T) {
	status := EvaluateCuration(benchmark.Dataset{}, DefaultCurationRequirements())
	assert.False(t, status.Valid)
	assert.Equal(t, 0, status.TotalCases)
	assert.Equal(t, []string{"Dataset has no cases."}, status.Issues)
}

func TestEvaluateCurationSourceURLOptional(t *testing.T) {
	dataset := benchmark.Dataset{Cases: []benchmark.Case{
		{
			CaseID:   "no-source",
			Language: "go",
			Expected: []benchmark.LabeledFinding{
				{Signature: "a.go:1:x", Severity: core.SeverityHigh, Category: core.CategoryBug},
			},
		},
	}}

	status := EvaluateCuration(dataset, CurationRequirements{MinExpectedFindings: 1, RequireSourceURL: false})
	assert.True(t, status.Valid)
	assert.Equal(t, 1, status.CuratedCases)
}

func TestApplyUpdatesAppendsFindingsAndMetadata(t *testing.T) {
	store := testStore(t)
	_, err := store.GenerateTemplate([]LanguageTarget{{Language: "python", Count: 2}})
	require.NoError(t, err)

	results, err := store.ApplyUpdates([]UpdateItem{
		{
			CaseID:    "pyt-001",
			SourceURL: strPtr("https://github.com/org/repo/pull/11"),
			ExpectedFinding: &FindingPayload{
				Signature: "a.py:1:issue",
				Severity:  "high",
				Category:  "security",
			},
		},
		{
			CaseID: "pyt-002",
			Notes:  strPtr("triaged"),
			PredictedFinding: &FindingPayload{
				Signature: "a.py:2:issue",
				Severity:  "medium",
				Category:  "maintainability",
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].ExpectedCount)
	assert.True(t, results[0].SourceURLSet)
	assert.Equal(t, 1, results[1].PredictedCount)

	reloaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/org/repo/pull/11", reloaded.Cases[0].SourceURL)
	assert.Len(t, reloaded.Cases[0].ExpectedFindings, 1)
	assert.Equal(t, "triaged", reloaded.Cases[1].Notes)
	assert.Len(t, reloaded.Cases[1].PredictedFindings, 1)
}

func TestApplyUpdatesUnknownCaseMutatesNothing(t *testing.T) {
	store := testStore(t)
	_, err := store.GenerateTemplate([]LanguageTarget{{Language: "python", Count: 1}})
	require.NoError(t, err)

	_, err = store.ApplyUpdates([]UpdateItem{
		{
			CaseID:    "pyt-001",
			SourceURL: strPtr("https://example.com/pr/1"),
		},
		{
			CaseID: "ghost-999",
			Notes:  strPtr("should never land"),
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNotFound))

	reloaded, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, reloaded.Cases[0].SourceURL, "valid items in a failed batch must not be applied")
	assert.Empty(t, reloaded.Cases[0].Notes)
}

func TestApplyUpdatesInvalidPayloadMutatesNothing(t *testing.T) {
	store := testStore(t)
	_, err := store.GenerateTemplate([]LanguageTarget{{Language: "go", Count: 1}})
	require.NoError(t, err)

	tests := []struct {
		name    string
		payload FindingPayload
	}{
		{name: "missing signature", payload: FindingPayload{Severity: "high", Category: "bug"}},
		{name: "bad severity", payload: FindingPayload{Signature: "x.go:1", Severity: "urgent", Category: "bug"}},
		{name: "bad category", payload: FindingPayload{Signature: "x.go:1", Severity: "high", Category: "vibes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := tt.payload
			_, err := store.ApplyUpdates([]UpdateItem{{CaseID: "go-001", ExpectedFinding: &payload}})
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrValidation))

			reloaded, err := store.Load()
			require.NoError(t, err)
			assert.Empty(t, reloaded.Cases[0].ExpectedFindings)
		})
	}
}

func TestApplyUpdatesEmptyCaseID(t *testing.T) {
	store := testStore(t)
	_, err := store.GenerateTemplate([]LanguageTarget{{Language: "go", Count: 1}})
	require.NoError(t, err)

	_, err = store.ApplyUpdates([]UpdateItem{{CaseID: "  "}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrValidation))
}

func TestUpdateCaseSingle(t *testing.T) {
	store := testStore(t)
	_, err := store.GenerateTemplate([]LanguageTarget{{Language: "python", Count: 1}})
	require.NoError(t, err)

	result, err := store.UpdateCase(UpdateItem{
		CaseID:    "pyt-001",
		SourceURL: strPtr("https://github.com/org/repo/pull/1"),
		Notes:     strPtr("validated by reviewer"),
		ExpectedFinding: &FindingPayload{
			Signature: "a.py:10:sql",
			Severity:  "critical",
			Category:  "security",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.ExpectedCount)
	assert.True(t, result.SourceURLSet)
}

func TestLoadUpdates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "updates.json")
	payload := UpdatesDocument{Updates: []UpdateItem{{CaseID: "pyt-001", Notes: strPtr("checked")}}}
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	updates, err := LoadUpdates(path)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, "pyt-001", updates[0].CaseID)

	require.NoError(t, os.WriteFile(path, []byte(`{"meta":{}}`), 0o600))
	_, err = LoadUpdates(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrValidation))
}

func TestGenerateWorkItemsRespectsLanguageLimit(t *testing.T) {
	dataset := benchmark.Dataset{Cases: []benchmark.Case{
		{CaseID: "py-1", Language: "python"},
		{CaseID: "py-2", Language: "python"},
		{CaseID: "go-1", Language: "go"},
	}}

	doc := GenerateWorkItems(dataset, 1)
	assert.Equal(t, 2, doc.Meta["total_updates"])
	require.Len(t, doc.Updates, 2)
	assert.Equal(t, "go-1", doc.Updates[0].CaseID, "languages are processed in sorted order")
	assert.Equal(t, "py-1", doc.Updates[1].CaseID)
	assert.Equal(t, "triage:python", *doc.Updates[1].Notes)
}

func TestGenerateWorkItemsSkipsCuratedCases(t *testing.T) {
	dataset := benchmark.Dataset{Cases: []benchmark.Case{
		{
			CaseID:    "done",
			Language:  "go",
			SourceURL: "https://example.com/pr/2",
			Expected: []benchmark.LabeledFinding{
				{Signature: "a.go:1:x", Severity: core.SeverityHigh, Category: core.CategoryBug},
			},
		},
	}}

	doc := GenerateWorkItems(dataset, 3)
	assert.Empty(t, doc.Updates)
}
