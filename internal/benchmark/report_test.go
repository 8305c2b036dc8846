package benchmark

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/professor/internal/core"
)

func reportDataset() Dataset {
	return Dataset{Cases: []Case{
		{
			CaseID:     "r1",
			Language:   "typescript",
			RepoFamily: "frontend",
			Expected:   []LabeledFinding{labeled("a.ts:9:eval", core.SeverityHigh)},
			Predicted:  []LabeledFinding{labeled("a.ts:9:eval", core.SeverityHigh)},
		},
		{
			CaseID:     "r2",
			Language:   "go",
			RepoFamily: "backend",
			Expected:   []LabeledFinding{labeled("b.go:2:leak", core.SeverityMedium)},
			Predicted:  []LabeledFinding{},
		},
	}}
}

func TestMarkdownReportSections(t *testing.T) {
	md := NewReport(reportDataset()).Markdown()

	assert.Contains(t, md, "## Aggregate")
	assert.Contains(t, md, "## By Language")
	assert.Contains(t, md, "## By Repo Family")
	assert.Contains(t, md, "| Cases | 2 |")
	assert.Contains(t, md, "| go |")
	assert.Contains(t, md, "| frontend |")
}

func TestJSONReportShape(t *testing.T) {
	out, err := NewReport(reportDataset()).JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	aggregate, ok := decoded["aggregate"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), aggregate["total_cases"])

	langCards, ok := decoded["language_scorecards"].([]any)
	require.True(t, ok)
	require.Len(t, langCards, 2)
	first, ok := langCards[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "go", first["group"])

	_, ok = decoded["repo_family_scorecards"].([]any)
	assert.True(t, ok)
}

func TestReportOnEmptyDataset(t *testing.T) {
	report := NewReport(Dataset{})
	assert.Equal(t, 0, report.Aggregate.TotalCases)
	md := report.Markdown()
	assert.Contains(t, md, "| Cases | 0 |")
}
