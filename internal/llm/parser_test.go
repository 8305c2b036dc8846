package llm

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/professor/internal/core"
	"github.com/sevigo/professor/internal/logger"
)

func discardLogger() *slog.Logger {
	return logger.NewDiscard()
}

func TestParseFindingsPlainDocument(t *testing.T) {
	raw := `{"findings": [
		{"severity": "high", "category": "security", "title": "Hardcoded secret",
		 "message": "API key committed to source.", "file_path": "cfg.go", "start_line": 12}
	]}`

	findings, err := ParseFindings(raw, "llm:test", "cfg.go", discardLogger())
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, core.SeverityHigh, findings[0].Severity)
	assert.Equal(t, core.CategorySecurity, findings[0].Category)
	assert.Equal(t, "cfg.go:12", findings[0].Location.String())
	assert.Equal(t, "llm:test", findings[0].Analyzer)
	assert.NotEmpty(t, findings[0].ID)
}

func TestParseFindingsStripsFenceAndProse(t *testing.T) {
	raw := "Here is my review:\n```json\n" +
		`{"findings": [{"severity": "low", "category": "style", "title": "Naming", "message": "m"}]}` +
		"\n```\nLet me know if you need more."

	findings, err := ParseFindings(raw, "llm:test", "a.go", discardLogger())
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, core.SeverityLow, findings[0].Severity)
}

func TestParseFindingsBareArray(t *testing.T) {
	raw := `[{"severity": "medium", "category": "performance", "title": "N+1 query", "message": "m"}]`

	findings, err := ParseFindings(raw, "llm:test", "repo.go", discardLogger())
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "repo.go", findings[0].Location.FilePath, "missing file_path falls back to the analyzed file")
	assert.Equal(t, 1, findings[0].Location.StartLine, "missing start_line defaults to 1")
}

func TestParseFindingsDropsInvalidEntries(t *testing.T) {
	raw := `{"findings": [
		{"severity": "urgent", "category": "security", "title": "bad severity", "message": "m"},
		{"severity": "high", "category": "vibes", "title": "bad category", "message": "m"},
		{"severity": "high", "category": "security", "title": "", "message": ""},
		{"severity": "high", "category": "security", "title": "kept", "message": "m"}
	]}`

	findings, err := ParseFindings(raw, "llm:test", "a.go", discardLogger())
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "kept", findings[0].Title)
}

func TestParseFindingsEmptyArray(t *testing.T) {
	findings, err := ParseFindings(`{"findings": []}`, "llm:test", "a.go", discardLogger())
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestParseFindingsNoJSON(t *testing.T) {
	_, err := ParseFindings("The code looks fine to me.", "llm:test", "a.go", discardLogger())
	require.Error(t, err)

	_, err = ParseFindings(`{"findings": [`, "llm:test", "a.go", discardLogger())
	require.Error(t, err)
}
