package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/professor/internal/core"
	"github.com/sevigo/professor/internal/logger"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.json")
	return NewStore(path, logger.NewDiscard())
}

func TestGenerateTemplateRoundTrip(t *testing.T) {
	store := testStore(t)

	generated, err := store.GenerateTemplate(DefaultLanguageTargets)
	require.NoError(t, err)
	assert.Equal(t, 50, generated.Meta.TotalCases)
	assert.Len(t, generated.Cases, 50)

	reloaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, reloaded.Cases, len(generated.Cases))

	generatedIDs := map[string]struct{}{}
	for _, c := range generated.Cases {
		generatedIDs[c.CaseID] = struct{}{}
	}
	for _, c := range reloaded.Cases {
		_, ok := generatedIDs[c.CaseID]
		assert.True(t, ok, "case id %s missing after reload", c.CaseID)
	}

	languages := map[string]struct{}{}
	for _, c := range reloaded.Cases {
		languages[c.Language] = struct{}{}
	}
	for _, want := range []string{"python", "javascript", "typescript", "java", "go", "rust", "cpp"} {
		_, ok := languages[want]
		assert.True(t, ok, "language %s missing from template", want)
	}
}

func TestGenerateTemplateCustomTargets(t *testing.T) {
	store := testStore(t)

	doc, err := store.GenerateTemplate([]LanguageTarget{{Language: "python", Count: 2}})
	require.NoError(t, err)
	require.Len(t, doc.Cases, 2)
	assert.Equal(t, "pyt-001", doc.Cases[0].CaseID)
	assert.Equal(t, "pyt-002", doc.Cases[1].CaseID)
	assert.Equal(t, "backend", doc.Cases[0].RepoFamily)
	assert.Equal(t, "frontend", doc.Cases[1].RepoFamily)
}

func TestLoadMissingFileIsPersistenceError(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.json"), logger.NewDiscard())

	_, err := store.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPersistence))
}

func TestLoadMalformedDocumentIsPersistenceError(t *testing.T) {
	store := testStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o600))

	_, err := store.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPersistence))
}

func TestDatasetConversionValidatesTokens(t *testing.T) {
	doc := &Document{Cases: []CaseDocument{
		{
			CaseID:   "c1",
			Language: "python",
			ExpectedFindings: []FindingPayload{
				{Signature: "a.py:10:sql", Severity: "HIGH", Category: "Security"},
			},
		},
	}}

	dataset, err := doc.Dataset()
	require.NoError(t, err)
	require.Len(t, dataset.Cases, 1)
	assert.Equal(t, core.SeverityHigh, dataset.Cases[0].Expected[0].Severity)

	doc.Cases[0].ExpectedFindings[0].Severity = "urgent"
	_, err = doc.Dataset()
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrValidation))
	assert.Contains(t, err.Error(), `case "c1"`)
}

func TestDatasetDefaultsUnknownLanguageAndFamily(t *testing.T) {
	doc := &Document{Cases: []CaseDocument{{CaseID: "c1"}}}

	dataset, err := doc.Dataset()
	require.NoError(t, err)
	assert.Equal(t, "unknown", dataset.Cases[0].Language)
	assert.Equal(t, "unknown", dataset.Cases[0].RepoFamily)
}

func TestSaveRewritesAtomically(t *testing.T) {
	store := testStore(t)
	_, err := store.GenerateTemplate([]LanguageTarget{{Language: "go", Count: 1}})
	require.NoError(t, err)

	// No temp files may remain next to the corpus after a save.
	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "corpus.json", entries[0].Name())
}
