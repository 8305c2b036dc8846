package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/professor/internal/core"
	"github.com/sevigo/professor/internal/storage"
)

type fakeReviewStore struct {
	record *storage.ReviewRecord
	err    error
}

func (f *fakeReviewStore) SaveReview(context.Context, storage.ReviewRecord) error {
	return nil
}

func (f *fakeReviewStore) GetLatestReviewForPR(_ context.Context, repoFullName string, prNumber int) (*storage.ReviewRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.record == nil || f.record.RepoFullName != repoFullName || f.record.PRNumber != prNumber {
		return nil, fmt.Errorf("%w: no review found", core.ErrNotFound)
	}
	return f.record, nil
}

func reviewsRouter(store storage.ReviewStore) *chi.Mux {
	r := chi.NewRouter()
	h := NewReviewsHandler(store, discardLogger())
	r.Get("/reviews/{owner}/{repo}/{number}", h.GetLatest)
	return r
}

func TestGetLatestReviewReturnsRecord(t *testing.T) {
	completed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeReviewStore{record: &storage.ReviewRecord{
		ID:           "rev-1",
		RepoFullName: "sevigo/demo",
		PRNumber:     12,
		HeadSHA:      "abc123",
		Status:       string(core.StatusCompleted),
		Verdict:      "reject",
		Approved:     false,
		Confidence:   0.55,
		Summary:      core.ReviewSummary{TotalFindings: 1, Critical: 1, FilesAnalyzed: 3},
		Findings:     []core.Finding{{ID: "f-1", Title: "Hardcoded credential", Severity: core.SeverityCritical, Category: core.CategorySecurity}},
		CreatedAt:    completed.Add(-time.Minute),
		CompletedAt:  completed,
	}}

	rec := httptest.NewRecorder()
	reviewsRouter(store).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reviews/sevigo/demo/12", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp reviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "sevigo/demo", resp.RepoFullName)
	assert.Equal(t, 12, resp.PRNumber)
	assert.Equal(t, "reject", resp.Verdict)
	assert.False(t, resp.Approved)
	assert.Len(t, resp.Findings, 1)
	require.NotNil(t, resp.CompletedAt)
	assert.Equal(t, completed, resp.CompletedAt.UTC())
}

func TestGetLatestReviewNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	reviewsRouter(&fakeReviewStore{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reviews/sevigo/demo/99", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetLatestReviewInvalidNumber(t *testing.T) {
	rec := httptest.NewRecorder()
	reviewsRouter(&fakeReviewStore{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reviews/sevigo/demo/abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetLatestReviewPersistenceDisabled(t *testing.T) {
	rec := httptest.NewRecorder()
	reviewsRouter(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reviews/sevigo/demo/12", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetLatestReviewStoreError(t *testing.T) {
	store := &fakeReviewStore{err: fmt.Errorf("connection reset")}

	rec := httptest.NewRecorder()
	reviewsRouter(store).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reviews/sevigo/demo/12", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
