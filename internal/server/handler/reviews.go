package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sevigo/professor/internal/core"
	"github.com/sevigo/professor/internal/storage"
)

// ReviewsHandler serves persisted review verdicts over the API.
type ReviewsHandler struct {
	store  storage.ReviewStore
	logger *slog.Logger
}

// NewReviewsHandler creates a handler backed by the given store. A nil store
// means persistence is disabled and every lookup answers 503.
func NewReviewsHandler(store storage.ReviewStore, logger *slog.Logger) *ReviewsHandler {
	return &ReviewsHandler{store: store, logger: logger}
}

type reviewResponse struct {
	ID           string             `json:"id"`
	RepoFullName string             `json:"repo_full_name"`
	PRNumber     int                `json:"pr_number"`
	HeadSHA      string             `json:"head_sha"`
	Status       string             `json:"status"`
	Verdict      string             `json:"verdict"`
	Approved     bool               `json:"approved"`
	Confidence   float64            `json:"confidence"`
	Summary      core.ReviewSummary `json:"summary"`
	Findings     []core.Finding     `json:"findings"`
	CreatedAt    time.Time          `json:"created_at"`
	CompletedAt  *time.Time         `json:"completed_at,omitempty"`
}

// GetLatest returns the most recent review for a pull request.
func (h *ReviewsHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, "Review persistence is disabled", http.StatusServiceUnavailable)
		return
	}

	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number <= 0 {
		http.Error(w, "Invalid pull request number", http.StatusBadRequest)
		return
	}

	repoFullName := owner + "/" + repo
	record, err := h.store.GetLatestReviewForPR(r.Context(), repoFullName, number)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			http.Error(w, "No review found for this pull request", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load review", "repo", repoFullName, "pr", number, "error", err)
		http.Error(w, "Failed to load review", http.StatusInternalServerError)
		return
	}

	resp := reviewResponse{
		ID:           record.ID,
		RepoFullName: record.RepoFullName,
		PRNumber:     record.PRNumber,
		HeadSHA:      record.HeadSHA,
		Status:       record.Status,
		Verdict:      record.Verdict,
		Approved:     record.Approved,
		Confidence:   record.Confidence,
		Summary:      record.Summary,
		Findings:     record.Findings,
		CreatedAt:    record.CreatedAt,
	}
	if !record.CompletedAt.IsZero() {
		completedAt := record.CompletedAt
		resp.CompletedAt = &completedAt
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode review response", "error", err)
	}
}
