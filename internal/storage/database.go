// Package storage persists review verdicts and benchmark runs in Postgres.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	// import db drivers
	_ "github.com/lib/pq"

	"github.com/sevigo/professor/internal/core"
)

// ReviewRecord is the persisted form of one completed review.
type ReviewRecord struct {
	ID           string
	RepoFullName string
	PRNumber     int
	HeadSHA      string
	Status       string
	Verdict      string
	Approved     bool
	Confidence   float64
	Findings     []core.Finding
	Summary      core.ReviewSummary
	CreatedAt    time.Time
	CompletedAt  time.Time
}

// ReviewStore defines the database operations for review records.
type ReviewStore interface {
	SaveReview(ctx context.Context, record ReviewRecord) error
	GetLatestReviewForPR(ctx context.Context, repoFullName string, prNumber int) (*ReviewRecord, error)
}

type postgresReviewStore struct {
	db *sqlx.DB
}

// NewReviewStore creates a Postgres-backed ReviewStore.
func NewReviewStore(db *sqlx.DB) ReviewStore {
	return &postgresReviewStore{db: db}
}

// SaveReview inserts a new review record. Findings are stored as JSONB next
// to the denormalized severity counters used for querying.
func (s *postgresReviewStore) SaveReview(ctx context.Context, record ReviewRecord) error {
	findings, err := json.Marshal(record.Findings)
	if err != nil {
		return fmt.Errorf("encoding findings: %w", err)
	}

	query := `
		INSERT INTO reviews (
			id, repo_full_name, pr_number, head_sha, status, verdict, approved,
			confidence, total_findings, critical, high, medium, low, info,
			findings, created_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	var completedAt any
	if !record.CompletedAt.IsZero() {
		completedAt = record.CompletedAt
	}

	_, err = s.db.ExecContext(ctx, query,
		record.ID, record.RepoFullName, record.PRNumber, record.HeadSHA,
		record.Status, record.Verdict, record.Approved, record.Confidence,
		record.Summary.TotalFindings, record.Summary.Critical, record.Summary.High,
		record.Summary.Medium, record.Summary.Low, record.Summary.Info,
		findings, record.CreatedAt, completedAt)
	return err
}

// GetLatestReviewForPR retrieves the most recent review for a pull request.
func (s *postgresReviewStore) GetLatestReviewForPR(ctx context.Context, repoFullName string, prNumber int) (*ReviewRecord, error) {
	query := `
		SELECT id, repo_full_name, pr_number, head_sha, status, verdict, approved,
		       confidence, total_findings, critical, high, medium, low, info,
		       findings, created_at, completed_at
		FROM reviews
		WHERE repo_full_name = $1 AND pr_number = $2
		ORDER BY created_at DESC
		LIMIT 1`

	row := s.db.QueryRowContext(ctx, query, repoFullName, prNumber)

	var record ReviewRecord
	var findings []byte
	var completedAt sql.NullTime
	err := row.Scan(&record.ID, &record.RepoFullName, &record.PRNumber, &record.HeadSHA,
		&record.Status, &record.Verdict, &record.Approved, &record.Confidence,
		&record.Summary.TotalFindings, &record.Summary.Critical, &record.Summary.High,
		&record.Summary.Medium, &record.Summary.Low, &record.Summary.Info,
		&findings, &record.CreatedAt, &completedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no review found for PR %s#%d", core.ErrNotFound, repoFullName, prNumber)
		}
		return nil, err
	}

	if err := json.Unmarshal(findings, &record.Findings); err != nil {
		return nil, fmt.Errorf("decoding findings: %w", err)
	}
	if completedAt.Valid {
		record.CompletedAt = completedAt.Time
	}
	return &record, nil
}
