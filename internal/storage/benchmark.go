package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sevigo/professor/internal/benchmark"
)

// BenchmarkRun is the persisted form of one benchmark evaluation, keeping the
// aggregate metrics queryable and the full report as JSONB.
type BenchmarkRun struct {
	ID         string
	CorpusPath string
	Metrics    benchmark.Metrics
	GatePassed *bool
	Report     *benchmark.Report
	CreatedAt  time.Time
}

// BenchmarkStore defines the database operations for benchmark runs.
type BenchmarkStore interface {
	SaveRun(ctx context.Context, run BenchmarkRun) (string, error)
	ListRuns(ctx context.Context, limit int) ([]BenchmarkRun, error)
}

type postgresBenchmarkStore struct {
	db *sqlx.DB
}

// NewBenchmarkStore creates a Postgres-backed BenchmarkStore.
func NewBenchmarkStore(db *sqlx.DB) BenchmarkStore {
	return &postgresBenchmarkStore{db: db}
}

// SaveRun inserts a benchmark run and returns its id. An empty id gets a
// generated UUID.
func (s *postgresBenchmarkStore) SaveRun(ctx context.Context, run BenchmarkRun) (string, error) {
	id := run.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	report := []byte("{}")
	if run.Report != nil {
		encoded, err := json.Marshal(run.Report)
		if err != nil {
			return "", fmt.Errorf("encoding report: %w", err)
		}
		report = encoded
	}

	query := `
		INSERT INTO benchmark_runs (
			id, corpus_path, total_cases, mean_precision, mean_recall, mean_f1,
			mean_severe_recall, verdict_accuracy, gate_passed, report, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := s.db.ExecContext(ctx, query,
		id, run.CorpusPath, run.Metrics.TotalCases,
		run.Metrics.MeanPrecision, run.Metrics.MeanRecall, run.Metrics.MeanF1,
		run.Metrics.MeanSevereRecall, run.Metrics.VerdictAccuracy,
		run.GatePassed, report, createdAt)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListRuns returns the most recent benchmark runs, newest first.
func (s *postgresBenchmarkStore) ListRuns(ctx context.Context, limit int) ([]BenchmarkRun, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, corpus_path, total_cases, mean_precision, mean_recall, mean_f1,
		       mean_severe_recall, verdict_accuracy, gate_passed, report, created_at
		FROM benchmark_runs
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []BenchmarkRun
	for rows.Next() {
		var run BenchmarkRun
		var report []byte
		if err := rows.Scan(&run.ID, &run.CorpusPath, &run.Metrics.TotalCases,
			&run.Metrics.MeanPrecision, &run.Metrics.MeanRecall, &run.Metrics.MeanF1,
			&run.Metrics.MeanSevereRecall, &run.Metrics.VerdictAccuracy,
			&run.GatePassed, &report, &run.CreatedAt); err != nil {
			return nil, err
		}
		if len(report) > 0 && string(report) != "{}" {
			var decoded benchmark.Report
			if err := json.Unmarshal(report, &decoded); err != nil {
				return nil, fmt.Errorf("decoding report for run %s: %w", run.ID, err)
			}
			run.Report = &decoded
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
