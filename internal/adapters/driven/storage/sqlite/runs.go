package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/pagegen/internal/core/domain"
	"github.com/custodia-labs/pagegen/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// Save stores or replaces a run report and its stage traces.
func (s *runStore) Save(ctx context.Context, report *domain.RunReport) error {
	if report == nil || report.RunID == "" {
		return domain.ErrInvalidInput
	}

	outputs, err := json.Marshal(nonNil(report.Outputs))
	if err != nil {
		return fmt.Errorf("marshalling outputs: %w", err)
	}
	failure := []byte(jsonNull)
	if report.Failure != nil {
		if failure, err = json.Marshal(report.Failure); err != nil {
			return fmt.Errorf("marshalling failure: %w", err)
		}
	}
	summary := report.Summary()

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, input, product, status, started_at, finished_at, duration_ns, failed_at, output_dir, outputs, failure)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			input = excluded.input,
			product = excluded.product,
			status = excluded.status,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			duration_ns = excluded.duration_ns,
			failed_at = excluded.failed_at,
			output_dir = excluded.output_dir,
			outputs = excluded.outputs,
			failure = excluded.failure
	`,
		report.RunID, report.Input, report.Product, string(report.Status),
		formatTime(report.StartedAt), formatTime(report.FinishedAt), int64(summary.Duration),
		summary.FailedAt, summary.OutputDir, string(outputs), string(failure),
	)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM run_stages WHERE run_id = ?", report.RunID); err != nil {
		return fmt.Errorf("clearing stages: %w", err)
	}
	for _, st := range report.Stages {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_stages (run_id, number, name, status, detail, duration_ns, error)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, report.RunID, st.Number, st.Name, string(st.Status), st.Detail, int64(st.Duration), st.Error)
		if err != nil {
			return fmt.Errorf("saving stage %d: %w", st.Number, err)
		}
	}

	return tx.Commit()
}

// Get retrieves a run report with its stage traces.
func (s *runStore) Get(ctx context.Context, runID string) (*domain.RunReport, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT run_id, input, product, status, started_at, finished_at, outputs, failure
		FROM runs WHERE run_id = ?
	`, runID)

	var (
		report                    domain.RunReport
		status, started, finished string
		outputsJSON, failureJSON  string
	)
	err := row.Scan(&report.RunID, &report.Input, &report.Product, &status, &started, &finished, &outputsJSON, &failureJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying run: %w", err)
	}

	report.Status = domain.RunStatus(status)
	if report.StartedAt, err = parseTime(started); err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	if report.FinishedAt, err = parseTime(finished); err != nil {
		return nil, fmt.Errorf("parsing finished_at: %w", err)
	}
	if err := json.Unmarshal([]byte(outputsJSON), &report.Outputs); err != nil {
		return nil, fmt.Errorf("unmarshalling outputs: %w", err)
	}
	if len(report.Outputs) == 0 {
		report.Outputs = nil
	}
	if failureJSON != jsonNull && failureJSON != "" {
		report.Failure = &domain.StageError{}
		if err := json.Unmarshal([]byte(failureJSON), report.Failure); err != nil {
			return nil, fmt.Errorf("unmarshalling failure: %w", err)
		}
	}

	stages, err := s.stages(ctx, runID)
	if err != nil {
		return nil, err
	}
	report.Stages = stages
	return &report, nil
}

func (s *runStore) stages(ctx context.Context, runID string) ([]domain.StageTrace, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT number, name, status, detail, duration_ns, error
		FROM run_stages WHERE run_id = ? ORDER BY number
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying stages: %w", err)
	}
	defer rows.Close()

	var stages []domain.StageTrace //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			st       domain.StageTrace
			status   string
			duration int64
		)
		if err := rows.Scan(&st.Number, &st.Name, &status, &st.Detail, &duration, &st.Error); err != nil {
			return nil, fmt.Errorf("scanning stage: %w", err)
		}
		st.Status = domain.StageStatus(status)
		st.Duration = time.Duration(duration)
		stages = append(stages, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stages: %w", err)
	}
	return stages, nil
}

// List returns run summaries, newest first. A limit of 0 returns all.
func (s *runStore) List(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	query := `
		SELECT run_id, input, product, status, started_at, duration_ns, failed_at, output_dir
		FROM runs ORDER BY started_at DESC, run_id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	summaries := []domain.RunSummary{}
	for rows.Next() {
		var (
			sum      domain.RunSummary
			status   string
			started  string
			duration int64
		)
		if err := rows.Scan(&sum.RunID, &sum.Input, &sum.Product, &status, &started, &duration, &sum.FailedAt, &sum.OutputDir); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		sum.Status = domain.RunStatus(status)
		sum.Duration = time.Duration(duration)
		if sum.StartedAt, err = parseTime(started); err != nil {
			return nil, fmt.Errorf("parsing started_at: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return summaries, nil
}

// Delete removes a run; its stages follow through the foreign key.
func (s *runStore) Delete(ctx context.Context, runID string) error {
	result, err := s.store.db.ExecContext(ctx, "DELETE FROM runs WHERE run_id = ?", runID)
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, s)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
