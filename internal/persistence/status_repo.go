package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nozzlewatch/nozzlewatch/internal/domain"
)

// StatusRepo stores the scalar part of received status snapshots. Images are
// not kept.
type StatusRepo struct {
	db *sql.DB
}

func NewStatusRepo(db *sql.DB) *StatusRepo {
	return &StatusRepo{db: db}
}

func (r *StatusRepo) Insert(ctx context.Context, s domain.StatusSnapshot) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO status_history(received_at, failure_count, ai_status, cpu_temperature)
		VALUES (?, ?, ?, ?)
	`, timeToUnixMillis(s.ReceivedAt), s.FailureCount, s.AIStatus, s.CPUTemperature)
	if err != nil {
		return fmt.Errorf("insert status: %w", err)
	}

	return nil
}

// ListRecent returns up to limit snapshots, newest first.
func (r *StatusRepo) ListRecent(ctx context.Context, limit int) ([]domain.StatusSnapshot, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT received_at, failure_count, ai_status, cpu_temperature
		FROM status_history
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	defer rows.Close()

	var out []domain.StatusSnapshot
	for rows.Next() {
		var (
			s          domain.StatusSnapshot
			receivedMs int64
		)
		if err := rows.Scan(&receivedMs, &s.FailureCount, &s.AIStatus, &s.CPUTemperature); err != nil {
			return nil, fmt.Errorf("scan status: %w", err)
		}
		s.ReceivedAt = unixMillisToTime(receivedMs)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status history: %w", err)
	}

	return out, nil
}

// Prune keeps only the newest keep rows and returns the number removed.
func (r *StatusRepo) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM status_history
		WHERE id NOT IN (
			SELECT id FROM status_history ORDER BY id DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune status history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune status history: %w", err)
	}

	return n, nil
}
