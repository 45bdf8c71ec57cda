package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/riftops/clash-coordinator/models"
)

// TournamentRepository reads the Clash schedule. Rows are written by the
// schedule ingestion job, which is not part of this service; only open-day
// lookups and the ended-day sweep live here.
type TournamentRepository interface {
	FindOpen(ctx context.Context, name, day string, now time.Time) ([]*models.Tournament, error)
	DeleteEnded(ctx context.Context, now time.Time) (int64, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

// FindOpen returns tournament days whose start time is still in the future,
// optionally narrowed by name and day. An empty result is not an error.
func (r *postgresTournamentRepository) FindOpen(ctx context.Context, name, day string, now time.Time) ([]*models.Tournament, error) {
	query := `
		SELECT id, name, day, start_time, registration_time, created_at
		FROM tournaments
		WHERE start_time > $1`
	args := []any{now}

	var conditions []string
	if name != "" {
		args = append(args, name)
		conditions = append(conditions, fmt.Sprintf("name = $%d", len(args)))
	}
	if day != "" {
		args = append(args, day)
		conditions = append(conditions, fmt.Sprintf("day = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_time, day"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list open tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if err := rows.Scan(&t.ID, &t.Name, &t.Day, &t.StartTime, &t.RegistrationTime, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		tournaments = append(tournaments, &t)
	}
	return tournaments, rows.Err()
}

// DeleteEnded removes tournament days that have already started; their
// registration windows are over and they no longer back any valid key.
func (r *postgresTournamentRepository) DeleteEnded(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE start_time <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete ended tournaments: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rowsAffected, nil
}
