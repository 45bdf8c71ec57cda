package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/riftops/clash-coordinator/models"
)

var ErrAssignmentNotFound = errors.New("assignment not found")

// AssignmentRepository is the player→placement index. Put upserts so that a
// retried write after a partial failure converges instead of conflicting;
// Clear is idempotent for the same reason.
type AssignmentRepository interface {
	Get(ctx context.Context, playerID string, key models.TournamentKey) (*models.Assignment, error)
	Put(ctx context.Context, assignment *models.Assignment) error
	Clear(ctx context.Context, playerID string, key models.TournamentKey) error
}

type postgresAssignmentRepository struct {
	db *sql.DB
}

func NewPostgresAssignmentRepository(db *sql.DB) AssignmentRepository {
	return &postgresAssignmentRepository{db: db}
}

func (r *postgresAssignmentRepository) Get(ctx context.Context, playerID string, key models.TournamentKey) (*models.Assignment, error) {
	query := `
		SELECT id, player_id, server_name, tournament, day, kind, team_name, role, created_at
		FROM assignments
		WHERE player_id = $1 AND tournament = $2 AND day = $3`

	var assignment models.Assignment
	var teamName, role sql.NullString
	err := r.db.QueryRowContext(ctx, query, playerID, key.Tournament, key.Day).Scan(
		&assignment.ID,
		&assignment.PlayerID,
		&assignment.ServerName,
		&assignment.Tournament,
		&assignment.Day,
		&assignment.Kind,
		&teamName,
		&role,
		&assignment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment for player %s: %w", playerID, err)
	}

	assignment.TeamName = teamName.String
	assignment.Role = models.Role(role.String)
	return &assignment, nil
}

func (r *postgresAssignmentRepository) Put(ctx context.Context, assignment *models.Assignment) error {
	var teamName, role any
	if assignment.Kind == models.AssignmentTeam {
		teamName = assignment.TeamName
		role = string(assignment.Role)
	}

	query := `
		INSERT INTO assignments (player_id, server_name, tournament, day, kind, team_name, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (player_id, tournament, day)
		DO UPDATE SET server_name = EXCLUDED.server_name,
		              kind = EXCLUDED.kind,
		              team_name = EXCLUDED.team_name,
		              role = EXCLUDED.role
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		assignment.PlayerID,
		assignment.ServerName,
		assignment.Tournament,
		assignment.Day,
		assignment.Kind,
		teamName,
		role,
	).Scan(&assignment.ID, &assignment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record assignment for player %s: %w", assignment.PlayerID, err)
	}
	return nil
}

func (r *postgresAssignmentRepository) Clear(ctx context.Context, playerID string, key models.TournamentKey) error {
	// Idempotent: clearing an absent assignment is success.
	query := `DELETE FROM assignments WHERE player_id = $1 AND tournament = $2 AND day = $3`
	if _, err := r.db.ExecContext(ctx, query, playerID, key.Tournament, key.Day); err != nil {
		return fmt.Errorf("failed to clear assignment for player %s: %w", playerID, err)
	}
	return nil
}
