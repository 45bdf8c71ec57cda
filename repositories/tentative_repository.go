package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/riftops/clash-coordinator/models"
)

var (
	ErrTentativeNotFound = errors.New("tentative queue not found")
	ErrTentativeConflict = errors.New("tentative queue already exists for this tournament day")
)

// TentativeRepository is the waiting-queue store: one row per (server,
// tournament, day), the player set as a single array column. As with teams,
// an emptied queue is deleted by the service in a separate call rather than
// persisted empty.
type TentativeRepository interface {
	Get(ctx context.Context, serverName string, key models.TournamentKey) (*models.TentativeEntry, error)
	Create(ctx context.Context, entry *models.TentativeEntry) error
	SetPlayers(ctx context.Context, entryID int, playerIDs []string) error
	Delete(ctx context.Context, serverName string, key models.TournamentKey) error
}

type postgresTentativeRepository struct {
	db *sql.DB
}

func NewPostgresTentativeRepository(db *sql.DB) TentativeRepository {
	return &postgresTentativeRepository{db: db}
}

func (r *postgresTentativeRepository) Get(ctx context.Context, serverName string, key models.TournamentKey) (*models.TentativeEntry, error) {
	query := `
		SELECT id, server_name, tournament, day, player_ids, created_at
		FROM tentative_queues
		WHERE server_name = $1 AND tournament = $2 AND day = $3`

	var entry models.TentativeEntry
	err := r.db.QueryRowContext(ctx, query, serverName, key.Tournament, key.Day).Scan(
		&entry.ID,
		&entry.ServerName,
		&entry.Tournament,
		&entry.Day,
		pq.Array(&entry.PlayerIDs),
		&entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTentativeNotFound
		}
		return nil, fmt.Errorf("failed to get tentative queue: %w", err)
	}
	return &entry, nil
}

func (r *postgresTentativeRepository) Create(ctx context.Context, entry *models.TentativeEntry) error {
	query := `
		INSERT INTO tentative_queues (server_name, tournament, day, player_ids)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		entry.ServerName,
		entry.Tournament,
		entry.Day,
		pq.Array(entry.PlayerIDs),
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrTentativeConflict
		}
		return fmt.Errorf("failed to create tentative queue: %w", err)
	}
	return nil
}

func (r *postgresTentativeRepository) SetPlayers(ctx context.Context, entryID int, playerIDs []string) error {
	query := `UPDATE tentative_queues SET player_ids = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, pq.Array(playerIDs), entryID)
	if err != nil {
		return fmt.Errorf("failed to update tentative queue %d: %w", entryID, err)
	}
	return checkAffectedRows(result, ErrTentativeNotFound)
}

func (r *postgresTentativeRepository) Delete(ctx context.Context, serverName string, key models.TournamentKey) error {
	// Idempotent: deleting an already-absent queue is success.
	query := `DELETE FROM tentative_queues WHERE server_name = $1 AND tournament = $2 AND day = $3`
	if _, err := r.db.ExecContext(ctx, query, serverName, key.Tournament, key.Day); err != nil {
		return fmt.Errorf("failed to delete tentative queue: %w", err)
	}
	return nil
}
