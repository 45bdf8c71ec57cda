package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/riftops/clash-coordinator/models"
)

// PlayerRepository reads display profiles for payload enrichment. A missing
// id simply yields no map entry; profile maintenance belongs to the
// front-end, not to this service.
type PlayerRepository interface {
	BatchGet(ctx context.Context, ids []string) (map[string]*models.Player, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) BatchGet(ctx context.Context, ids []string) (map[string]*models.Player, error) {
	profiles := make(map[string]*models.Player, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}

	query := `
		SELECT id, name, server_name, preferred_champions, created_at
		FROM players
		WHERE id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to batch get players: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Player
		var serverName sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &serverName, pq.Array(&p.PreferredChampions), &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		p.ServerName = serverName.String
		profiles[p.ID] = &p
	}
	return profiles, rows.Err()
}
