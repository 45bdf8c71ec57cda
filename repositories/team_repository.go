package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/riftops/clash-coordinator/models"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamNameConflict = errors.New("team name already exists for this tournament day")
	ErrTeamRoleTaken    = errors.New("team role is already taken")
)

// TeamFilter narrows Find. Empty fields are not applied; validating which
// combinations are allowed is the service layer's job.
type TeamFilter struct {
	ServerName string
	Tournament string
	Day        string
	Name       string
}

// TeamRepository is the roster store. One row per team; each of the five role
// slots is its own nullable column so that a slot claim can be a single
// conditional update. Rows never hold an empty roster: the service deletes the
// row as a separate call once the last slot is cleared, so that the
// before/after snapshots it broadcasts stay accurate.
type TeamRepository interface {
	Find(ctx context.Context, filter TeamFilter) ([]*models.Team, error)
	GetByName(ctx context.Context, serverName string, key models.TournamentKey, name string) (*models.Team, error)
	Create(ctx context.Context, team *models.Team) error
	SetRole(ctx context.Context, teamID int, role models.Role, playerID string) error
	RemovePlayer(ctx context.Context, teamID int, playerID string) (*models.Team, error)
	Delete(ctx context.Context, serverName string, key models.TournamentKey, name string) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

var roleColumns = map[models.Role]string{
	models.RoleTop:     "top_player",
	models.RoleJungle:  "jungle_player",
	models.RoleMid:     "mid_player",
	models.RoleBot:     "bot_player",
	models.RoleSupport: "support_player",
}

const teamColumns = `id, server_name, tournament, day, name,
		top_player, jungle_player, mid_player, bot_player, support_player, created_at`

func scanTeam(row interface{ Scan(dest ...any) error }) (*models.Team, error) {
	var team models.Team
	slots := make([]sql.NullString, models.MaxTeamSize)

	err := row.Scan(
		&team.ID,
		&team.ServerName,
		&team.Tournament,
		&team.Day,
		&team.Name,
		&slots[0], &slots[1], &slots[2], &slots[3], &slots[4],
		&team.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	team.Roles = make(map[models.Role]string, models.MaxTeamSize)
	for i, role := range models.AllRoles() {
		if slots[i].Valid {
			team.Roles[role] = slots[i].String
		}
	}
	return &team, nil
}

func (r *postgresTeamRepository) Find(ctx context.Context, filter TeamFilter) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams`

	var conditions []string
	var args []any
	addCondition := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	addCondition("server_name", filter.ServerName)
	addCondition("tournament", filter.Tournament)
	addCondition("day", filter.Day)
	addCondition("name", filter.Name)

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at, name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) GetByName(ctx context.Context, serverName string, key models.TournamentKey, name string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + `
		FROM teams
		WHERE server_name = $1 AND tournament = $2 AND day = $3 AND name = $4`

	team, err := scanTeam(r.db.QueryRowContext(ctx, query, serverName, key.Tournament, key.Day, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %q: %w", name, err)
	}
	return team, nil
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	slot := func(role models.Role) any {
		if id, ok := team.Roles[role]; ok {
			return id
		}
		return nil
	}

	query := `
		INSERT INTO teams (server_name, tournament, day, name,
			top_player, jungle_player, mid_player, bot_player, support_player)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		team.ServerName,
		team.Tournament,
		team.Day,
		team.Name,
		slot(models.RoleTop),
		slot(models.RoleJungle),
		slot(models.RoleMid),
		slot(models.RoleBot),
		slot(models.RoleSupport),
	).Scan(&team.ID, &team.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrTeamNameConflict
		}
		return fmt.Errorf("failed to create team %q: %w", team.Name, err)
	}
	return nil
}

func (r *postgresTeamRepository) SetRole(ctx context.Context, teamID int, role models.Role, playerID string) error {
	column, ok := roleColumns[role]
	if !ok {
		return fmt.Errorf("unknown role %q", role)
	}

	// Conditional claim: the slot must still be empty. Zero affected rows
	// means somebody holds it (the caller already verified the team exists).
	query := fmt.Sprintf(`UPDATE teams SET %s = $1 WHERE id = $2 AND %s IS NULL`, column, column)
	result, err := r.db.ExecContext(ctx, query, playerID, teamID)
	if err != nil {
		return fmt.Errorf("failed to claim role %s on team %d: %w", role, teamID, err)
	}
	return checkAffectedRows(result, ErrTeamRoleTaken)
}

func (r *postgresTeamRepository) RemovePlayer(ctx context.Context, teamID int, playerID string) (*models.Team, error) {
	query := `
		UPDATE teams SET
			top_player     = CASE WHEN top_player     = $1 THEN NULL ELSE top_player     END,
			jungle_player  = CASE WHEN jungle_player  = $1 THEN NULL ELSE jungle_player  END,
			mid_player     = CASE WHEN mid_player     = $1 THEN NULL ELSE mid_player     END,
			bot_player     = CASE WHEN bot_player     = $1 THEN NULL ELSE bot_player     END,
			support_player = CASE WHEN support_player = $1 THEN NULL ELSE support_player END
		WHERE id = $2
		RETURNING ` + teamColumns

	team, err := scanTeam(r.db.QueryRowContext(ctx, query, playerID, teamID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to remove player %s from team %d: %w", playerID, teamID, err)
	}
	return team, nil
}

func (r *postgresTeamRepository) Delete(ctx context.Context, serverName string, key models.TournamentKey, name string) error {
	// Idempotent: deleting an already-absent team is success.
	query := `DELETE FROM teams WHERE server_name = $1 AND tournament = $2 AND day = $3 AND name = $4`
	if _, err := r.db.ExecContext(ctx, query, serverName, key.Tournament, key.Day, name); err != nil {
		return fmt.Errorf("failed to delete team %q: %w", name, err)
	}
	return nil
}
