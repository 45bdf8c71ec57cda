package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/riftops/clash-coordinator/metrics"
	"github.com/riftops/clash-coordinator/models"
	"github.com/riftops/clash-coordinator/notify"
	"github.com/riftops/clash-coordinator/repositories"
)

// maxTeamNameAttempts bounds the generated-name retry loop on conflicts.
const maxTeamNameAttempts = 5

type JoinTeamInput struct {
	PlayerID   string `json:"player_id"`
	ServerName string `json:"server_name"`
	Tournament string `json:"tournament"`
	Day        string `json:"day"`
	TeamName   string `json:"team_name,omitempty"`
	Role       string `json:"role"`
}

type LeaveTeamInput struct {
	PlayerID   string `json:"player_id"`
	ServerName string `json:"server_name"`
	Tournament string `json:"tournament"`
	Day        string `json:"day"`
	TeamName   string `json:"team_name"`
}

type TentativeInput struct {
	PlayerID   string `json:"player_id"`
	ServerName string `json:"server_name"`
	Tournament string `json:"tournament"`
	Day        string `json:"day"`
}

type ListTeamsInput struct {
	ServerName string
	Tournament string
	Day        string
	TeamName   string
}

// RosterService is the assignment coordinator. It keeps the single-assignment
// invariant — a player holds at most one placement (team slot or tentative
// seat) per tournament day — across three independently-committing stores.
//
// There is no cross-store transaction: every operation runs its store calls
// in a fixed order (validate, vacate the old placement, apply the new one,
// record the index) so that a failure mid-sequence leaves the player
// unassigned rather than doubly assigned, and a retry converges. Broadcasts
// are best effort and never unwind a committed mutation.
type RosterService interface {
	JoinTeam(ctx context.Context, input JoinTeamInput) (*notify.TeamPayload, error)
	LeaveTeam(ctx context.Context, input LeaveTeamInput) error
	JoinTentative(ctx context.Context, input TentativeInput) (*notify.TentativePayload, error)
	LeaveTentative(ctx context.Context, input TentativeInput) (*notify.TentativePayload, error)
	ListTeams(ctx context.Context, input ListTeamsInput) ([]*notify.TeamPayload, error)
	GetTentative(ctx context.Context, input TentativeInput) (*notify.TentativePayload, error)
}

type rosterService struct {
	teams       repositories.TeamRepository
	tentative   repositories.TentativeRepository
	assignments repositories.AssignmentRepository
	players     repositories.PlayerRepository
	tournaments TournamentService
	publisher   notify.Publisher
	logger      *slog.Logger
}

func NewRosterService(
	teams repositories.TeamRepository,
	tentative repositories.TentativeRepository,
	assignments repositories.AssignmentRepository,
	players repositories.PlayerRepository,
	tournaments TournamentService,
	publisher notify.Publisher,
	logger *slog.Logger,
) RosterService {
	return &rosterService{
		teams:       teams,
		tentative:   tentative,
		assignments: assignments,
		players:     players,
		tournaments: tournaments,
		publisher:   publisher,
		logger:      logger,
	}
}

func (s *rosterService) JoinTeam(ctx context.Context, input JoinTeamInput) (payload *notify.TeamPayload, err error) {
	defer func() { observe("join_team", err) }()

	role, parseErr := models.ParseRole(input.Role)
	if parseErr != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, input.Role)
	}

	key, err := s.tournaments.ResolveOpen(ctx, input.Tournament, input.Day)
	if err != nil {
		return nil, err
	}

	prior, err := s.lookupAssignment(ctx, input.PlayerID, key)
	if err != nil {
		return nil, err
	}

	// Exact duplicate: no vacate, no mutation, no notification. A request
	// for the same team but a different role is not a duplicate; it flows
	// through the normal vacate/assign path below.
	if prior != nil && input.TeamName != "" && prior.Matches(input.TeamName, role) {
		return nil, ErrAlreadyAssigned
	}

	// Resolve the target before touching anything, so every rejection is
	// side-effect free.
	var team *models.Team
	if input.TeamName != "" {
		team, err = s.getTeam(ctx, input.ServerName, key, input.TeamName)
		if err != nil {
			return nil, err
		}
		if len(team.Roles) >= models.MaxTeamSize {
			return nil, ErrTeamFull
		}
		if _, taken := team.Roles[role]; taken {
			return nil, ErrRoleTaken
		}
	}

	if prior != nil {
		if err = s.vacateCurrentAssignment(ctx, prior); err != nil {
			return nil, err
		}
		// A same-team role change may have just emptied and cascade-deleted
		// the target; reload so the assign step recreates it if needed.
		if team != nil && prior.Kind == models.AssignmentTeam && prior.TeamName == input.TeamName {
			team, err = s.teams.GetByName(ctx, input.ServerName, key, input.TeamName)
			if errors.Is(err, repositories.ErrTeamNotFound) {
				team = nil
				err = nil
			} else if err != nil {
				return nil, fmt.Errorf("failed to reload team %q: %w", input.TeamName, err)
			}
		}
	}

	switch {
	case team != nil:
		if err = s.teams.SetRole(ctx, team.ID, role, input.PlayerID); err != nil {
			if errors.Is(err, repositories.ErrTeamRoleTaken) {
				return nil, ErrRoleTaken
			}
			return nil, fmt.Errorf("failed to claim role %s on team %q: %w", role, team.Name, err)
		}
		team.Roles[role] = input.PlayerID

	case input.TeamName != "":
		// Recreate the team the vacate step deleted (sole-occupant swap).
		team = newTeam(input.ServerName, key, input.TeamName, role, input.PlayerID)
		if err = s.teams.Create(ctx, team); err != nil {
			if errors.Is(err, repositories.ErrTeamNameConflict) {
				return nil, ErrTeamNameConflict
			}
			return nil, fmt.Errorf("failed to create team %q: %w", input.TeamName, err)
		}

	default:
		team, err = s.createGeneratedTeam(ctx, input.ServerName, key, role, input.PlayerID)
		if err != nil {
			return nil, err
		}
	}

	assignment := &models.Assignment{
		PlayerID:   input.PlayerID,
		ServerName: input.ServerName,
		Tournament: key.Tournament,
		Day:        key.Day,
		Kind:       models.AssignmentTeam,
		TeamName:   team.Name,
		Role:       role,
	}
	if err = s.assignments.Put(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to record assignment: %w", err)
	}

	payload, err = s.enrichTeam(ctx, team)
	if err != nil {
		return nil, err
	}
	s.publishRosterUpdated(payload)
	return payload, nil
}

func (s *rosterService) LeaveTeam(ctx context.Context, input LeaveTeamInput) (err error) {
	defer func() { observe("leave_team", err) }()

	// The team to leave is explicit, not discovered through the index; if
	// the index disagrees, the explicit request wins and the index entry is
	// cleared regardless.
	key := models.TournamentKey{Tournament: input.Tournament, Day: input.Day}
	team, err := s.getTeam(ctx, input.ServerName, key, input.TeamName)
	if err != nil {
		return err
	}
	if _, onTeam := team.RoleOf(input.PlayerID); !onTeam {
		return ErrPlayerNotOnTeam
	}

	return s.removeFromTeam(ctx, team, input.PlayerID, key)
}

func (s *rosterService) JoinTentative(ctx context.Context, input TentativeInput) (payload *notify.TentativePayload, err error) {
	defer func() { observe("join_tentative", err) }()

	key, err := s.tournaments.ResolveOpen(ctx, input.Tournament, input.Day)
	if err != nil {
		return nil, err
	}

	entry, err := s.lookupTentative(ctx, input.ServerName, key)
	if err != nil {
		return nil, err
	}
	if entry != nil && entry.Contains(input.PlayerID) {
		return nil, ErrAlreadyTentative
	}

	prior, err := s.lookupAssignment(ctx, input.PlayerID, key)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		if err = s.vacateCurrentAssignment(ctx, prior); err != nil {
			return nil, err
		}
	}

	if entry == nil {
		entry = &models.TentativeEntry{
			ServerName: input.ServerName,
			Tournament: key.Tournament,
			Day:        key.Day,
			PlayerIDs:  []string{input.PlayerID},
		}
		if err = s.tentative.Create(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to create tentative queue: %w", err)
		}
	} else {
		players := append(entry.PlayerIDs, input.PlayerID)
		if err = s.tentative.SetPlayers(ctx, entry.ID, players); err != nil {
			return nil, fmt.Errorf("failed to update tentative queue: %w", err)
		}
		entry.PlayerIDs = players
	}

	assignment := &models.Assignment{
		PlayerID:   input.PlayerID,
		ServerName: input.ServerName,
		Tournament: key.Tournament,
		Day:        key.Day,
		Kind:       models.AssignmentTentative,
	}
	if err = s.assignments.Put(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to record assignment: %w", err)
	}

	// Tentative state is pulled, not pushed: no broadcast here.
	return s.enrichTentative(ctx, input.ServerName, key, entry.PlayerIDs)
}

func (s *rosterService) LeaveTentative(ctx context.Context, input TentativeInput) (payload *notify.TentativePayload, err error) {
	defer func() { observe("leave_tentative", err) }()

	key := models.TournamentKey{Tournament: input.Tournament, Day: input.Day}
	entry, err := s.lookupTentative(ctx, input.ServerName, key)
	if err != nil {
		return nil, err
	}
	if entry == nil || !entry.Contains(input.PlayerID) {
		return nil, ErrPlayerNotTentative
	}

	var remaining []string
	if len(entry.PlayerIDs) == 1 {
		// Sole occupant: drop the row outright instead of persisting an
		// empty set and deleting it afterwards.
		if err = s.tentative.Delete(ctx, input.ServerName, key); err != nil {
			return nil, fmt.Errorf("failed to delete tentative queue: %w", err)
		}
		remaining = []string{}
	} else {
		remaining = entry.Without(input.PlayerID)
		if err = s.tentative.SetPlayers(ctx, entry.ID, remaining); err != nil {
			return nil, fmt.Errorf("failed to update tentative queue: %w", err)
		}
	}

	if err = s.assignments.Clear(ctx, input.PlayerID, key); err != nil {
		return nil, fmt.Errorf("failed to clear assignment: %w", err)
	}

	return s.enrichTentative(ctx, input.ServerName, key, remaining)
}

func (s *rosterService) ListTeams(ctx context.Context, input ListTeamsInput) (payloads []*notify.TeamPayload, err error) {
	defer func() { observe("list_teams", err) }()

	if input.TeamName != "" && (input.Tournament == "" || input.Day == "") {
		return nil, ErrInvalidFilter
	}

	teams, err := s.teams.Find(ctx, repositories.TeamFilter{
		ServerName: input.ServerName,
		Tournament: input.Tournament,
		Day:        input.Day,
		Name:       input.TeamName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	var ids []string
	for _, team := range teams {
		ids = append(ids, team.PlayerIDs()...)
	}
	profiles, err := s.players.BatchGet(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to enrich team list: %w", err)
	}

	payloads = make([]*notify.TeamPayload, 0, len(teams))
	for _, team := range teams {
		payloads = append(payloads, buildTeamPayload(team, profiles))
	}
	return payloads, nil
}

func (s *rosterService) GetTentative(ctx context.Context, input TentativeInput) (payload *notify.TentativePayload, err error) {
	defer func() { observe("get_tentative", err) }()

	key := models.TournamentKey{Tournament: input.Tournament, Day: input.Day}
	entry, err := s.lookupTentative(ctx, input.ServerName, key)
	if err != nil {
		return nil, err
	}

	var players []string
	if entry != nil {
		players = entry.PlayerIDs
	}
	return s.enrichTentative(ctx, input.ServerName, key, players)
}

// vacateCurrentAssignment unwinds whatever placement the index records before
// a new one is applied. The index entry is cleared immediately after the
// store write that removes the player, so there is no step at which the index
// points at an entity the player has already left.
func (s *rosterService) vacateCurrentAssignment(ctx context.Context, prior *models.Assignment) error {
	key := prior.Key()

	switch prior.Kind {
	case models.AssignmentTentative:
		entry, err := s.lookupTentative(ctx, prior.ServerName, key)
		if err != nil {
			return err
		}
		if entry != nil && entry.Contains(prior.PlayerID) {
			remaining := entry.Without(prior.PlayerID)
			if len(remaining) == 0 {
				if err := s.tentative.Delete(ctx, prior.ServerName, key); err != nil {
					return fmt.Errorf("failed to delete emptied tentative queue: %w", err)
				}
			} else {
				if err := s.tentative.SetPlayers(ctx, entry.ID, remaining); err != nil {
					return fmt.Errorf("failed to update tentative queue: %w", err)
				}
			}
		}
		// Tentative mutations are never broadcast.
		if err := s.assignments.Clear(ctx, prior.PlayerID, key); err != nil {
			return fmt.Errorf("failed to clear assignment: %w", err)
		}
		return nil

	case models.AssignmentTeam:
		team, err := s.teams.GetByName(ctx, prior.ServerName, key, prior.TeamName)
		if errors.Is(err, repositories.ErrTeamNotFound) {
			// Dangling index: the team is already gone, just clear.
			if err := s.assignments.Clear(ctx, prior.PlayerID, key); err != nil {
				return fmt.Errorf("failed to clear assignment: %w", err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load team %q: %w", prior.TeamName, err)
		}
		if _, onTeam := team.RoleOf(prior.PlayerID); !onTeam {
			if err := s.assignments.Clear(ctx, prior.PlayerID, key); err != nil {
				return fmt.Errorf("failed to clear assignment: %w", err)
			}
			return nil
		}
		return s.removeFromTeam(ctx, team, prior.PlayerID, key)

	default:
		return fmt.Errorf("unknown assignment kind %q", prior.Kind)
	}
}

// removeFromTeam takes a player off a roster, cascades the delete when the
// roster empties, clears the index entry, and broadcasts the state the team
// ended up in. Shared by LeaveTeam and the vacate path.
func (s *rosterService) removeFromTeam(ctx context.Context, team *models.Team, playerID string, key models.TournamentKey) error {
	updated, err := s.teams.RemovePlayer(ctx, team.ID, playerID)
	if err != nil {
		return fmt.Errorf("failed to remove player %s from team %q: %w", playerID, team.Name, err)
	}

	if len(updated.Roles) == 0 {
		if err := s.teams.Delete(ctx, updated.ServerName, key, updated.Name); err != nil {
			return fmt.Errorf("failed to delete emptied team %q: %w", updated.Name, err)
		}
		if err := s.assignments.Clear(ctx, playerID, key); err != nil {
			return fmt.Errorf("failed to clear assignment: %w", err)
		}
		s.publishRosterDeleted(&notify.TeamDeletedPayload{
			TeamName:   updated.Name,
			ServerName: updated.ServerName,
		})
		return nil
	}

	if err := s.assignments.Clear(ctx, playerID, key); err != nil {
		return fmt.Errorf("failed to clear assignment: %w", err)
	}
	payload, err := s.enrichTeam(ctx, updated)
	if err != nil {
		return err
	}
	s.publishRosterUpdated(payload)
	return nil
}

func (s *rosterService) createGeneratedTeam(ctx context.Context, serverName string, key models.TournamentKey, role models.Role, playerID string) (*models.Team, error) {
	for attempt := 0; attempt < maxTeamNameAttempts; attempt++ {
		team := newTeam(serverName, key, generateTeamName(), role, playerID)
		err := s.teams.Create(ctx, team)
		if err == nil {
			return team, nil
		}
		if !errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, fmt.Errorf("failed to create team %q: %w", team.Name, err)
		}
	}
	return nil, fmt.Errorf("%w after %d attempts", ErrTeamNameConflict, maxTeamNameAttempts)
}

func newTeam(serverName string, key models.TournamentKey, name string, role models.Role, playerID string) *models.Team {
	return &models.Team{
		ServerName: serverName,
		Tournament: key.Tournament,
		Day:        key.Day,
		Name:       name,
		Roles:      map[models.Role]string{role: playerID},
	}
}

func (s *rosterService) lookupAssignment(ctx context.Context, playerID string, key models.TournamentKey) (*models.Assignment, error) {
	assignment, err := s.assignments.Get(ctx, playerID, key)
	if errors.Is(err, repositories.ErrAssignmentNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up assignment: %w", err)
	}
	return assignment, nil
}

func (s *rosterService) lookupTentative(ctx context.Context, serverName string, key models.TournamentKey) (*models.TentativeEntry, error) {
	entry, err := s.tentative.Get(ctx, serverName, key)
	if errors.Is(err, repositories.ErrTentativeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tentative queue: %w", err)
	}
	return entry, nil
}

func (s *rosterService) getTeam(ctx context.Context, serverName string, key models.TournamentKey, name string) (*models.Team, error) {
	team, err := s.teams.GetByName(ctx, serverName, key, name)
	if errors.Is(err, repositories.ErrTeamNotFound) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load team %q: %w", name, err)
	}
	return team, nil
}

// enrichTeam builds the broadcast/response snapshot. It runs after the
// mutating store call committed; a failure here surfaces as the operation's
// error even though the roster change stands.
func (s *rosterService) enrichTeam(ctx context.Context, team *models.Team) (*notify.TeamPayload, error) {
	profiles, err := s.players.BatchGet(ctx, team.PlayerIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to enrich team %q: %w", team.Name, err)
	}
	return buildTeamPayload(team, profiles), nil
}

func (s *rosterService) enrichTentative(ctx context.Context, serverName string, key models.TournamentKey, playerIDs []string) (*notify.TentativePayload, error) {
	profiles, err := s.players.BatchGet(ctx, playerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to enrich tentative queue: %w", err)
	}
	return buildTentativePayload(serverName, key, playerIDs, profiles), nil
}

// Publish failures are reported and counted, never propagated: the store
// mutation they describe has already committed.
func (s *rosterService) publishRosterUpdated(payload *notify.TeamPayload) {
	if err := s.publisher.RosterUpdated(payload); err != nil {
		metrics.PublishFailures.Inc()
		s.logger.Warn("failed to publish roster update",
			slog.String("team", payload.Name),
			slog.String("server", payload.ServerName),
			slog.Any("error", err))
	}
}

func (s *rosterService) publishRosterDeleted(payload *notify.TeamDeletedPayload) {
	if err := s.publisher.RosterDeleted(payload); err != nil {
		metrics.PublishFailures.Inc()
		s.logger.Warn("failed to publish roster deletion",
			slog.String("team", payload.TeamName),
			slog.String("server", payload.ServerName),
			slog.Any("error", err))
	}
}
