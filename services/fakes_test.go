package services_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riftops/clash-coordinator/models"
	"github.com/riftops/clash-coordinator/notify"
	"github.com/riftops/clash-coordinator/repositories"
)

// In-memory doubles mirroring the postgres repositories' contracts: same
// sentinel errors, same idempotent-delete semantics, copies on read so the
// service never aliases stored state.

type fakeTeamRepo struct {
	mu     sync.Mutex
	nextID int
	teams  map[int]*models.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[int]*models.Team)}
}

func copyTeam(t *models.Team) *models.Team {
	dup := *t
	dup.Roles = make(map[models.Role]string, len(t.Roles))
	for role, id := range t.Roles {
		dup.Roles[role] = id
	}
	return &dup
}

func (r *fakeTeamRepo) find(serverName string, key models.TournamentKey, name string) *models.Team {
	for _, team := range r.teams {
		if team.ServerName == serverName && team.Tournament == key.Tournament && team.Day == key.Day && team.Name == name {
			return team
		}
	}
	return nil
}

func (r *fakeTeamRepo) Find(_ context.Context, filter repositories.TeamFilter) ([]*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Team
	for _, team := range r.teams {
		if filter.ServerName != "" && team.ServerName != filter.ServerName {
			continue
		}
		if filter.Tournament != "" && team.Tournament != filter.Tournament {
			continue
		}
		if filter.Day != "" && team.Day != filter.Day {
			continue
		}
		if filter.Name != "" && team.Name != filter.Name {
			continue
		}
		out = append(out, copyTeam(team))
	}
	return out, nil
}

func (r *fakeTeamRepo) GetByName(_ context.Context, serverName string, key models.TournamentKey, name string) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if team := r.find(serverName, key, name); team != nil {
		return copyTeam(team), nil
	}
	return nil, repositories.ErrTeamNotFound
}

func (r *fakeTeamRepo) Create(_ context.Context, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing := r.find(team.ServerName, team.Key(), team.Name); existing != nil {
		return repositories.ErrTeamNameConflict
	}
	r.nextID++
	team.ID = r.nextID
	team.CreatedAt = time.Now()
	r.teams[team.ID] = copyTeam(team)
	return nil
}

func (r *fakeTeamRepo) SetRole(_ context.Context, teamID int, role models.Role, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	team, ok := r.teams[teamID]
	if !ok {
		return repositories.ErrTeamRoleTaken
	}
	if _, taken := team.Roles[role]; taken {
		return repositories.ErrTeamRoleTaken
	}
	team.Roles[role] = playerID
	return nil
}

func (r *fakeTeamRepo) RemovePlayer(_ context.Context, teamID int, playerID string) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	team, ok := r.teams[teamID]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	for role, id := range team.Roles {
		if id == playerID {
			delete(team.Roles, role)
		}
	}
	return copyTeam(team), nil
}

func (r *fakeTeamRepo) Delete(_ context.Context, serverName string, key models.TournamentKey, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if team := r.find(serverName, key, name); team != nil {
		delete(r.teams, team.ID)
	}
	return nil
}

type fakeTentativeRepo struct {
	mu      sync.Mutex
	nextID  int
	entries map[int]*models.TentativeEntry
}

func newFakeTentativeRepo() *fakeTentativeRepo {
	return &fakeTentativeRepo{entries: make(map[int]*models.TentativeEntry)}
}

func copyEntry(e *models.TentativeEntry) *models.TentativeEntry {
	dup := *e
	dup.PlayerIDs = append([]string(nil), e.PlayerIDs...)
	return &dup
}

func (r *fakeTentativeRepo) find(serverName string, key models.TournamentKey) *models.TentativeEntry {
	for _, entry := range r.entries {
		if entry.ServerName == serverName && entry.Tournament == key.Tournament && entry.Day == key.Day {
			return entry
		}
	}
	return nil
}

func (r *fakeTentativeRepo) Get(_ context.Context, serverName string, key models.TournamentKey) (*models.TentativeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry := r.find(serverName, key); entry != nil {
		return copyEntry(entry), nil
	}
	return nil, repositories.ErrTentativeNotFound
}

func (r *fakeTentativeRepo) Create(_ context.Context, entry *models.TentativeEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing := r.find(entry.ServerName, entry.Key()); existing != nil {
		return repositories.ErrTentativeConflict
	}
	r.nextID++
	entry.ID = r.nextID
	entry.CreatedAt = time.Now()
	r.entries[entry.ID] = copyEntry(entry)
	return nil
}

func (r *fakeTentativeRepo) SetPlayers(_ context.Context, entryID int, playerIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[entryID]
	if !ok {
		return repositories.ErrTentativeNotFound
	}
	entry.PlayerIDs = append([]string(nil), playerIDs...)
	return nil
}

func (r *fakeTentativeRepo) Delete(_ context.Context, serverName string, key models.TournamentKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry := r.find(serverName, key); entry != nil {
		delete(r.entries, entry.ID)
	}
	return nil
}

type fakeAssignmentRepo struct {
	mu          sync.Mutex
	nextID      int
	assignments map[string]*models.Assignment
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: make(map[string]*models.Assignment)}
}

func assignmentKey(playerID string, key models.TournamentKey) string {
	return fmt.Sprintf("%s|%s|%s", playerID, key.Tournament, key.Day)
}

func (r *fakeAssignmentRepo) Get(_ context.Context, playerID string, key models.TournamentKey) (*models.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.assignments[assignmentKey(playerID, key)]; ok {
		dup := *a
		return &dup, nil
	}
	return nil, repositories.ErrAssignmentNotFound
}

func (r *fakeAssignmentRepo) Put(_ context.Context, assignment *models.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	assignment.ID = r.nextID
	assignment.CreatedAt = time.Now()
	dup := *assignment
	r.assignments[assignmentKey(assignment.PlayerID, assignment.Key())] = &dup
	return nil
}

func (r *fakeAssignmentRepo) Clear(_ context.Context, playerID string, key models.TournamentKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.assignments, assignmentKey(playerID, key))
	return nil
}

type fakePlayerRepo struct {
	profiles map[string]*models.Player
	err      error
}

func (r *fakePlayerRepo) BatchGet(_ context.Context, ids []string) (map[string]*models.Player, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make(map[string]*models.Player, len(ids))
	for _, id := range ids {
		if p, ok := r.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type fakeTournamentRepo struct {
	tournaments []*models.Tournament
}

func (r *fakeTournamentRepo) FindOpen(_ context.Context, name, day string, now time.Time) ([]*models.Tournament, error) {
	var out []*models.Tournament
	for _, t := range r.tournaments {
		if !t.StartTime.After(now) {
			continue
		}
		if name != "" && t.Name != name {
			continue
		}
		if day != "" && t.Day != day {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeTournamentRepo) DeleteEnded(_ context.Context, now time.Time) (int64, error) {
	var kept []*models.Tournament
	var removed int64
	for _, t := range r.tournaments {
		if t.StartTime.After(now) {
			kept = append(kept, t)
		} else {
			removed++
		}
	}
	r.tournaments = kept
	return removed, nil
}

type publishedEvent struct {
	messageType string
	payload     any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) RosterUpdated(payload *notify.TeamPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{messageType: notify.TypeRosterUpdated, payload: payload})
	return nil
}

func (p *fakePublisher) RosterDeleted(payload *notify.TeamDeletedPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{messageType: notify.TypeRosterDeleted, payload: payload})
	return nil
}

func (p *fakePublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
