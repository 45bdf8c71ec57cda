package models

import "time"

// AssignmentKind distinguishes the two placements a player can hold.
type AssignmentKind string

const (
	AssignmentTeam      AssignmentKind = "team"
	AssignmentTentative AssignmentKind = "tentative"
)

// Assignment is the player-to-placement index record: at most one exists per
// (player, tournament, day). TeamName and Role are set only for team
// assignments. ServerName is recorded so the placement can be unwound without
// trusting the server named in a later request.
type Assignment struct {
	ID         int            `json:"id" db:"id"`
	PlayerID   string         `json:"player_id" db:"player_id"`
	ServerName string         `json:"server_name" db:"server_name"`
	Tournament string         `json:"tournament" db:"tournament"`
	Day        string         `json:"day" db:"day"`
	Kind       AssignmentKind `json:"kind" db:"kind"`
	TeamName   string         `json:"team_name,omitempty" db:"team_name"`
	Role       Role           `json:"role,omitempty" db:"role"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

// Key returns the tournament partition the assignment belongs to.
func (a *Assignment) Key() TournamentKey {
	return TournamentKey{Tournament: a.Tournament, Day: a.Day}
}

// Matches reports whether the assignment already points at the exact requested
// team slot. Only an exact (team, role) match counts; the same team with a
// different role goes through the normal vacate/assign path.
func (a *Assignment) Matches(teamName string, role Role) bool {
	return a.Kind == AssignmentTeam && a.TeamName == teamName && a.Role == role
}
