package services

import "errors"

// Coordinator error taxonomy. Every error here is detected before any
// mutating store call, so a caller that receives one can safely retry or
// report without worrying about partial state. Storage failures are not
// sentinels; they surface wrapped with context and map to a server error.
var (
	// Tournament validation
	ErrInvalidTournament = errors.New("tournament is unknown or no longer open")

	// Duplicate requests (no mutation performed)
	ErrAlreadyAssigned  = errors.New("player already holds the requested team and role")
	ErrAlreadyTentative = errors.New("player is already in the tentative queue")

	// Missing entities / membership
	ErrTeamNotFound       = errors.New("team not found")
	ErrPlayerNotOnTeam    = errors.New("player is not on this team")
	ErrPlayerNotTentative = errors.New("player is not in the tentative queue")

	// Capacity and slot conflicts
	ErrTeamFull         = errors.New("team already has five roles filled")
	ErrRoleTaken        = errors.New("requested role is already taken")
	ErrTeamNameConflict = errors.New("team name already exists for this tournament day")

	// Request validation
	ErrInvalidRole   = errors.New("unknown role")
	ErrInvalidFilter = errors.New("team name filter requires tournament and day")
)
