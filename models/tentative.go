package models

import "time"

// TentativeEntry is the waiting queue for one (server, tournament, day)
// partition. PlayerIDs is a set; order carries no meaning. An empty set never
// persists, the row is deleted instead.
type TentativeEntry struct {
	ID         int       `json:"id" db:"id"`
	ServerName string    `json:"server_name" db:"server_name"`
	Tournament string    `json:"tournament" db:"tournament"`
	Day        string    `json:"day" db:"day"`
	PlayerIDs  []string  `json:"player_ids" db:"player_ids"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Key returns the tournament partition the queue belongs to.
func (e *TentativeEntry) Key() TournamentKey {
	return TournamentKey{Tournament: e.Tournament, Day: e.Day}
}

// Contains reports whether the player is already waiting in the queue.
func (e *TentativeEntry) Contains(playerID string) bool {
	for _, id := range e.PlayerIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

// Without returns the player set with one player removed.
func (e *TentativeEntry) Without(playerID string) []string {
	out := make([]string, 0, len(e.PlayerIDs))
	for _, id := range e.PlayerIDs {
		if id != playerID {
			out = append(out, id)
		}
	}
	return out
}
