package notify

import "github.com/riftops/clash-coordinator/models"

// Message types pushed to websocket clients. Tentative-queue changes are
// deliberately never pushed: clients pull queue state, only roster changes
// and team deletions broadcast.
const (
	TypeRosterUpdated = "ROSTER_UPDATED"
	TypeRosterDeleted = "ROSTER_DELETED"
)

// Message is the envelope every broadcast is wrapped in.
type Message struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Payload any    `json:"payload"`
	Room    string `json:"room_id,omitempty"`
}

// TeamSlot is one filled roster slot with the player's display details.
type TeamSlot struct {
	Role               models.Role `json:"role"`
	PlayerID           string      `json:"player_id"`
	PlayerName         string      `json:"player_name"`
	PreferredChampions []string    `json:"preferred_champions,omitempty"`
}

// TeamPayload is the full enriched snapshot of a team after a roster change.
// It doubles as the HTTP response shape for team operations.
type TeamPayload struct {
	ServerName string     `json:"server_name"`
	Tournament string     `json:"tournament"`
	Day        string     `json:"day"`
	Name       string     `json:"name"`
	Players    []TeamSlot `json:"players"`
}

// TeamDeletedPayload announces a cascade-deleted team.
type TeamDeletedPayload struct {
	TeamName   string `json:"team_name"`
	ServerName string `json:"server_name"`
}

// QueuedPlayer is one waiting player with display details.
type QueuedPlayer struct {
	PlayerID           string   `json:"player_id"`
	PlayerName         string   `json:"player_name"`
	PreferredChampions []string `json:"preferred_champions,omitempty"`
}

// TentativePayload is the enriched snapshot of a waiting queue. It is served
// over HTTP only; see the note on Message types.
type TentativePayload struct {
	ServerName string         `json:"server_name"`
	Tournament string         `json:"tournament"`
	Day        string         `json:"day"`
	Players    []QueuedPlayer `json:"players"`
}
