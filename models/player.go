package models

import "time"

// Player is the display profile attached to notification payloads and roster
// snapshots. Preferences are maintained by the Discord front-end; this service
// only reads them.
type Player struct {
	ID                 string    `json:"id" db:"id"`
	Name               string    `json:"name" db:"name"`
	ServerName         string    `json:"server_name,omitempty" db:"server_name"`
	PreferredChampions []string  `json:"preferred_champions,omitempty" db:"preferred_champions"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}
