package models

import "time"

// TournamentKey identifies one registration period: a named Clash cup plus the
// day within it. It partitions every other entity in the system.
type TournamentKey struct {
	Tournament string `json:"tournament"`
	Day        string `json:"day"`
}

// Tournament is one schedulable Clash day as supplied by the schedule feed.
// Registration is open while StartTime is still in the future.
type Tournament struct {
	ID               int       `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Day              string    `json:"day" db:"day"`
	StartTime        time.Time `json:"start_time" db:"start_time"`
	RegistrationTime time.Time `json:"registration_time" db:"registration_time"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// Key returns the (name, day) pair the rest of the system partitions on.
func (t *Tournament) Key() TournamentKey {
	return TournamentKey{Tournament: t.Name, Day: t.Day}
}

// Open reports whether the tournament can still accept registrations.
func (t *Tournament) Open(now time.Time) bool {
	return t.StartTime.After(now)
}
