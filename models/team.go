package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Role is one of the five fixed Clash roster slots.
type Role string

const (
	RoleTop     Role = "Top"
	RoleJungle  Role = "Jungle"
	RoleMid     Role = "Mid"
	RoleBot     Role = "Bot"
	RoleSupport Role = "Support"
)

// MaxTeamSize is the number of roster slots on a Clash team.
const MaxTeamSize = 5

// AllRoles returns the five roles in draft order.
func AllRoles() []Role {
	return []Role{RoleTop, RoleJungle, RoleMid, RoleBot, RoleSupport}
}

// ParseRole normalizes the role strings clients send (including the short
// forms the Discord bot uses) to the canonical enum.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top":
		return RoleTop, nil
	case "jungle", "jg", "jgl":
		return RoleJungle, nil
	case "mid", "middle":
		return RoleMid, nil
	case "bot", "adc", "bottom":
		return RoleBot, nil
	case "support", "supp", "sup":
		return RoleSupport, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Team is one Clash roster for a (server, tournament, day) partition.
// Roles maps a filled slot to the player holding it; an empty map never
// persists, the row is deleted instead.
type Team struct {
	ID         int             `json:"id" db:"id"`
	ServerName string          `json:"server_name" db:"server_name"`
	Tournament string          `json:"tournament" db:"tournament"`
	Day        string          `json:"day" db:"day"`
	Name       string          `json:"name" db:"name"`
	Roles      map[Role]string `json:"roles" db:"-"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// Key returns the tournament partition the team belongs to.
func (t *Team) Key() TournamentKey {
	return TournamentKey{Tournament: t.Tournament, Day: t.Day}
}

// RoleOf reports which slot the player holds, if any.
func (t *Team) RoleOf(playerID string) (Role, bool) {
	for role, id := range t.Roles {
		if id == playerID {
			return role, true
		}
	}
	return "", false
}

// PlayerIDs lists the players on the roster in draft order.
func (t *Team) PlayerIDs() []string {
	ids := make([]string, 0, len(t.Roles))
	for _, role := range AllRoles() {
		if id, ok := t.Roles[role]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// FilledRoles lists the occupied slots in draft order.
func (t *Team) FilledRoles() []Role {
	roles := make([]Role, 0, len(t.Roles))
	for role := range t.Roles {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roleOrder(roles[i]) < roleOrder(roles[j]) })
	return roles
}

func roleOrder(r Role) int {
	for i, role := range AllRoles() {
		if r == role {
			return i
		}
	}
	return len(AllRoles())
}
