package services

import (
	"errors"
	"math/rand"

	"github.com/riftops/clash-coordinator/metrics"
	"github.com/riftops/clash-coordinator/models"
	"github.com/riftops/clash-coordinator/notify"
)

// buildTeamPayload assembles the enriched team snapshot from the persisted
// roster and a profile map. A player without a profile keeps their id as the
// display name; enrichment never invents data.
func buildTeamPayload(team *models.Team, profiles map[string]*models.Player) *notify.TeamPayload {
	payload := &notify.TeamPayload{
		ServerName: team.ServerName,
		Tournament: team.Tournament,
		Day:        team.Day,
		Name:       team.Name,
		Players:    make([]notify.TeamSlot, 0, len(team.Roles)),
	}

	for _, role := range team.FilledRoles() {
		playerID := team.Roles[role]
		slot := notify.TeamSlot{
			Role:       role,
			PlayerID:   playerID,
			PlayerName: playerID,
		}
		if profile, ok := profiles[playerID]; ok {
			slot.PlayerName = profile.Name
			slot.PreferredChampions = profile.PreferredChampions
		}
		payload.Players = append(payload.Players, slot)
	}
	return payload
}

// buildTentativePayload assembles the enriched queue snapshot.
func buildTentativePayload(serverName string, key models.TournamentKey, playerIDs []string, profiles map[string]*models.Player) *notify.TentativePayload {
	payload := &notify.TentativePayload{
		ServerName: serverName,
		Tournament: key.Tournament,
		Day:        key.Day,
		Players:    make([]notify.QueuedPlayer, 0, len(playerIDs)),
	}

	for _, playerID := range playerIDs {
		queued := notify.QueuedPlayer{
			PlayerID:   playerID,
			PlayerName: playerID,
		}
		if profile, ok := profiles[playerID]; ok {
			queued.PlayerName = profile.Name
			queued.PreferredChampions = profile.PreferredChampions
		}
		payload.Players = append(payload.Players, queued)
	}
	return payload
}

// teamNameWords feeds generated team names for joins that do not name a
// target team. Collisions within a tournament day are retried.
var teamNameWords = []string{
	"Abra", "Absol", "Aggron", "Arbok", "Bagon", "Blaziken", "Braviary",
	"Charizard", "Crobat", "Donphan", "Dragonite", "Drapion", "Electabuzz",
	"Empoleon", "Feraligatr", "Flygon", "Garchomp", "Gengar", "Gyarados",
	"Heracross", "Ho-Oh", "Houndoom", "Kingdra", "Lucario", "Luxray",
	"Machamp", "Manectric", "Metagross", "Milotic", "Nidoking", "Ninetales",
	"Pidgeot", "Rapidash", "Salamence", "Scizor", "Skarmory", "Snorlax",
	"Swampert", "Torterra", "Typhlosion", "Tyranitar", "Umbreon", "Weavile",
	"Zangoose",
}

func generateTeamName() string {
	return "Team " + teamNameWords[rand.Intn(len(teamNameWords))]
}

// errIsRejection reports whether err belongs to the validation taxonomy, as
// opposed to a storage or enrichment failure.
func errIsRejection(err error) bool {
	for _, sentinel := range []error{
		ErrInvalidTournament,
		ErrAlreadyAssigned,
		ErrAlreadyTentative,
		ErrTeamNotFound,
		ErrPlayerNotOnTeam,
		ErrPlayerNotTentative,
		ErrTeamFull,
		ErrRoleTaken,
		ErrTeamNameConflict,
		ErrInvalidRole,
		ErrInvalidFilter,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// observe records one coordinator operation outcome.
func observe(operation string, err error) {
	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
	case errIsRejection(err):
		outcome = metrics.OutcomeRejected
	default:
		outcome = metrics.OutcomeError
	}
	metrics.OperationsTotal.WithLabelValues(operation, outcome).Inc()
}
