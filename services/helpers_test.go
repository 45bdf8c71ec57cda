package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riftops/clash-coordinator/models"
)

func TestGenerateTeamName(t *testing.T) {
	for i := 0; i < 50; i++ {
		name := generateTeamName()
		require.True(t, strings.HasPrefix(name, "Team "), "got %q", name)
		assert.Contains(t, teamNameWords, strings.TrimPrefix(name, "Team "))
	}
}

func TestBuildTeamPayloadFallsBackToPlayerID(t *testing.T) {
	team := &models.Team{
		ServerName: "riftops-hq",
		Tournament: "bandle_cup",
		Day:        "1",
		Name:       "Team Snorlax",
		Roles: map[models.Role]string{
			models.RoleSupport: "p2",
			models.RoleTop:     "p1",
		},
	}
	profiles := map[string]*models.Player{
		"p1": {ID: "p1", Name: "Aurelion", PreferredChampions: []string{"Aurelion Sol"}},
	}

	payload := buildTeamPayload(team, profiles)
	require.Len(t, payload.Players, 2)

	// Draft order, not map order.
	assert.Equal(t, models.RoleTop, payload.Players[0].Role)
	assert.Equal(t, "Aurelion", payload.Players[0].PlayerName)
	assert.Equal(t, []string{"Aurelion Sol"}, payload.Players[0].PreferredChampions)

	assert.Equal(t, models.RoleSupport, payload.Players[1].Role)
	assert.Equal(t, "p2", payload.Players[1].PlayerName)
	assert.Empty(t, payload.Players[1].PreferredChampions)
}

func TestErrIsRejection(t *testing.T) {
	assert.True(t, errIsRejection(ErrTeamFull))
	assert.True(t, errIsRejection(fmt.Errorf("%w: feeder", ErrInvalidRole)))
	assert.False(t, errIsRejection(errors.New("connection refused")))
	assert.False(t, errIsRejection(nil))
}
