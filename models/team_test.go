package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"top":     RoleTop,
		"Top":     RoleTop,
		" TOP ":   RoleTop,
		"jungle":  RoleJungle,
		"jg":      RoleJungle,
		"jgl":     RoleJungle,
		"mid":     RoleMid,
		"middle":  RoleMid,
		"bot":     RoleBot,
		"adc":     RoleBot,
		"bottom":  RoleBot,
		"support": RoleSupport,
		"supp":    RoleSupport,
		"sup":     RoleSupport,
	}
	for input, want := range cases {
		got, err := ParseRole(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	for _, input := range []string{"", "feeder", "to p"} {
		_, err := ParseRole(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestTeamRoleOfAndPlayerIDs(t *testing.T) {
	team := &Team{
		Name: "Team Scizor",
		Roles: map[Role]string{
			RoleSupport: "p3",
			RoleTop:     "p1",
			RoleJungle:  "p2",
		},
	}

	role, ok := team.RoleOf("p2")
	require.True(t, ok)
	assert.Equal(t, RoleJungle, role)

	_, ok = team.RoleOf("p9")
	assert.False(t, ok)

	assert.Equal(t, []string{"p1", "p2", "p3"}, team.PlayerIDs())
	assert.Equal(t, []Role{RoleTop, RoleJungle, RoleSupport}, team.FilledRoles())
}

func TestTentativeEntrySetOps(t *testing.T) {
	entry := &TentativeEntry{PlayerIDs: []string{"p1", "p2", "p3"}}

	assert.True(t, entry.Contains("p2"))
	assert.False(t, entry.Contains("p4"))
	assert.Equal(t, []string{"p1", "p3"}, entry.Without("p2"))
	assert.Equal(t, []string{"p1", "p2", "p3"}, entry.PlayerIDs, "Without must not mutate")
}

func TestAssignmentMatches(t *testing.T) {
	a := &Assignment{Kind: AssignmentTeam, TeamName: "Team Absol", Role: RoleTop}

	assert.True(t, a.Matches("Team Absol", RoleTop))
	assert.False(t, a.Matches("Team Absol", RoleMid), "same team, other role is not a duplicate")
	assert.False(t, a.Matches("Team Blaziken", RoleTop))

	tentative := &Assignment{Kind: AssignmentTentative}
	assert.False(t, tentative.Matches("", ""))
}
