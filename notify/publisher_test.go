package notify

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riftops/clash-coordinator/models"
)

type recordingBroadcaster struct {
	rooms    []string
	messages [][]byte
}

func (b *recordingBroadcaster) BroadcastToRoom(room string, message []byte) {
	b.rooms = append(b.rooms, room)
	b.messages = append(b.messages, message)
}

func TestHubPublisherRosterUpdated(t *testing.T) {
	broadcaster := &recordingBroadcaster{}
	publisher := NewHubPublisher(broadcaster)

	err := publisher.RosterUpdated(&TeamPayload{
		ServerName: "riftops-hq",
		Tournament: "bandle_cup",
		Day:        "1",
		Name:       "Team Absol",
		Players: []TeamSlot{
			{Role: models.RoleTop, PlayerID: "p1", PlayerName: "Aurelion"},
		},
	})
	require.NoError(t, err)

	require.Len(t, broadcaster.messages, 1)
	assert.Equal(t, []string{"riftops-hq"}, broadcaster.rooms)

	var msg Message
	require.NoError(t, json.Unmarshal(broadcaster.messages[0], &msg))
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, TypeRosterUpdated, msg.Type)
	assert.Equal(t, "riftops-hq", msg.Room)

	payload, ok := msg.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Team Absol", payload["name"])
}

func TestHubPublisherRosterDeleted(t *testing.T) {
	broadcaster := &recordingBroadcaster{}
	publisher := NewHubPublisher(broadcaster)

	err := publisher.RosterDeleted(&TeamDeletedPayload{
		TeamName:   "Team Ho-Oh",
		ServerName: "riftops-hq",
	})
	require.NoError(t, err)

	require.Len(t, broadcaster.messages, 1)

	var msg Message
	require.NoError(t, json.Unmarshal(broadcaster.messages[0], &msg))
	assert.Equal(t, TypeRosterDeleted, msg.Type)

	payload, ok := msg.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Team Ho-Oh", payload["team_name"])
}
