package notify

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Publisher is the capability the coordinator holds for broadcasting roster
// changes. Publishing is best effort: implementations must not block on slow
// consumers, and callers treat a returned error as reportable, never as a
// reason to unwind the store mutation that preceded it.
type Publisher interface {
	RosterUpdated(payload *TeamPayload) error
	RosterDeleted(payload *TeamDeletedPayload) error
}

// Broadcaster delivers a marshalled message to every subscriber of a room.
// *Hub implements it.
type Broadcaster interface {
	BroadcastToRoom(room string, message []byte)
}

type hubPublisher struct {
	hub Broadcaster
}

// NewHubPublisher wraps the websocket hub in the Publisher capability.
// Rooms are keyed by Discord server name.
func NewHubPublisher(hub Broadcaster) Publisher {
	return &hubPublisher{hub: hub}
}

func (p *hubPublisher) RosterUpdated(payload *TeamPayload) error {
	return p.publish(payload.ServerName, TypeRosterUpdated, payload)
}

func (p *hubPublisher) RosterDeleted(payload *TeamDeletedPayload) error {
	return p.publish(payload.ServerName, TypeRosterDeleted, payload)
}

func (p *hubPublisher) publish(room, messageType string, payload any) error {
	message := Message{
		ID:      uuid.NewString(),
		Type:    messageType,
		Payload: payload,
		Room:    room,
	}
	raw, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal %s message: %w", messageType, err)
	}
	p.hub.BroadcastToRoom(room, raw)
	return nil
}
