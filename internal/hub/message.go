package hub

import (
	"time"

	"github.com/soar/padremap/internal/engine"
	"github.com/soar/padremap/internal/gamepad"
)

// WSMessage represents a WebSocket message sent from server to client.
type WSMessage struct {
	Type      string               `json:"type"`              // Message type: "full", "delta", "event", "set_selected"
	Seq       int64                `json:"seq"`               // Sequence number for ordering
	Timestamp int64                `json:"timestamp"`         // Unix timestamp in milliseconds
	Device    gamepad.DeviceID     `json:"device,omitempty"`  // Controller the message is about
	Data      *gamepad.Status      `json:"data,omitempty"`    // Full controller state for type "full"
	Changes   *gamepad.StatusDelta `json:"changes,omitempty"` // Delta changes for type "delta"
	Event     *engine.Event        `json:"event,omitempty"`   // Engine event for type "event"
	Set       int                  `json:"set,omitempty"`     // 1-based set for type "set_selected"
}

// NewFullMessage creates a "full" type message containing complete controller state.
func NewFullMessage(seq int64, state *gamepad.Status) *WSMessage {
	return &WSMessage{
		Type:      "full",
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Device:    state.ID,
		Data:      state,
	}
}

// NewDeltaMessage creates a "delta" type message containing only changed fields.
func NewDeltaMessage(seq int64, device gamepad.DeviceID, changes *gamepad.StatusDelta) *WSMessage {
	return &WSMessage{
		Type:      "delta",
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Device:    device,
		Changes:   changes,
	}
}

// NewEventMessage creates an "event" type message for an engine event.
func NewEventMessage(seq int64, ev *engine.Event) *WSMessage {
	return &WSMessage{
		Type:      "event",
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Device:    ev.Device,
		Event:     ev,
	}
}

// NewSetSelectedMessage confirms a set switch requested by a client.
func NewSetSelectedMessage(device gamepad.DeviceID, set int) *WSMessage {
	return &WSMessage{
		Type:      "set_selected",
		Timestamp: time.Now().UnixMilli(),
		Device:    device,
		Set:       set,
	}
}

// ClientMessage represents a message sent from the client to the server.
type ClientMessage struct {
	Type   string           `json:"type"`
	Device gamepad.DeviceID `json:"device,omitempty"`
	Set    int              `json:"set,omitempty"`
}
