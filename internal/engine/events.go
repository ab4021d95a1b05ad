package engine

import (
	"fmt"
	"time"

	"github.com/soar/padremap/internal/gamepad"
)

// EventKind classifies engine events.
type EventKind int

const (
	EventLog EventKind = iota
	EventActivated
	EventReleased
	EventSetChanged
	EventDeviceAdded
	EventDeviceRemoved
	EventProfileChanged
	EventFatal
)

var eventKindNames = []string{
	"log", "activated", "released", "set", "added", "removed", "profile", "fatal",
}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return "unknown"
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *EventKind) UnmarshalText(b []byte) error {
	for i, n := range eventKindNames {
		if n == string(b) {
			*k = EventKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown event kind %q", b)
}

// Event is a notification from the engine to whoever is listening: the
// status page, the tray and the log.
type Event struct {
	Kind   EventKind        `json:"kind"`
	Time   time.Duration    `json:"time"`
	Device gamepad.DeviceID `json:"device"`
	GUID   string           `json:"guid,omitempty"`

	// the control the event concerns, if any
	Control string `json:"control,omitempty"`

	Set     int    `json:"set"`
	SetName string `json:"setName,omitempty"`

	Message string `json:"message,omitempty"`

	// set names, for profile and device events
	Sets []string `json:"sets,omitempty"`
}

func (e Event) String() string {
	s := fmt.Sprintf("%s: ", e.Kind)
	if e.GUID != "" {
		s += fmt.Sprintf("[%s] ", e.GUID)
	}
	if e.Control != "" {
		s += e.Control + ": "
	}
	switch e.Kind {
	case EventSetChanged:
		return s + fmt.Sprintf("set %d (%s)", e.Set+1, e.SetName)
	}
	return s + e.Message
}
