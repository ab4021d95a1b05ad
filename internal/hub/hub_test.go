package hub

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/soar/padremap/internal/engine"
	"github.com/soar/padremap/internal/gamepad"
	"github.com/soar/padremap/internal/test"
)

type feed struct {
	events chan engine.Event
	states chan gamepad.Status
}

func newFeed() *feed {
	return &feed{events: make(chan engine.Event, 16), states: make(chan gamepad.Status, 16)}
}

func (f *feed) Events() <-chan engine.Event   { return f.events }
func (f *feed) States() <-chan gamepad.Status { return f.states }

type selector struct {
	device gamepad.DeviceID
	set    int
}

func (s *selector) SelectSet(device gamepad.DeviceID, set int) {
	s.device = device
	s.set = set
}

// attach adds a client without a connection or a running hub loop
func attach(h *Hub, device gamepad.DeviceID) *Client {
	c := NewClient(h, nil)
	c.Follow(device)
	h.clients[c] = true
	return c
}

func receive(t *testing.T, c *Client) *WSMessage {
	t.Helper()
	select {
	case data := <-c.send:
		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("bad message %s: %v", data, err)
		}
		return &msg
	default:
		t.Fatalf("no message")
	}
	return nil
}

func nothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Errorf("unexpected message %s", data)
	default:
	}
}

func status(id gamepad.DeviceID) gamepad.Status {
	return gamepad.Status{
		Connected: true,
		ID:        id,
		Name:      "pad",
		Set:       "Set 1",
		Axes:      make([]float64, 2),
		Buttons:   make([]bool, 4),
		Hats:      make([]int, 1),
	}
}

func TestLogFolding(t *testing.T) {
	b := NewBroadcaster(NewHub(), newFeed(), true)
	var lines []string
	b.logf = func(format string, v ...any) { lines = append(lines, fmt.Sprintf(format, v...)) }

	ev := engine.Event{Kind: engine.EventLog, Control: "button 1", Message: "hold cancelled"}
	b.handleEvent(ev)
	b.handleEvent(ev)
	b.handleEvent(ev)
	b.handleEvent(engine.Event{Kind: engine.EventSetChanged, Set: 1, SetName: "Game"})
	b.flushLog()

	want := []string{
		"[DEBUG] log: button 1: hold cancelled",
		"[DEBUG] log: button 1: hold cancelled (repeat x3)",
		"[INFO] set: set 2 (Game)",
	}
	if test.Equate(t, len(lines), len(want)) {
		for i := range want {
			test.Equate(t, lines[i], want[i])
		}
	}
}

func TestQuietLog(t *testing.T) {
	h := NewHub()
	c := attach(h, 0)
	b := NewBroadcaster(h, newFeed(), false)
	var lines []string
	b.logf = func(format string, v ...any) { lines = append(lines, fmt.Sprintf(format, v...)) }

	var seen []engine.EventKind
	b.OnEvent(func(ev engine.Event) { seen = append(seen, ev.Kind) })

	b.handleEvent(engine.Event{Kind: engine.EventLog, Message: "noise"})
	b.handleEvent(engine.Event{Kind: engine.EventActivated, Control: "button 0"})

	test.Equate(t, len(lines), 0)
	test.Equate(t, len(seen), 2)

	// activations still reach the page for highlighting
	msg := receive(t, c)
	test.Equate(t, msg.Type, "event")
	test.Equate(t, msg.Event.Kind, engine.EventActivated)
	nothing(t, c)
}

func TestStateMessages(t *testing.T) {
	h := NewHub()
	c := attach(h, 0)
	b := NewBroadcaster(h, newFeed(), false)

	st := status(1)
	b.handleState(st)
	msg := receive(t, c)
	test.Equate(t, msg.Type, "full")
	test.Equate(t, msg.Data.Name, "pad")

	st = status(1)
	st.Buttons[2] = true
	b.handleState(st)
	msg = receive(t, c)
	test.Equate(t, msg.Type, "delta")
	test.Equate(t, msg.Device, gamepad.DeviceID(1))
	test.Equate(t, msg.Changes.Buttons[2], true)

	b.handleState(st)
	nothing(t, c)

	b.handleState(gamepad.Status{ID: 1})
	msg = receive(t, c)
	test.Equate(t, msg.Type, "full")
	test.Equate(t, msg.Data.Connected, false)
	test.Equate(t, len(b.States()), 0)
}

func TestFollow(t *testing.T) {
	h := NewHub()
	one := attach(h, 1)
	two := attach(h, 2)
	b := NewBroadcaster(h, newFeed(), false)

	b.handleState(status(2))
	nothing(t, one)
	test.Equate(t, receive(t, two).Device, gamepad.DeviceID(2))

	// device-less events reach everyone
	b.handleEvent(engine.Event{Kind: engine.EventProfileChanged, Message: "racing"})
	test.Equate(t, receive(t, one).Type, "event")
	test.Equate(t, receive(t, two).Type, "event")

	// a new client gets the state of the controllers it follows
	b.handleState(status(1))
	receive(t, one)
	c := attach(h, 1)
	b.SendInitialState(c)
	test.Equate(t, receive(t, c).Device, gamepad.DeviceID(1))
	nothing(t, c)
}

func TestSelectSetMessage(t *testing.T) {
	h := NewHub()
	c := attach(h, 0)
	sel := &selector{set: -1}

	c.handle([]byte(`{"type":"select_set","device":3,"set":2}`), sel)
	test.Equate(t, sel.device, gamepad.DeviceID(3))
	test.Equate(t, sel.set, 1)

	msg := receive(t, c)
	test.Equate(t, msg.Type, "set_selected")
	test.Equate(t, msg.Set, 2)

	sel.set = -1
	c.handle([]byte(`{"type":"select_set","set":0}`), sel)
	test.Equate(t, sel.set, -1)
	nothing(t, c)

	c.handle([]byte(`{"type":"select_device","device":4}`), sel)
	test.Equate(t, c.follows(4), true)
	test.Equate(t, c.follows(5), false)
	test.Equate(t, c.follows(0), true)
}
