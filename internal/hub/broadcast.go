package hub

import (
	"context"
	"encoding/json"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/soar/padremap/internal/engine"
	"github.com/soar/padremap/internal/gamepad"
)

const (
	fullSyncInterval = 5 * time.Second
	deltaCountSync   = 100
)

// Feed is the engine side of the broadcaster.
type Feed interface {
	Events() <-chan engine.Event
	States() <-chan gamepad.Status
}

// Broadcaster listens for engine events and controller state changes and
// broadcasts them to the hub. It is also the place where engine events are
// written to the log.
type Broadcaster struct {
	hub     *Hub
	events  <-chan engine.Event
	states  <-chan gamepad.Status
	verbose bool

	mu         sync.Mutex
	last       map[gamepad.DeviceID]gamepad.Status
	deltaCount map[gamepad.DeviceID]int
	seq        int64

	// the previous log line and how many times it came again
	lastLine string
	repeated int

	onEvent []func(engine.Event)
	logf    func(format string, v ...any)
}

func NewBroadcaster(h *Hub, feed Feed, verbose bool) *Broadcaster {
	return &Broadcaster{
		hub:        h,
		events:     feed.Events(),
		states:     feed.States(),
		verbose:    verbose,
		last:       make(map[gamepad.DeviceID]gamepad.Status),
		deltaCount: make(map[gamepad.DeviceID]int),
		logf:       log.Printf,
	}
}

// OnEvent adds a function called with every engine event. It must be
// called before Run.
func (b *Broadcaster) OnEvent(f func(engine.Event)) {
	b.onEvent = append(b.onEvent, f)
}

// Run starts the broadcaster loop. Should be run in a goroutine.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(fullSyncInterval)
	defer ticker.Stop()
	defer b.flushLog()

	for {
		select {
		case <-ctx.Done():
			// whatever the engine said on its way out
			for {
				select {
				case ev := <-b.events:
					b.handleEvent(ev)
				default:
					return
				}
			}

		case ev := <-b.events:
			b.handleEvent(ev)

		case state := <-b.states:
			b.handleState(state)

		case <-ticker.C:
			b.flushLog()
			b.syncAll()
		}
	}
}

func (b *Broadcaster) handleEvent(ev engine.Event) {
	b.logEvent(ev)

	for _, f := range b.onEvent {
		f(ev)
	}

	if ev.Kind == engine.EventLog && !b.verbose {
		return
	}

	b.mu.Lock()
	b.seq++
	msg := NewEventMessage(b.seq, &ev)
	b.mu.Unlock()

	b.send(msg, ev.Device)
}

func (b *Broadcaster) logEvent(ev engine.Event) {
	switch ev.Kind {
	case engine.EventLog, engine.EventActivated, engine.EventReleased:
		if b.verbose {
			b.logLine("[DEBUG] " + ev.String())
		}
	case engine.EventFatal:
		b.logLine("[ERROR] " + ev.String())
	default:
		b.logLine("[INFO] " + ev.String())
	}
}

// logLine writes a line to the log. A line identical to the previous one is
// only counted, and the count is written once something else comes along.
func (b *Broadcaster) logLine(line string) {
	if line == b.lastLine {
		b.repeated++
		return
	}
	b.flushLog()
	b.lastLine = line
	b.logf("%s", line)
}

func (b *Broadcaster) flushLog() {
	if b.repeated > 0 {
		b.logf("%s (repeat x%d)", b.lastLine, b.repeated+1)
	}
	b.repeated = 0
	b.lastLine = ""
}

func (b *Broadcaster) handleState(state gamepad.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !state.Connected {
		delete(b.last, state.ID)
		delete(b.deltaCount, state.ID)
		b.seq++
		b.send(NewFullMessage(b.seq, &state), state.ID)
		return
	}

	prev, ok := b.last[state.ID]
	b.last[state.ID] = state
	b.seq++

	if !ok {
		b.send(NewFullMessage(b.seq, &state), state.ID)
		return
	}

	delta := gamepad.ComputeDelta(prev, state)
	if delta.IsEmpty() {
		return
	}

	// Send full sync periodically
	b.deltaCount[state.ID]++
	if b.deltaCount[state.ID] >= deltaCountSync {
		b.deltaCount[state.ID] = 0
		b.send(NewFullMessage(b.seq, &state), state.ID)
		return
	}
	b.send(NewDeltaMessage(b.seq, state.ID, delta), state.ID)
}

func (b *Broadcaster) syncAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, id := range b.devices() {
		state := b.last[id]
		b.seq++
		b.send(NewFullMessage(b.seq, &state), id)
	}
}

// devices returns the connected controllers in a stable order.
func (b *Broadcaster) devices() []gamepad.DeviceID {
	ids := make([]gamepad.DeviceID, 0, len(b.last))
	for id := range b.last {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// SendInitialState sends the current full state of every controller the
// client follows.
func (b *Broadcaster) SendInitialState(c *Client) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, id := range b.devices() {
		if !c.follows(id) {
			continue
		}
		state := b.last[id]
		b.seq++
		data, err := json.Marshal(NewFullMessage(b.seq, &state))
		if err != nil {
			log.Printf("[WARN] Error marshaling initial state: %v", err)
			return
		}
		select {
		case c.send <- data:
		default:
		}
	}
}

// States returns the last known state of every connected controller.
func (b *Broadcaster) States() []gamepad.Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	var l []gamepad.Status
	for _, id := range b.devices() {
		l = append(l, b.last[id])
	}
	return l
}

func (b *Broadcaster) send(msg *WSMessage, device gamepad.DeviceID) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[WARN] Error marshaling %s message: %v", msg.Type, err)
		return
	}
	b.hub.Broadcast(data, device)
}
