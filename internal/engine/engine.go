// Package engine turns controller input into keyboard and mouse input. A
// single sampling loop reads every device, runs the control state machines
// of its active set and sends the resulting input to a virtual input sink.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"time"

	"github.com/soar/padremap/internal/config"
	"github.com/soar/padremap/internal/gamepad"
	"github.com/soar/padremap/internal/profile"
	"github.com/soar/padremap/internal/vinput"
)

type setCommand struct {
	device gamepad.DeviceID
	set    int
}

type profileResult struct {
	path    string
	profile *profile.Profile
	err     error
}

// Engine owns the sampling loop.
type Engine struct {
	cfg    config.Config
	src    gamepad.Source
	out    output
	screen vinput.Screen
	exec   Executor
	loader func(path string) (*profile.Profile, error)

	profile     *profile.Profile
	controllers map[gamepad.DeviceID]*Controller
	known       map[string]*Controller
	statuses    map[gamepad.DeviceID]gamepad.Status

	events   chan Event
	states   chan gamepad.Status
	commands chan setCommand
	profiles chan profileResult
	done     chan struct{}

	ticks int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithExecutor replaces the program starter used by Execute slots.
func WithExecutor(x Executor) Option {
	return func(e *Engine) { e.exec = x }
}

// WithLoader replaces the profile loader used by LoadProfile slots.
func WithLoader(f func(path string) (*profile.Profile, error)) Option {
	return func(e *Engine) { e.loader = f }
}

// New creates an engine. The sink must already be open; the engine never
// closes it.
func New(cfg config.Config, src gamepad.Source, sink vinput.Sink, p *profile.Profile, opts ...Option) *Engine {
	if p == nil {
		p = &profile.Profile{}
	}
	p.Normalise()

	e := &Engine{
		cfg:         cfg,
		src:         src,
		out:         output{sink: sink, max: cfg.MaxSinkFailures},
		exec:        CommandExecutor{},
		loader:      profile.Load,
		profile:     p,
		controllers: make(map[gamepad.DeviceID]*Controller),
		known:       make(map[string]*Controller),
		statuses:    make(map[gamepad.DeviceID]gamepad.Status),
		events:      make(chan Event, max(cfg.EventBuffer, 0)),
		states:      make(chan gamepad.Status, 64),
		commands:    make(chan setCommand, 16),
		profiles:    make(chan profileResult, 1),
		done:        make(chan struct{}),
	}
	if s, ok := sink.(vinput.Screen); ok {
		e.screen = s
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Events returns the channel on which engine events are sent. Events are
// dropped when nobody keeps up with them.
func (e *Engine) Events() <-chan Event {
	return e.events
}

// States returns the channel on which controller status changes are sent.
func (e *Engine) States() <-chan gamepad.Status {
	return e.states
}

// SelectSet switches a device to a set. A zero device means every device.
// It is safe to call from any goroutine.
func (e *Engine) SelectSet(device gamepad.DeviceID, set int) {
	select {
	case e.commands <- setCommand{device: device, set: set}:
	default:
	}
}

// SetProfile replaces the profile of every device at the next tick. It is
// safe to call from any goroutine.
func (e *Engine) SetProfile(p *profile.Profile) {
	e.deliver(profileResult{profile: p})
}

func (e *Engine) deliver(r profileResult) {
	select {
	case e.profiles <- r:
	case <-e.done:
	}
}

func (e *Engine) requestLoad(path string) {
	go func() {
		p, err := e.loader(path)
		e.deliver(profileResult{path: path, profile: p, err: err})
	}()
}

func (e *Engine) emit(ev Event) {
	select {
	case e.events <- ev:
	default:
		// drop if the channel is full to avoid blocking the loop
	}
}

// Run opens the source and runs the sampling loop until ctx is cancelled
// or the sink becomes unusable. It locks the calling goroutine to its OS
// thread for the lifetime of the loop.
func (e *Engine) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(e.done)

	if err := e.src.Open(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	defer e.src.Close()

	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.shutdown()
			return nil
		case <-ticker.C:
		}

		if err := e.Tick(); err != nil {
			e.shutdown()
			e.emit(Event{Kind: EventFatal, Time: e.now(), Message: err.Error()})
			return fmt.Errorf("engine: %w", err)
		}
	}
}

func (e *Engine) now() time.Duration {
	return time.Duration(e.ticks) * e.cfg.PollInterval
}

// Tick runs one iteration of the sampling loop. Run calls it on every tick
// of the poll interval; tests call it directly.
func (e *Engine) Tick() error {
	now := e.now()
	e.ticks++

	e.drainProfiles()
	e.drainCommands()

	for _, ev := range e.src.Poll() {
		if ev.Attached {
			e.attach(ev.Info)
		} else {
			e.detach(ev.Info.ID)
		}
	}

	ids := make([]gamepad.DeviceID, 0, len(e.controllers))
	for id := range e.controllers {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		c := e.controllers[id]
		if !e.src.Sample(id, &c.buf) {
			e.detach(id)
			continue
		}
		if err := c.Process(now, c.buf); err != nil {
			return err
		}
		e.publish(c.Status())
	}
	return nil
}

func (e *Engine) publish(st gamepad.Status) {
	old, ok := e.statuses[st.ID]
	if ok && gamepad.ComputeDelta(old, st).IsEmpty() {
		return
	}
	select {
	case e.states <- st:
		e.statuses[st.ID] = st
	default:
	}
}

func (e *Engine) drainProfiles() {
	for {
		select {
		case r := <-e.profiles:
			if r.err != nil {
				e.emit(Event{Kind: EventLog, Time: e.now(), Message: fmt.Sprintf("loading %s failed: %v", r.path, r.err)})
				continue
			}
			e.replace(r.profile)
		default:
			return
		}
	}
}

func (e *Engine) drainCommands() {
	for {
		select {
		case cmd := <-e.commands:
			for id, c := range e.controllers {
				if cmd.device == 0 || cmd.device == id {
					c.RequestSet(cmd.set)
				}
			}
		default:
			return
		}
	}
}

func (e *Engine) replace(p *profile.Profile) {
	p.Normalise()
	e.profile = p
	for _, c := range e.controllers {
		c.Replace(p)
	}
	for guid, c := range e.known {
		if _, attached := e.controllers[c.info.ID]; !attached {
			delete(e.known, guid)
		}
	}
	if len(e.controllers) == 0 {
		e.emit(Event{Kind: EventProfileChanged, Time: e.now(), Message: p.Name, Sets: setNames(p)})
	}
}

func setNames(p *profile.Profile) []string {
	n := make([]string, len(p.Sets))
	for i, s := range p.Sets {
		n[i] = s.Name
	}
	return n
}

func (e *Engine) attach(info gamepad.DeviceInfo) {
	if !info.Match(e.cfg.Device) {
		e.emit(Event{Kind: EventLog, Time: e.now(), Device: info.ID, GUID: info.GUID,
			Message: fmt.Sprintf("ignoring %s", info.Name)})
		return
	}
	if _, ok := e.controllers[info.ID]; ok {
		return
	}

	c, ok := e.known[info.GUID]
	if ok && c.profile == e.profile {
		c.reattach(info)
	} else {
		c = newController(info, e.profile, e)
		e.known[info.GUID] = c
	}
	e.controllers[info.ID] = c

	c.emit(Event{Kind: EventDeviceAdded, Message: info.String(), Sets: c.setNames()})
}

func (e *Engine) detach(id gamepad.DeviceID) {
	c, ok := e.controllers[id]
	if !ok {
		return
	}
	c.Detach()
	delete(e.controllers, id)
	delete(e.statuses, id)

	c.emit(Event{Kind: EventDeviceRemoved, Message: c.info.Name})

	select {
	case e.states <- gamepad.Status{ID: id, GUID: c.info.GUID, Name: c.info.Name}:
	default:
	}
}

// shutdown releases everything held by every device.
func (e *Engine) shutdown() {
	for _, c := range e.controllers {
		c.releaseAll()
	}
}
