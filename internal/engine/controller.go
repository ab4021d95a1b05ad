package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/soar/padremap/internal/config"
	"github.com/soar/padremap/internal/gamepad"
	"github.com/soar/padremap/internal/profile"
)

// holdFrame remembers the set to go back to when the owner of a while-held
// set change is released.
type holdFrame struct {
	owner *Control
	prior int
}

type setRequest struct {
	owner *Control
	slot  profile.Slot

	// revert the while-held frame of owner
	revert bool
}

// Controller is the remapping state of one attached device. It is advanced
// one tick at a time by Process and must only be used from the sampling
// loop.
type Controller struct {
	info    gamepad.DeviceInfo
	profile *profile.Profile
	cfg     config.Config

	out     *output
	pointer pointer

	sets   []*setState
	active int
	frames []holdFrame

	requests []setRequest
	external []int

	snap gamepad.Snapshot
	buf  gamepad.Snapshot
	now  time.Duration
	last time.Duration
	fed  bool

	emitFn func(Event)
	loadFn func(path string)
	exec   Executor
}

func newController(info gamepad.DeviceInfo, p *profile.Profile, e *Engine) *Controller {
	c := &Controller{
		info:   info,
		cfg:    e.cfg,
		out:    &e.out,
		emitFn: e.emit,
		loadFn: e.requestLoad,
		exec:   e.exec,
	}
	c.pointer.screen = e.screen
	c.pointer.width = e.cfg.ScreenWidth
	c.pointer.height = e.cfg.ScreenHeight
	c.build(p)
	return c
}

// build creates fresh set runtimes for p. The active set is kept if p still
// has it.
func (c *Controller) build(p *profile.Profile) {
	p.Normalise()
	c.profile = p
	c.sets = c.sets[:0]
	for i, s := range p.Sets {
		c.sets = append(c.sets, newSetState(i, s, c.cfg.PressTime))
	}
	if c.active >= len(c.sets) {
		c.active = 0
	}
	c.frames = nil
	c.requests = nil
}

// Info describes the device.
func (c *Controller) Info() gamepad.DeviceInfo { return c.info }

// ActiveSet returns the index of the active set.
func (c *Controller) ActiveSet() int { return c.active }

// SetName returns the name of set i.
func (c *Controller) SetName(i int) string {
	if i < 0 || i >= len(c.profile.Sets) {
		return ""
	}
	return c.profile.Sets[i].Name
}

// Control returns the runtime of a control in set set, or nil.
func (c *Controller) Control(set int, id ControlID) *Control {
	if set < 0 || set >= len(c.sets) {
		return nil
	}
	return c.sets[set].byID[id]
}

// RequestSet asks for a set change that takes effect at the end of the
// next tick.
func (c *Controller) RequestSet(set int) {
	c.external = append(c.external, set)
}

// Process runs one tick with the device state in snap. The returned error
// is the sink's fatal error, if any.
func (c *Controller) Process(now time.Duration, snap gamepad.Snapshot) error {
	dt := c.cfg.PollInterval
	if c.fed {
		dt = now - c.last
	}
	c.fed = true
	c.last = now
	c.now = now
	c.snap = snap

	for _, s := range c.sets {
		s.sample(snap, now)
	}

	// every control sees its new input before any of them moves on
	for i, s := range c.sets {
		active := i == c.active
		for _, ctl := range s.controls {
			if !active && ctl.idle() {
				continue
			}
			ctl.input(c, s.level(ctl.id, snap), active)
		}
	}

	for i, s := range c.sets {
		for _, ctl := range s.controls {
			if i != c.active && ctl.idle() {
				continue
			}
			ctl.advance(c)
		}
	}

	c.pointer.update(c, now, dt)
	c.applyRequests()

	return c.out.fatal
}

func (c *Controller) emit(ev Event) {
	ev.Time = c.now
	ev.Device = c.info.ID
	ev.GUID = c.info.GUID
	ev.Set = c.active
	ev.SetName = c.SetName(c.active)
	c.emitFn(ev)
}

func (c *Controller) log(control string, msg string) {
	c.emit(Event{Kind: EventLog, Control: control, Message: msg})
}

// setSlot handles a SetChange slot reached by a run of ctl.
func (c *Controller) setSlot(ctl *Control, s profile.Slot, attached bool) {
	switch {
	case s.SetMode == profile.SetWhileHeld && !attached:
		c.log(ctl.name, "while-held set change ignored after release")
	case s.SetMode == profile.SetWhileHeld:
		c.requests = append(c.requests, setRequest{owner: ctl, slot: s})
	case attached:
		ctl.pending = &s
	default:
		c.requests = append(c.requests, setRequest{owner: ctl, slot: s})
	}
}

// requestSet queues a set change owed by a released control.
func (c *Controller) requestSet(ctl *Control, s profile.Slot) {
	c.requests = append(c.requests, setRequest{owner: ctl, slot: s})
}

// released is told about every control release so while-held set changes
// can be reverted.
func (c *Controller) released(ctl *Control) {
	for _, f := range c.frames {
		if f.owner == ctl {
			c.requests = append(c.requests, setRequest{owner: ctl, revert: true})
			return
		}
	}
}

func (c *Controller) requestLoad(ctl *Control, path string) {
	c.log(ctl.name, fmt.Sprintf("loading profile %s", path))
	if c.loadFn != nil {
		c.loadFn(path)
	}
}

func (c *Controller) execute(ctl *Control, s profile.Slot) {
	cmd := strings.TrimSpace(s.Path + " " + strings.Join(s.Args, " "))
	if c.exec == nil {
		c.log(ctl.name, fmt.Sprintf("cannot execute %s: no executor", cmd))
		return
	}
	if err := c.exec.Execute(s.Path, s.Args...); err != nil {
		c.log(ctl.name, fmt.Sprintf("execute %s failed: %v", cmd, err))
		return
	}
	c.log(ctl.name, fmt.Sprintf("executed %s", cmd))
}

func (c *Controller) applyRequests() {
	for _, n := range c.external {
		c.frames = nil
		c.switchTo(n, nil)
	}
	c.external = c.external[:0]

	for len(c.requests) > 0 {
		r := c.requests[0]
		c.requests = c.requests[1:]

		if r.revert {
			for i, f := range c.frames {
				if f.owner == r.owner {
					c.frames = c.frames[:i]
					c.switchTo(f.prior, nil)
					break
				}
			}
			continue
		}

		target := r.slot.Set
		switch r.slot.SetMode {
		case profile.SetOneWay:
			c.switchTo(target, r.owner)

		case profile.SetTwoWay:
			if r.owner.returnTo >= 0 {
				r.owner.returnTo = -1
				c.switchTo(target, r.owner)
				continue
			}
			origin := c.active
			if c.switchTo(target, r.owner) {
				ret := c.sets[target].control(r.owner.id, c.cfg.PressTime)
				ret.returnTo = origin
			}

		case profile.SetWhileHeld:
			if r.owner.active {
				prior := c.active
				if c.switchTo(target, r.owner) {
					c.frames = append(c.frames, holdFrame{owner: r.owner, prior: prior})
				}
			}
		}
	}
}

// switchTo makes set n the active one. Toggled controls of the old set are
// turned off, except owner and the owners of while-held frames, since an
// inactive set cannot see the press that would turn them off. Controls of
// the new set that are physically active are latched until they return to
// rest, so a held input does not fire its binding in the new set.
func (c *Controller) switchTo(n int, owner *Control) bool {
	if n < 0 || n >= len(c.sets) {
		c.log("", fmt.Sprintf("set %d does not exist", n+1))
		return false
	}
	if n == c.active {
		return false
	}

	old := c.sets[c.active]
	for _, ctl := range old.controls {
		ctl.returnTo = -1
		if ctl.bind.Toggle && ctl.active && ctl != owner && !c.holdsFrame(ctl) {
			ctl.deactivate(c, c.now)
		}
	}

	c.active = n
	for _, ctl := range c.sets[n].controls {
		if ctl.idle() && c.sets[n].level(ctl.id, c.snap) > 0 {
			ctl.latched = true
		}
	}

	c.emit(Event{Kind: EventSetChanged})
	return true
}

func (c *Controller) holdsFrame(ctl *Control) bool {
	for _, f := range c.frames {
		if f.owner == ctl {
			return true
		}
	}
	return false
}

// releaseAll forces every control of every set back to idle.
func (c *Controller) releaseAll() {
	for _, s := range c.sets {
		for _, ctl := range s.controls {
			ctl.forceRelease(c)
		}
	}
	c.pointer.reset()
	if len(c.frames) > 0 {
		c.active = c.frames[0].prior
		c.frames = nil
	}
	c.requests = nil
}

// Detach releases everything the device holds. The controller can be
// reused if the same device comes back.
func (c *Controller) Detach() {
	c.releaseAll()
	c.fed = false
}

// reattach brings a detached controller back for a device with the same
// GUID. Cycle positions start over, the active set is kept.
func (c *Controller) reattach(info gamepad.DeviceInfo) {
	c.info = info
	c.build(c.profile)
}

// Replace swaps in a new profile, releasing everything first.
func (c *Controller) Replace(p *profile.Profile) {
	c.releaseAll()
	c.build(p)
	for _, ctl := range c.sets[c.active].controls {
		if c.sets[c.active].level(ctl.id, c.snap) > 0 {
			ctl.latched = true
		}
	}
	c.emit(Event{Kind: EventProfileChanged, Message: p.Name, Sets: c.setNames()})
}

func (c *Controller) setNames() []string {
	n := make([]string, len(c.profile.Sets))
	for i, s := range c.profile.Sets {
		n[i] = s.Name
	}
	return n
}

// Status returns the state shown on the status page.
func (c *Controller) Status() gamepad.Status {
	return gamepad.NewStatus(c.info, c.SetName(c.active), c.snap)
}
