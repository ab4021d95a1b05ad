package engine

import (
	"cmp"
	"fmt"
	"time"

	"github.com/soar/padremap/internal/profile"
)

// ControlKind is the kind of physical input a control reads.
type ControlKind int

const (
	KindButton ControlKind = iota
	KindAxis
	KindHat
	KindStick
)

// the two halves of an axis are told apart by direction
const (
	AxisNegative = profile.DirLeft
	AxisPositive = profile.DirRight
)

// ControlID addresses a control. The same ID names the same physical input
// in every set.
type ControlID struct {
	Kind  ControlKind
	Index int
	Dir   profile.Direction
}

func (id ControlID) String() string {
	switch id.Kind {
	case KindButton:
		return fmt.Sprintf("button %d", id.Index)
	case KindAxis:
		if id.Dir == AxisNegative {
			return fmt.Sprintf("axis %d-", id.Index)
		}
		return fmt.Sprintf("axis %d+", id.Index)
	case KindHat:
		return fmt.Sprintf("hat %d %s", id.Index, id.Dir)
	case KindStick:
		return fmt.Sprintf("stick %d %s", id.Index, id.Dir)
	}
	return "unknown control"
}

func compareIDs(a, b ControlID) int {
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Index, b.Index); c != 0 {
		return c
	}
	return cmp.Compare(a.Dir, b.Dir)
}

// Phase is the state of a control's state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePressed
	PhaseHeld
	PhaseTurbo
	PhaseReleased
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePressed:
		return "pressed"
	case PhaseHeld:
		return "held"
	case PhaseTurbo:
		return "turbo"
	case PhaseReleased:
		return "released"
	}
	return "unknown"
}

// segments splits a slot list at its Cycle slots.
func segments(slots []profile.Slot) [][]profile.Slot {
	segs := [][]profile.Slot{{}}
	for _, s := range slots {
		if s.Kind == profile.SlotCycle {
			segs = append(segs, []profile.Slot{})
			continue
		}
		segs[len(segs)-1] = append(segs[len(segs)-1], s)
	}
	return segs
}

// Control is the runtime of one logical control in one set.
type Control struct {
	id   ControlID
	name string
	bind profile.Button
	segs [][]profile.Slot

	pressTime time.Duration

	// physical input
	level    float64
	physical bool
	latched  bool

	// logical state, which differs from the physical state for toggles
	active    bool
	phase     Phase
	pressedAt time.Duration
	lastUsed  time.Duration

	// segment of the current activation and the one the next activation
	// starts with
	segment int
	cursor  int

	run      *run
	detached []*run
	turbo    turbo

	// set change to perform when the control is released
	pending *profile.Slot

	// set to return to, installed by a two-way set change
	returnTo int
}

func newControl(id ControlID, b profile.Button, pressTime time.Duration) *Control {
	if b.PressTime > 0 {
		pressTime = b.PressTime
	}
	return &Control{
		id:        id,
		name:      id.String(),
		bind:      b,
		segs:      segments(b.Slots),
		pressTime: pressTime,
		returnTo:  -1,
	}
}

// ID returns the control's address.
func (c *Control) ID() ControlID { return c.id }

// Phase returns the state machine phase.
func (c *Control) Phase() Phase { return c.phase }

// Active reports the logical state of the control.
func (c *Control) Active() bool { return c.active }

// idle controls of inactive sets are not processed
func (c *Control) idle() bool {
	return !c.active && c.run == nil && len(c.detached) == 0 && !c.turbo.pressed && c.pending == nil
}

// input is the first half of a tick: the new physical level is applied and
// press and release transitions happen. allowPress is false for controls of
// sets that are not active, which may only wind down.
func (c *Control) input(ctl *Controller, level float64, allowPress bool) {
	if c.latched {
		if level <= 0 {
			c.latched = false
		}
		level = 0
	}

	now := ctl.now
	was := c.physical
	c.level = level
	c.physical = level > 0

	rising := c.physical && !was
	falling := !c.physical && was

	// a toggled control of an inactive set may still be turned off
	if rising && !allowPress && !(c.bind.Toggle && c.active) {
		rising = false
	}

	if c.bind.Toggle {
		if rising {
			if c.active {
				c.deactivate(ctl, now)
			} else {
				c.activate(ctl, now)
			}
		}
		return
	}

	switch {
	case rising:
		c.activate(ctl, now)
	case falling && c.active:
		c.deactivate(ctl, now)
	}
}

func (c *Control) activate(ctl *Controller, now time.Duration) {
	if c.bind.CycleReset > 0 && c.cursor != 0 && now-c.lastUsed >= c.bind.CycleReset {
		c.cursor = 0
		ctl.log(c.name, "cycle reset")
	}

	c.active = true
	c.phase = PhasePressed
	c.pressedAt = now
	ctl.emit(Event{Kind: EventActivated, Control: c.name})

	if c.returnTo >= 0 {
		ret := profile.SetChange(c.returnTo, profile.SetTwoWay)
		c.pending = &ret
		return
	}

	if c.bind.Turbo.Enabled {
		c.phase = PhaseTurbo
		c.turbo.begin(now)
		ctl.log(c.name, "processing turbo")
		return
	}

	c.startSegment(now)
}

// startSegment begins a press run of the segment at the cycle cursor.
func (c *Control) startSegment(now time.Duration) {
	c.segment = c.cursor
	c.cursor = (c.cursor + 1) % len(c.segs)
	c.run = newRun(runPress, c.segs[c.segment], now)
}

func (c *Control) deactivate(ctl *Controller, now time.Duration) {
	c.active = false
	c.phase = PhaseReleased
	c.lastUsed = now
	heldFor := now - c.pressedAt
	ctl.emit(Event{Kind: EventReleased, Control: c.name})

	if c.turbo.pressed {
		c.endPulse(ctl)
	}

	if r := c.run; r != nil {
		c.run = nil
		if r.pausing() {
			r.detached = true
			c.detached = append(c.detached, r)
		} else {
			r.finish(c, ctl)
		}
	}

	if slots := c.releaseSlots(heldFor); slots != nil {
		c.detached = append(c.detached, newRun(runRelease, slots, now))
	}

	if c.pending != nil {
		ctl.requestSet(c, *c.pending)
		c.pending = nil
	}

	ctl.released(c)
}

// releaseSlots picks the Release slot of the current segment with the
// largest threshold not exceeding heldFor and returns the slots it gates.
func (c *Control) releaseSlots(heldFor time.Duration) []profile.Slot {
	if c.returnTo >= 0 && c.pending != nil {
		return nil
	}

	seg := c.segs[c.segment]
	best := -1
	for i, s := range seg {
		if s.Kind != profile.SlotRelease || s.Duration > heldFor {
			continue
		}
		if best < 0 || s.Duration >= seg[best].Duration {
			best = i
		}
	}
	if best < 0 {
		return nil
	}

	end := len(seg)
	for i := best + 1; i < len(seg); i++ {
		if seg[i].Kind == profile.SlotRelease {
			end = i
			break
		}
	}
	return seg[best+1 : end]
}

// advance is the second half of a tick: timers are checked and runs move
// on.
func (c *Control) advance(ctl *Controller) {
	now := ctl.now

	if c.phase == PhaseTurbo || c.turbo.pressed {
		c.turbo.tick(c, ctl, now)
	}

	if c.run != nil {
		c.run.step(c, ctl, now)
		if c.run.done {
			c.run = nil
		}
	}

	if c.phase == PhasePressed && now-c.pressedAt >= c.pressTime {
		c.phase = PhaseHeld
	}

	if len(c.detached) > 0 {
		live := c.detached[:0]
		for _, r := range c.detached {
			r.step(c, ctl, now)
			if !r.done {
				live = append(live, r)
			}
		}
		clear(c.detached[len(live):])
		c.detached = live
	}

	if c.phase == PhaseReleased && !c.active && c.run == nil && len(c.detached) == 0 && !c.turbo.pressed {
		c.phase = PhaseIdle
	}
}

// forceRelease drops everything the control is doing and releases all the
// input it holds. Used when the device or the profile goes away.
func (c *Control) forceRelease(ctl *Controller) {
	if c.turbo.pressed {
		c.endPulse(ctl)
	}
	if c.run != nil {
		c.run.finish(c, ctl)
		c.run = nil
	}
	for _, r := range c.detached {
		r.finish(c, ctl)
	}
	c.detached = nil
	if c.active {
		ctl.emit(Event{Kind: EventReleased, Control: c.name})
	}

	c.active = false
	c.physical = false
	c.latched = false
	c.level = 0
	c.pending = nil
	c.turbo = turbo{}
	c.phase = PhaseIdle
}
