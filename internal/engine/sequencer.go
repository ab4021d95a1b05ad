package engine

import (
	"fmt"
	"time"

	"github.com/soar/padremap/internal/profile"
	"github.com/soar/padremap/internal/vinput"
)

type waitKind int

const (
	waitNone waitKind = iota
	waitPause
	waitDelay
	waitHold
	waitDistance
	waitText
)

type runKind int

const (
	// slots executed while the control is active
	runPress runKind = iota

	// slots after a Release slot, executed once the control is released
	runRelease
)

// held is something a run pressed and owes a release for.
type held struct {
	slot profile.Slot

	// key repeat and wheel notches
	next time.Duration

	mover *mover
	mod   *speedMod
}

// distanceMark records where a Distance slot was passed so the run can
// be rolled back when travel drops below it again.
type distanceMark struct {
	pc        int
	held      int
	threshold float64
}

// run is one live pass through a list of slots.
type run struct {
	kind  runKind
	slots []profile.Slot
	pc    int
	start time.Duration

	// a press run that kept going after its control was released
	detached bool

	wait      waitKind
	until     time.Duration
	threshold float64

	// characters of the current text slot already typed
	text int

	held  []*held
	marks []distanceMark
	done  bool
}

func newRun(kind runKind, slots []profile.Slot, now time.Duration) *run {
	return &run{kind: kind, slots: slots, start: now}
}

func (r *run) attached() bool {
	return r.kind == runPress && !r.detached
}

// parked reports whether a press run stopped at a Release slot or ran out of
// slots. It keeps its keys held until the control is released.
func (r *run) parked() bool {
	if r.wait != waitNone {
		return false
	}
	return r.pc >= len(r.slots) || r.slots[r.pc].Kind == profile.SlotRelease
}

// pausing reports whether the run is in a wait that survives the release
// of its control.
func (r *run) pausing() bool {
	return r.wait == waitPause || r.wait == waitText || (r.wait == waitNone && r.pc < len(r.slots) && r.slots[r.pc].Kind == profile.SlotTextEntry)
}

// step advances the run as far as it can go at now.
func (r *run) step(c *Control, ctl *Controller, now time.Duration) {
	if r.done {
		return
	}

	r.repeat(c, ctl, now)
	if r.attached() {
		r.checkDistance(c, ctl)
	}

	for !r.done {
		if r.blocked(c, ctl, now) {
			return
		}
		if r.pc >= len(r.slots) {
			break
		}

		s := r.slots[r.pc]
		switch s.Kind {
		case profile.SlotKey, profile.SlotMouseButton, profile.SlotMouseWheel,
			profile.SlotMouseMove, profile.SlotMouseMod:
			r.press(c, ctl, s, now)
			r.pc++

		case profile.SlotPause:
			r.wait = waitPause
			r.until = now + s.Duration
			r.pc++

		case profile.SlotDelay:
			r.wait = waitDelay
			r.until = now + s.Duration
			r.pc++

		case profile.SlotHold:
			d := s.Duration
			if d <= 0 {
				d = c.pressTime
			}
			r.wait = waitHold
			r.until = r.start + d
			r.pc++

		case profile.SlotDistance:
			r.marks = append(r.marks, distanceMark{pc: r.pc, held: len(r.held), threshold: s.Distance})
			r.wait = waitDistance
			r.threshold = s.Distance
			r.pc++
			ctl.log(c.name, fmt.Sprintf("distance gate at %.0f%%", s.Distance*100))

		case profile.SlotRelease:
			if r.attached() {
				return
			}
			r.pc = len(r.slots)

		case profile.SlotCycle:
			r.pc++

		case profile.SlotSetChange:
			ctl.setSlot(c, s, r.attached())
			r.pc++

		case profile.SlotLoadProfile:
			ctl.requestLoad(c, s.Path)
			r.pc++

		case profile.SlotTextEntry:
			if r.typeText(c, ctl, s.Text, now) {
				r.text = 0
				r.pc++
			}

		case profile.SlotExecute:
			ctl.execute(c, s)
			r.pc++
		}
	}

	if !r.attached() && r.pc >= len(r.slots) {
		r.finish(c, ctl)
	}
}

// blocked reports whether the run is waiting. Gates that depend on the
// control staying active cancel the run when it no longer is.
func (r *run) blocked(c *Control, ctl *Controller, now time.Duration) bool {
	switch r.wait {
	case waitPause, waitText:
		if now < r.until {
			return true
		}

	case waitDelay:
		if r.detached {
			r.cancel(c, ctl, "delay cancelled")
			return true
		}
		if now < r.until {
			return true
		}

	case waitHold:
		if !r.attached() {
			r.cancel(c, ctl, "hold cancelled")
			return true
		}
		if now < r.until {
			return true
		}

	case waitDistance:
		if !r.attached() {
			r.cancel(c, ctl, "distance cancelled")
			return true
		}
		if c.level < r.threshold {
			return true
		}
	}

	r.wait = waitNone
	return false
}

// checkDistance rolls the run back to the earliest Distance slot whose
// threshold is no longer met, releasing everything pressed after it.
func (r *run) checkDistance(c *Control, ctl *Controller) {
	for i, m := range r.marks {
		if c.level >= m.threshold {
			continue
		}
		if r.pc == m.pc+1 && r.wait == waitDistance {
			return
		}

		r.releaseFrom(c, ctl, m.held)
		r.pc = m.pc + 1
		r.wait = waitDistance
		r.threshold = m.threshold
		r.text = 0
		r.marks = r.marks[:i+1]
		ctl.log(c.name, fmt.Sprintf("distance change, back below %.0f%%", m.threshold*100))
		return
	}
}

// typeText types the remaining characters of a text slot. It returns true
// once every character has been typed.
func (r *run) typeText(c *Control, ctl *Controller, text string, now time.Duration) bool {
	runes := []rune(text)
	for r.text < len(runes) {
		ch := runes[r.text]
		r.text++

		stroke, ok := vinput.StrokeFor(ch)
		if !ok {
			ctl.log(c.name, fmt.Sprintf("cannot type %q", ch))
			continue
		}
		if stroke.Shift {
			ctl.out.pressKey(ctl, c.name, vinput.KeyShift)
		}
		if ctl.out.pressKey(ctl, c.name, stroke.Key) {
			ctl.out.releaseKey(ctl, c.name, stroke.Key)
		}
		if stroke.Shift {
			ctl.out.releaseKey(ctl, c.name, vinput.KeyShift)
		}

		if ctl.cfg.TextEntryDelay > 0 && r.text < len(runes) {
			r.wait = waitText
			r.until = now + ctl.cfg.TextEntryDelay
			return false
		}
	}
	return true
}

func wheelFor(d profile.Direction) (vinput.WheelAxis, int) {
	switch d {
	case profile.DirUp:
		return vinput.WheelVertical, 1
	case profile.DirDown:
		return vinput.WheelVertical, -1
	case profile.DirLeft:
		return vinput.WheelHorizontal, -1
	}
	return vinput.WheelHorizontal, 1
}

func wheelPeriod(d profile.Direction, m profile.Mouse) time.Duration {
	speed := m.WheelSpeedY
	if d == profile.DirLeft || d == profile.DirRight {
		speed = m.WheelSpeedX
	}
	if speed <= 0 {
		speed = profile.DefaultWheelSpeed
	}
	return time.Duration(float64(time.Second) / speed)
}

func (r *run) press(c *Control, ctl *Controller, s profile.Slot, now time.Duration) {
	switch s.Kind {
	case profile.SlotKey:
		// a key pressed again by the same run is tapped
		for i, h := range r.held {
			if h.slot.Kind == profile.SlotKey && h.slot.Key == s.Key {
				ctl.out.releaseKey(ctl, c.name, s.Key)
				r.held = append(r.held[:i], r.held[i+1:]...)
				break
			}
		}
		if ctl.out.pressKey(ctl, c.name, s.Key) {
			r.held = append(r.held, &held{slot: s, next: now + ctl.cfg.KeyRepeat.Delay})
		}

	case profile.SlotMouseButton:
		for i, h := range r.held {
			if h.slot.Kind == profile.SlotMouseButton && h.slot.Button == s.Button {
				ctl.out.releaseButton(ctl, c.name, s.Button)
				r.held = append(r.held[:i], r.held[i+1:]...)
				break
			}
		}
		if ctl.out.pressButton(ctl, c.name, s.Button) {
			r.held = append(r.held, &held{slot: s})
		}

	case profile.SlotMouseWheel:
		axis, n := wheelFor(s.Dir)
		ctl.out.scroll(ctl, c.name, axis, n)
		r.held = append(r.held, &held{slot: s, next: now + wheelPeriod(s.Dir, c.bind.Mouse)})

	case profile.SlotMouseMove:
		m := &mover{owner: c, dir: s.Dir, cfg: c.bind.Mouse}
		ctl.pointer.addMover(m)
		r.held = append(r.held, &held{slot: s, mover: m})

	case profile.SlotMouseMod:
		m := &speedMod{factor: s.Percent / 100}
		ctl.pointer.addMod(m)
		r.held = append(r.held, &held{slot: s, mod: m})
	}
}

// repeat emits wheel notches and key repeats for held slots.
func (r *run) repeat(c *Control, ctl *Controller, now time.Duration) {
	for _, h := range r.held {
		switch h.slot.Kind {
		case profile.SlotMouseWheel:
			for now >= h.next {
				axis, n := wheelFor(h.slot.Dir)
				ctl.out.scroll(ctl, c.name, axis, n)
				h.next += wheelPeriod(h.slot.Dir, c.bind.Mouse)
			}

		case profile.SlotKey:
			if !ctl.cfg.KeyRepeat.Enabled || ctl.cfg.KeyRepeat.Rate <= 0 {
				continue
			}
			if now >= h.next {
				ctl.out.pressKey(ctl, c.name, h.slot.Key)
				h.next = max(h.next+time.Duration(float64(time.Second)/ctl.cfg.KeyRepeat.Rate), now)
			}
		}
	}
}

// releaseFrom releases everything held from index n onwards, most recent
// first.
func (r *run) releaseFrom(c *Control, ctl *Controller, n int) {
	for i := len(r.held) - 1; i >= n; i-- {
		h := r.held[i]
		switch h.slot.Kind {
		case profile.SlotKey:
			ctl.out.releaseKey(ctl, c.name, h.slot.Key)
		case profile.SlotMouseButton:
			ctl.out.releaseButton(ctl, c.name, h.slot.Button)
		case profile.SlotMouseMove:
			ctl.pointer.removeMover(h.mover)
		case profile.SlotMouseMod:
			ctl.pointer.removeMod(h.mod)
		}
	}
	r.held = r.held[:n]
}

// finish ends the run, releasing everything it still holds.
func (r *run) finish(c *Control, ctl *Controller) {
	r.releaseFrom(c, ctl, 0)
	r.done = true
}

func (r *run) cancel(c *Control, ctl *Controller, why string) {
	ctl.log(c.name, why)
	r.finish(c, ctl)
}
