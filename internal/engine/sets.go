package engine

import (
	"slices"
	"time"

	"github.com/soar/padremap/internal/gamepad"
	"github.com/soar/padremap/internal/profile"
)

// setState is the runtime of one set: its controls and the direction
// trackers of its hats and sticks.
type setState struct {
	index    int
	cfg      profile.Set
	controls []*Control
	byID     map[ControlID]*Control

	hats   map[int]*compass
	sticks []*compass
}

func newSetState(index int, s profile.Set, pressTime time.Duration) *setState {
	st := &setState{
		index: index,
		cfg:   s,
		byID:  make(map[ControlID]*Control),
		hats:  make(map[int]*compass),
	}

	for i, b := range s.Buttons {
		st.add(newControl(ControlID{Kind: KindButton, Index: i}, b, pressTime))
	}
	for i, a := range s.Axes {
		st.add(newControl(ControlID{Kind: KindAxis, Index: i, Dir: AxisNegative}, a.Negative, pressTime))
		st.add(newControl(ControlID{Kind: KindAxis, Index: i, Dir: AxisPositive}, a.Positive, pressTime))
	}
	for i, h := range s.Hats {
		st.hats[i] = &compass{mode: h.Mode, dwell: h.Delay}
		for d, b := range h.Directions {
			st.add(newControl(ControlID{Kind: KindHat, Index: i, Dir: d}, b, pressTime))
		}
	}
	for i, k := range s.Sticks {
		st.sticks = append(st.sticks, &compass{mode: k.Mode, dwell: k.Delay})
		for d, b := range k.Directions {
			st.add(newControl(ControlID{Kind: KindStick, Index: i, Dir: d}, b, pressTime))
		}
	}

	return st
}

// add keeps the controls in a stable order so that every tick processes
// them the same way.
func (s *setState) add(c *Control) {
	s.byID[c.id] = c
	i, _ := slices.BinarySearchFunc(s.controls, c, func(a, b *Control) int {
		return compareIDs(a.id, b.id)
	})
	s.controls = slices.Insert(s.controls, i, c)
}

// control returns the control with the given ID, creating an unbound one if
// the set does not map it.
func (s *setState) control(id ControlID, pressTime time.Duration) *Control {
	if c, ok := s.byID[id]; ok {
		return c
	}
	c := newControl(id, profile.Button{}, pressTime)
	s.add(c)
	return c
}

// sample updates the direction trackers from a snapshot.
func (s *setState) sample(snap gamepad.Snapshot, now time.Duration) {
	for i, c := range s.hats {
		var h uint8
		if i < len(snap.Hats) {
			h = snap.Hats[i]
		}
		c.updateHat(h, now)
	}
	for i, c := range s.sticks {
		k := s.cfg.Sticks[i]
		c.updateStick(axisValue(snap, k.XAxis), axisValue(snap, k.YAxis), k, now)
	}
}

func axisValue(snap gamepad.Snapshot, i int) int16 {
	if i < 0 || i >= len(snap.Axes) {
		return 0
	}
	return snap.Axes[i]
}

// level returns the activation of a control for a snapshot.
func (s *setState) level(id ControlID, snap gamepad.Snapshot) float64 {
	switch id.Kind {
	case KindButton:
		if id.Index < len(snap.Buttons) && snap.Buttons[id.Index] {
			return 1
		}
	case KindAxis:
		a, ok := s.cfg.Axes[id.Index]
		if !ok || id.Index >= len(snap.Axes) {
			return 0
		}
		neg, pos := normalizeAxis(snap.Axes[id.Index], a)
		if id.Dir == AxisNegative {
			return neg
		}
		return pos
	case KindHat:
		if c, ok := s.hats[id.Index]; ok {
			return c.level(id.Dir)
		}
	case KindStick:
		if id.Index < len(s.sticks) {
			return s.sticks[id.Index].level(id.Dir)
		}
	}
	return 0
}
