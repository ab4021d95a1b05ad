package gamepad

import (
	"math"
	"slices"
)

// Status is the controller state shown on the status page. Axes are
// normalised to -1..1.
type Status struct {
	Connected bool      `json:"connected"`
	ID        DeviceID  `json:"id"`
	GUID      string    `json:"guid"`
	Name      string    `json:"name"`
	Family    string    `json:"family"`
	Set       string    `json:"set"`
	Axes      []float64 `json:"axes"`
	Buttons   []bool    `json:"buttons"`
	Hats      []int     `json:"hats"`
}

// NewStatus builds the status of a connected controller from a raw
// snapshot.
func NewStatus(info DeviceInfo, set string, s Snapshot) Status {
	st := Status{
		Connected: true,
		ID:        info.ID,
		GUID:      info.GUID,
		Name:      info.Name,
		Family:    info.Family,
		Set:       set,
		Axes:      make([]float64, len(s.Axes)),
		Buttons:   append([]bool(nil), s.Buttons...),
		Hats:      make([]int, len(s.Hats)),
	}
	for i, v := range s.Axes {
		st.Axes[i] = NormalizeAxis(v)
	}
	for i, v := range s.Hats {
		st.Hats[i] = int(v)
	}
	return st
}

// StatusDelta carries only the parts of a Status that changed.
type StatusDelta struct {
	Connected *bool     `json:"connected,omitempty"`
	Name      *string   `json:"name,omitempty"`
	Set       *string   `json:"set,omitempty"`
	Axes      []float64 `json:"axes,omitempty"`
	Buttons   []bool    `json:"buttons,omitempty"`
	Hats      []int     `json:"hats,omitempty"`
}

func (d *StatusDelta) IsEmpty() bool {
	return d.Connected == nil &&
		d.Name == nil &&
		d.Set == nil &&
		d.Axes == nil &&
		d.Buttons == nil &&
		d.Hats == nil
}

const analogThreshold = 0.01

func floatEqual(a, b float64) bool {
	return math.Abs(a-b) < analogThreshold
}

// ComputeDelta compares two statuses of the same controller. Analog jitter
// below one percent is not a change.
func ComputeDelta(old, new_ Status) *StatusDelta {
	d := &StatusDelta{}

	if old.Connected != new_.Connected {
		d.Connected = &new_.Connected
	}
	if old.Name != new_.Name {
		d.Name = &new_.Name
	}
	if old.Set != new_.Set {
		d.Set = &new_.Set
	}
	if !slices.Equal(old.Buttons, new_.Buttons) {
		d.Buttons = new_.Buttons
	}
	if !slices.Equal(old.Hats, new_.Hats) {
		d.Hats = new_.Hats
	}
	if !slices.EqualFunc(old.Axes, new_.Axes, floatEqual) {
		d.Axes = new_.Axes
	}

	return d
}
