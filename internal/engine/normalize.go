package engine

import (
	"math"

	"github.com/soar/padremap/internal/gamepad"
	"github.com/soar/padremap/internal/profile"
)

// rescale maps a magnitude in 0..1 through the dead and max zones. Values
// below the dead zone are zero, values at or beyond the max zone are one.
func rescale(m, dead, max float64) float64 {
	m = math.Abs(m)
	if m < dead {
		return 0
	}
	if m >= max {
		return 1
	}
	return (m - dead) / (max - dead)
}

// throttle applies the throttle mode to a signed value in -1..1 and returns
// a signed value in the same range.
func throttle(v float64, t profile.Throttle) float64 {
	switch t {
	case profile.ThrottleNegativeHalf:
		return -math.Abs(v)
	case profile.ThrottlePositiveHalf:
		return math.Abs(v)
	case profile.ThrottleNegative:
		return (v - 1) / 2
	case profile.ThrottlePositive:
		return (v + 1) / 2
	}
	return v
}

// normalizeAxis converts a raw sample into the activation of the negative
// and positive halves of the axis. At most one of the two is non-zero.
func normalizeAxis(raw int16, a profile.Axis) (neg float64, pos float64) {
	v := gamepad.NormalizeAxis(raw)
	if a.Invert {
		v = -v
	}
	v = throttle(v, a.Throttle)

	m := rescale(v, a.DeadZone, a.MaxZone)
	if v < 0 {
		return m, 0
	}
	return 0, m
}
