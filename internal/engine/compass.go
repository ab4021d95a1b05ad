package engine

import (
	"math"
	"time"

	"github.com/soar/padremap/internal/gamepad"
	"github.com/soar/padremap/internal/profile"
)

// bearing returns the compass bearing of a stick position in degrees,
// clockwise from up. y grows downwards.
func bearing(x, y float64) float64 {
	b := math.Atan2(x, -y) * 180 / math.Pi
	if b < 0 {
		b += 360
	}
	return b
}

var cardinals = [4]profile.Direction{profile.DirUp, profile.DirRight, profile.DirDown, profile.DirLeft}
var diagonals = [4]profile.Direction{profile.DirUpRight, profile.DirDownRight, profile.DirDownLeft, profile.DirUpLeft}

// region classifies a bearing into one of the eight compass regions. Each
// diagonal region is diagonalRange degrees wide.
func region(b, diagonalRange float64) profile.Direction {
	for i, d := range diagonals {
		centre := 45 + 90*float64(i)
		if math.Abs(b-centre) <= diagonalRange/2 {
			return d
		}
	}
	return nearestCardinal(b)
}

func nearestCardinal(b float64) profile.Direction {
	return cardinals[int(math.Floor((b+45)/90))%4]
}

func nearestDiagonal(b float64) profile.Direction {
	return diagonals[int(math.Floor(b/90))%4]
}

// hatRegion converts a hat bitmask into a compass region. Opposite bits
// cancel each other.
func hatRegion(h uint8) profile.Direction {
	var x, y int
	if h&gamepad.HatUp != 0 {
		y--
	}
	if h&gamepad.HatDown != 0 {
		y++
	}
	if h&gamepad.HatLeft != 0 {
		x--
	}
	if h&gamepad.HatRight != 0 {
		x++
	}
	for d := profile.DirUp; d <= profile.DirUpLeft; d++ {
		dx, dy := d.Vector()
		if dx == x && dy == y {
			return d
		}
	}
	return profile.DirNone
}

// split returns the cardinal directions that make up d.
func split(d profile.Direction) []profile.Direction {
	switch d {
	case profile.DirUpRight:
		return []profile.Direction{profile.DirUp, profile.DirRight}
	case profile.DirDownRight:
		return []profile.Direction{profile.DirDown, profile.DirRight}
	case profile.DirDownLeft:
		return []profile.Direction{profile.DirDown, profile.DirLeft}
	case profile.DirUpLeft:
		return []profile.Direction{profile.DirUp, profile.DirLeft}
	case profile.DirNone:
		return nil
	}
	return []profile.Direction{d}
}

// compass tracks the accepted direction of a stick or hat. A change from
// one direction to another only takes effect after the new direction has
// been held for the dwell time. Leaving or returning to centre is always
// immediate.
type compass struct {
	mode  profile.DirectionMode
	dwell time.Duration

	current   profile.Direction
	candidate profile.Direction
	since     time.Duration

	// bearing and magnitude of the last stick sample
	bearing   float64
	magnitude float64
}

func (c *compass) update(d profile.Direction, now time.Duration) {
	switch {
	case d == c.current:
		c.candidate = profile.DirNone
	case d == profile.DirNone || c.current == profile.DirNone || c.dwell <= 0:
		c.current = d
		c.candidate = profile.DirNone
	default:
		if c.candidate != d {
			c.candidate = d
			c.since = now
		}
		if now-c.since >= c.dwell {
			c.current = d
			c.candidate = profile.DirNone
		}
	}
}

// updateStick feeds a stick sample through the dead and max zones and the
// direction mode.
func (c *compass) updateStick(x, y int16, st profile.Stick, now time.Duration) {
	fx := gamepad.NormalizeAxis(x)
	fy := gamepad.NormalizeAxis(y)

	c.magnitude = rescale(math.Min(1, math.Hypot(fx, fy)), st.DeadZone, st.MaxZone)
	if c.magnitude == 0 {
		c.update(profile.DirNone, now)
		return
	}

	c.bearing = bearing(fx, fy)

	var d profile.Direction
	switch c.mode {
	case profile.ModeFourWayCardinal:
		d = nearestCardinal(c.bearing)
	case profile.ModeFourWayDiagonal:
		d = nearestDiagonal(c.bearing)
	default:
		d = region(c.bearing, st.DiagonalRange)
	}
	c.update(d, now)
}

// updateHat feeds a hat sample through the direction mode.
func (c *compass) updateHat(h uint8, now time.Duration) {
	d := hatRegion(h)
	c.magnitude = 0
	if d != profile.DirNone {
		c.magnitude = 1
	}

	switch c.mode {
	case profile.ModeFourWayCardinal:
		if d.Diagonal() {
			d = split(d)[0]
		}
	case profile.ModeFourWayDiagonal:
		if !d.Diagonal() {
			d = profile.DirNone
		}
	}
	c.update(d, now)
}

// level returns the activation of the control bound to direction d.
func (c *compass) level(d profile.Direction) float64 {
	if c.current == profile.DirNone {
		return 0
	}
	if c.mode == profile.ModeStandard {
		for _, s := range split(c.current) {
			if s == d {
				return c.magnitude
			}
		}
		return 0
	}
	if c.current == d {
		return c.magnitude
	}
	return 0
}
