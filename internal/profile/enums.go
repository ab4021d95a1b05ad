package profile

import (
	"fmt"
	"strings"
)

// enumText parses s against names, where names[i] is the text form of
// value i
func enumText(kind string, s string, names []string) (int, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	n = strings.ReplaceAll(n, "_", "-")
	for i, name := range names {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, s)
}

func enumString(i int, names []string) string {
	if i < 0 || i >= len(names) {
		return "unknown"
	}
	return names[i]
}

// Throttle decides which part of an axis' travel counts as active.
type Throttle int

const (
	ThrottleNormal Throttle = iota
	ThrottlePositive
	ThrottleNegative
	ThrottlePositiveHalf
	ThrottleNegativeHalf
)

var throttleNames = []string{"normal", "positive", "negative", "positive-half", "negative-half"}

func (t Throttle) String() string { return enumString(int(t), throttleNames) }

func (t *Throttle) UnmarshalText(b []byte) error {
	v, err := enumText("throttle", string(b), throttleNames)
	*t = Throttle(v)
	return err
}

// DirectionMode selects how a stick or hat bearing maps onto direction
// controls.
type DirectionMode int

const (
	ModeStandard DirectionMode = iota
	ModeEightWay
	ModeFourWayCardinal
	ModeFourWayDiagonal
)

var directionModeNames = []string{"standard", "eight-way", "four-way-cardinal", "four-way-diagonal"}

func (m DirectionMode) String() string { return enumString(int(m), directionModeNames) }

func (m *DirectionMode) UnmarshalText(b []byte) error {
	v, err := enumText("direction mode", string(b), directionModeNames)
	*m = DirectionMode(v)
	return err
}

// Direction is one of the eight compass directions.
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirUpRight
	DirRight
	DirDownRight
	DirDown
	DirDownLeft
	DirLeft
	DirUpLeft
)

var directionNames = []string{"none", "up", "up-right", "right", "down-right", "down", "down-left", "left", "up-left"}

func (d Direction) String() string { return enumString(int(d), directionNames) }

func (d *Direction) UnmarshalText(b []byte) error {
	v, err := enumText("direction", string(b), directionNames)
	*d = Direction(v)
	return err
}

// MarshalText lets Direction be used as a JSON map key.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Diagonal reports whether d is one of the four diagonals.
func (d Direction) Diagonal() bool {
	return d == DirUpRight || d == DirDownRight || d == DirDownLeft || d == DirUpLeft
}

// Vector returns the unit step for d with y growing downwards, matching
// screen coordinates.
func (d Direction) Vector() (int, int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirUpRight:
		return 1, -1
	case DirRight:
		return 1, 0
	case DirDownRight:
		return 1, 1
	case DirDown:
		return 0, 1
	case DirDownLeft:
		return -1, 1
	case DirLeft:
		return -1, 0
	case DirUpLeft:
		return -1, -1
	}
	return 0, 0
}

// TurboMode shapes the turbo pulse train.
type TurboMode int

const (
	TurboNormal TurboMode = iota
	TurboGradient
	TurboPulse
)

var turboModeNames = []string{"normal", "gradient", "pulse"}

func (m TurboMode) String() string { return enumString(int(m), turboModeNames) }

func (m *TurboMode) UnmarshalText(b []byte) error {
	v, err := enumText("turbo mode", string(b), turboModeNames)
	*m = TurboMode(v)
	return err
}

// MouseMode selects cursor (relative) or spring (absolute) emulation.
type MouseMode int

const (
	MouseCursor MouseMode = iota
	MouseSpring
)

var mouseModeNames = []string{"cursor", "spring"}

func (m MouseMode) String() string { return enumString(int(m), mouseModeNames) }

func (m *MouseMode) UnmarshalText(b []byte) error {
	v, err := enumText("mouse mode", string(b), mouseModeNames)
	*m = MouseMode(v)
	return err
}

// Curve is the pointer acceleration curve.
type Curve int

const (
	CurveLinear Curve = iota
	CurveQuadratic
	CurveCubic
	CurveQuadraticExtreme
	CurvePower
	CurveEasingQuadratic
	CurveEasingCubic
)

var curveNames = []string{"linear", "quadratic", "cubic", "quadratic-extreme", "power", "easing-quadratic", "easing-cubic"}

func (c Curve) String() string { return enumString(int(c), curveNames) }

func (c *Curve) UnmarshalText(b []byte) error {
	v, err := enumText("curve", string(b), curveNames)
	*c = Curve(v)
	return err
}

// SetMode is how a set change slot behaves.
type SetMode int

const (
	SetOneWay SetMode = iota
	SetTwoWay
	SetWhileHeld
)

var setModeNames = []string{"one-way", "two-way", "while-held"}

func (m SetMode) String() string { return enumString(int(m), setModeNames) }

func (m *SetMode) UnmarshalText(b []byte) error {
	v, err := enumText("set mode", string(b), setModeNames)
	*m = SetMode(v)
	return err
}
