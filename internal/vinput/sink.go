// Package vinput injects synthesized keyboard and mouse input into the host
// operating system. Every backend implements Sink; the engine never knows
// which one it is talking to.
package vinput

import "errors"

// Key is a Linux input event code (KEY_* or BTN_*). The same numbering is
// used for every backend; backends that speak another vocabulary translate
// at the edge.
type Key uint16

// MouseButton identifies a pointer button.
type MouseButton uint8

const (
	ButtonLeft MouseButton = iota + 1
	ButtonRight
	ButtonMiddle
	ButtonSide
	ButtonExtra
)

func (b MouseButton) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonMiddle:
		return "middle"
	case ButtonSide:
		return "side"
	case ButtonExtra:
		return "extra"
	}
	return "unknown"
}

// WheelAxis selects the scroll wheel.
type WheelAxis uint8

const (
	WheelVertical WheelAxis = iota
	WheelHorizontal
)

// Sink accepts synthesized input. Calls are synchronous and delivered to the
// OS in the order they are made.
type Sink interface {
	PressKey(code Key) error
	ReleaseKey(code Key) error
	MoveCursorBy(dx, dy int) error
	MoveCursorTo(x, y int) error
	PressMouseButton(b MouseButton) error
	ReleaseMouseButton(b MouseButton) error

	// positive notches scroll up (vertical) or right (horizontal)
	ScrollWheel(axis WheelAxis, notches int) error

	Close() error
}

// Screen is implemented by sinks that can report display geometry and the
// real cursor position.
type Screen interface {
	ScreenSize() (width, height int)
	CursorPosition() (x, y int, ok bool)
}

var (
	// ErrUnavailable is returned when a backend cannot be opened at all.
	ErrUnavailable = errors.New("virtual input unavailable")

	// ErrDeviceGone is returned by a sink call when the backend became
	// permanently unusable, eg. the device file vanished.
	ErrDeviceGone = errors.New("virtual input device gone")

	// ErrUnsupported is returned for requests a backend cannot express.
	ErrUnsupported = errors.New("not supported by virtual input backend")
)
