package vinput

import (
	"fmt"
	"os"
	"runtime"

	"github.com/go-vgo/robotgo"
)

// XTest injects input through the display server (XTest on X11, SendInput
// on Windows, CGEvent on macOS) by way of robotgo. It needs no special
// privilege but only reaches applications on the same display.
type XTest struct{}

// OpenXTest checks that a display is reachable.
func OpenXTest() (*XTest, error) {
	if runtime.GOOS == "linux" && os.Getenv("DISPLAY") == "" {
		return nil, fmt.Errorf("%w: no DISPLAY for xtest", ErrUnavailable)
	}
	w, h := robotgo.GetScreenSize()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: display reports no screen", ErrUnavailable)
	}
	return &XTest{}, nil
}

func (x *XTest) PressKey(code Key) error {
	name, ok := robotName(code)
	if !ok {
		return fmt.Errorf("%w: key %s", ErrUnsupported, code)
	}
	return robotgo.KeyToggle(name, "down")
}

func (x *XTest) ReleaseKey(code Key) error {
	name, ok := robotName(code)
	if !ok {
		return fmt.Errorf("%w: key %s", ErrUnsupported, code)
	}
	return robotgo.KeyToggle(name, "up")
}

func (x *XTest) MoveCursorBy(dx, dy int) error {
	robotgo.MoveRelative(dx, dy)
	return nil
}

func (x *XTest) MoveCursorTo(px, py int) error {
	robotgo.Move(px, py)
	return nil
}

func robotButton(b MouseButton) (string, error) {
	switch b {
	case ButtonLeft:
		return "left", nil
	case ButtonRight:
		return "right", nil
	case ButtonMiddle:
		return "center", nil
	}
	return "", fmt.Errorf("%w: mouse button %s", ErrUnsupported, b)
}

func (x *XTest) PressMouseButton(b MouseButton) error {
	name, err := robotButton(b)
	if err != nil {
		return err
	}
	return robotgo.Toggle(name)
}

func (x *XTest) ReleaseMouseButton(b MouseButton) error {
	name, err := robotButton(b)
	if err != nil {
		return err
	}
	return robotgo.Toggle(name, "up")
}

func (x *XTest) ScrollWheel(axis WheelAxis, notches int) error {
	if axis == WheelHorizontal {
		robotgo.Scroll(notches, 0)
	} else {
		robotgo.Scroll(0, notches)
	}
	return nil
}

func (x *XTest) ScreenSize() (int, int) {
	return robotgo.GetScreenSize()
}

func (x *XTest) CursorPosition() (int, int, bool) {
	px, py := robotgo.Location()
	return px, py, true
}

func (x *XTest) Close() error {
	return nil
}
