//go:build linux

package vinput

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/bendahl/uinput"
)

// DefaultUinputPath is the kernel's uinput device file.
const DefaultUinputPath = "/dev/uinput"

// Uinput creates virtual devices through the kernel uinput module. Relative
// motion goes through a virtual mouse, absolute positioning through a
// virtual touchpad sized to the screen.
type Uinput struct {
	kbd   uinput.Keyboard
	mouse uinput.Mouse
	pad   uinput.TouchPad

	width, height int
	x, y          int
}

// OpenUinput creates the virtual keyboard, mouse and touchpad.
func OpenUinput(path string, width, height int) (*Uinput, error) {
	if path == "" {
		path = DefaultUinputPath
	}

	kbd, err := uinput.CreateKeyboard(path, []byte("padremap keyboard"))
	if err != nil {
		return nil, fmt.Errorf("%w: uinput keyboard: %v", ErrUnavailable, err)
	}

	mouse, err := uinput.CreateMouse(path, []byte("padremap mouse"))
	if err != nil {
		kbd.Close()
		return nil, fmt.Errorf("%w: uinput mouse: %v", ErrUnavailable, err)
	}

	pad, err := uinput.CreateTouchPad(path, []byte("padremap pointer"), 0, int32(width-1), 0, int32(height-1))
	if err != nil {
		kbd.Close()
		mouse.Close()
		return nil, fmt.Errorf("%w: uinput touchpad: %v", ErrUnavailable, err)
	}

	return &Uinput{
		kbd:    kbd,
		mouse:  mouse,
		pad:    pad,
		width:  width,
		height: height,
		x:      width / 2,
		y:      height / 2,
	}, nil
}

// uinput wraps os errors with %v so errors.Is does not always see them
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, syscall.ENODEV) || errors.Is(err, syscall.EBADF) ||
		errors.Is(err, os.ErrClosed) || errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrDeviceGone, err)
	}
	return err
}

func (u *Uinput) PressKey(code Key) error {
	return classify(u.kbd.KeyDown(int(code)))
}

func (u *Uinput) ReleaseKey(code Key) error {
	return classify(u.kbd.KeyUp(int(code)))
}

func (u *Uinput) MoveCursorBy(dx, dy int) error {
	if err := classify(u.mouse.Move(int32(dx), int32(dy))); err != nil {
		return err
	}
	u.x = clampInt(u.x+dx, 0, u.width-1)
	u.y = clampInt(u.y+dy, 0, u.height-1)
	return nil
}

func (u *Uinput) MoveCursorTo(x, y int) error {
	x = clampInt(x, 0, u.width-1)
	y = clampInt(y, 0, u.height-1)
	if err := classify(u.pad.MoveTo(int32(x), int32(y))); err != nil {
		return err
	}
	u.x = x
	u.y = y
	return nil
}

func (u *Uinput) PressMouseButton(b MouseButton) error {
	switch b {
	case ButtonLeft:
		return classify(u.mouse.LeftPress())
	case ButtonRight:
		return classify(u.mouse.RightPress())
	case ButtonMiddle:
		return classify(u.mouse.MiddlePress())
	}
	return fmt.Errorf("%w: mouse button %s", ErrUnsupported, b)
}

func (u *Uinput) ReleaseMouseButton(b MouseButton) error {
	switch b {
	case ButtonLeft:
		return classify(u.mouse.LeftRelease())
	case ButtonRight:
		return classify(u.mouse.RightRelease())
	case ButtonMiddle:
		return classify(u.mouse.MiddleRelease())
	}
	return fmt.Errorf("%w: mouse button %s", ErrUnsupported, b)
}

func (u *Uinput) ScrollWheel(axis WheelAxis, notches int) error {
	return classify(u.mouse.Wheel(axis == WheelHorizontal, int32(notches)))
}

// ScreenSize returns the geometry the touchpad was created with.
func (u *Uinput) ScreenSize() (int, int) {
	return u.width, u.height
}

// CursorPosition is the position implied by the events sent so far. It
// drifts from reality if something else moves the pointer, hence ok=false.
func (u *Uinput) CursorPosition() (int, int, bool) {
	return u.x, u.y, false
}

func (u *Uinput) Close() error {
	return errors.Join(u.kbd.Close(), u.mouse.Close(), u.pad.Close())
}
