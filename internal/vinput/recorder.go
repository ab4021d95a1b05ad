package vinput

import (
	"fmt"
	"sync"
)

// Op names a Sink method.
type Op uint8

const (
	OpPressKey Op = iota
	OpReleaseKey
	OpMoveBy
	OpMoveTo
	OpPressButton
	OpReleaseButton
	OpScroll
)

func (o Op) String() string {
	switch o {
	case OpPressKey:
		return "press"
	case OpReleaseKey:
		return "release"
	case OpMoveBy:
		return "move-by"
	case OpMoveTo:
		return "move-to"
	case OpPressButton:
		return "press-button"
	case OpReleaseButton:
		return "release-button"
	case OpScroll:
		return "scroll"
	}
	return "unknown"
}

// Call is one recorded Sink invocation.
type Call struct {
	Op     Op
	Key    Key
	Button MouseButton
	Axis   WheelAxis
	X, Y   int
}

func (c Call) String() string {
	switch c.Op {
	case OpPressKey, OpReleaseKey:
		return fmt.Sprintf("%s %s", c.Op, c.Key)
	case OpPressButton, OpReleaseButton:
		return fmt.Sprintf("%s %s", c.Op, c.Button)
	case OpScroll:
		return fmt.Sprintf("%s %d:%d", c.Op, c.Axis, c.X)
	}
	return fmt.Sprintf("%s %d,%d", c.Op, c.X, c.Y)
}

// Recorder is a Sink that remembers every call instead of injecting input.
// It backs the dryrun backend and the tests.
type Recorder struct {
	mu      sync.Mutex
	calls   []Call
	keys    map[Key]bool
	buttons map[MouseButton]bool

	width, height int
	x, y          int

	failures map[Op]error

	// Echo, if set, is called with every recorded call
	Echo func(Call)
}

// NewRecorder creates a Recorder reporting the given screen size.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{
		keys:     make(map[Key]bool),
		buttons:  make(map[MouseButton]bool),
		failures: make(map[Op]error),
		width:    width,
		height:   height,
		x:        width / 2,
		y:        height / 2,
	}
}

// Fail makes every following call of op return err. A nil err clears it.
func (r *Recorder) Fail(op Op, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.failures, op)
		return
	}
	r.failures[op] = err
}

func (r *Recorder) record(c Call) error {
	if err, ok := r.failures[c.Op]; ok {
		return err
	}
	r.calls = append(r.calls, c)
	if r.Echo != nil {
		r.Echo(c)
	}
	return nil
}

func (r *Recorder) PressKey(code Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(Call{Op: OpPressKey, Key: code}); err != nil {
		return err
	}
	r.keys[code] = true
	return nil
}

func (r *Recorder) ReleaseKey(code Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(Call{Op: OpReleaseKey, Key: code}); err != nil {
		return err
	}
	delete(r.keys, code)
	return nil
}

func (r *Recorder) MoveCursorBy(dx, dy int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(Call{Op: OpMoveBy, X: dx, Y: dy}); err != nil {
		return err
	}
	r.x += dx
	r.y += dy
	return nil
}

func (r *Recorder) MoveCursorTo(x, y int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(Call{Op: OpMoveTo, X: x, Y: y}); err != nil {
		return err
	}
	r.x = x
	r.y = y
	return nil
}

func (r *Recorder) PressMouseButton(b MouseButton) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(Call{Op: OpPressButton, Button: b}); err != nil {
		return err
	}
	r.buttons[b] = true
	return nil
}

func (r *Recorder) ReleaseMouseButton(b MouseButton) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(Call{Op: OpReleaseButton, Button: b}); err != nil {
		return err
	}
	delete(r.buttons, b)
	return nil
}

func (r *Recorder) ScrollWheel(axis WheelAxis, notches int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.record(Call{Op: OpScroll, Axis: axis, X: notches})
}

func (r *Recorder) Close() error {
	return nil
}

func (r *Recorder) ScreenSize() (int, int) {
	return r.width, r.height
}

func (r *Recorder) CursorPosition() (int, int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.x, r.y, true
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := make([]Call, len(r.calls))
	copy(c, r.calls)
	return c
}

// Reset forgets recorded calls but not held state.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = r.calls[:0]
}

// Held reports the number of keys and mouse buttons currently pressed.
func (r *Recorder) Held() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys) + len(r.buttons)
}

// KeyHeld reports whether code is currently pressed.
func (r *Recorder) KeyHeld(code Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keys[code]
}
