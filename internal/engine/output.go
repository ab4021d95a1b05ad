package engine

import (
	"errors"
	"fmt"

	"github.com/soar/padremap/internal/vinput"
)

// ErrSinkFailed ends the engine when the virtual input sink keeps failing.
var ErrSinkFailed = errors.New("virtual input keeps failing")

// output wraps the sink shared by every controller. A failing call is
// reported and treated as done, so the engine never believes a key is held
// when the host never saw it pressed. A sink that is gone, or that fails
// too many times in a row, is fatal.
type output struct {
	sink     vinput.Sink
	max      int
	failures int
	fatal    error
}

func (o *output) check(c *Controller, control string, what string, err error) bool {
	if err == nil {
		o.failures = 0
		return true
	}

	o.failures++
	c.log(control, fmt.Sprintf("%s failed: %v", what, err))

	if o.fatal == nil {
		switch {
		case errors.Is(err, vinput.ErrDeviceGone):
			o.fatal = err
		case o.max > 0 && o.failures >= o.max:
			o.fatal = fmt.Errorf("%w: %d failures, last: %w", ErrSinkFailed, o.failures, err)
		}
	}
	return false
}

func (o *output) pressKey(c *Controller, control string, k vinput.Key) bool {
	return o.check(c, control, "press "+k.String(), o.sink.PressKey(k))
}

func (o *output) releaseKey(c *Controller, control string, k vinput.Key) bool {
	return o.check(c, control, "release "+k.String(), o.sink.ReleaseKey(k))
}

func (o *output) pressButton(c *Controller, control string, b vinput.MouseButton) bool {
	return o.check(c, control, "press "+b.String(), o.sink.PressMouseButton(b))
}

func (o *output) releaseButton(c *Controller, control string, b vinput.MouseButton) bool {
	return o.check(c, control, "release "+b.String(), o.sink.ReleaseMouseButton(b))
}

func (o *output) scroll(c *Controller, control string, axis vinput.WheelAxis, notches int) bool {
	return o.check(c, control, "scroll", o.sink.ScrollWheel(axis, notches))
}

func (o *output) moveBy(c *Controller, control string, dx, dy int) bool {
	return o.check(c, control, "move", o.sink.MoveCursorBy(dx, dy))
}

func (o *output) moveTo(c *Controller, control string, x, y int) bool {
	return o.check(c, control, "move", o.sink.MoveCursorTo(x, y))
}
