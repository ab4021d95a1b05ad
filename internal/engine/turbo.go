package engine

import (
	"time"

	"github.com/soar/padremap/internal/profile"
)

// turbo is the pulse generator of a control.
type turbo struct {
	// a pulse is down and will be released at release
	pressed bool
	release time.Duration

	next   time.Duration
	pulses int
}

func (t *turbo) begin(now time.Duration) {
	*t = turbo{next: now}
}

func (t *turbo) tick(c *Control, ctl *Controller, now time.Duration) {
	if t.pressed && now >= t.release {
		c.endPulse(ctl)
	}
	if !c.active || t.pressed || now < t.next {
		return
	}

	limit := c.bind.Turbo.Limit
	if limit > 0 && t.pulses >= limit {
		if t.pulses == limit {
			ctl.log(c.name, "turbo limit reached")
			t.pulses++
		}
		return
	}

	delay, period := c.turboTiming()
	t.pressed = true
	t.release = now + delay
	// pulses are scheduled from the previous one, not from the tick that
	// noticed it, so the rate holds over time
	t.next = max(t.next+period, now)
	t.pulses++
	c.startSegment(now)
}

// turboTiming returns how long the next pulse stays down and the time to the
// pulse after it.
func (c *Control) turboTiming() (time.Duration, time.Duration) {
	b := c.bind.Turbo
	lvl := c.level
	if lvl <= 0 || lvl > 1 {
		lvl = 1
	}

	rate := b.Rate
	delay := b.Delay

	switch b.Mode {
	case profile.TurboGradient:
		delay = b.MinDelay + time.Duration(float64(b.Delay-b.MinDelay)*lvl)
	case profile.TurboPulse:
		rate = b.MinRate + (b.Rate-b.MinRate)*lvl
	}

	period := time.Duration(float64(time.Second) / rate)
	if delay > period/2 && b.Mode == profile.TurboPulse {
		delay = period / 2
	}
	if delay > period {
		delay = period
	}
	return delay, period
}

// endPulse releases the current turbo pulse.
func (c *Control) endPulse(ctl *Controller) {
	c.turbo.pressed = false
	if r := c.run; r != nil {
		c.run = nil
		if r.pausing() {
			r.detached = true
			c.detached = append(c.detached, r)
		} else {
			r.finish(c, ctl)
		}
	}
}
