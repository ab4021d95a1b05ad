// Package profile describes what every control of a controller does: the
// action sequences bound to buttons, axis halves, hat and stick directions,
// grouped into up to eight alternate sets.
package profile

import (
	"errors"
	"fmt"
	"time"
)

// MaxSets is the number of alternate sets a controller can carry.
const MaxSets = 8

var (
	ErrTooManySets = errors.New("too many sets")
	ErrBadSlot     = errors.New("bad slot")
)

// Profile is a fully resolved mapping for one controller.
type Profile struct {
	Name string `mapstructure:"name"`
	Sets []Set  `mapstructure:"sets"`
}

// Set is one complete alternate mapping.
type Set struct {
	Name    string         `mapstructure:"name"`
	Buttons map[int]Button `mapstructure:"buttons"`
	Axes    map[int]Axis   `mapstructure:"axes"`
	Hats    map[int]DPad   `mapstructure:"hats"`
	Sticks  []Stick        `mapstructure:"sticks"`
}

// Button is the binding of a single logical control. Axis halves, hat
// directions and stick directions all carry one.
type Button struct {
	Slots  []Slot `mapstructure:"slots"`
	Toggle bool   `mapstructure:"toggle"`
	Turbo  Turbo  `mapstructure:"turbo"`

	// rewind the cycle cursor when the control stays idle this long. zero
	// disables the reset
	CycleReset time.Duration `mapstructure:"cycle_reset"`

	// overrides the global press time when not zero
	PressTime time.Duration `mapstructure:"press_time"`

	Mouse Mouse `mapstructure:"mouse"`
}

// Turbo configures automatic re-pressing while a control is held.
type Turbo struct {
	Enabled bool      `mapstructure:"enabled"`
	Mode    TurboMode `mapstructure:"mode"`

	// pulses per second and how long each pulse stays pressed
	Rate  float64       `mapstructure:"rate"`
	Delay time.Duration `mapstructure:"delay"`

	// lower extremes for gradient (MinDelay) and pulse (MinRate) shaping
	MinRate  float64       `mapstructure:"min_rate"`
	MinDelay time.Duration `mapstructure:"min_delay"`

	// stop pulsing after this many pulses. zero is unlimited
	Limit int `mapstructure:"limit"`
}

// Mouse holds the pointer tuning used by the mouse slots of a control.
type Mouse struct {
	Mode  MouseMode `mapstructure:"mode"`
	Curve Curve     `mapstructure:"curve"`

	// pixels per second at full deflection
	SpeedX float64 `mapstructure:"speed_x"`
	SpeedY float64 `mapstructure:"speed_y"`

	Sensitivity    float64       `mapstructure:"sensitivity"`
	EasingDuration time.Duration `mapstructure:"easing_duration"`

	// spring region in pixels. zero means the whole screen
	SpringWidth    int  `mapstructure:"spring_width"`
	SpringHeight   int  `mapstructure:"spring_height"`
	SpringRelative bool `mapstructure:"spring_relative"`

	// notches per second
	WheelSpeedX float64 `mapstructure:"wheel_speed_x"`
	WheelSpeedY float64 `mapstructure:"wheel_speed_y"`

	ExtraAccel ExtraAccel `mapstructure:"extra_accel"`
}

// ExtraAccel boosts pointer speed after a fast flick of the stick.
type ExtraAccel struct {
	Enabled    bool    `mapstructure:"enabled"`
	Multiplier float64 `mapstructure:"multiplier"`

	// stick travel per 10ms, as a fraction of full scale
	StartThreshold float64 `mapstructure:"start_threshold"`
	MaxThreshold   float64 `mapstructure:"max_threshold"`

	Duration time.Duration `mapstructure:"duration"`
}

// Axis configures one analog axis and the two controls it drives.
type Axis struct {
	Invert   bool     `mapstructure:"invert"`
	DeadZone float64  `mapstructure:"dead_zone"`
	MaxZone  float64  `mapstructure:"max_zone"`
	Throttle Throttle `mapstructure:"throttle"`

	Negative Button `mapstructure:"negative"`
	Positive Button `mapstructure:"positive"`
}

// Stick pairs two axes into a directional control.
type Stick struct {
	XAxis int `mapstructure:"x_axis"`
	YAxis int `mapstructure:"y_axis"`

	DeadZone float64 `mapstructure:"dead_zone"`
	MaxZone  float64 `mapstructure:"max_zone"`

	// angular width in degrees of each diagonal region
	DiagonalRange float64 `mapstructure:"diagonal_range"`

	Mode  DirectionMode `mapstructure:"mode"`
	Delay time.Duration `mapstructure:"delay"`

	Directions map[Direction]Button `mapstructure:"directions"`
}

// DPad configures a hat switch.
type DPad struct {
	Mode       DirectionMode        `mapstructure:"mode"`
	Delay      time.Duration        `mapstructure:"delay"`
	Directions map[Direction]Button `mapstructure:"directions"`
}

// Defaults applied to zero fields by Normalise.
const (
	DefaultDeadZone      = 0.2
	DefaultMaxZone       = 0.95
	DefaultStickDeadZone = 0.25
	DefaultDiagonalRange = 45.0
	DefaultMouseSpeed    = 1000.0
	DefaultWheelSpeed    = 20.0
	DefaultTurboRate     = 10.0
	DefaultSensitivity   = 1.0
	DefaultEasing        = 500 * time.Millisecond
)

func (b *Button) normalise() {
	if b.Turbo.Rate <= 0 {
		b.Turbo.Rate = DefaultTurboRate
	}
	period := time.Duration(float64(time.Second) / b.Turbo.Rate)
	if b.Turbo.Delay <= 0 || b.Turbo.Delay > period {
		b.Turbo.Delay = period / 2
	}
	if b.Turbo.MinRate <= 0 || b.Turbo.MinRate > b.Turbo.Rate {
		b.Turbo.MinRate = b.Turbo.Rate / 4
	}
	if b.Turbo.MinDelay <= 0 || b.Turbo.MinDelay > b.Turbo.Delay {
		b.Turbo.MinDelay = b.Turbo.Delay / 4
	}

	m := &b.Mouse
	if m.SpeedX <= 0 {
		m.SpeedX = DefaultMouseSpeed
	}
	if m.SpeedY <= 0 {
		m.SpeedY = DefaultMouseSpeed
	}
	if m.Sensitivity <= 0 {
		m.Sensitivity = DefaultSensitivity
	}
	if m.EasingDuration <= 0 {
		m.EasingDuration = DefaultEasing
	}
	if m.WheelSpeedX <= 0 {
		m.WheelSpeedX = DefaultWheelSpeed
	}
	if m.WheelSpeedY <= 0 {
		m.WheelSpeedY = DefaultWheelSpeed
	}

	x := &m.ExtraAccel
	if x.Multiplier <= 1 {
		x.Multiplier = 2
	}
	if x.StartThreshold <= 0 {
		x.StartThreshold = 0.1
	}
	if x.MaxThreshold <= x.StartThreshold {
		x.MaxThreshold = x.StartThreshold + 0.5
	}
	if x.Duration <= 0 {
		x.Duration = 100 * time.Millisecond
	}
}

func zone(dead, max, defaultDead float64) (float64, float64) {
	if dead <= 0 || dead >= 1 {
		dead = defaultDead
	}
	if max <= dead || max > 1 {
		max = DefaultMaxZone
		if max <= dead {
			max = 1
		}
	}
	return dead, max
}

// Normalise fills unset tuning parameters with their defaults. It
// guarantees at least one set.
func (p *Profile) Normalise() {
	if len(p.Sets) == 0 {
		p.Sets = []Set{{}}
	}

	for si := range p.Sets {
		s := &p.Sets[si]
		if s.Name == "" {
			s.Name = fmt.Sprintf("Set %d", si+1)
		}

		for i, b := range s.Buttons {
			b.normalise()
			s.Buttons[i] = b
		}

		for i, a := range s.Axes {
			a.DeadZone, a.MaxZone = zone(a.DeadZone, a.MaxZone, DefaultDeadZone)
			a.Negative.normalise()
			a.Positive.normalise()
			s.Axes[i] = a
		}

		for i, h := range s.Hats {
			for d, b := range h.Directions {
				b.normalise()
				h.Directions[d] = b
			}
			s.Hats[i] = h
		}

		for i := range s.Sticks {
			st := &s.Sticks[i]
			st.DeadZone, st.MaxZone = zone(st.DeadZone, st.MaxZone, DefaultStickDeadZone)
			if st.DiagonalRange <= 0 || st.DiagonalRange >= 90 {
				st.DiagonalRange = DefaultDiagonalRange
			}
			for d, b := range st.Directions {
				b.normalise()
				st.Directions[d] = b
			}
		}
	}
}

// Validate checks the structural rules the engine relies on.
func (p *Profile) Validate() error {
	if len(p.Sets) > MaxSets {
		return fmt.Errorf("%w: %d (maximum %d)", ErrTooManySets, len(p.Sets), MaxSets)
	}

	check := func(set int, where string, b Button) error {
		for i, s := range b.Slots {
			if err := s.validate(len(p.Sets)); err != nil {
				return fmt.Errorf("set %d %s slot %d: %w", set+1, where, i, err)
			}
		}
		return nil
	}

	for si, s := range p.Sets {
		for i, b := range s.Buttons {
			if err := check(si, fmt.Sprintf("button %d", i), b); err != nil {
				return err
			}
		}
		for i, a := range s.Axes {
			if err := check(si, fmt.Sprintf("axis %d-", i), a.Negative); err != nil {
				return err
			}
			if err := check(si, fmt.Sprintf("axis %d+", i), a.Positive); err != nil {
				return err
			}
		}
		for i, h := range s.Hats {
			for d, b := range h.Directions {
				if err := check(si, fmt.Sprintf("hat %d %s", i, d), b); err != nil {
					return err
				}
			}
		}
		for i, st := range s.Sticks {
			if st.XAxis == st.YAxis {
				return fmt.Errorf("set %d stick %d: x and y use the same axis", si+1, i)
			}
			for d, b := range st.Directions {
				if err := check(si, fmt.Sprintf("stick %d %s", i, d), b); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
