package engine

import (
	"testing"
	"time"

	"github.com/soar/padremap/internal/profile"
	"github.com/soar/padremap/internal/test"
)

func TestCurves(t *testing.T) {
	var e easing
	m := profile.Mouse{Sensitivity: 2, EasingDuration: 100 * time.Millisecond}

	m.Curve = profile.CurveLinear
	test.Equate(t, shape(0.5, m, &e, 0), 0.5)
	m.Curve = profile.CurveQuadratic
	test.Equate(t, shape(0.5, m, &e, 0), 0.25)
	m.Curve = profile.CurveCubic
	test.Equate(t, shape(0.5, m, &e, 0), 0.125)
	m.Curve = profile.CurvePower
	test.ApproxEquate(t, shape(0.25, m, &e, 0), 0.5, 0.0001)

	m.Curve = profile.CurveQuadraticExtreme
	test.Equate(t, shape(0.5, m, &e, 0), 0.25)
	test.Equate(t, shape(1, m, &e, 0), 1.5)

	for _, c := range []profile.Curve{profile.CurveLinear, profile.CurveQuadratic, profile.CurveCubic, profile.CurvePower} {
		m.Curve = c
		test.Equate(t, shape(0, m, &e, 0), 0.0)
		test.Equate(t, shape(1, m, &e, 0), 1.0)
	}
}

func TestEasing(t *testing.T) {
	ms := time.Millisecond
	var e easing
	m := profile.Mouse{Curve: profile.CurveEasingQuadratic, EasingDuration: 100 * ms}

	// below the threshold speed grows linearly to half
	test.ApproxEquate(t, shape(0.375, m, &e, 0), 0.25, 0.0001)
	test.Equate(t, e.active, false)

	// beyond it the second half ramps in over the easing duration
	test.Equate(t, shape(1, m, &e, 10*ms), 0.5)
	test.Equate(t, e.active, true)
	v := shape(1, m, &e, 60*ms)
	if v <= 0.5 || v >= 1 {
		t.Errorf("easing at half time is %f", v)
	}
	test.Equate(t, shape(1, m, &e, 110*ms), 1.0)
	test.Equate(t, shape(1, m, &e, 500*ms), 1.0)

	// dropping below the threshold restarts the ramp
	shape(0.5, m, &e, 510*ms)
	test.Equate(t, shape(1, m, &e, 520*ms), 0.5)

	m.Curve = profile.CurveEasingCubic
	e = easing{}
	shape(1, m, &e, 0)
	q := shape(1, m, &e, 50*ms)
	m.Curve = profile.CurveEasingQuadratic
	e = easing{}
	shape(1, m, &e, 0)
	if c := shape(1, m, &e, 50*ms); q <= c {
		t.Errorf("cubic easing (%f) should lead quadratic easing (%f)", q, c)
	}
}

func TestDeltaAccel(t *testing.T) {
	ms := time.Millisecond
	cfg := profile.ExtraAccel{
		Enabled:        true,
		Multiplier:     3,
		StartThreshold: 0.1,
		MaxThreshold:   0.6,
		Duration:       50 * ms,
	}

	var a deltaAccel
	test.Equate(t, a.apply(0, cfg, 0, 10*ms), 1.0)

	// a slow push does not accelerate
	test.Equate(t, a.apply(0.05, cfg, 10*ms, 10*ms), 1.0)

	// a full flick in one tick reaches the multiplier
	a = deltaAccel{}
	test.Equate(t, a.apply(1, cfg, 0, 10*ms), 3.0)
	test.Equate(t, a.apply(1, cfg, 10*ms, 10*ms), 3.0)
	test.Equate(t, a.apply(1, cfg, 60*ms, 10*ms), 1.0)

	cfg.Enabled = false
	a = deltaAccel{}
	test.Equate(t, a.apply(1, cfg, 0, 10*ms), 1.0)
}

func TestTurboTiming(t *testing.T) {
	ms := time.Millisecond
	b := profile.Button{Turbo: profile.Turbo{
		Enabled:  true,
		Rate:     10,
		Delay:    50 * ms,
		MinRate:  2,
		MinDelay: 10 * ms,
	}}

	c := newControl(ControlID{}, b, 0)
	c.level = 1
	delay, period := c.turboTiming()
	test.Equate(t, delay, 50*ms)
	test.Equate(t, period, 100*ms)

	c.bind.Turbo.Mode = profile.TurboGradient
	c.level = 0.5
	delay, period = c.turboTiming()
	test.Equate(t, delay, 30*ms)
	test.Equate(t, period, 100*ms)

	c.bind.Turbo.Mode = profile.TurboPulse
	c.level = 0.5
	delay, period = c.turboTiming()
	test.Equate(t, period, time.Second/6)
	test.Equate(t, delay, 50*ms)

	// the pulse never stays down for more than half its period
	c.bind.Turbo.Delay = 100 * ms
	c.level = 1
	delay, period = c.turboTiming()
	test.Equate(t, delay, period/2)
}
