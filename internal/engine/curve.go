package engine

import (
	"math"
	"time"

	"github.com/soar/padremap/internal/profile"
)

// easing curves start ramping once travel passes this point
const easingThreshold = 0.75

// the quadratic extreme curve switches to its boosted step at this travel
const extremeThreshold = 0.95

// easing is the per-control state of the easing curves.
type easing struct {
	active bool
	since  time.Duration
}

// shape applies the acceleration curve to a magnitude in 0..1 and returns
// the fraction of full pointer speed.
func shape(m float64, cfg profile.Mouse, e *easing, now time.Duration) float64 {
	switch cfg.Curve {
	case profile.CurveQuadratic:
		return m * m
	case profile.CurveCubic:
		return m * m * m
	case profile.CurveQuadraticExtreme:
		if m >= extremeThreshold {
			return m * m * 1.5
		}
		return m * m
	case profile.CurvePower:
		return math.Pow(m, 1/cfg.Sensitivity)
	case profile.CurveEasingQuadratic, profile.CurveEasingCubic:
		return ease(m, cfg, e, now)
	}
	return m
}

func ease(m float64, cfg profile.Mouse, e *easing, now time.Duration) float64 {
	if m < easingThreshold {
		e.active = false
		return m / easingThreshold * 0.5
	}

	if !e.active {
		e.active = true
		e.since = now
	}

	x := 1.0
	if cfg.EasingDuration > 0 {
		x = math.Min(1, float64(now-e.since)/float64(cfg.EasingDuration))
	}

	var out float64
	if cfg.Curve == profile.CurveEasingCubic {
		out = 1 - math.Pow(1-x, 3)
	} else {
		out = 1 - (1-x)*(1-x)
	}
	return 0.5 + 0.5*out
}

// deltaAccel is the extra acceleration applied after a fast flick.
type deltaAccel struct {
	last       float64
	multiplier float64
	until      time.Duration
}

// apply measures the change of travel since the previous tick and returns
// the multiplier to apply to the pointer speed.
func (a *deltaAccel) apply(m float64, cfg profile.ExtraAccel, now, dt time.Duration) float64 {
	if !cfg.Enabled || dt <= 0 {
		a.last = m
		return 1
	}

	// travel per 10ms, independent of the poll interval
	travel := (m - a.last) * float64(10*time.Millisecond) / float64(dt)
	a.last = m

	if travel > cfg.StartThreshold {
		f := math.Min(1, (travel-cfg.StartThreshold)/(cfg.MaxThreshold-cfg.StartThreshold))
		mult := 1 + (cfg.Multiplier-1)*f
		if now >= a.until || mult > a.multiplier {
			a.multiplier = mult
		}
		a.until = now + cfg.Duration
	}

	if now < a.until && m > 0 {
		return a.multiplier
	}
	a.multiplier = 1
	return 1
}
