package engine

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/soar/padremap/internal/profile"
	"github.com/soar/padremap/internal/test"
	"github.com/soar/padremap/internal/vinput"
)

const ms = time.Millisecond

func TestHoldReached(t *testing.T) {
	a, b := key(t, "a"), key(t, "b")
	r := newRig(t, buttons(map[int]profile.Button{
		0: slots(profile.Key(a), profile.Hold(300*ms), profile.Key(b)),
	}))

	var at []time.Duration
	r.rec.Echo = func(vinput.Call) { at = append(at, r.eng.now()) }

	r.button(0, true)
	r.run(500 * ms)
	r.button(0, false)
	r.tick()

	r.expect(press(a), press(b), release(b), release(a))
	if test.Equate(t, len(at), 4) {
		test.Equate(t, at[1]-at[0], 300*ms)
		test.Equate(t, at[2]-at[0], 500*ms)
		test.Equate(t, at[3], at[2])
	}
}

func TestHoldNotReached(t *testing.T) {
	a, b := key(t, "a"), key(t, "b")
	r := newRig(t, buttons(map[int]profile.Button{
		0: slots(profile.Key(a), profile.Hold(300*ms), profile.Key(b)),
	}))

	r.button(0, true)
	r.run(200 * ms)
	r.button(0, false)
	r.run(500 * ms)

	r.expect(press(a), release(a))
	test.Equate(t, r.rec.Held(), 0)
}

func TestHoldDefaultsToPressTime(t *testing.T) {
	a := key(t, "a")
	r := newRig(t, buttons(map[int]profile.Button{
		0: {Slots: []profile.Slot{profile.Hold(0), profile.Key(a)}, PressTime: 100 * ms},
	}))

	r.button(0, true)
	r.run(100 * ms)
	r.expect()
	r.tick()
	r.expect(press(a))
	r.button(0, false)
	r.tick()
	r.expect(release(a))
}

func TestPauseOutlivesRelease(t *testing.T) {
	a, b := key(t, "a"), key(t, "b")
	r := newRig(t, buttons(map[int]profile.Button{
		0: slots(profile.Key(a), profile.Pause(100*ms), profile.Key(b)),
	}))

	// a tap still plays the whole macro
	r.button(0, true)
	r.tick()
	r.button(0, false)
	r.run(200 * ms)

	r.expect(press(a), press(b), release(b), release(a))
	test.Equate(t, r.controller().Control(0, ControlID{Kind: KindButton}).Phase(), PhaseIdle)
}

func TestDelayCancelledByRelease(t *testing.T) {
	a, b := key(t, "a"), key(t, "b")
	r := newRig(t, buttons(map[int]profile.Button{
		0: slots(profile.Key(a), profile.Delay(100*ms), profile.Key(b)),
	}))

	r.button(0, true)
	r.run(50 * ms)
	r.button(0, false)
	r.run(200 * ms)
	r.expect(press(a), release(a))

	r.button(0, true)
	r.run(150 * ms)
	r.expect(press(a), press(b))
}

func TestReleaseSlots(t *testing.T) {
	a, b, c := key(t, "a"), key(t, "b"), key(t, "c")
	r := newRig(t, buttons(map[int]profile.Button{
		0: slots(profile.Key(a), profile.Release(0), profile.Key(b), profile.Release(500*ms), profile.Key(c)),
	}))

	r.button(0, true)
	r.run(100 * ms)
	r.button(0, false)
	r.run(50 * ms)
	r.expect(press(a), release(a), press(b), release(b))

	r.button(0, true)
	r.run(600 * ms)
	r.button(0, false)
	r.run(50 * ms)
	r.expect(press(a), release(a), press(c), release(c))
}

func TestCycle(t *testing.T) {
	a, b, c := key(t, "a"), key(t, "b"), key(t, "c")
	r := newRig(t, buttons(map[int]profile.Button{
		0: slots(profile.Key(a), profile.Cycle(), profile.Key(b), profile.Cycle(), profile.Key(c)),
	}))

	for _, k := range []vinput.Key{a, b, c, a} {
		r.button(0, true)
		r.tick()
		r.button(0, false)
		r.tick()
		r.expect(press(k), release(k))
	}
}

func TestCycleReset(t *testing.T) {
	a, b := key(t, "a"), key(t, "b")
	r := newRig(t, buttons(map[int]profile.Button{
		0: {Slots: []profile.Slot{profile.Key(a), profile.Cycle(), profile.Key(b)}, CycleReset: 200 * ms},
	}))

	tap := func() {
		r.button(0, true)
		r.tick()
		r.button(0, false)
		r.tick()
	}

	tap()
	r.run(100 * ms)
	tap()
	r.expect(press(a), release(a), press(b), release(b))

	tap()
	r.run(300 * ms)
	tap()
	r.expect(press(a), release(a), press(a), release(a))
}

func TestToggle(t *testing.T) {
	a := key(t, "a")
	r := newRig(t, buttons(map[int]profile.Button{
		0: {Slots: []profile.Slot{profile.Key(a)}, Toggle: true},
	}))

	r.button(0, true)
	r.tick()
	r.button(0, false)
	r.run(100 * ms)
	r.expect(press(a))
	test.ExpectSuccess(t, r.rec.KeyHeld(a))

	r.button(0, true)
	r.tick()
	r.button(0, false)
	r.tick()
	r.expect(release(a))
}

func TestRepeatedKeyIsTapped(t *testing.T) {
	a := key(t, "a")
	r := newRig(t, buttons(map[int]profile.Button{
		0: slots(profile.Key(a), profile.Hold(50*ms), profile.Key(a)),
	}))

	r.button(0, true)
	r.run(100 * ms)
	r.button(0, false)
	r.tick()
	r.expect(press(a), release(a), press(a), release(a))
}

// auto-repeat presses a key that is already down, the way a keyboard does,
// so one release still leaves nothing held
func TestKeyRepeat(t *testing.T) {
	a := key(t, "a")
	cfg := testConfig()
	cfg.KeyRepeat.Enabled = true
	cfg.KeyRepeat.Delay = 500 * ms
	cfg.KeyRepeat.Rate = 20
	r := newRigWith(t, cfg, buttons(map[int]profile.Button{
		0: slots(profile.Key(a)),
	}))

	var presses []time.Duration
	releases := 0
	r.rec.Echo = func(c vinput.Call) {
		switch c.Op {
		case vinput.OpPressKey:
			presses = append(presses, r.eng.now())
		case vinput.OpReleaseKey:
			releases++
		}
	}

	r.button(0, true)
	r.run(time.Second)
	test.ExpectSuccess(t, r.rec.KeyHeld(a))
	test.Equate(t, releases, 0)

	r.button(0, false)
	r.tick()

	if test.Equate(t, len(presses), 11) {
		test.Equate(t, presses[1]-presses[0], 500*ms)
		for i := 2; i < len(presses); i++ {
			test.Equate(t, presses[i]-presses[i-1], 50*ms)
		}
	}
	test.Equate(t, releases, 1)
	test.Equate(t, r.rec.Held(), 0)
}

func TestTurbo(t *testing.T) {
	a := key(t, "a")
	r := newRig(t, buttons(map[int]profile.Button{
		0: {Slots: []profile.Slot{profile.Key(a)}, Turbo: profile.Turbo{Enabled: true, Rate: 10}},
	}))

	var presses, releases []time.Duration
	r.rec.Echo = func(c vinput.Call) {
		switch c.Op {
		case vinput.OpPressKey:
			presses = append(presses, r.eng.now())
		case vinput.OpReleaseKey:
			releases = append(releases, r.eng.now())
		}
	}

	r.button(0, true)
	r.run(time.Second)
	r.button(0, false)
	r.run(time.Second)

	test.Equate(t, len(presses), 10)
	test.Equate(t, len(releases), 10)
	for i := 1; i < len(presses); i++ {
		test.Equate(t, presses[i]-presses[i-1], 100*ms)
	}
	for i := range min(len(presses), len(releases)) {
		test.Equate(t, releases[i]-presses[i], 50*ms)
	}
	test.Equate(t, r.rec.Held(), 0)
}

func TestTurboRateHoldsOverTime(t *testing.T) {
	a := key(t, "a")
	r := newRig(t, buttons(map[int]profile.Button{
		0: {Slots: []profile.Slot{profile.Key(a)}, Turbo: profile.Turbo{Enabled: true, Rate: 8}},
	}))

	var presses []time.Duration
	r.rec.Echo = func(c vinput.Call) {
		if c.Op == vinput.OpPressKey {
			presses = append(presses, r.eng.now())
		}
	}

	// a 125ms period does not divide into 10ms ticks; pulses land on the
	// first tick at or after each multiple of the period
	r.button(0, true)
	r.run(5 * time.Second)
	r.button(0, false)
	r.run(time.Second)

	if test.Equate(t, len(presses), 40) {
		test.Equate(t, presses[8]-presses[0], time.Second)
		test.Equate(t, presses[39]-presses[0], 4880*ms)
	}
	test.Equate(t, r.rec.Held(), 0)
}

func TestTurboLimit(t *testing.T) {
	a := key(t, "a")
	r := newRig(t, buttons(map[int]profile.Button{
		0: {Slots: []profile.Slot{profile.Key(a)}, Turbo: profile.Turbo{Enabled: true, Rate: 10, Limit: 3}},
	}))

	r.button(0, true)
	r.run(time.Second)
	r.button(0, false)
	r.tick()

	n := 0
	for _, c := range r.rec.Calls() {
		if c.Op == vinput.OpPressKey {
			n++
		}
	}
	test.Equate(t, n, 3)
}

func TestDistance(t *testing.T) {
	a, b := key(t, "a"), key(t, "b")
	r := newRig(t, &profile.Profile{Sets: []profile.Set{{
		Axes: map[int]profile.Axis{
			0: {
				DeadZone: 0.1,
				MaxZone:  0.9,
				Positive: slots(profile.Key(a), profile.Distance(0.5), profile.Key(b)),
			},
		},
	}}})

	// 0.34 and 0.74 of full scale are 30% and 80% of the travel
	r.axis(0, 0.34)
	r.tick()
	r.expect(press(a))

	r.axis(0, 0.74)
	r.tick()
	r.expect(press(b))

	r.axis(0, 0.34)
	r.tick()
	r.expect(release(b))

	r.axis(0, 0.74)
	r.tick()
	r.expect(press(b))

	r.axis(0, 0)
	r.tick()
	r.expect(release(b), release(a))
}

func TestTextEntry(t *testing.T) {
	r := newRig(t, buttons(map[int]profile.Button{
		0: slots(profile.TextEntry("Hi!")),
	}))

	r.button(0, true)
	r.tick()

	shift, h, i := vinput.KeyShift, key(t, "h"), key(t, "i")
	one := key(t, "1")
	r.expect(
		press(shift), press(h), release(h), release(shift),
		press(i), release(i),
		press(shift), press(one), release(one), release(shift),
	)
}

func TestTextEntryDelay(t *testing.T) {
	cfg := testConfig()
	cfg.TextEntryDelay = 50 * ms
	r := newRigWith(t, cfg, buttons(map[int]profile.Button{
		0: slots(profile.TextEntry("ab")),
	}))

	a, b := key(t, "a"), key(t, "b")

	// the text keeps typing after the button is let go
	r.button(0, true)
	r.tick()
	r.button(0, false)
	r.expect(press(a), release(a))
	r.run(40 * ms)
	r.expect()
	r.run(20 * ms)
	r.expect(press(b), release(b))
}

type execCall struct {
	path string
	args []string
}

type fakeExecutor struct {
	calls []execCall
	err   error
}

func (f *fakeExecutor) Execute(path string, args ...string) error {
	f.calls = append(f.calls, execCall{path, args})
	return f.err
}

func TestExecute(t *testing.T) {
	x := &fakeExecutor{err: errors.New("no such file")}
	r := newRig(t, buttons(map[int]profile.Button{
		0: slots(profile.Execute("/usr/bin/notify-send", "hello")),
	}), WithExecutor(x))
	r.events()

	r.button(0, true)
	r.tick()

	if test.Equate(t, len(x.calls), 1) {
		test.Equate(t, x.calls[0].path, "/usr/bin/notify-send")
		test.Equate(t, strings.Join(x.calls[0].args, " "), "hello")
	}

	found := false
	for _, ev := range r.events() {
		if ev.Kind == EventLog && strings.Contains(ev.Message, "no such file") {
			found = true
		}
	}
	test.ExpectSuccess(t, found)
}

func TestMouseButtonAndWheel(t *testing.T) {
	r := newRig(t, buttons(map[int]profile.Button{
		0: slots(profile.MouseButton(vinput.ButtonRight)),
		1: {Slots: []profile.Slot{profile.Wheel(profile.DirDown)}, Mouse: profile.Mouse{WheelSpeedY: 10}},
	}))

	r.button(0, true)
	r.tick()
	r.button(0, false)
	r.tick()
	r.expect(
		vinput.Call{Op: vinput.OpPressButton, Button: vinput.ButtonRight},
		vinput.Call{Op: vinput.OpReleaseButton, Button: vinput.ButtonRight},
	)

	// one notch at once, then one every 100ms
	r.button(1, true)
	r.run(250 * ms)
	r.button(1, false)
	r.run(200 * ms)

	notch := vinput.Call{Op: vinput.OpScroll, Axis: vinput.WheelVertical, X: -1}
	r.expect(notch, notch, notch)
}

// Randomly generated bindings pressed and released at random must never
// leave anything pressed.
func TestReleaseReconciliation(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	keys := []vinput.Key{key(t, "a"), key(t, "b"), key(t, "c"), key(t, "d")}

	randomSlot := func() profile.Slot {
		d := time.Duration(rng.IntN(30)) * 10 * ms
		switch rng.IntN(9) {
		case 0:
			return profile.Hold(d)
		case 1:
			return profile.Pause(d)
		case 2:
			return profile.Delay(d)
		case 3:
			return profile.Release(d)
		case 4:
			return profile.Cycle()
		case 5:
			return profile.MouseButton(vinput.MouseButton(1 + rng.IntN(3)))
		case 6:
			return profile.TextEntry("ab")
		}
		return profile.Key(keys[rng.IntN(len(keys))])
	}

	for round := range 20 {
		bind := make(map[int]profile.Button)
		for i := range 4 {
			b := profile.Button{Turbo: profile.Turbo{Enabled: rng.IntN(5) == 0}}
			for range 1 + rng.IntN(8) {
				b.Slots = append(b.Slots, randomSlot())
			}
			bind[i] = b
		}
		r := newRig(t, buttons(bind))

		for range 500 {
			for i := range 4 {
				if rng.IntN(10) == 0 {
					r.button(i, rng.IntN(2) == 0)
				}
			}
			r.tick()
		}
		for i := range 4 {
			r.button(i, false)
		}
		r.run(5 * time.Second)

		pressed := make(map[vinput.Call]int)
		for _, c := range r.rec.Calls() {
			switch c.Op {
			case vinput.OpPressKey:
				pressed[vinput.Call{Key: c.Key}]++
			case vinput.OpReleaseKey:
				pressed[vinput.Call{Key: c.Key}]--
			case vinput.OpPressButton:
				pressed[vinput.Call{Button: c.Button}]++
			case vinput.OpReleaseButton:
				pressed[vinput.Call{Button: c.Button}]--
			}
		}
		for what, n := range pressed {
			if n > 0 {
				t.Errorf("round %d: %v pressed %d more times than released", round, what, n)
			}
		}
		if r.rec.Held() != 0 {
			t.Errorf("round %d: %d inputs still held", round, r.rec.Held())
		}
	}
}
