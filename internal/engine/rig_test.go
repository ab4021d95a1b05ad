package engine

import (
	"slices"
	"testing"
	"time"

	"github.com/soar/padremap/internal/config"
	"github.com/soar/padremap/internal/gamepad"
	"github.com/soar/padremap/internal/profile"
	"github.com/soar/padremap/internal/vinput"
)

const pad gamepad.DeviceID = 1

var padInfo = gamepad.DeviceInfo{
	ID:      pad,
	GUID:    "045e:028e:test pad",
	Name:    "test pad",
	Family:  "xbox",
	Axes:    6,
	Buttons: 16,
	Hats:    1,
}

// rig drives an engine tick by tick with a fake controller and a recording
// sink.
type rig struct {
	t   *testing.T
	src *gamepad.Fake
	rec *vinput.Recorder
	eng *Engine
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.KeyRepeat.Enabled = false
	return cfg
}

func newRig(t *testing.T, p *profile.Profile, opts ...Option) *rig {
	t.Helper()
	return newRigWith(t, testConfig(), p, opts...)
}

func newRigWith(t *testing.T, cfg config.Config, p *profile.Profile, opts ...Option) *rig {
	t.Helper()
	r := &rig{
		t:   t,
		src: gamepad.NewFake(),
		rec: vinput.NewRecorder(1920, 1080),
	}
	r.eng = New(cfg, r.src, r.rec, p, opts...)
	r.src.Attach(padInfo)
	r.tick()
	return r
}

func (r *rig) tick() {
	r.t.Helper()
	if err := r.eng.Tick(); err != nil {
		r.t.Fatalf("tick failed: %v", err)
	}
}

// run ticks for d
func (r *rig) run(d time.Duration) {
	r.t.Helper()
	for i := time.Duration(0); i < d; i += r.eng.cfg.PollInterval {
		r.tick()
	}
}

func (r *rig) button(i int, pressed bool) {
	r.src.SetButton(pad, i, pressed)
}

// axis sets axis i to a fraction of full scale
func (r *rig) axis(i int, f float64) {
	r.src.SetAxis(pad, i, int16(f*gamepad.FullScale))
}

func (r *rig) controller() *Controller {
	r.t.Helper()
	c, ok := r.eng.controllers[pad]
	if !ok {
		r.t.Fatalf("controller not attached")
	}
	return c
}

func (r *rig) events() []Event {
	var ev []Event
	for {
		select {
		case e := <-r.eng.Events():
			ev = append(ev, e)
		default:
			return ev
		}
	}
}

// expect compares the recorded sink calls and forgets them
func (r *rig) expect(want ...vinput.Call) {
	r.t.Helper()
	got := r.rec.Calls()
	if !slices.Equal(got, want) {
		r.t.Errorf("sink calls %v - wanted %v", got, want)
	}
	r.rec.Reset()
}

func key(t *testing.T, name string) vinput.Key {
	t.Helper()
	k, err := vinput.ParseKey(name)
	if err != nil {
		t.Fatal(err)
	}
	return k
}

func press(k vinput.Key) vinput.Call   { return vinput.Call{Op: vinput.OpPressKey, Key: k} }
func release(k vinput.Key) vinput.Call { return vinput.Call{Op: vinput.OpReleaseKey, Key: k} }

// buttons builds a single set profile from button bindings
func buttons(b map[int]profile.Button) *profile.Profile {
	return &profile.Profile{Sets: []profile.Set{{Buttons: b}}}
}

func slots(s ...profile.Slot) profile.Button {
	return profile.Button{Slots: s}
}
