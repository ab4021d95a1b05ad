package gamepad_test

import (
	"testing"

	"github.com/soar/padremap/internal/gamepad"
	"github.com/soar/padremap/internal/test"
)

func TestNormalizeAxis(t *testing.T) {
	test.ApproxEquate(t, gamepad.NormalizeAxis(0), 0, 1e-9)
	test.ApproxEquate(t, gamepad.NormalizeAxis(32767), 1, 1e-9)
	test.ApproxEquate(t, gamepad.NormalizeAxis(-32768), -1, 1e-9)
}

func TestScaleAbs(t *testing.T) {
	test.Equate(t, gamepad.ScaleAbs(0, 0, 255), -32768)
	test.Equate(t, gamepad.ScaleAbs(255, 0, 255), 32767)
	test.Equate(t, gamepad.ScaleAbs(-32768, -32768, 32767), -32768)
	test.Equate(t, gamepad.ScaleAbs(32767, -32768, 32767), 32767)
	test.Equate(t, gamepad.ScaleAbs(500, 0, 255), 32767)
	test.Equate(t, gamepad.ScaleAbs(10, 5, 5), 0)
}

func TestHatFromAxes(t *testing.T) {
	test.Equate(t, gamepad.HatFromAxes(0, 0), gamepad.HatCentered)
	test.Equate(t, gamepad.HatFromAxes(0, -1), gamepad.HatUp)
	test.Equate(t, gamepad.HatFromAxes(1, 1), gamepad.HatRight|gamepad.HatDown)
	test.Equate(t, gamepad.HatFromAxes(-1, 0), gamepad.HatLeft)
}

func TestFamily(t *testing.T) {
	test.Equate(t, gamepad.Family(0x045E, 0x028E), "xbox")
	test.Equate(t, gamepad.Family(0x054C, 0x0CE6), "playstation")
	test.Equate(t, gamepad.Family(0x1234, 0x5678), "generic")
}

func TestMatch(t *testing.T) {
	d := gamepad.DeviceInfo{
		ID:   3,
		GUID: gamepad.MakeGUID(0x045E, 0x028E, "Xbox 360 Controller"),
		Name: "Xbox 360 Controller",
	}
	test.Equate(t, d.GUID, "045e:028e:xbox 360 controller")
	test.ExpectSuccess(t, d.Match(""))
	test.ExpectSuccess(t, d.Match("3"))
	test.ExpectFailure(t, d.Match("4"))
	test.ExpectSuccess(t, d.Match("xbox"))
	test.ExpectSuccess(t, d.Match("045E:028E:Xbox 360 Controller"))
	test.ExpectFailure(t, d.Match("dualsense"))
}

func TestComputeDelta(t *testing.T) {
	info := gamepad.DeviceInfo{ID: 1, Name: "pad", Axes: 2, Buttons: 2}
	snap := gamepad.Snapshot{Axes: []int16{0, 0}, Buttons: []bool{false, false}}

	a := gamepad.NewStatus(info, "Set 1", snap)
	test.ExpectSuccess(t, gamepad.ComputeDelta(a, a).IsEmpty())

	// jitter is not a change
	snap.Axes[0] = 100
	b := gamepad.NewStatus(info, "Set 1", snap)
	test.ExpectSuccess(t, gamepad.ComputeDelta(a, b).IsEmpty())

	snap.Axes[0] = 16000
	snap.Buttons[1] = true
	c := gamepad.NewStatus(info, "Set 2", snap)
	d := gamepad.ComputeDelta(a, c)
	test.ExpectFailure(t, d.IsEmpty())
	test.Equate(t, len(d.Axes), 2)
	test.Equate(t, d.Buttons[1], true)
	test.Equate(t, *d.Set, "Set 2")
	test.ExpectSuccess(t, d.Connected == nil)
}

func TestFakeAndList(t *testing.T) {
	f := gamepad.NewFake()
	f.Attach(gamepad.DeviceInfo{ID: 7, Name: "stick", Axes: 2, Buttons: 4, Hats: 1})

	l, err := gamepad.List(f)
	test.ExpectSuccess(t, err)
	test.Equate(t, len(l), 1)
	test.Equate(t, l[0].ID, gamepad.DeviceID(7))
	test.ExpectFailure(t, f.Opened())

	f.SetButton(7, 2, true)
	f.SetHat(7, 0, gamepad.HatUp)
	f.SetAxis(7, 1, -32768)

	var s gamepad.Snapshot
	test.ExpectSuccess(t, f.Sample(7, &s))
	test.Equate(t, s.Buttons[2], true)
	test.Equate(t, s.Hats[0], gamepad.HatUp)
	test.Equate(t, s.Axes[1], int16(-32768))

	f.Detach(7)
	test.ExpectFailure(t, f.Sample(7, &s))
	ev := f.Poll()
	test.Equate(t, len(ev), 1)
	test.Equate(t, ev[0].Attached, false)
}
