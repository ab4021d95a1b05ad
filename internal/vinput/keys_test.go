package vinput_test

import (
	"testing"

	"github.com/soar/padremap/internal/test"
	"github.com/soar/padremap/internal/vinput"
)

func TestParseKey(t *testing.T) {
	a, err := vinput.ParseKey("KEY_A")
	test.ExpectSuccess(t, err)

	for _, name := range []string{"key_a", "a", " A "} {
		k, err := vinput.ParseKey(name)
		test.ExpectSuccess(t, err)
		test.Equate(t, k, a)
	}

	_, err = vinput.ParseKey("BTN_LEFT")
	test.ExpectSuccess(t, err)

	_, err = vinput.ParseKey("KEY_NOT_A_KEY")
	test.ExpectFailure(t, err)

	_, err = vinput.ParseKey("")
	test.ExpectFailure(t, err)

	test.Equate(t, a.String(), "KEY_A")
}

func TestStrokeFor(t *testing.T) {
	lower, ok := vinput.StrokeFor('q')
	test.ExpectSuccess(t, ok)
	test.Equate(t, lower.Shift, false)

	upper, ok := vinput.StrokeFor('Q')
	test.ExpectSuccess(t, ok)
	test.Equate(t, upper.Shift, true)
	test.Equate(t, upper.Key, lower.Key)

	bang, ok := vinput.StrokeFor('!')
	test.ExpectSuccess(t, ok)
	one, _ := vinput.StrokeFor('1')
	test.Equate(t, bang.Key, one.Key)
	test.Equate(t, bang.Shift, true)

	_, ok = vinput.StrokeFor('é')
	test.ExpectFailure(t, ok)
}

func TestRecorderHeld(t *testing.T) {
	r := vinput.NewRecorder(800, 600)
	a, _ := vinput.ParseKey("a")

	test.ExpectSuccess(t, r.PressKey(a))
	test.ExpectSuccess(t, r.PressMouseButton(vinput.ButtonLeft))
	test.Equate(t, r.Held(), 2)
	test.Equate(t, r.KeyHeld(a), true)

	test.ExpectSuccess(t, r.ReleaseKey(a))
	test.ExpectSuccess(t, r.ReleaseMouseButton(vinput.ButtonLeft))
	test.Equate(t, r.Held(), 0)
	test.Equate(t, len(r.Calls()), 4)

	r.Fail(vinput.OpPressKey, vinput.ErrDeviceGone)
	test.ExpectFailure(t, r.PressKey(a))
	test.Equate(t, r.KeyHeld(a), false)
	test.Equate(t, len(r.Calls()), 4)

	test.ExpectSuccess(t, r.MoveCursorTo(10, 20))
	test.ExpectSuccess(t, r.MoveCursorBy(5, -5))
	x, y, ok := r.CursorPosition()
	test.ExpectSuccess(t, ok)
	test.Equate(t, x, 15)
	test.Equate(t, y, 15)
}

func TestOpenDryrun(t *testing.T) {
	s, err := vinput.Open(vinput.Options{Kind: "dryrun", Width: 640, Height: 480})
	test.ExpectSuccess(t, err)
	_, ok := s.(vinput.Screen)
	test.ExpectSuccess(t, ok)

	_, err = vinput.Open(vinput.Options{Kind: "nonsense"})
	test.ExpectFailure(t, err)
}
