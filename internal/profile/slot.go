package profile

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/soar/padremap/internal/vinput"
)

// SlotKind discriminates Slot.
type SlotKind int

const (
	SlotKey SlotKind = iota
	SlotMouseButton
	SlotMouseWheel
	SlotMouseMove
	SlotPause
	SlotHold
	SlotDelay
	SlotCycle
	SlotDistance
	SlotRelease
	SlotSetChange
	SlotLoadProfile
	SlotMouseMod
	SlotTextEntry
	SlotExecute
)

var slotKindNames = []string{
	"key", "button", "wheel", "mouse", "pause", "hold", "delay", "cycle",
	"distance", "release", "set", "load", "mod", "text", "exec",
}

func (k SlotKind) String() string { return enumString(int(k), slotKindNames) }

// Emits reports whether the slot produces held input (a key, mouse button,
// wheel or pointer motion).
func (k SlotKind) Emits() bool {
	return k <= SlotMouseMove
}

// Slot is one step of an action sequence. Only the fields relevant to Kind
// are meaningful.
type Slot struct {
	Kind SlotKind

	Key    vinput.Key
	Button vinput.MouseButton

	// wheel and pointer direction
	Dir Direction

	// Pause, Hold, Delay and Release
	Duration time.Duration

	// travel past the dead zone, 0 to 1
	Distance float64

	// target set, zero based
	Set     int
	SetMode SetMode

	// LoadProfile and Execute
	Path string
	Args []string

	Text string

	// MouseMod
	Percent float64
}

// convenience constructors, mostly for tests and built-in defaults

func Key(k vinput.Key) Slot                 { return Slot{Kind: SlotKey, Key: k} }
func MouseButton(b vinput.MouseButton) Slot { return Slot{Kind: SlotMouseButton, Button: b} }
func Wheel(d Direction) Slot                { return Slot{Kind: SlotMouseWheel, Dir: d} }
func Move(d Direction) Slot                 { return Slot{Kind: SlotMouseMove, Dir: d} }
func Pause(d time.Duration) Slot            { return Slot{Kind: SlotPause, Duration: d} }
func Hold(d time.Duration) Slot             { return Slot{Kind: SlotHold, Duration: d} }
func Delay(d time.Duration) Slot            { return Slot{Kind: SlotDelay, Duration: d} }
func Cycle() Slot                           { return Slot{Kind: SlotCycle} }
func Distance(f float64) Slot               { return Slot{Kind: SlotDistance, Distance: f} }
func Release(d time.Duration) Slot          { return Slot{Kind: SlotRelease, Duration: d} }
func SetChange(set int, mode SetMode) Slot  { return Slot{Kind: SlotSetChange, Set: set, SetMode: mode} }
func LoadProfile(path string) Slot          { return Slot{Kind: SlotLoadProfile, Path: path} }
func MouseMod(percent float64) Slot         { return Slot{Kind: SlotMouseMod, Percent: percent} }
func TextEntry(text string) Slot            { return Slot{Kind: SlotTextEntry, Text: text} }
func Execute(path string, args ...string) Slot {
	return Slot{Kind: SlotExecute, Path: path, Args: args}
}

func (s Slot) String() string {
	switch s.Kind {
	case SlotKey:
		return fmt.Sprintf("key:%s", s.Key)
	case SlotMouseButton:
		return fmt.Sprintf("button:%s", s.Button)
	case SlotMouseWheel, SlotMouseMove:
		return fmt.Sprintf("%s:%s", s.Kind, s.Dir)
	case SlotPause, SlotHold, SlotDelay, SlotRelease:
		return fmt.Sprintf("%s:%s", s.Kind, s.Duration)
	case SlotCycle:
		return "cycle"
	case SlotDistance:
		return fmt.Sprintf("distance:%g%%", s.Distance*100)
	case SlotSetChange:
		return fmt.Sprintf("set:%d:%s", s.Set+1, s.SetMode)
	case SlotLoadProfile:
		return fmt.Sprintf("load:%s", s.Path)
	case SlotMouseMod:
		return fmt.Sprintf("mod:%g", s.Percent)
	case SlotTextEntry:
		return fmt.Sprintf("text:%s", s.Text)
	case SlotExecute:
		return strings.TrimSpace(fmt.Sprintf("exec:%s %s", s.Path, strings.Join(s.Args, " ")))
	}
	return "unknown"
}

// UnmarshalText parses the compact "kind:argument" form used in profile
// files, eg. "key:KEY_A", "hold:300ms", "set:2:while-held".
func (s *Slot) UnmarshalText(b []byte) error {
	text := strings.TrimSpace(string(b))
	kind, arg, _ := strings.Cut(text, ":")

	k, err := enumText("slot kind", kind, slotKindNames)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSlot, err)
	}

	n := Slot{Kind: SlotKind(k)}

	switch n.Kind {
	case SlotKey:
		n.Key, err = vinput.ParseKey(arg)

	case SlotMouseButton:
		n.Button, err = parseButton(arg)

	case SlotMouseWheel, SlotMouseMove:
		err = n.Dir.UnmarshalText([]byte(arg))
		if err == nil && n.Dir == DirNone {
			err = fmt.Errorf("no direction")
		}
		if err == nil && n.Kind == SlotMouseWheel && n.Dir.Diagonal() {
			err = fmt.Errorf("wheel cannot scroll diagonally")
		}

	case SlotPause, SlotHold, SlotDelay, SlotRelease:
		if arg != "" {
			n.Duration, err = time.ParseDuration(arg)
		}

	case SlotCycle:

	case SlotDistance:
		n.Distance, err = parseFraction(arg)

	case SlotSetChange:
		set, mode, _ := strings.Cut(arg, ":")
		var i int
		i, err = strconv.Atoi(set)
		n.Set = i - 1
		if err == nil && mode != "" {
			err = n.SetMode.UnmarshalText([]byte(mode))
		}

	case SlotLoadProfile:
		n.Path = arg
		if n.Path == "" {
			err = fmt.Errorf("no profile path")
		}

	case SlotMouseMod:
		n.Percent, err = strconv.ParseFloat(strings.TrimSuffix(arg, "%"), 64)

	case SlotTextEntry:
		n.Text = arg

	case SlotExecute:
		f := strings.Fields(arg)
		if len(f) == 0 {
			err = fmt.Errorf("no program")
		} else {
			n.Path = f[0]
			n.Args = f[1:]
		}
	}

	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrBadSlot, text, err)
	}

	*s = n
	return nil
}

func parseButton(s string) (vinput.MouseButton, error) {
	for _, b := range []vinput.MouseButton{vinput.ButtonLeft, vinput.ButtonRight, vinput.ButtonMiddle, vinput.ButtonSide, vinput.ButtonExtra} {
		if strings.EqualFold(strings.TrimSpace(s), b.String()) {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown mouse button %q", s)
}

// "50%" and "0.5" are the same distance
func parseFraction(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if p, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(p, 64)
		return v / 100, err
	}
	return strconv.ParseFloat(s, 64)
}

func (s Slot) validate(sets int) error {
	switch s.Kind {
	case SlotDistance:
		if s.Distance <= 0 || s.Distance > 1 {
			return fmt.Errorf("%w: distance %g outside (0, 1]", ErrBadSlot, s.Distance)
		}
	case SlotSetChange:
		if s.Set < 0 || s.Set >= sets {
			return fmt.Errorf("%w: set %d does not exist", ErrBadSlot, s.Set+1)
		}
	case SlotMouseMod:
		if s.Percent <= 0 {
			return fmt.Errorf("%w: mouse modifier must be positive", ErrBadSlot)
		}
	case SlotPause, SlotHold, SlotDelay, SlotRelease:
		if s.Duration < 0 {
			return fmt.Errorf("%w: negative duration", ErrBadSlot)
		}
	}
	return nil
}
