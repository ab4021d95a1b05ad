package vinput

import (
	"fmt"
	"strings"

	"github.com/holoplot/go-evdev"
)

// ParseKey accepts "KEY_A", "key_a", "a" or "BTN_LEFT" style names.
func ParseKey(name string) (Key, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	if n == "" {
		return 0, fmt.Errorf("empty key name")
	}
	if c, ok := evdev.KEYFromString[n]; ok {
		return Key(c), nil
	}
	if !strings.HasPrefix(n, "KEY_") && !strings.HasPrefix(n, "BTN_") {
		if c, ok := evdev.KEYFromString["KEY_"+n]; ok {
			return Key(c), nil
		}
	}
	return 0, fmt.Errorf("unknown key name %q", name)
}

// String returns the kernel name of the key, eg. KEY_A.
func (k Key) String() string {
	return evdev.CodeName(evdev.EV_KEY, evdev.EvCode(k))
}

// Stroke is one character of text entry expressed as a key press.
type Stroke struct {
	Key   Key
	Shift bool
}

// KeyShift is the modifier used for shifted strokes.
var KeyShift = Key(evdev.KEY_LEFTSHIFT)

var strokes map[rune]Stroke

func init() {
	strokes = make(map[rune]Stroke)

	add := func(r rune, name string, shift bool) {
		c, ok := evdev.KEYFromString[name]
		if !ok {
			panic(fmt.Sprintf("vinput: no key code for %s", name))
		}
		strokes[r] = Stroke{Key: Key(c), Shift: shift}
	}

	for r := 'a'; r <= 'z'; r++ {
		name := "KEY_" + strings.ToUpper(string(r))
		add(r, name, false)
		add(r-'a'+'A', name, true)
	}

	digits := "1234567890"
	shifted := "!@#$%^&*()"
	for i, r := range digits {
		add(r, "KEY_"+string(r), false)
		add(rune(shifted[i]), "KEY_"+string(r), true)
	}

	punct := []struct {
		plain, shifted rune
		name           string
	}{
		{'-', '_', "KEY_MINUS"},
		{'=', '+', "KEY_EQUAL"},
		{'[', '{', "KEY_LEFTBRACE"},
		{']', '}', "KEY_RIGHTBRACE"},
		{';', ':', "KEY_SEMICOLON"},
		{'\'', '"', "KEY_APOSTROPHE"},
		{'`', '~', "KEY_GRAVE"},
		{'\\', '|', "KEY_BACKSLASH"},
		{',', '<', "KEY_COMMA"},
		{'.', '>', "KEY_DOT"},
		{'/', '?', "KEY_SLASH"},
	}
	for _, p := range punct {
		add(p.plain, p.name, false)
		add(p.shifted, p.name, true)
	}

	add(' ', "KEY_SPACE", false)
	add('\n', "KEY_ENTER", false)
	add('\t', "KEY_TAB", false)
}

// StrokeFor returns the key stroke that types r on a US layout.
func StrokeFor(r rune) (Stroke, bool) {
	s, ok := strokes[r]
	return s, ok
}

// robotgo names differ from the kernel names for anything that is not a
// letter, digit or function key
var robotNames = map[string]string{
	"ENTER":        "enter",
	"ESC":          "esc",
	"BACKSPACE":    "backspace",
	"LEFTSHIFT":    "lshift",
	"RIGHTSHIFT":   "rshift",
	"LEFTCTRL":     "lctrl",
	"RIGHTCTRL":    "rctrl",
	"LEFTALT":      "lalt",
	"RIGHTALT":     "ralt",
	"LEFTMETA":     "lcmd",
	"RIGHTMETA":    "rcmd",
	"PAGEUP":       "pageup",
	"PAGEDOWN":     "pagedown",
	"CAPSLOCK":     "capslock",
	"SYSRQ":        "printscreen",
	"MINUS":        "-",
	"EQUAL":        "=",
	"LEFTBRACE":    "[",
	"RIGHTBRACE":   "]",
	"SEMICOLON":    ";",
	"APOSTROPHE":   "'",
	"GRAVE":        "`",
	"BACKSLASH":    "\\",
	"COMMA":        ",",
	"DOT":          ".",
	"SLASH":        "/",
	"VOLUMEUP":     "audio_vol_up",
	"VOLUMEDOWN":   "audio_vol_down",
	"MUTE":         "audio_mute",
	"PLAYPAUSE":    "audio_play",
	"NEXTSONG":     "audio_next",
	"PREVIOUSSONG": "audio_prev",
	"COMPOSE":      "menu",
}

// robotName translates a key code into the name robotgo expects.
func robotName(k Key) (string, bool) {
	name := k.String()
	if !strings.HasPrefix(name, "KEY_") {
		return "", false
	}
	name = strings.TrimPrefix(name, "KEY_")
	if n, ok := robotNames[name]; ok {
		return n, true
	}
	if strings.HasPrefix(name, "KP") && len(name) == 3 && name[2] >= '0' && name[2] <= '9' {
		return "num" + name[2:], true
	}
	return strings.ToLower(name), true
}
