package vinput

import (
	"errors"
	"fmt"
	"log"
)

// Options select and configure a backend.
type Options struct {
	// Kind is one of "auto", "uinput", "xtest" or "dryrun"
	Kind string

	UinputPath string

	// screen geometry used by backends that cannot query it
	Width, Height int

	// Echo is passed to the dryrun Recorder
	Echo func(Call)
}

// Open returns a ready Sink. "auto" tries uinput first and falls back to
// xtest when the device file cannot be used.
func Open(opts Options) (Sink, error) {
	switch opts.Kind {
	case "uinput":
		u, err := OpenUinput(opts.UinputPath, opts.Width, opts.Height)
		if err != nil {
			return nil, err
		}
		return u, nil
	case "xtest":
		x, err := OpenXTest()
		if err != nil {
			return nil, err
		}
		return x, nil
	case "dryrun":
		r := NewRecorder(opts.Width, opts.Height)
		r.Echo = opts.Echo
		return r, nil
	case "", "auto":
		u, uerr := OpenUinput(opts.UinputPath, opts.Width, opts.Height)
		if uerr == nil {
			return u, nil
		}
		log.Printf("[WARN] %v, trying xtest", uerr)
		x, xerr := OpenXTest()
		if xerr == nil {
			return x, nil
		}
		return nil, errors.Join(uerr, xerr)
	}
	return nil, fmt.Errorf("%w: unknown backend %q", ErrUnavailable, opts.Kind)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
