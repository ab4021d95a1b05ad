package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/soar/padremap/internal/config"
	"github.com/soar/padremap/internal/test"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

func TestDefaults(t *testing.T) {
	isolate(t)

	c, err := config.Load("padremap", nil)
	if !test.ExpectSuccess(t, err) {
		return
	}
	test.Equate(t, c.PollInterval, 10*time.Millisecond)
	test.Equate(t, c.PressTime, 250*time.Millisecond)
	test.Equate(t, c.KeyRepeat.Enabled, false)
	test.Equate(t, c.KeyRepeat.Delay, 660*time.Millisecond)
	test.Equate(t, c.Sink, "auto")
	test.Equate(t, c.Sampler, "sdl")
	test.Equate(t, c.Listen, ":8080")
	test.Equate(t, c.File, "")
}

func TestFlags(t *testing.T) {
	isolate(t)

	c, err := config.Load("padremap", []string{
		"--profile", "racer.yaml", "--poll-interval", "4ms", "--sink", "dryrun",
		"--key-repeat", "--key-repeat-rate", "25", "-v",
	})
	if !test.ExpectSuccess(t, err) {
		return
	}
	test.Equate(t, c.Profile, "racer.yaml")
	test.Equate(t, c.PollInterval, 4*time.Millisecond)
	test.Equate(t, c.Sink, "dryrun")
	test.Equate(t, c.KeyRepeat.Enabled, true)
	test.ApproxEquate(t, c.KeyRepeat.Rate, 25, 1e-9)
	test.Equate(t, c.Verbose, true)
}

func TestEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("PADREMAP_PRESS_TIME", "100ms")
	t.Setenv("PADREMAP_SAMPLER", "evdev")

	c, err := config.Load("padremap", []string{"--sampler", "sdl"})
	if !test.ExpectSuccess(t, err) {
		return
	}
	test.Equate(t, c.PressTime, 100*time.Millisecond)

	// flags win over the environment
	test.Equate(t, c.Sampler, "sdl")
}

func TestFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "settings.yaml")
	err := os.WriteFile(path, []byte("listen: \"\"\nmax-sink-failures: 9\nscreen-width: 2560\n"), 0o644)
	test.ExpectSuccess(t, err)

	c, err := config.Load("padremap", []string{"--config", path})
	if !test.ExpectSuccess(t, err) {
		return
	}
	test.Equate(t, c.Listen, "")
	test.Equate(t, c.MaxSinkFailures, 9)
	test.Equate(t, c.ScreenWidth, 2560)
	test.Equate(t, c.File, path)
}

func TestValidate(t *testing.T) {
	isolate(t)

	_, err := config.Load("padremap", []string{"--poll-interval", "0s"})
	test.ExpectFailure(t, err)

	_, err = config.Load("padremap", []string{"--sink", "printer"})
	test.ExpectFailure(t, err)

	_, err = config.Load("padremap", []string{"--sampler", "hid"})
	test.ExpectFailure(t, err)

	c := config.Default()
	test.ExpectSuccess(t, c.Validate())
	c.MaxSinkFailures = 0
	test.ExpectFailure(t, c.Validate())
}

func TestHelp(t *testing.T) {
	isolate(t)

	_, err := config.Load("padremap", []string{"--help"})
	test.ExpectSuccess(t, errors.Is(err, pflag.ErrHelp))
}
