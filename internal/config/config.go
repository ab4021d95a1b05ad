// Package config gathers the process wide settings from flags, the
// environment and an optional padremap.yaml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// KeyRepeat emulates keyboard auto-repeat for keys held by a sequence.
type KeyRepeat struct {
	Enabled bool          `mapstructure:"key-repeat"`
	Delay   time.Duration `mapstructure:"key-repeat-delay"`
	Rate    float64       `mapstructure:"key-repeat-rate"`
}

// Config is fixed once loaded. A changed configuration means a new engine.
type Config struct {
	PollInterval   time.Duration `mapstructure:"poll-interval"`
	PressTime      time.Duration `mapstructure:"press-time"`
	TextEntryDelay time.Duration `mapstructure:"text-entry-delay"`

	KeyRepeat `mapstructure:",squash"`

	// fallback screen size for spring mode when the sink cannot report one
	ScreenWidth  int `mapstructure:"screen-width"`
	ScreenHeight int `mapstructure:"screen-height"`

	Sink       string `mapstructure:"sink"`
	UinputPath string `mapstructure:"uinput-path"`
	Sampler    string `mapstructure:"sampler"`

	// joystick index, GUID or a case-insensitive part of the device name
	Device string `mapstructure:"device"`

	Profile      string `mapstructure:"profile"`
	WatchProfile bool   `mapstructure:"watch-profile"`

	Listen  string `mapstructure:"listen"`
	Tray    bool   `mapstructure:"tray"`
	Verbose bool   `mapstructure:"verbose"`
	List    bool   `mapstructure:"list"`

	EventBuffer     int `mapstructure:"event-buffer"`
	MaxSinkFailures int `mapstructure:"max-sink-failures"`

	// the configuration file used, if any
	File string `mapstructure:"-"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		PollInterval: 10 * time.Millisecond,
		PressTime:    250 * time.Millisecond,
		KeyRepeat: KeyRepeat{
			Delay: 660 * time.Millisecond,
			Rate:  40,
		},
		ScreenWidth:     1920,
		ScreenHeight:    1080,
		Sink:            "auto",
		Sampler:         "sdl",
		Listen:          ":8080",
		EventBuffer:     256,
		MaxSinkFailures: 5,
	}
}

func flags(name string) *pflag.FlagSet {
	d := Default()
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false

	fs.StringP("profile", "p", d.Profile, "profile file (yaml, toml or json)")
	fs.Bool("watch-profile", d.WatchProfile, "reload the profile when the file changes")
	fs.StringP("device", "d", d.Device, "controller to use: index, GUID or part of the name")
	fs.String("sampler", d.Sampler, "controller input: sdl or evdev")
	fs.String("sink", d.Sink, "virtual input: auto, uinput, xtest or dryrun")
	fs.String("uinput-path", d.UinputPath, "uinput device node")
	fs.Duration("poll-interval", d.PollInterval, "controller sampling period")
	fs.Duration("press-time", d.PressTime, "default time a slot key stays pressed")
	fs.Duration("text-entry-delay", d.TextEntryDelay, "pause between characters typed by text slots")
	fs.Bool("key-repeat", d.KeyRepeat.Enabled, "auto-repeat keys held by a sequence")
	fs.Duration("key-repeat-delay", d.KeyRepeat.Delay, "delay before auto-repeat starts")
	fs.Float64("key-repeat-rate", d.KeyRepeat.Rate, "auto-repeat presses per second")
	fs.Int("screen-width", d.ScreenWidth, "screen width used when the sink cannot tell")
	fs.Int("screen-height", d.ScreenHeight, "screen height used when the sink cannot tell")
	fs.String("listen", d.Listen, "address of the status page, empty to disable")
	fs.Bool("tray", d.Tray, "show a system tray icon")
	fs.Int("event-buffer", d.EventBuffer, "size of the engine event queue")
	fs.Int("max-sink-failures", d.MaxSinkFailures, "consecutive virtual input failures before giving up")
	fs.BoolP("verbose", "v", d.Verbose, "log every emitted input")
	fs.BoolP("list", "l", d.List, "list connected controllers and exit")
	fs.StringP("config", "c", "", "configuration file")

	return fs
}

// Load parses args (without the program name) and merges in the
// environment and configuration file. pflag.ErrHelp is returned unwrapped
// when help was requested.
func Load(name string, args []string) (Config, error) {
	fs := flags(name)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	v.SetEnvPrefix("padremap")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file, _ := fs.GetString("config"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("padremap")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "padremap"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: %w", err)
		}
	}

	c := Default()
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	c.File = v.ConfigFileUsed()

	return c, c.Validate()
}

// Validate checks the configuration for values the engine cannot run with.
func (c Config) Validate() error {
	switch {
	case c.PollInterval <= 0:
		return fmt.Errorf("config: poll interval must be positive")
	case c.PressTime < 0:
		return fmt.Errorf("config: press time cannot be negative")
	case c.TextEntryDelay < 0:
		return fmt.Errorf("config: text entry delay cannot be negative")
	case c.KeyRepeat.Enabled && c.KeyRepeat.Rate <= 0:
		return fmt.Errorf("config: key repeat rate must be positive")
	case c.ScreenWidth <= 0 || c.ScreenHeight <= 0:
		return fmt.Errorf("config: screen size must be positive")
	case c.EventBuffer < 0:
		return fmt.Errorf("config: event buffer cannot be negative")
	case c.MaxSinkFailures <= 0:
		return fmt.Errorf("config: max sink failures must be positive")
	}

	switch c.Sink {
	case "auto", "uinput", "xtest", "dryrun":
	default:
		return fmt.Errorf("config: unknown sink %q", c.Sink)
	}

	switch c.Sampler {
	case "sdl", "evdev":
	default:
		return fmt.Errorf("config: unknown sampler %q", c.Sampler)
	}

	return nil
}

// Usage prints the flag help to stderr.
func Usage(name string) {
	fmt.Fprintf(os.Stderr, "usage: %s [flags]\n\n", name)
	fs := flags(name)
	fs.SetOutput(os.Stderr)
	fs.PrintDefaults()
}
