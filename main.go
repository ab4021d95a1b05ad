package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/soar/padremap/internal/config"
	"github.com/soar/padremap/internal/console"
	"github.com/soar/padremap/internal/engine"
	"github.com/soar/padremap/internal/gamepad"
	"github.com/soar/padremap/internal/hub"
	"github.com/soar/padremap/internal/profile"
	"github.com/soar/padremap/internal/server"
	"github.com/soar/padremap/internal/tray"
	"github.com/soar/padremap/internal/vinput"
)

// Cross-platform signal handling: use os.Interrupt on all platforms
// On Windows: os.Interrupt is sent when Ctrl+C is pressed
// On Unix: os.Interrupt is equivalent to syscall.SIGINT
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func main() {
	os.Exit(run())
}

func run() int {
	name := "padremap"
	cfg, err := config.Load(name, os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			config.Usage(name)
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		config.Usage(name)
		return 2
	}
	if cfg.File != "" {
		log.Printf("[INFO] Using configuration %s", cfg.File)
	}

	src := newSource(cfg)

	if cfg.List {
		return listDevices(src)
	}

	// a double-clicked program has nobody to read its log, so it shows
	// a tray icon instead
	useTray := cfg.Tray || !console.IsRunningFromConsole()

	var p *profile.Profile
	if cfg.Profile != "" {
		p, err = profile.Load(cfg.Profile)
		if err != nil {
			log.Printf("[ERROR] %v", err)
			return 1
		}
		log.Printf("[INFO] Loaded profile %s (%d sets)", cfg.Profile, len(p.Sets))
	} else {
		log.Println("[WARN] No profile given, controller input will not be remapped")
	}

	sink, err := vinput.Open(vinput.Options{
		Kind:       cfg.Sink,
		UinputPath: cfg.UinputPath,
		Width:      cfg.ScreenWidth,
		Height:     cfg.ScreenHeight,
		Echo: func(c vinput.Call) {
			log.Printf("[INFO] %v", c)
		},
	})
	if err != nil {
		log.Printf("[ERROR] %v", err)
		return 1
	}
	defer sink.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := engine.New(cfg, src, sink, p)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)
	defer signal.Stop(sigCh)

	// Channel for tray and console triggered shutdown
	shutdownRequested := make(chan struct{})
	requestShutdown := func() {
		select {
		case <-shutdownRequested:
		default:
			close(shutdownRequested)
		}
	}
	reregister := console.SetupConsoleHandler(requestShutdown)

	// Create and start hub
	h := hub.NewHub()
	go h.Run()

	broadcaster := hub.NewBroadcaster(h, eng, cfg.Verbose)

	var t *tray.Tray
	if useTray {
		t = tray.New(eng, tray.PageURL(cfg.Listen), requestShutdown)
		broadcaster.OnEvent(t.OnEvent)
	}

	broadcasterDone := make(chan struct{})
	go func() {
		broadcaster.Run(ctx)
		close(broadcasterDone)
	}()

	// Create and start HTTP server
	var srv *server.Server
	serverErrCh := make(chan error, 1)
	if cfg.Listen != "" {
		srv, err = server.New(h, broadcaster, eng, statusPage(), cfg.Listen)
		if err != nil {
			log.Printf("[ERROR] %v", err)
			return 1
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErrCh <- err
			}
		}()
		log.Printf("[INFO] Status page: %s", tray.PageURL(cfg.Listen))
	}

	if t != nil {
		go t.Run(tray.Icon())
	} else {
		log.Println("[INFO] Press Ctrl+C to exit")
	}

	if cfg.WatchProfile && cfg.Profile != "" {
		go func() {
			err := profile.Watch(ctx, cfg.Profile, func(p *profile.Profile) {
				log.Printf("[INFO] Reloading profile %s", cfg.Profile)
				eng.SetProfile(p)
			})
			if err != nil {
				log.Printf("[WARN] %v", err)
			}
		}()
	}

	// the engine runs on its own OS thread; SDL replaces the console
	// handler when it starts, so register ours again shortly after
	engineErrCh := make(chan error, 1)
	go func() {
		engineErrCh <- eng.Run(ctx)
	}()
	time.AfterFunc(time.Second, reregister)

	log.Println("[INFO] padremap started")

	code := 0
	select {
	case <-sigCh:
		log.Println("[INFO] Shutting down...")
		cancel()
		err = <-engineErrCh
	case <-shutdownRequested:
		log.Println("[INFO] Shutdown requested")
		cancel()
		err = <-engineErrCh
	case err = <-serverErrCh:
		log.Printf("[ERROR] HTTP server error: %v", err)
		code = 1
		cancel()
		err = <-engineErrCh
	case err = <-engineErrCh:
		cancel()
	}
	if err != nil {
		log.Printf("[ERROR] %v", err)
		code = 1
	}

	<-broadcasterDone

	if srv != nil {
		// Shutdown the HTTP server gracefully
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] HTTP server shutdown error: %v", err)
		}
	}
	if t != nil {
		t.Quit()
	}

	log.Println("[INFO] padremap stopped")
	return code
}

func newSource(cfg config.Config) gamepad.Source {
	if cfg.Sampler == "evdev" {
		return gamepad.NewEvdevSource()
	}
	return gamepad.NewSDLSource()
}

func listDevices(src gamepad.Source) int {
	devices, err := gamepad.List(src)
	if err != nil {
		log.Printf("[ERROR] %v", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Println("no controllers found")
		return 0
	}
	for _, d := range devices {
		fmt.Printf("%d\t%s\t%s\t%d axes, %d buttons, %d hats, gamepad=%v\n",
			d.ID, d.GUID, d.Name, d.Axes, d.Buttons, d.Hats, d.Gamepad)
	}
	return 0
}
