// Package tray shows a system tray icon with the active profile and set,
// and lets the user switch sets without the status page.
package tray

import (
	"fmt"
	"log"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"fyne.io/systray"

	"github.com/soar/padremap/internal/engine"
	"github.com/soar/padremap/internal/gamepad"
)

// maxSets is the number of set items built up front. systray cannot remove
// items, so unused ones are hidden.
const maxSets = 8

// ShutdownFunc is called when "Exit" is clicked
type ShutdownFunc func()

// SetSelector switches the active set. Device 0 addresses every controller.
type SetSelector interface {
	SelectSet(device gamepad.DeviceID, set int)
}

// Tray manages the system tray icon and menu
type Tray struct {
	shutdownFunc ShutdownFunc
	selector     SetSelector
	url          string

	once         sync.Once
	shuttingDown atomic.Bool
	ready        atomic.Bool

	mu    sync.Mutex
	state state

	menuSets [maxSets]*systray.MenuItem
	menuOpen *systray.MenuItem
	menuExit *systray.MenuItem
}

// state is what the tray shows. It is kept apart from the menu so it can
// follow engine events before systray is ready.
type state struct {
	profile string
	sets    []string
	active  int
}

func (s *state) apply(ev engine.Event) bool {
	switch ev.Kind {
	case engine.EventDeviceAdded, engine.EventProfileChanged:
		if ev.Kind == engine.EventProfileChanged {
			s.profile = ev.Message
		}
		s.sets = append(s.sets[:0], ev.Sets...)
		s.active = ev.Set
	case engine.EventSetChanged:
		s.active = ev.Set
	default:
		return false
	}
	return true
}

func (s *state) title() string {
	name := s.profile
	if name == "" {
		name = "padremap"
	}
	if s.active >= 0 && s.active < len(s.sets) {
		return fmt.Sprintf("%s: %s", name, s.sets[s.active])
	}
	return name
}

// New creates a new Tray instance. url is the status page, empty when the
// page is disabled.
func New(sel SetSelector, url string, shutdownFn ShutdownFunc) *Tray {
	return &Tray{
		shutdownFunc: shutdownFn,
		selector:     sel,
		url:          url,
	}
}

// Run initializes and runs the system tray (blocks until Quit())
func (t *Tray) Run(iconData []byte) {
	systray.Run(func() {
		t.onReady(iconData)
	}, func() {
		t.onExit()
	})
}

// Quit removes the icon and makes Run return.
func (t *Tray) Quit() {
	if t.ready.Load() {
		systray.Quit()
	}
}

// OnEvent follows the engine: profile and set names, and the active set.
// It is safe to call from any goroutine.
func (t *Tray) OnEvent(ev engine.Event) {
	t.mu.Lock()
	changed := t.state.apply(ev)
	t.mu.Unlock()

	if changed && t.ready.Load() {
		t.refresh()
	}
}

// onReady is called when the tray is ready
func (t *Tray) onReady(iconData []byte) {
	if iconData != nil {
		systray.SetIcon(iconData)
	}

	for i := range t.menuSets {
		t.menuSets[i] = systray.AddMenuItemCheckbox(fmt.Sprintf("Set %d", i+1), "Switch every controller to this set", false)
		t.menuSets[i].Hide()
		go t.handleSetClicks(i)
	}
	systray.AddSeparator()

	if t.url != "" {
		t.menuOpen = systray.AddMenuItem("Open status page", "Open web interface")
	}
	t.menuExit = systray.AddMenuItem("Exit", "Quit application")

	// Handle menu clicks in separate goroutines to prevent blocking
	go t.handleMenuClicks()

	t.ready.Store(true)
	t.refresh()

	log.Println("[INFO] System tray initialized")
}

func (t *Tray) refresh() {
	t.mu.Lock()
	title := t.state.title()
	sets := append([]string(nil), t.state.sets...)
	active := t.state.active
	t.mu.Unlock()

	systray.SetTitle(title)
	tooltip := title
	if t.url != "" {
		tooltip += " - " + t.url
	}
	systray.SetTooltip(tooltip)

	for i, item := range t.menuSets {
		if i >= len(sets) {
			item.Hide()
			continue
		}
		item.SetTitle(fmt.Sprintf("%d: %s", i+1, sets[i]))
		if i == active {
			item.Check()
		} else {
			item.Uncheck()
		}
		item.Show()
	}
}

func (t *Tray) handleSetClicks(i int) {
	for range t.menuSets[i].ClickedCh {
		if t.shuttingDown.Load() {
			return
		}
		t.selector.SelectSet(0, i)
	}
}

// handleMenuClicks processes menu item clicks without blocking
func (t *Tray) handleMenuClicks() {
	var open chan struct{}
	if t.menuOpen != nil {
		open = t.menuOpen.ClickedCh
	}
	for {
		select {
		case <-open:
			if !t.shuttingDown.Load() {
				t.openBrowser()
			}
		case <-t.menuExit.ClickedCh:
			if t.shuttingDown.CompareAndSwap(false, true) {
				t.once.Do(t.shutdownFunc)
				systray.Quit()
				return
			}
		}
	}
}

// onExit is called when the tray is exiting
func (t *Tray) onExit() {
	t.shuttingDown.Store(true)
	t.ready.Store(false)
	log.Println("[INFO] System tray exiting")
}

// openBrowser opens the default web browser
func (t *Tray) openBrowser() {
	// Prevent multiple browser launches during shutdown
	if t.shuttingDown.Load() {
		return
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", t.url)
	case "darwin":
		cmd = exec.Command("open", t.url)
	default:
		cmd = exec.Command("xdg-open", t.url)
	}

	if err := cmd.Start(); err != nil {
		log.Printf("[ERROR] Failed to open browser: %v", err)
		return
	}
	go cmd.Wait()
}

// PageURL turns a listen address into a URL a browser can open.
func PageURL(listen string) string {
	if listen == "" {
		return ""
	}
	if strings.HasPrefix(listen, ":") {
		listen = "localhost" + listen
	}
	return "http://" + listen
}
