//go:build linux

package gamepad

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"unsafe"

	"github.com/holoplot/go-evdev"
	"golang.org/x/sys/unix"
)

const inputPath = "/dev/input"

type evdevDevice struct {
	dev  *evdev.InputDevice
	path string
	info DeviceInfo

	// event code to snapshot index
	axes    map[evdev.EvCode]int
	buttons map[evdev.EvCode]int
	hats    map[evdev.EvCode]int

	abs map[evdev.EvCode]evdev.AbsInfo

	mu    sync.Mutex
	state Snapshot
	hatXY [][2]int32
	gone  bool
}

// EvdevSource reads controllers straight from the kernel event devices and
// follows hotplug through inotify on /dev/input. It needs read access to
// the event nodes, usually through the input group.
type EvdevSource struct {
	Debug bool

	dir     string
	readDir func(string) ([]os.DirEntry, error)
	fd      int
	nextID  DeviceID
	devices map[DeviceID]*evdevDevice
	pending []DeviceEvent
}

func NewEvdevSource() *EvdevSource {
	return &EvdevSource{
		dir:     inputPath,
		readDir: os.ReadDir,
		fd:      -1,
		devices: make(map[DeviceID]*evdevDevice),
	}
}

func (s *EvdevSource) Open() error {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return fmt.Errorf("gamepad: inotify init failed: %w", err)
	}
	if _, err := unix.InotifyAddWatch(fd, s.dir, unix.IN_CREATE|unix.IN_ATTRIB|unix.IN_DELETE); err != nil {
		unix.Close(fd)
		return fmt.Errorf("gamepad: inotify add watch failed: %w", err)
	}
	s.fd = fd

	entries, err := s.readDir(s.dir)
	if err != nil {
		unix.Close(fd)
		s.fd = -1
		return fmt.Errorf("gamepad: %w", err)
	}
	for _, e := range entries {
		s.connect(e.Name())
	}
	return nil
}

func (s *EvdevSource) Close() error {
	for id, d := range s.devices {
		d.dev.Close()
		delete(s.devices, id)
	}
	if s.fd >= 0 {
		unix.Close(s.fd)
		s.fd = -1
	}
	return nil
}

func (s *EvdevSource) Poll() []DeviceEvent {
	s.readNotifications()

	for id, d := range s.devices {
		d.mu.Lock()
		gone := d.gone
		d.mu.Unlock()
		if gone {
			s.disconnect(id)
		}
	}

	ev := s.pending
	s.pending = nil
	return ev
}

func (s *EvdevSource) Sample(id DeviceID, snap *Snapshot) bool {
	d, ok := s.devices[id]
	if !ok {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gone {
		return false
	}
	snap.Resize(len(d.state.Axes), len(d.state.Buttons), len(d.state.Hats))
	copy(snap.Axes, d.state.Axes)
	copy(snap.Buttons, d.state.Buttons)
	copy(snap.Hats, d.state.Hats)
	return true
}

func (s *EvdevSource) readNotifications() {
	if s.fd < 0 {
		return
	}

	buf := make([]byte, 4096)
	for {
		n, err := unix.Read(s.fd, buf)
		if err != nil || n < unix.SizeofInotifyEvent {
			if err != nil && !errors.Is(err, unix.EAGAIN) {
				log.Printf("[WARN] inotify read failed: %v", err)
			}
			return
		}

		var offset uint32
		for offset <= uint32(n-unix.SizeofInotifyEvent) {
			event := (*unix.InotifyEvent)(unsafe.Pointer(&buf[offset]))
			nameBytes := buf[offset+unix.SizeofInotifyEvent : offset+unix.SizeofInotifyEvent+uint32(event.Len)]
			name := strings.TrimRight(string(nameBytes), "\x00")

			switch {
			case event.Mask&(unix.IN_CREATE|unix.IN_ATTRIB) != 0:
				s.connect(name)
			case event.Mask&unix.IN_DELETE != 0:
				for id, d := range s.devices {
					if filepath.Base(d.path) == name {
						s.disconnect(id)
					}
				}
			}
			offset += unix.SizeofInotifyEvent + uint32(event.Len)
		}
	}
}

func (s *EvdevSource) connect(name string) {
	if !strings.HasPrefix(name, "event") {
		return
	}
	path := filepath.Join(s.dir, name)
	for _, d := range s.devices {
		if d.path == path {
			return
		}
	}

	dev, err := evdev.Open(path)
	if err != nil {
		// udev may not have granted access yet. IN_ATTRIB brings us back
		return
	}

	d, err := newEvdevDevice(dev, path)
	if err != nil {
		dev.Close()
		return
	}

	s.nextID++
	d.info.ID = s.nextID
	s.devices[d.info.ID] = d

	log.Printf("Joystick connected: %s (VID=%04X PID=%04X) family=%s axes=%d buttons=%d hats=%d",
		d.info.Name, d.info.VendorID, d.info.ProductID, d.info.Family, d.info.Axes, d.info.Buttons, d.info.Hats)

	go d.read(s.Debug)
	s.pending = append(s.pending, DeviceEvent{Attached: true, Info: d.info})
}

func (s *EvdevSource) disconnect(id DeviceID) {
	d := s.devices[id]
	delete(s.devices, id)
	d.dev.Close()

	log.Printf("Joystick disconnected: %s", d.info.Name)
	s.pending = append(s.pending, DeviceEvent{Attached: false, Info: d.info})
}

var errNotJoystick = errors.New("not a joystick")

func newEvdevDevice(dev *evdev.InputDevice, path string) (*evdevDevice, error) {
	if !slices.Contains(dev.CapableTypes(), evdev.EV_ABS) {
		return nil, errNotJoystick
	}

	var buttons []evdev.EvCode
	joystick := false
	for _, c := range dev.CapableEvents(evdev.EV_KEY) {
		if c >= evdev.BTN_JOYSTICK && c < evdev.BTN_DIGI {
			joystick = true
		}
		if c >= evdev.BTN_MISC {
			buttons = append(buttons, c)
		}
	}
	if !joystick {
		return nil, errNotJoystick
	}

	abs, err := dev.AbsInfos()
	if err != nil {
		return nil, err
	}

	var axes, hats []evdev.EvCode
	for _, c := range dev.CapableEvents(evdev.EV_ABS) {
		switch {
		case c >= evdev.ABS_HAT0X && c <= evdev.ABS_HAT3Y:
			if (c-evdev.ABS_HAT0X)%2 == 0 {
				hats = append(hats, c)
			}
		case c < evdev.ABS_MISC:
			axes = append(axes, c)
		}
	}
	slices.Sort(axes)
	slices.Sort(buttons)
	slices.Sort(hats)

	name, _ := dev.Name()
	id, _ := dev.InputID()

	d := &evdevDevice{
		dev:     dev,
		path:    path,
		axes:    make(map[evdev.EvCode]int),
		buttons: make(map[evdev.EvCode]int),
		hats:    make(map[evdev.EvCode]int),
		abs:     abs,
		hatXY:   make([][2]int32, len(hats)),
		info: DeviceInfo{
			GUID:      MakeGUID(id.Vendor, id.Product, name),
			Name:      name,
			Family:    Family(id.Vendor, id.Product),
			Axes:      len(axes),
			Buttons:   len(buttons),
			Hats:      len(hats),
			Gamepad:   slices.Contains(buttons, evdev.BTN_GAMEPAD),
			VendorID:  id.Vendor,
			ProductID: id.Product,
		},
	}
	d.state.Resize(len(axes), len(buttons), len(hats))

	for i, c := range axes {
		d.axes[c] = i
		if a, ok := abs[c]; ok {
			d.state.Axes[i] = ScaleAbs(a.Value, a.Minimum, a.Maximum)
		}
	}
	for i, c := range buttons {
		d.buttons[c] = i
	}
	for i, c := range hats {
		d.hats[c] = i
		d.hats[c+1] = i
	}

	return d, nil
}

// read runs until the device is closed or removed.
func (d *evdevDevice) read(debug bool) {
	for {
		ev, err := d.dev.ReadOne()
		if err != nil {
			d.mu.Lock()
			d.gone = true
			d.mu.Unlock()
			return
		}

		if debug && ev.Type != evdev.EV_SYN {
			log.Printf("[DEBUG] %s %s value=%d", evdev.TypeName(ev.Type), evdev.CodeName(ev.Type, ev.Code), ev.Value)
		}

		d.mu.Lock()
		switch ev.Type {
		case evdev.EV_KEY:
			if i, ok := d.buttons[ev.Code]; ok {
				d.state.Buttons[i] = ev.Value != 0
			}
		case evdev.EV_ABS:
			if i, ok := d.axes[ev.Code]; ok {
				a := d.abs[ev.Code]
				d.state.Axes[i] = ScaleAbs(ev.Value, a.Minimum, a.Maximum)
			} else if i, ok := d.hats[ev.Code]; ok {
				d.hatXY[i][(ev.Code-evdev.ABS_HAT0X)%2] = ev.Value
				d.state.Hats[i] = HatFromAxes(d.hatXY[i][0], d.hatXY[i][1])
			}
		}
		d.mu.Unlock()
	}
}
