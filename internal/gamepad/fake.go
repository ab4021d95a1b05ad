package gamepad

import "sync"

// Fake is a Source driven by the caller. It is used by tests and by the
// dry-run mode of the engine.
type Fake struct {
	mu      sync.Mutex
	opened  bool
	devices map[DeviceID]*fakeDevice
	pending []DeviceEvent
}

type fakeDevice struct {
	info  DeviceInfo
	state Snapshot
}

func NewFake() *Fake {
	return &Fake{devices: make(map[DeviceID]*fakeDevice)}
}

// Attach connects a device at rest.
func (f *Fake) Attach(info DeviceInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d := &fakeDevice{info: info}
	d.state.Resize(info.Axes, info.Buttons, info.Hats)
	f.devices[info.ID] = d
	f.pending = append(f.pending, DeviceEvent{Attached: true, Info: info})
}

// Detach disconnects a device.
func (f *Fake) Detach(id DeviceID) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.devices[id]
	if !ok {
		return
	}
	delete(f.devices, id)
	f.pending = append(f.pending, DeviceEvent{Attached: false, Info: d.info})
}

func (f *Fake) SetAxis(id DeviceID, axis int, v int16) {
	f.update(id, func(s *Snapshot) { s.Axes[axis] = v })
}

func (f *Fake) SetButton(id DeviceID, button int, pressed bool) {
	f.update(id, func(s *Snapshot) { s.Buttons[button] = pressed })
}

func (f *Fake) SetHat(id DeviceID, hat int, v uint8) {
	f.update(id, func(s *Snapshot) { s.Hats[hat] = v })
}

func (f *Fake) update(id DeviceID, fn func(*Snapshot)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.devices[id]; ok {
		fn(&d.state)
	}
}

// Opened reports whether the source is between Open and Close.
func (f *Fake) Opened() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened
}

func (f *Fake) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = true
	return nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = false
	return nil
}

func (f *Fake) Poll() []DeviceEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev := f.pending
	f.pending = nil
	return ev
}

func (f *Fake) Sample(id DeviceID, s *Snapshot) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.devices[id]
	if !ok {
		return false
	}
	s.Resize(len(d.state.Axes), len(d.state.Buttons), len(d.state.Hats))
	copy(s.Axes, d.state.Axes)
	copy(s.Buttons, d.state.Buttons)
	copy(s.Hats, d.state.Hats)
	return true
}
