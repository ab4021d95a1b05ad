package gamepad

import (
	"fmt"
	"strconv"
	"strings"
)

// DeviceID identifies an attached controller for as long as it stays
// attached. A reconnected controller gets a new DeviceID but keeps its GUID.
type DeviceID uint32

// DeviceInfo describes an attached controller.
type DeviceInfo struct {
	ID   DeviceID `json:"id"`
	GUID string   `json:"guid"`
	Name string   `json:"name"`

	// controller family from the vendor/product table, eg. "xbox"
	Family string `json:"family"`

	Axes    int `json:"axes"`
	Buttons int `json:"buttons"`
	Hats    int `json:"hats"`

	// the OS recognises the device as a gamepad with a standard layout
	Gamepad bool `json:"gamepad"`

	VendorID  uint16 `json:"vendorId"`
	ProductID uint16 `json:"productId"`
}

func (d DeviceInfo) String() string {
	return fmt.Sprintf("%s (%s) axes=%d buttons=%d hats=%d gamepad=%v",
		d.Name, d.GUID, d.Axes, d.Buttons, d.Hats, d.Gamepad)
}

// MakeGUID builds the identity used to recognise a controller across
// reconnections.
func MakeGUID(vendorID, productID uint16, name string) string {
	return fmt.Sprintf("%04x:%04x:%s", vendorID, productID, strings.ToLower(strings.TrimSpace(name)))
}

// DeviceEvent reports a controller appearing or disappearing.
type DeviceEvent struct {
	Attached bool
	Info     DeviceInfo
}

// Snapshot is the raw state of one controller at one instant. Axes are in
// the -32768..32767 range and hats are bitmasks of the Hat constants.
type Snapshot struct {
	Axes    []int16
	Buttons []bool
	Hats    []uint8
}

// Resize makes the snapshot fit a device, reusing the existing arrays where
// possible. New entries are at rest.
func (s *Snapshot) Resize(axes, buttons, hats int) {
	s.Axes = resize(s.Axes, axes)
	s.Buttons = resize(s.Buttons, buttons)
	s.Hats = resize(s.Hats, hats)
}

func resize[T any](s []T, n int) []T {
	if cap(s) >= n {
		s = s[:n]
		clear(s)
		return s
	}
	return make([]T, n)
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Axes:    append([]int16(nil), s.Axes...),
		Buttons: append([]bool(nil), s.Buttons...),
		Hats:    append([]uint8(nil), s.Hats...),
	}
}

// Source is the Device Sampler. All methods are called from the sampling
// loop's goroutine, which is locked to its OS thread.
type Source interface {
	Open() error

	// Poll returns attach and detach events since the previous call. The
	// first call after Open reports every controller already connected.
	Poll() []DeviceEvent

	// Sample fills s with the current state of the device. It returns false
	// if the device is no longer available.
	Sample(id DeviceID, s *Snapshot) bool

	Close() error
}

// List opens src just long enough to enumerate the attached controllers.
func List(src Source) ([]DeviceInfo, error) {
	if err := src.Open(); err != nil {
		return nil, err
	}
	defer src.Close()

	var l []DeviceInfo
	for _, ev := range src.Poll() {
		if ev.Attached {
			l = append(l, ev.Info)
		}
	}
	return l, nil
}

// Match reports whether the controller fits a selector: an empty selector
// matches anything, a number matches the ID, otherwise a GUID or part of
// the name.
func (d DeviceInfo) Match(selector string) bool {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return true
	}
	if n, err := strconv.ParseUint(selector, 10, 32); err == nil {
		return DeviceID(n) == d.ID
	}
	if strings.EqualFold(selector, d.GUID) {
		return true
	}
	return strings.Contains(strings.ToLower(d.Name), strings.ToLower(selector))
}
