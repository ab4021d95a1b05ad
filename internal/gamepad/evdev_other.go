//go:build !linux

package gamepad

import "errors"

// EvdevSource is only available on Linux.
type EvdevSource struct {
	Debug bool
}

func NewEvdevSource() *EvdevSource {
	return &EvdevSource{}
}

func (s *EvdevSource) Open() error {
	return errors.New("gamepad: evdev is only available on linux")
}

func (s *EvdevSource) Close() error                         { return nil }
func (s *EvdevSource) Poll() []DeviceEvent                  { return nil }
func (s *EvdevSource) Sample(id DeviceID, _ *Snapshot) bool { return false }
