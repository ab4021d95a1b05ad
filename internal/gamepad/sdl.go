package gamepad

import (
	"fmt"
	"log"
	"slices"

	"github.com/jupiterrider/purego-sdl3/sdl"
)

type joystickInfo struct {
	joystick *sdl.Joystick
	info     DeviceInfo
}

// SDLSource reads controllers through the SDL3 joystick API. SDL requires
// every call to come from the thread that initialised it.
type SDLSource struct {
	// log raw button, axis and hat events
	Debug bool

	joysticks map[sdl.JoystickID]*joystickInfo
	pending   []DeviceEvent
}

func NewSDLSource() *SDLSource {
	return &SDLSource{
		joysticks: make(map[sdl.JoystickID]*joystickInfo),
	}
}

func (r *SDLSource) Open() error {
	if !sdl.Init(sdl.InitJoystick | sdl.InitGamepad) {
		return fmt.Errorf("gamepad: SDL init failed: %s", sdl.GetError())
	}
	log.Println("SDL3 Joystick subsystem initialized")

	// already-connected joysticks
	for _, id := range sdl.GetJoysticks() {
		r.openJoystick(id)
	}
	return nil
}

func (r *SDLSource) Close() error {
	for id, info := range r.joysticks {
		sdl.CloseJoystick(info.joystick)
		delete(r.joysticks, id)
	}
	sdl.Quit()
	return nil
}

func (r *SDLSource) Poll() []DeviceEvent {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickAdded:
			r.openJoystick(event.JDevice().Which)

		case sdl.EventJoystickRemoved:
			r.removeJoystick(event.JDevice().Which)

		case sdl.EventJoystickButtonDown:
			if r.Debug {
				be := event.JButton()
				log.Printf("[DEBUG] Button DOWN: index=%d joystick=%d", be.Button, be.Which)
			}

		case sdl.EventJoystickButtonUp:
			if r.Debug {
				be := event.JButton()
				log.Printf("[DEBUG] Button UP:   index=%d joystick=%d", be.Button, be.Which)
			}

		case sdl.EventJoystickAxisMotion:
			if r.Debug {
				ae := event.JAxis()
				if ae.Value > 8000 || ae.Value < -8000 {
					log.Printf("[DEBUG] Axis: index=%d value=%d joystick=%d", ae.Axis, ae.Value, ae.Which)
				}
			}

		case sdl.EventJoystickHatMotion:
			if r.Debug {
				he := event.JHat()
				log.Printf("[DEBUG] Hat: index=%d value=0x%02X joystick=%d", he.Hat, he.Value, he.Which)
			}
		}
	}

	ev := r.pending
	r.pending = nil
	return ev
}

func (r *SDLSource) Sample(id DeviceID, s *Snapshot) bool {
	info, exists := r.joysticks[sdl.JoystickID(id)]
	if !exists || !sdl.JoystickConnected(info.joystick) {
		return false
	}

	js := info.joystick
	s.Resize(info.info.Axes, info.info.Buttons, info.info.Hats)

	for i := range s.Axes {
		s.Axes[i] = sdl.GetJoystickAxis(js, int32(i))
	}
	for i := range s.Buttons {
		s.Buttons[i] = sdl.GetJoystickButton(js, int32(i))
	}
	for i := range s.Hats {
		s.Hats[i] = sdl.GetJoystickHat(js, int32(i))
	}
	return true
}

func (r *SDLSource) openJoystick(instanceID sdl.JoystickID) {
	if _, exists := r.joysticks[instanceID]; exists {
		return
	}

	js := sdl.OpenJoystick(instanceID)
	if js == nil {
		log.Printf("Failed to open joystick %d: %s", instanceID, sdl.GetError())
		return
	}

	jsID := sdl.GetJoystickID(js)
	vendorID := sdl.GetJoystickVendor(js)
	productID := sdl.GetJoystickProduct(js)
	name := sdl.GetJoystickName(js)

	info := DeviceInfo{
		ID:        DeviceID(jsID),
		GUID:      MakeGUID(vendorID, productID, name),
		Name:      name,
		Family:    Family(vendorID, productID),
		Axes:      int(sdl.GetNumJoystickAxes(js)),
		Buttons:   int(sdl.GetNumJoystickButtons(js)),
		Hats:      int(sdl.GetNumJoystickHats(js)),
		Gamepad:   standardMapping(jsID),
		VendorID:  vendorID,
		ProductID: productID,
	}
	r.joysticks[jsID] = &joystickInfo{joystick: js, info: info}

	log.Printf("Joystick connected: %s (VID=%04X PID=%04X) family=%s axes=%d buttons=%d hats=%d",
		name, vendorID, productID, info.Family, info.Axes, info.Buttons, info.Hats)

	r.pending = append(r.pending, DeviceEvent{Attached: true, Info: info})
}

func (r *SDLSource) removeJoystick(instanceID sdl.JoystickID) {
	info, exists := r.joysticks[instanceID]
	if !exists {
		return
	}

	log.Printf("Joystick disconnected: %s", info.info.Name)
	sdl.CloseJoystick(info.joystick)
	delete(r.joysticks, instanceID)

	r.pending = append(r.pending, DeviceEvent{Attached: false, Info: info.info})
}

// standardMapping reports whether SDL knows a gamepad layout for the
// joystick.
func standardMapping(id sdl.JoystickID) bool {
	return slices.Contains(sdl.GetGamepads(), id)
}
