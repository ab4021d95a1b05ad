package gamepad

import "math"

// Hat bits as reported by SDL and synthesised by the evdev source.
const (
	HatCentered uint8 = 0x00
	HatUp       uint8 = 0x01
	HatRight    uint8 = 0x02
	HatDown     uint8 = 0x04
	HatLeft     uint8 = 0x08
)

// FullScale is the magnitude of a fully deflected raw axis.
const FullScale = math.MaxInt16

// NormalizeAxis converts a raw axis value (-32768..32767) to -1.0..1.0.
func NormalizeAxis(raw int16) float64 {
	v := float64(raw) / FullScale
	if v < -1.0 {
		v = -1.0
	}
	return v
}

// ScaleAbs converts a value from a device specific range into the raw
// -32768..32767 range used by snapshots.
func ScaleAbs(v, min, max int32) int16 {
	if max <= min {
		return 0
	}
	if v < min {
		v = min
	}
	if v > max {
		v = max
	}
	f := float64(v-min)/float64(max-min)*65535 - 32768
	return int16(math.Round(f))
}

// HatFromAxes builds a hat bitmask from a pair of -1/0/+1 hat axes as found
// on evdev devices (ABS_HAT0X, ABS_HAT0Y).
func HatFromAxes(x, y int32) uint8 {
	var h uint8
	switch {
	case x < 0:
		h |= HatLeft
	case x > 0:
		h |= HatRight
	}
	switch {
	case y < 0:
		h |= HatUp
	case y > 0:
		h |= HatDown
	}
	return h
}

// Known vendor/product IDs.
type deviceKey struct {
	VendorID  uint16
	ProductID uint16
}

var knownDevices = map[deviceKey]string{
	// Microsoft Xbox controllers
	{0x045E, 0x028E}: "xbox", // Xbox 360
	{0x045E, 0x02FF}: "xbox", // Xbox One
	{0x045E, 0x0B12}: "xbox", // Xbox Series X|S
	{0x045E, 0x0B13}: "xbox", // Xbox Series X|S (wireless)
	// Sony PlayStation controllers
	{0x054C, 0x0CE6}: "playstation", // DualSense
	{0x054C, 0x09CC}: "playstation", // DualShock 4 v2
	{0x054C, 0x05C4}: "playstation", // DualShock 4 v1
	// Nintendo Switch Pro Controller
	{0x057E, 0x2009}: "switch_pro",
}

// Family names the controller family for a vendor/product pair. Unknown
// devices are "generic".
func Family(vendorID, productID uint16) string {
	if f, ok := knownDevices[deviceKey{VendorID: vendorID, ProductID: productID}]; ok {
		return f
	}
	return "generic"
}
