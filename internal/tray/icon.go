package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"runtime"
)

const iconSize = 32

var (
	bodyColour   = color.NRGBA{0x2f, 0x32, 0x38, 0xff}
	buttonColour = color.NRGBA{0x5a, 0xd4, 0xe6, 0xff}
)

// Icon returns the tray icon in the format systray expects on this
// platform: ICO on Windows, PNG elsewhere.
func Icon() []byte {
	p, err := iconPNG()
	if err != nil {
		return nil
	}
	if runtime.GOOS == "windows" {
		return wrapICO(p, iconSize)
	}
	return p
}

// iconPNG draws a controller: a rounded body, a cross on the left and
// four buttons on the right.
func iconPNG() ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))

	for y := 8; y < 24; y++ {
		for x := 2; x < 30; x++ {
			if inside(x, y, 2, 8, 30, 24, 5) {
				img.SetNRGBA(x, y, bodyColour)
			}
		}
	}

	// cross
	for i := 12; i < 20; i++ {
		img.SetNRGBA(i-7, 15, buttonColour)
		img.SetNRGBA(i-7, 16, buttonColour)
		img.SetNRGBA(8, i, buttonColour)
		img.SetNRGBA(9, i, buttonColour)
	}

	// face buttons
	for _, c := range [][2]int{{23, 12}, {23, 20}, {19, 16}, {27, 16}} {
		disc(img, c[0], c[1], 2)
	}

	var b bytes.Buffer
	if err := png.Encode(&b, img); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// inside reports whether x,y lies in the rectangle with rounded corners of
// radius r.
func inside(x, y, x0, y0, x1, y1, r int) bool {
	cx := min(max(x, x0+r), x1-r-1)
	cy := min(max(y, y0+r), y1-r-1)
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= r*r
}

func disc(img *image.NRGBA, cx, cy, r int) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			if (x-cx)*(x-cx)+(y-cy)*(y-cy) <= r*r {
				img.SetNRGBA(x, y, buttonColour)
			}
		}
	}
}

// wrapICO puts a PNG image in an ICO container with a single entry.
func wrapICO(p []byte, size int) []byte {
	const headerSize = 6
	const entrySize = 16

	var b bytes.Buffer
	b.Grow(headerSize + entrySize + len(p))

	// ICONDIR: reserved, type 1 (icon), image count
	binary.Write(&b, binary.LittleEndian, [3]uint16{0, 1, 1})

	// ICONDIRENTRY. a width or height of 256 is stored as 0
	dim := uint8(size)
	if size >= 256 {
		dim = 0
	}
	binary.Write(&b, binary.LittleEndian, struct {
		Width, Height uint8
		Colours       uint8
		Reserved      uint8
		Planes        uint16
		BitCount      uint16
		Size          uint32
		Offset        uint32
	}{
		Width:    dim,
		Height:   dim,
		Planes:   1,
		BitCount: 32,
		Size:     uint32(len(p)),
		Offset:   headerSize + entrySize,
	})

	b.Write(p)
	return b.Bytes()
}
