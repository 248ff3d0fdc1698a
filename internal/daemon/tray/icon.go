package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"sync"
)

const iconSize = 32

var (
	iconOnce  sync.Once
	iconBytes []byte
)

// iconData returns the tray icon as an ICO file holding one PNG image: a
// disc split into a light upper half and a tinted lower half.
func iconData() []byte {
	iconOnce.Do(func() {
		iconBytes = buildIcon()
	})
	return iconBytes
}

func buildIcon() []byte {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	light := color.NRGBA{R: 0xE8, G: 0xEC, B: 0xF2, A: 0xFF}
	tint := color.NRGBA{R: 0x2B, G: 0x3A, B: 0x55, A: 0xFF}

	c := float64(iconSize-1) / 2
	r2 := (c - 1) * (c - 1)
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx, dy := float64(x)-c, float64(y)-c
			if dx*dx+dy*dy > r2 {
				continue
			}
			if y < iconSize/2 {
				img.SetNRGBA(x, y, light)
			} else {
				img.SetNRGBA(x, y, tint)
			}
		}
	}

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil
	}
	return wrapICO(pngBuf.Bytes(), iconSize)
}

// wrapICO builds a single-entry ICO container around PNG data.
func wrapICO(pngData []byte, size int) []byte {
	const headerLen = 6 + 16

	var buf bytes.Buffer
	// ICONDIR
	_ = binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})
	// ICONDIRENTRY
	dim := byte(size)
	if size >= 256 {
		dim = 0
	}
	buf.Write([]byte{dim, dim, 0, 0})
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))  // planes
	_ = binary.Write(&buf, binary.LittleEndian, uint16(32)) // bit count
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pngData)))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(headerLen))
	buf.Write(pngData)
	return buf.Bytes()
}
