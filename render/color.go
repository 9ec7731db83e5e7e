package render

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	mandel "github.com/marben/mandel"
)

var black = mandel.Color{}

// PaletteColor maps an integer escape band to its palette entry.
// Channels keep only the low 8 bits of the arithmetic, so any n is valid.
func PaletteColor(n int) mandel.Color {
	return mandel.Color{
		R: uint8(n * 8),
		G: uint8(n * 9),
		B: uint8(0xff - n*4),
	}
}

// Colorize maps a pixel sample to its color under mode.
// Samples whose escape value overflowed to an infinity or NaN are black.
func Colorize(mode mandel.ColorMode, s mandel.PixelSample) mandel.Color {
	if math.IsInf(s.Escape, 0) || math.IsNaN(s.Escape) {
		return black
	}
	switch mode {
	case mandel.Smooth:
		return smoothColor(s.Escape)
	case mandel.Banded:
		return bandedColor(s.Escape, s.FinalReal)
	case mandel.HSV:
		return hsvColor(s.Escape)
	}
	panic(fmt.Sprintf("render: unknown color mode %v", mode))
}

func smoothColor(escape float64) mandel.Color {
	if escape == 0.0 {
		return black
	}
	base := math.Floor(escape)
	frac := escape - base

	c1 := PaletteColor(int(base))
	c2 := PaletteColor(int(base) + 1)
	return mandel.Color{
		R: lerp8(c1.R, c2.R, frac),
		G: lerp8(c1.G, c2.G, frac),
		B: lerp8(c1.B, c2.B, frac),
	}
}

func lerp8(a, b uint8, t float64) uint8 {
	v := (float64(b)-float64(a))*t + float64(a)
	return uint8(int(math.Round(v)))
}

// bandedColor truncates toward zero before wrapping, so negative products
// wrap like two's-complement bytes.
func bandedColor(escape, re float64) mandel.Color {
	v := escape * re
	return mandel.Color{
		R: uint8(int(v)),
		G: uint8(int(v * 2.0)),
		B: uint8(int(v * 4.0)),
	}
}

// hsvColor cycles the hue ten degrees per escape band.
func hsvColor(escape float64) mandel.Color {
	if escape == 0.0 {
		return black
	}
	hue := math.Mod(escape*10, 360)
	if hue < 0 {
		hue += 360
	}
	r, g, b := colorful.Hsv(hue, 0.8, 1.0).Clamped().RGB255()
	return mandel.Color{R: r, G: g, B: b}
}
