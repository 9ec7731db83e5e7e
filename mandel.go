package mandel

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"
)

// ColorMode selects how an escape value is turned into a pixel color.
type ColorMode int

const (
	// Smooth interpolates between palette colors using the fractional escape value.
	Smooth ColorMode = iota + 1
	// Banded derives channels from the escape value times the final real coordinate.
	Banded
	// HSV walks the hue wheel with the escape value.
	HSV
)

var modeNames = map[ColorMode]string{
	Smooth: "smooth",
	Banded: "banded",
	HSV:    "hsv",
}

func (m ColorMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("ColorMode(%d)", int(m))
}

// DefaultEscapeBound is the |z|² bound historically paired with the mode.
func (m ColorMode) DefaultEscapeBound() float64 {
	switch m {
	case Banded:
		return 4
	default:
		return 1 << 16
	}
}

// ParseColorMode resolves a mode name, ignoring case.
func ParseColorMode(s string) (ColorMode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return 0, &ConfigError{Option: "mode", Value: s, Reason: "expected one of " + strings.Join(ModeNames(), ", ")}
}

// ModeNames lists the accepted mode names in sorted order.
func ModeNames() []string {
	names := make([]string, 0, len(modeNames))
	for _, n := range modeNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RenderConfig is the fully resolved input of one render.
// It is passed by value and never modified after construction.
type RenderConfig struct {
	Width, Height    int
	ViewportHeight   float64 // complex-plane span of the image height
	OffsetX, OffsetY float64
	MaxIterations    int
	Mode             ColorMode
	EscapeBound      float64 // bound on |z|² before a point counts as escaped
}

// ViewportWidth is the complex-plane span of the image width.
func (c RenderConfig) ViewportWidth() float64 {
	return c.ViewportHeight * (float64(c.Width) / float64(c.Height))
}

// Validate reports the first invariant the config breaks.
func (c RenderConfig) Validate() error {
	switch {
	case c.Width < 1:
		return &ConfigError{Option: "width", Value: fmt.Sprint(c.Width), Reason: "must be at least 1"}
	case c.Height < 1:
		return &ConfigError{Option: "height", Value: fmt.Sprint(c.Height), Reason: "must be at least 1"}
	case c.MaxIterations < 1:
		return &ConfigError{Option: "iterations", Value: fmt.Sprint(c.MaxIterations), Reason: "must be at least 1"}
	case !(c.ViewportHeight > 0) || math.IsInf(c.ViewportHeight, 0):
		return &ConfigError{Option: "zoom", Value: fmt.Sprint(c.ViewportHeight), Reason: "must be a positive finite number"}
	case !finite(c.OffsetX) || !finite(c.OffsetY):
		return &ConfigError{Option: "location", Value: fmt.Sprintf("%vx%v", c.OffsetX, c.OffsetY), Reason: "must be finite"}
	case !(c.EscapeBound > 1) || math.IsInf(c.EscapeBound, 0):
		// log(|z|²)/2 must stay positive for the smoothing formula
		return &ConfigError{Option: "escape-bound", Value: fmt.Sprint(c.EscapeBound), Reason: "must be a finite number greater than 1"}
	}
	if _, ok := modeNames[c.Mode]; !ok {
		return &ConfigError{Option: "mode", Value: c.Mode.String(), Reason: "unknown color mode"}
	}
	return nil
}

// Scaled returns the same view of the plane at factor times the resolution.
func (c RenderConfig) Scaled(factor int) RenderConfig {
	c.Width *= factor
	c.Height *= factor
	return c
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// PixelSample is the per-pixel result of iteration and smoothing.
// Escape is 0 for points that never escaped.
type PixelSample struct {
	FinalReal, FinalImag float64
	Escape               float64
}

// Color is an 8-bit RGB triple.
type Color struct {
	R, G, B uint8
}

// RGBA implements color.Color. Colors are always opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}.RGBA()
}

var ErrInvalidConfig = errors.New("invalid render configuration")

// ConfigError names the option that made a configuration unusable.
type ConfigError struct {
	Option string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Option, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// Region within the Mandelbrot set
type Region struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
}

// Apply fits the region into a width×height image and returns the offsets and
// viewport height that frame it. The region is centered; the shorter axis is padded.
func (r Region) Apply(width, height int) (offsetX, offsetY, viewportHeight float64) {
	aspect := float64(width) / float64(height)
	vw := r.Xmax - r.Xmin
	if h := r.Ymax - r.Ymin; h*aspect > vw {
		vw = h * aspect
	}
	viewportHeight = vw / aspect

	cx := (r.Xmin + r.Xmax) / 2
	cy := (r.Ymin + r.Ymax) / 2
	return vw/2 - cx, viewportHeight/2 - cy, viewportHeight
}

// Classic regions / landmarks in the Mandelbrot set
var (
	// Whole set
	FullSet = Region{
		Xmin: -2.5,
		Xmax: 1.0,
		Ymin: -1.25,
		Ymax: 1.25,
	}

	// Seahorse Valley – dense filaments and repeating “seahorse” curls
	SeahorseValley = Region{
		Xmin: -0.8,
		Xmax: -0.7,
		Ymin: 0.05,
		Ymax: 0.15,
	}

	// Elephant Valley – large bulb with trunk-like tendrils
	ElephantValley = Region{
		Xmin: -1.85,
		Xmax: -1.75,
		Ymin: -0.10,
		Ymax: -0.02,
	}

	// Spiral Minibrot – small Mandelbrot copy with tight spiral arms
	SpiralMinibrot = Region{
		Xmin: -0.7435,
		Xmax: -0.7420,
		Ymin: 0.1310,
		Ymax: 0.1325,
	}

	// Triple Spiral – threefold symmetric spiral structure
	TripleSpiral = Region{
		Xmin: -0.7480,
		Xmax: -0.7450,
		Ymin: 0.0950,
		Ymax: 0.0980,
	}

	// Valley of the Dragon – deep, highly detailed spiral filaments
	ValleyOfTheDragon = Region{
		Xmin: -0.7400,
		Xmax: -0.7350,
		Ymin: 0.1800,
		Ymax: 0.1850,
	}

	// Minibrot in a Mini-Spiral – self-similar Mandelbrot copy inside a spiral arm
	MinibrotInMiniSpiral = Region{
		Xmin: -1.7390,
		Xmax: -1.7375,
		Ymin: -0.0235,
		Ymax: -0.0220,
	}
)

// Regions maps preset names to their regions.
var Regions = map[string]Region{
	"full":          FullSet,
	"seahorse":      SeahorseValley,
	"elephant":      ElephantValley,
	"spiral":        SpiralMinibrot,
	"triple-spiral": TripleSpiral,
	"dragon":        ValleyOfTheDragon,
	"mini-spiral":   MinibrotInMiniSpiral,
}
