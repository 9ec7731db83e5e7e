// Package config turns user-facing render options into a validated
// mandel.RenderConfig.
package config

import (
	"fmt"

	mandel "github.com/marben/mandel"
)

type placement int

const (
	placeCenter placement = iota
	placeOffset
	placeRegion
)

// Builder assembles a RenderConfig. Every method returns a new Builder, so a
// partially configured Builder can be shared and extended safely.
// The first error sticks and is reported by Build.
type Builder struct {
	cfg    mandel.RenderConfig
	place  placement
	center complex128
	region mandel.Region
	err    error
}

// NewBuilder starts from a 1920x1080 view of the whole set in smooth mode.
func NewBuilder() Builder {
	return Builder{
		cfg: mandel.RenderConfig{
			Width:          1920,
			Height:         1080,
			ViewportHeight: 2.5,
			MaxIterations:  256,
			Mode:           mandel.Smooth,
		},
		place:  placeCenter,
		center: complex(-0.5, 0),
	}
}

func (b Builder) fail(option, value, reason string) Builder {
	if b.err == nil {
		b.err = &mandel.ConfigError{Option: option, Value: value, Reason: reason}
	}
	return b
}

func (b Builder) Resolution(width, height int) Builder {
	if width < 1 || height < 1 {
		return b.fail("resolution", fmt.Sprintf("%dx%d", width, height), "both sides must be at least 1")
	}
	b.cfg.Width, b.cfg.Height = width, height
	return b
}

// Offset places the viewport with raw offsets: pixel (0, 0) maps to (-x, -y).
func (b Builder) Offset(x, y float64) Builder {
	b.cfg.OffsetX, b.cfg.OffsetY = x, y
	b.place = placeOffset
	return b
}

// Center places the viewport so that its middle is re+im·i.
func (b Builder) Center(re, im float64) Builder {
	b.center = complex(re, im)
	b.place = placeCenter
	return b
}

// Region frames r, overriding the viewport height.
func (b Builder) Region(r mandel.Region) Builder {
	if !(r.Xmax > r.Xmin) || !(r.Ymax > r.Ymin) {
		return b.fail("region", fmt.Sprint(r), "empty region")
	}
	b.region = r
	b.place = placeRegion
	return b
}

// ViewportHeight sets the complex-plane span of the image height.
func (b Builder) ViewportHeight(v float64) Builder {
	b.cfg.ViewportHeight = v
	return b
}

func (b Builder) Iterations(n int) Builder {
	b.cfg.MaxIterations = n
	return b
}

func (b Builder) Mode(m mandel.ColorMode) Builder {
	b.cfg.Mode = m
	return b
}

// EscapeBound sets the |z|² bound. Zero selects the mode's default.
func (b Builder) EscapeBound(v float64) Builder {
	b.cfg.EscapeBound = v
	return b
}

func (b Builder) Build() (mandel.RenderConfig, error) {
	if b.err != nil {
		return mandel.RenderConfig{}, b.err
	}
	cfg := b.cfg
	if cfg.EscapeBound == 0 {
		cfg.EscapeBound = cfg.Mode.DefaultEscapeBound()
	}

	switch b.place {
	case placeCenter:
		if cfg.Width >= 1 && cfg.Height >= 1 {
			cfg.OffsetX = cfg.ViewportWidth()/2 - real(b.center)
			cfg.OffsetY = cfg.ViewportHeight/2 - imag(b.center)
		}
	case placeRegion:
		cfg.OffsetX, cfg.OffsetY, cfg.ViewportHeight = b.region.Apply(cfg.Width, cfg.Height)
	}

	if err := cfg.Validate(); err != nil {
		return mandel.RenderConfig{}, err
	}
	return cfg, nil
}
