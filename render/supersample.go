package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"iter"

	mandel "github.com/marben/mandel"
	"github.com/marben/mandel/sink"
	"github.com/nfnt/resize"
)

// Supersampled renders at factor times the resolution and downsamples
// with a Lanczos filter before streaming. The oversized frame is held in memory.
type Supersampled struct {
	frame  *Frame
	factor int
	cfg    mandel.RenderConfig
	onRow  func(y int)
}

var _ mandel.Renderer = (*Supersampled)(nil)

func NewSupersampled(cfg mandel.RenderConfig, factor int, opts ...Option) (*Supersampled, error) {
	if factor < 1 {
		return nil, &mandel.ConfigError{Option: "antialias", Value: fmt.Sprint(factor), Reason: "must be at least 1"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f, err := NewFrame(cfg.Scaled(factor), opts...)
	if err != nil {
		return nil, err
	}
	// the hook reports output rows, not oversized ones
	onRow := f.onRow
	f.onRow = nil
	return &Supersampled{frame: f, factor: factor, cfg: cfg, onRow: onRow}, nil
}

// New returns a plain Frame for antialias 1 and a Supersampled renderer otherwise.
func New(cfg mandel.RenderConfig, antialias int, opts ...Option) (mandel.Renderer, error) {
	if antialias <= 1 {
		f, err := NewFrame(cfg, opts...)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	s, err := NewSupersampled(cfg, antialias, opts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Supersampled) Render(ctx context.Context, out mandel.RowSink) error {
	var canvas sink.Image
	if err := s.frame.Render(ctx, &canvas); err != nil {
		return fmt.Errorf("render %dx oversampled frame: %w", s.factor, err)
	}

	small := resize.Resize(uint(s.cfg.Width), uint(s.cfg.Height), canvas.RGBA(), resize.Lanczos3)
	return streamRows(ctx, s.cfg.Width, s.cfg.Height, imageRows(small), out, s.onRow)
}

func imageRows(img image.Image) iter.Seq2[int, []mandel.Color] {
	b := img.Bounds()
	return func(yield func(int, []mandel.Color) bool) {
		for y := range b.Dy() {
			row := make([]mandel.Color, b.Dx())
			for x := range row {
				c := color.RGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
				row[x] = mandel.Color{R: c.R, G: c.G, B: c.B}
			}
			if !yield(y, row) {
				return
			}
		}
	}
}
