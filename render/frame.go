package render

import (
	"context"
	"fmt"
	"iter"

	mandel "github.com/marben/mandel"
)

// Option configures a Frame.
type Option func(*Frame)

// WithWorkers evaluates rows on n goroutines. Rows are still emitted in order.
func WithWorkers(n int) Option {
	return func(f *Frame) {
		if n > 1 {
			f.workers = n
		}
	}
}

// WithRowHook registers fn to be called after each row reached the sink.
func WithRowHook(fn func(y int)) Option {
	return func(f *Frame) {
		f.onRow = fn
	}
}

// Frame renders one RenderConfig.
type Frame struct {
	cfg     mandel.RenderConfig
	workers int
	onRow   func(y int)
}

var _ mandel.Renderer = (*Frame)(nil)

// NewFrame validates cfg and returns a renderer for it.
func NewFrame(cfg mandel.RenderConfig, opts ...Option) (*Frame, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f := &Frame{cfg: cfg, workers: 1}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *Frame) Config() mandel.RenderConfig {
	return f.cfg
}

// Row computes the colors of row y, left to right.
func (f *Frame) Row(y int) []mandel.Color {
	row := make([]mandel.Color, f.cfg.Width)
	for x := range row {
		row[x] = Colorize(f.cfg.Mode, Sample(x, y, f.cfg))
	}
	return row
}

// Rows yields every row of the frame from top to bottom.
// Breaking out of the loop stops the render.
func (f *Frame) Rows() iter.Seq2[int, []mandel.Color] {
	if f.workers > 1 {
		return f.parallelRows
	}
	return func(yield func(int, []mandel.Color) bool) {
		for y := range f.cfg.Height {
			if !yield(y, f.Row(y)) {
				return
			}
		}
	}
}

// Render streams the frame into sink. ctx is checked between rows.
// On error the sink is left unfinished; it is up to the caller to discard it.
func (f *Frame) Render(ctx context.Context, sink mandel.RowSink) error {
	return streamRows(ctx, f.cfg.Width, f.cfg.Height, f.Rows(), sink, f.onRow)
}

func streamRows(ctx context.Context, w, h int, rows iter.Seq2[int, []mandel.Color], sink mandel.RowSink, onRow func(int)) error {
	if err := sink.Begin(w, h); err != nil {
		return fmt.Errorf("sink.Begin: %w", err)
	}

	buf := make([]byte, 3*w)
	for y, row := range rows {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("render stopped at row %d: %w", y, err)
		}
		if err := sink.WriteRow(PackRow(buf, row)); err != nil {
			return fmt.Errorf("sink.WriteRow %d: %w", y, err)
		}
		if onRow != nil {
			onRow(y)
		}
	}

	if err := sink.End(); err != nil {
		return fmt.Errorf("sink.End: %w", err)
	}
	return nil
}

// PackRow writes row as packed RGB triples into dst, growing it if needed.
func PackRow(dst []byte, row []mandel.Color) []byte {
	if cap(dst) < 3*len(row) {
		dst = make([]byte, 3*len(row))
	}
	dst = dst[:3*len(row)]
	for x, c := range row {
		dst[x*3+0] = c.R
		dst[x*3+1] = c.G
		dst[x*3+2] = c.B
	}
	return dst
}
