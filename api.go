package mandel

import (
	"context"
)

// RowSink receives a rendered frame one row at a time.
// Rows arrive top to bottom, each holding width packed RGB triples.
// The row slice is reused by the caller and must not be retained after WriteRow returns.
// After a failed Begin or WriteRow the render is abandoned and End is not called.
type RowSink interface {
	Begin(width, height int) error
	WriteRow(row []byte) error
	End() error
}

// Renderer produces a whole frame into a sink.
type Renderer interface {
	Render(ctx context.Context, sink RowSink) error
}
