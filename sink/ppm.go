package sink

import (
	"bufio"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	mandel "github.com/marben/mandel"
)

// PPMWriter streams a binary (P6) portable pixmap.
type PPMWriter struct {
	bw *bufio.Writer
	frameCounter
}

var _ mandel.RowSink = (*PPMWriter)(nil)

func PPM(w io.Writer) *PPMWriter {
	return &PPMWriter{bw: bufio.NewWriter(w)}
}

func (p *PPMWriter) Begin(width, height int) error {
	if err := p.begin(width, height); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(p.bw, "P6\n%d %d\n255\n", width, height); err != nil {
		return fmt.Errorf("write ppm header: %w", err)
	}
	return nil
}

func (p *PPMWriter) WriteRow(row []byte) error {
	if err := p.row(row); err != nil {
		return err
	}
	if _, err := p.bw.Write(row); err != nil {
		return fmt.Errorf("write ppm row: %w", err)
	}
	return nil
}

func (p *PPMWriter) End() error {
	if err := p.end(); err != nil {
		return err
	}
	return p.bw.Flush()
}

// ZstdPPMWriter is a PPM stream compressed with zstd.
type ZstdPPMWriter struct {
	*PPMWriter
	enc *zstd.Encoder
}

func ZstdPPM(w io.Writer) (*ZstdPPMWriter, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("zstd.NewWriter: %w", err)
	}
	return &ZstdPPMWriter{PPMWriter: PPM(enc), enc: enc}, nil
}

func (z *ZstdPPMWriter) End() error {
	if err := z.PPMWriter.End(); err != nil {
		return err
	}
	if err := z.enc.Close(); err != nil {
		return fmt.Errorf("zstd close: %w", err)
	}
	return nil
}

// Abort releases the encoder without finishing the stream.
func (z *ZstdPPMWriter) Abort() {
	z.enc.Reset(io.Discard)
	z.enc.Close()
}
