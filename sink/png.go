// Package sink provides mandel.RowSink implementations that encode rendered
// rows into image files.
package sink

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/zlib"
	mandel "github.com/marben/mandel"
)

const idatSize = 1 << 15

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

var (
	ErrNotStarted  = errors.New("sink: Begin not called")
	ErrRowLength   = errors.New("sink: row length does not match width")
	ErrTooManyRows = errors.New("sink: more rows than height")
	ErrShortFrame  = errors.New("sink: fewer rows than height")
)

// frameCounter tracks dimensions and row count shared by all encoders.
type frameCounter struct {
	width, height int
	rows          int
	started       bool
}

func (fc *frameCounter) begin(width, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("sink: invalid dimensions %dx%d", width, height)
	}
	fc.width, fc.height, fc.rows, fc.started = width, height, 0, true
	return nil
}

func (fc *frameCounter) row(row []byte) error {
	switch {
	case !fc.started:
		return ErrNotStarted
	case len(row) != 3*fc.width:
		return fmt.Errorf("%w: got %d bytes, want %d", ErrRowLength, len(row), 3*fc.width)
	case fc.rows >= fc.height:
		return ErrTooManyRows
	}
	fc.rows++
	return nil
}

func (fc *frameCounter) end() error {
	if !fc.started {
		return ErrNotStarted
	}
	if fc.rows != fc.height {
		return fmt.Errorf("%w: got %d, want %d", ErrShortFrame, fc.rows, fc.height)
	}
	return nil
}

// PNGWriter streams an 8-bit RGB PNG, compressing rows as they arrive.
type PNGWriter struct {
	w io.Writer
	frameCounter

	idat *chunkWriter
	zw   *zlib.Writer
	scan []byte
}

var _ mandel.RowSink = (*PNGWriter)(nil)

func PNG(w io.Writer) *PNGWriter {
	return &PNGWriter{w: w}
}

func (p *PNGWriter) Begin(width, height int) error {
	if err := p.begin(width, height); err != nil {
		return err
	}
	if _, err := p.w.Write(pngSignature); err != nil {
		return fmt.Errorf("write signature: %w", err)
	}

	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(width))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(height))
	ihdr[8] = 8  // bit depth
	ihdr[9] = 2  // truecolor
	ihdr[10] = 0 // deflate
	ihdr[11] = 0 // adaptive filtering
	ihdr[12] = 0 // no interlace
	if err := writeChunk(p.w, "IHDR", ihdr[:]); err != nil {
		return err
	}

	p.idat = &chunkWriter{w: p.w, typ: "IDAT", buf: make([]byte, 0, idatSize)}
	zw, err := zlib.NewWriterLevel(p.idat, zlib.DefaultCompression)
	if err != nil {
		return fmt.Errorf("zlib.NewWriterLevel: %w", err)
	}
	p.zw = zw
	p.scan = make([]byte, 1+3*width)
	return nil
}

func (p *PNGWriter) WriteRow(row []byte) error {
	if err := p.row(row); err != nil {
		return err
	}
	// filter type 0: raw scanline
	p.scan[0] = 0
	copy(p.scan[1:], row)
	if _, err := p.zw.Write(p.scan); err != nil {
		return fmt.Errorf("compress row: %w", err)
	}
	return nil
}

func (p *PNGWriter) End() error {
	if err := p.end(); err != nil {
		return err
	}
	if err := p.zw.Close(); err != nil {
		return fmt.Errorf("close zlib stream: %w", err)
	}
	if err := p.idat.flush(); err != nil {
		return err
	}
	return writeChunk(p.w, "IEND", nil)
}

// chunkWriter splits a byte stream into PNG chunks of at most cap(buf) bytes.
type chunkWriter struct {
	w   io.Writer
	typ string
	buf []byte
}

func (cw *chunkWriter) Write(p []byte) (int, error) {
	n := 0
	for len(p) > 0 {
		k := copy(cw.buf[len(cw.buf):cap(cw.buf)], p)
		cw.buf = cw.buf[:len(cw.buf)+k]
		p = p[k:]
		n += k
		if len(cw.buf) == cap(cw.buf) {
			if err := cw.flush(); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

func (cw *chunkWriter) flush() error {
	if len(cw.buf) == 0 {
		return nil
	}
	err := writeChunk(cw.w, cw.typ, cw.buf)
	cw.buf = cw.buf[:0]
	return err
}

func writeChunk(w io.Writer, typ string, data []byte) error {
	var header [8]byte
	binary.BigEndian.PutUint32(header[:4], uint32(len(data)))
	copy(header[4:], typ)

	crc := crc32.NewIEEE()
	crc.Write(header[4:])
	crc.Write(data)
	var footer [4]byte
	binary.BigEndian.PutUint32(footer[:], crc.Sum32())

	for _, b := range [][]byte{header[:], data, footer[:]} {
		if _, err := w.Write(b); err != nil {
			return fmt.Errorf("write %s chunk: %w", typ, err)
		}
	}
	return nil
}
