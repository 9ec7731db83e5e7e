package sink

import (
	"bytes"
	"errors"
	"image/png"
	"math/rand/v2"
	"testing"

	mandel "github.com/marben/mandel"
)

// noiseRows returns incompressible rows so the PNG spans several IDAT chunks.
func noiseRows(width, height int) [][]byte {
	rng := rand.New(rand.NewPCG(1, 2))
	rows := make([][]byte, height)
	for y := range rows {
		rows[y] = make([]byte, 3*width)
		for i := range rows[y] {
			rows[y][i] = byte(rng.IntN(256))
		}
	}
	return rows
}

func writeFrame(t *testing.T, s mandel.RowSink, rows [][]byte) {
	t.Helper()
	if err := s.Begin(len(rows[0])/3, len(rows)); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	for y, row := range rows {
		if err := s.WriteRow(row); err != nil {
			t.Fatalf("WriteRow %d: %v", y, err)
		}
	}
	if err := s.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
}

func TestPNGDecodes(t *testing.T) {
	for _, size := range [][2]int{{1, 1}, {3, 2}, {200, 120}} {
		rows := noiseRows(size[0], size[1])
		var buf bytes.Buffer
		writeFrame(t, PNG(&buf), rows)

		img, err := png.Decode(&buf)
		if err != nil {
			t.Fatalf("%v: png.Decode: %v", size, err)
		}
		if b := img.Bounds(); b.Dx() != size[0] || b.Dy() != size[1] {
			t.Fatalf("%v: bounds %v", size, b)
		}
		for y, row := range rows {
			for x := range size[0] {
				r, g, b, a := img.At(x, y).RGBA()
				got := [4]uint32{r >> 8, g >> 8, b >> 8, a >> 8}
				want := [4]uint32{uint32(row[3*x]), uint32(row[3*x+1]), uint32(row[3*x+2]), 0xff}
				if got != want {
					t.Fatalf("%v: pixel (%d, %d) = %v, want %v", size, x, y, got, want)
				}
			}
		}
	}
}

func TestPNGMatchesImageSink(t *testing.T) {
	rows := noiseRows(17, 9)
	var buf bytes.Buffer
	writeFrame(t, PNG(&buf), rows)
	var mem Image
	writeFrame(t, &mem, rows)

	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	want := mem.RGBA()
	for y := range 9 {
		for x := range 17 {
			r1, g1, b1, _ := decoded.At(x, y).RGBA()
			r2, g2, b2, _ := want.At(x, y).RGBA()
			if r1 != r2 || g1 != g2 || b1 != b2 {
				t.Fatalf("pixel (%d, %d) differs", x, y)
			}
		}
	}
}

func TestRowSinkMisuse(t *testing.T) {
	sinks := map[string]func() mandel.RowSink{
		"png":   func() mandel.RowSink { return PNG(new(bytes.Buffer)) },
		"ppm":   func() mandel.RowSink { return PPM(new(bytes.Buffer)) },
		"image": func() mandel.RowSink { return new(Image) },
	}
	for name, newSink := range sinks {
		if err := newSink().WriteRow(make([]byte, 3)); !errors.Is(err, ErrNotStarted) {
			t.Errorf("%s: WriteRow before Begin = %v", name, err)
		}
		if err := newSink().Begin(0, 3); err == nil {
			t.Errorf("%s: Begin(0, 3) accepted", name)
		}

		s := newSink()
		if err := s.Begin(2, 1); err != nil {
			t.Fatalf("%s: Begin: %v", name, err)
		}
		if err := s.WriteRow(make([]byte, 5)); !errors.Is(err, ErrRowLength) {
			t.Errorf("%s: short row = %v", name, err)
		}
		if err := s.End(); !errors.Is(err, ErrShortFrame) {
			t.Errorf("%s: End without rows = %v", name, err)
		}
		if err := s.WriteRow(make([]byte, 6)); err != nil {
			t.Fatalf("%s: WriteRow: %v", name, err)
		}
		if err := s.WriteRow(make([]byte, 6)); !errors.Is(err, ErrTooManyRows) {
			t.Errorf("%s: extra row = %v", name, err)
		}
	}
}
