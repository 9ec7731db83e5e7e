package sink

import (
	"image"

	mandel "github.com/marben/mandel"
)

// Image keeps the whole frame in memory as an *image.RGBA.
type Image struct {
	img *image.RGBA
	frameCounter
}

var _ mandel.RowSink = (*Image)(nil)

func (s *Image) Begin(width, height int) error {
	if err := s.begin(width, height); err != nil {
		return err
	}
	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
	return nil
}

func (s *Image) WriteRow(row []byte) error {
	y := s.rows
	if err := s.row(row); err != nil {
		return err
	}
	pix := s.img.Pix[y*s.img.Stride:]
	for x := range s.width {
		pix[x*4+0] = row[x*3+0]
		pix[x*4+1] = row[x*3+1]
		pix[x*4+2] = row[x*3+2]
		pix[x*4+3] = 0xff
	}
	return nil
}

func (s *Image) End() error {
	return s.end()
}

// RGBA returns the collected frame, nil before Begin.
func (s *Image) RGBA() *image.RGBA {
	return s.img
}
