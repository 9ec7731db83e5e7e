// Package render evaluates the Mandelbrot set pixel by pixel and streams the
// colored rows to a mandel.RowSink.
package render

import (
	"math"

	mandel "github.com/marben/mandel"
)

// MapPixelToComplex returns the point of the complex plane under pixel (px, py).
// Both axes are scaled by the viewport width over the image width.
func MapPixelToComplex(px, py int, cfg mandel.RenderConfig) (re, im float64) {
	vw := cfg.ViewportWidth()
	w := float64(cfg.Width)
	re = float64(px)*vw/w - cfg.OffsetX
	im = float64(py)*vw/w - cfg.OffsetY
	return re, im
}

// Evaluate iterates z = z² + c from z = 0 until |z|² exceeds escapeBound or
// maxIterations steps were taken. It returns the step count and the last z.
func Evaluate(cRe, cIm float64, maxIterations int, escapeBound float64) (count, zRe, zIm float64) {
	limit := float64(maxIterations)
	for zRe*zRe+zIm*zIm <= escapeBound && count < limit {
		zRe, zIm = zRe*zRe-zIm*zIm+cRe, 2.0*zRe*zIm+cIm
		count += 1.0
	}
	return count, zRe, zIm
}

// Smooth turns an iteration count into a continuous escape value.
// Points that used the whole budget get the sentinel 0.
func Smooth(count, zRe, zIm float64, maxIterations int) float64 {
	if count >= float64(maxIterations) {
		return 0.0
	}
	logZn := math.Log(zRe*zRe+zIm*zIm) / 2
	nu := math.Log(logZn/math.Ln2) / math.Ln2
	return count + 1 - nu
}

// Sample runs a single pixel through mapping, iteration and smoothing.
func Sample(px, py int, cfg mandel.RenderConfig) mandel.PixelSample {
	re, im := MapPixelToComplex(px, py, cfg)
	count, zRe, zIm := Evaluate(re, im, cfg.MaxIterations, cfg.EscapeBound)
	return mandel.PixelSample{
		FinalReal: zRe,
		FinalImag: zIm,
		Escape:    Smooth(count, zRe, zIm, cfg.MaxIterations),
	}
}
