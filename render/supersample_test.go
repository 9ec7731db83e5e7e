package render

import (
	"context"
	"errors"
	"testing"

	mandel "github.com/marben/mandel"
	"github.com/marben/mandel/sink"
)

func TestSupersampledDimensions(t *testing.T) {
	cfg := wideConfig(mandel.Smooth)
	rows := 0
	r, err := New(cfg, 3, WithWorkers(2), WithRowHook(func(int) { rows++ }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := r.(*Supersampled); !ok {
		t.Fatalf("New with antialias 3 returned %T", r)
	}

	var img sink.Image
	if err := r.Render(context.Background(), &img); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if b := img.RGBA().Bounds(); b.Dx() != cfg.Width || b.Dy() != cfg.Height {
		t.Errorf("bounds %v, want %dx%d", b, cfg.Width, cfg.Height)
	}
	if rows != cfg.Height {
		t.Errorf("row hook called %d times, want %d", rows, cfg.Height)
	}
}

func TestNewWithoutAntialias(t *testing.T) {
	r, err := New(wideConfig(mandel.Smooth), 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := r.(*Frame); !ok {
		t.Fatalf("New with antialias 1 returned %T", r)
	}
}

func TestSupersampledRejectsFactor(t *testing.T) {
	_, err := NewSupersampled(wideConfig(mandel.Smooth), 0)
	var cerr *mandel.ConfigError
	if !errors.As(err, &cerr) || cerr.Option != "antialias" {
		t.Fatalf("err = %v, want antialias ConfigError", err)
	}
}
