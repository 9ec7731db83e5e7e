package main

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mandel "github.com/marben/mandel"
)

func TestRunWritesPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "small.png")
	err := run(context.Background(), []string{"-o", out, "-r", "16x8", "-n", "40", "-w", "3", "--mode", "banded", "-q"}, new(bytes.Buffer))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 8 {
		t.Errorf("bounds %v, want 16x8", b)
	}
}

func TestRunConfigFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "from-file.ppm")
	cfg := filepath.Join(dir, "render.json")
	data := `{"output": "` + filepath.ToSlash(out) + `", "resolution": "6x4", "region": "elephant", "iterations": 30, "antialias": 2}`
	if err := os.WriteFile(cfg, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := run(context.Background(), []string{"--config", cfg, "-q"}, new(bytes.Buffer)); err != nil {
		t.Fatalf("run: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.HasPrefix(got, []byte("P6\n6 4\n255\n")) || len(got) != len("P6\n6 4\n255\n")+6*4*3 {
		t.Errorf("unexpected ppm of %d bytes", len(got))
	}
}

func TestRunRejectsBadOptions(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "never.png")

	tests := [][]string{
		{"-o", out, "--mode", "checkerboard"},
		{"-o", out, "-r", "0x10"},
		{"-o", out, "--escape-bound", "1"},
		{"-o", out, "--iterations=-5"},
	}
	for _, argv := range tests {
		err := run(context.Background(), argv, new(bytes.Buffer))
		if !errors.Is(err, mandel.ErrInvalidConfig) {
			t.Errorf("run(%v) = %v, want ErrInvalidConfig", argv, err)
		}
	}

	if err := run(context.Background(), []string{"-o", out, "-n", "many"}, new(bytes.Buffer)); err == nil {
		t.Error("non-numeric iterations accepted")
	}
	if err := run(context.Background(), []string{"--watch"}, new(bytes.Buffer)); err == nil {
		t.Error("--watch without --config accepted")
	}
	if err := run(context.Background(), []string{"-o", out, "--profile", "gpu"}, new(bytes.Buffer)); err == nil {
		t.Error("unknown profile accepted")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("rejected runs left files behind: %v", entries)
	}
}

func TestRunHelp(t *testing.T) {
	var stdout bytes.Buffer
	if err := run(context.Background(), []string{"--help"}, &stdout); err != nil {
		t.Fatalf("run --help: %v", err)
	}
	for _, flag := range []string{"--resolution", "--location", "--iterations", "--mode", "--output"} {
		if !strings.Contains(stdout.String(), flag) {
			t.Errorf("help text lacks %s", flag)
		}
	}
}

func TestProgressLogger(t *testing.T) {
	// must not panic for frames shorter than ten rows
	hook := progressLogger(3)
	for y := range 3 {
		hook(y)
	}
}

func TestRunProfileInterrupted(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := run(ctx, []string{"-o", "out.png", "-r", "64x64", "--profile", "cpu", "-q"}, new(bytes.Buffer))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("run = %v, want context.Canceled", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "cpu.pprof" {
		t.Fatalf("directory holds %v, want only cpu.pprof", entries)
	}
	fi, err := entries[0].Info()
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() == 0 {
		t.Error("cpu profile is empty")
	}
}

func TestRunWatchInterrupted(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "watched.png")
	cfg := filepath.Join(dir, "render.json")
	data := `{"output": "` + filepath.ToSlash(out) + `", "resolution": "8x8"}`
	if err := os.WriteFile(cfg, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := run(ctx, []string{"--config", cfg, "--watch", "-q"}, new(bytes.Buffer))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("run = %v, want context.Canceled", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("interrupted render left %s: %v", out, err)
	}
}
