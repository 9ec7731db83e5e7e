package sink

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	mandel "github.com/marben/mandel"
)

var _ mandel.RowSink = (*ZstdPPMWriter)(nil)

const outputPerm os.FileMode = 0o644

// Formats lists the recognised output file extensions.
var Formats = []string{".png", ".ppm", ".ppm.zst"}

// File encodes rows into a temporary file next to the destination and
// renames it into place on a successful End. Until then nothing exists at Path.
type File struct {
	Path string

	enc  mandel.RowSink
	bw   *bufio.Writer
	tmp  *os.File
	done bool
}

var _ mandel.RowSink = (*File)(nil)

// CheckPath reports whether path has a supported extension.
func CheckPath(path string) error {
	name := strings.ToLower(path)
	for _, ext := range Formats {
		if strings.HasSuffix(name, ext) {
			return nil
		}
	}
	return &mandel.ConfigError{Option: "output", Value: path, Reason: "unknown format, expected one of " + strings.Join(Formats, ", ")}
}

func encoderFor(path string, w io.Writer) (mandel.RowSink, error) {
	name := strings.ToLower(path)
	switch {
	case strings.HasSuffix(name, ".png"):
		return PNG(w), nil
	case strings.HasSuffix(name, ".ppm"):
		return PPM(w), nil
	case strings.HasSuffix(name, ".ppm.zst"):
		z, err := ZstdPPM(w)
		if err != nil {
			return nil, err
		}
		return z, nil
	}
	return nil, CheckPath(path)
}

// Create prepares a sink writing to path. The format follows the extension.
func Create(path string) (*File, error) {
	if err := CheckPath(path); err != nil {
		return nil, err
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return nil, fmt.Errorf("create output for %q: is a directory", path)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create output for %q: %w", path, err)
	}
	bw := bufio.NewWriterSize(tmp, 1<<16)
	enc, err := encoderFor(path, bw)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, err
	}
	return &File{Path: path, enc: enc, bw: bw, tmp: tmp}, nil
}

func (f *File) Begin(width, height int) error {
	return f.enc.Begin(width, height)
}

func (f *File) WriteRow(row []byte) error {
	return f.enc.WriteRow(row)
}

// End finishes the encoding and moves the file into place.
// On failure the temporary file is removed.
func (f *File) End() error {
	if f.done {
		return errors.New("sink: file already closed")
	}
	err := f.commit()
	if err != nil {
		f.Abort()
		return fmt.Errorf("write %q: %w", f.Path, err)
	}
	return nil
}

func (f *File) commit() error {
	if err := f.enc.End(); err != nil {
		return err
	}
	if err := f.bw.Flush(); err != nil {
		return err
	}
	// CreateTemp opens with 0600
	if err := f.tmp.Chmod(outputPerm); err != nil {
		return err
	}
	if err := f.tmp.Sync(); err != nil {
		return err
	}
	if err := f.tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(f.tmp.Name(), f.Path); err != nil {
		return err
	}
	f.done = true
	return nil
}

// Abort discards the partial output. It is a no-op after a successful End.
func (f *File) Abort() {
	if f.done {
		return
	}
	f.done = true
	if a, ok := f.enc.(interface{ Abort() }); ok {
		a.Abort()
	}
	f.tmp.Close()
	os.Remove(f.tmp.Name())
}
