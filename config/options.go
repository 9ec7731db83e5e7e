package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	mandel "github.com/marben/mandel"
	"github.com/marben/mandel/sink"
)

// Options are the render settings as a user writes them, on the command line
// or in a JSON file. Zero values of the optional fields select defaults.
type Options struct {
	Output      string  `arg:"-o,--output" json:"output" help:"output file; format by extension: .png, .ppm or .ppm.zst"`
	Resolution  string  `arg:"-r,--resolution" json:"resolution" help:"image size as WIDTHxHEIGHT"`
	Size        float64 `arg:"-s,--size" json:"size" help:"multiplier applied to the resolution"`
	Location    string  `arg:"-l,--location" json:"location,omitempty" help:"raw viewport offsets as XxY; pixel (0,0) maps to -X-Yi"`
	Center      string  `arg:"-c,--center" json:"center,omitempty" help:"center the view on the point RExIM [default: -0.5x0]"`
	Region      string  `arg:"--region" json:"region,omitempty" help:"frame a named region: full, seahorse, elephant, spiral, triple-spiral, dragon, mini-spiral"`
	Zoom        float64 `arg:"-z,--zoom" json:"zoom,omitempty" help:"height of the viewed part of the complex plane [default: 2.5]"`
	Iterations  int     `arg:"-n,--iterations" json:"iterations" help:"iteration budget per pixel"`
	Mode        string  `arg:"-m,--mode" json:"mode" help:"coloring: smooth, banded or hsv"`
	EscapeBound float64 `arg:"--escape-bound" json:"escape_bound,omitempty" help:"bound on |z|^2 before a point escapes; 0 picks the mode's default"`
	Workers     int     `arg:"-w,--workers" json:"workers" help:"goroutines evaluating rows"`
	Antialias   int     `arg:"-a,--antialias" json:"antialias" help:"render N times larger and downsample"`
}

func Defaults() Options {
	return Options{
		Output:     "output.png",
		Resolution: "1920x1080",
		Size:       1,
		Iterations: 256,
		Mode:       mandel.Smooth.String(),
		Workers:    1,
		Antialias:  1,
	}
}

// Settings is everything a render run needs.
type Settings struct {
	Config    mandel.RenderConfig
	Output    string
	Workers   int
	Antialias int
}

// Resolve validates o and builds the render settings from it.
func Resolve(o Options) (Settings, error) {
	w, h, err := ParseResolution(o.Resolution)
	if err != nil {
		return Settings{}, err
	}
	if !(o.Size > 0) || math.IsInf(o.Size, 0) {
		return Settings{}, &mandel.ConfigError{Option: "size", Value: fmt.Sprint(o.Size), Reason: "must be a positive number"}
	}
	w = int(math.Round(float64(w) * o.Size))
	h = int(math.Round(float64(h) * o.Size))
	if w < 1 || h < 1 {
		return Settings{}, &mandel.ConfigError{Option: "size", Value: fmt.Sprint(o.Size), Reason: fmt.Sprintf("scales resolution to %dx%d", w, h)}
	}

	if o.Iterations < 1 {
		return Settings{}, &mandel.ConfigError{Option: "iterations", Value: fmt.Sprint(o.Iterations), Reason: "must be at least 1"}
	}
	mode, err := mandel.ParseColorMode(o.Mode)
	if err != nil {
		return Settings{}, err
	}
	if o.Workers < 1 {
		return Settings{}, &mandel.ConfigError{Option: "workers", Value: fmt.Sprint(o.Workers), Reason: "must be at least 1"}
	}
	if o.Antialias < 1 {
		return Settings{}, &mandel.ConfigError{Option: "antialias", Value: fmt.Sprint(o.Antialias), Reason: "must be at least 1"}
	}
	if o.Output == "" {
		return Settings{}, &mandel.ConfigError{Option: "output", Value: o.Output, Reason: "must not be empty"}
	}
	if err := sink.CheckPath(o.Output); err != nil {
		return Settings{}, err
	}
	if o.EscapeBound != 0 && !(o.EscapeBound > 1) {
		return Settings{}, &mandel.ConfigError{Option: "escape-bound", Value: fmt.Sprint(o.EscapeBound), Reason: "must be greater than 1"}
	}
	if o.Zoom < 0 || math.IsNaN(o.Zoom) {
		return Settings{}, &mandel.ConfigError{Option: "zoom", Value: fmt.Sprint(o.Zoom), Reason: "must be positive"}
	}

	b := NewBuilder().
		Resolution(w, h).
		Iterations(o.Iterations).
		Mode(mode).
		EscapeBound(o.EscapeBound)
	if o.Zoom != 0 {
		b = b.ViewportHeight(o.Zoom)
	}

	b, err = place(b, o)
	if err != nil {
		return Settings{}, err
	}

	cfg, err := b.Build()
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		Config:    cfg,
		Output:    o.Output,
		Workers:   o.Workers,
		Antialias: o.Antialias,
	}, nil
}

func place(b Builder, o Options) (Builder, error) {
	var set []string
	for name, v := range map[string]string{"location": o.Location, "center": o.Center, "region": o.Region} {
		if v != "" {
			set = append(set, name)
		}
	}
	if len(set) > 1 {
		sort.Strings(set)
		return b, &mandel.ConfigError{Option: set[0], Value: strings.Join(set, ", "), Reason: "options are mutually exclusive"}
	}

	switch {
	case o.Location != "":
		x, y, err := ParsePair("location", o.Location)
		if err != nil {
			return b, err
		}
		return b.Offset(x, y), nil
	case o.Center != "":
		re, im, err := ParsePair("center", o.Center)
		if err != nil {
			return b, err
		}
		return b.Center(re, im), nil
	case o.Region != "":
		r, ok := mandel.Regions[strings.ToLower(o.Region)]
		if !ok {
			return b, &mandel.ConfigError{Option: "region", Value: o.Region, Reason: "expected one of " + strings.Join(RegionNames(), ", ")}
		}
		if o.Zoom != 0 {
			return b, &mandel.ConfigError{Option: "zoom", Value: fmt.Sprint(o.Zoom), Reason: "cannot be combined with region"}
		}
		return b.Region(r), nil
	}
	return b, nil
}

// RegionNames lists the region presets in sorted order.
func RegionNames() []string {
	names := make([]string, 0, len(mandel.Regions))
	for n := range mandel.Regions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func splitPair(s string) (string, string, bool) {
	if a, b, ok := strings.Cut(s, "×"); ok {
		return a, b, true
	}
	i := strings.IndexAny(s, "xX")
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

// ParseResolution parses "WIDTHxHEIGHT".
func ParseResolution(s string) (width, height int, err error) {
	a, b, ok := splitPair(strings.TrimSpace(s))
	if !ok {
		return 0, 0, &mandel.ConfigError{Option: "resolution", Value: s, Reason: "expected WIDTHxHEIGHT"}
	}
	width, err1 := strconv.Atoi(strings.TrimSpace(a))
	height, err2 := strconv.Atoi(strings.TrimSpace(b))
	if err1 != nil || err2 != nil {
		return 0, 0, &mandel.ConfigError{Option: "resolution", Value: s, Reason: "width and height must be integers"}
	}
	if width < 1 || height < 1 {
		return 0, 0, &mandel.ConfigError{Option: "resolution", Value: s, Reason: "width and height must be positive"}
	}
	return width, height, nil
}

// ParsePair parses two real numbers written as "AxB".
func ParsePair(option, s string) (a, b float64, err error) {
	sa, sb, ok := splitPair(strings.TrimSpace(s))
	if !ok {
		return 0, 0, &mandel.ConfigError{Option: option, Value: s, Reason: "expected two numbers separated by x"}
	}
	a, err1 := strconv.ParseFloat(strings.TrimSpace(sa), 64)
	b, err2 := strconv.ParseFloat(strings.TrimSpace(sb), 64)
	if err1 != nil || err2 != nil || math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return 0, 0, &mandel.ConfigError{Option: option, Value: s, Reason: "not a pair of finite numbers"}
	}
	return a, b, nil
}

// Load reads options from a JSON file. Fields missing from the file keep
// their defaults; unknown fields are rejected.
func Load(filename string) (Options, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Options{}, fmt.Errorf("failed to read config file: %w", err)
	}

	o := Defaults()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&o); err != nil {
		return Options{}, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return o, nil
}
