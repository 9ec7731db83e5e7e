// mandel renders a Mandelbrot-set image and streams it row by row to a file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/pkg/profile"

	"github.com/marben/mandel/config"
	"github.com/marben/mandel/render"
	"github.com/marben/mandel/sink"
)

type cliArgs struct {
	config.Options

	Config  string `arg:"--config" help:"read render options from a JSON file instead of the flags above"`
	Watch   bool   `arg:"--watch" help:"re-render whenever the --config file changes"`
	Profile string `arg:"--profile" help:"write a cpu, mem or trace profile to the working directory"`
	Quiet   bool   `arg:"-q,--quiet" help:"do not log progress"`
}

func (cliArgs) Description() string {
	return "Renders the Mandelbrot set into a PNG, PPM or zstd-compressed PPM image."
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

// run is the whole program; ctx is the only interrupt path.
func run(ctx context.Context, argv []string, stdout io.Writer) error {
	args := cliArgs{Options: config.Defaults()}
	p, err := arg.NewParser(arg.Config{Program: "mandel"}, &args)
	if err != nil {
		return fmt.Errorf("arg.NewParser: %w", err)
	}
	if err := p.Parse(argv); err != nil {
		if errors.Is(err, arg.ErrHelp) {
			p.WriteHelp(stdout)
			return nil
		}
		p.WriteUsage(os.Stderr)
		return err
	}

	if args.Watch && args.Config == "" {
		return errors.New("--watch requires --config")
	}

	// pkg/profile would otherwise catch SIGINT itself and exit 0
	profileOpts := []func(*profile.Profile){profile.ProfilePath("."), profile.NoShutdownHook}
	switch args.Profile {
	case "":
	case "cpu":
		defer profile.Start(append(profileOpts, profile.CPUProfile)...).Stop()
	case "mem":
		defer profile.Start(append(profileOpts, profile.MemProfile)...).Stop()
	case "trace":
		defer profile.Start(append(profileOpts, profile.TraceProfile)...).Stop()
	default:
		return fmt.Errorf("invalid profile %q: expected cpu, mem or trace", args.Profile)
	}

	opts := args.Options
	if args.Config != "" {
		log.Printf("Loading render options from %q...", args.Config)
		if opts, err = config.Load(args.Config); err != nil {
			return err
		}
	}

	if err := renderImage(ctx, opts, args.Quiet); err != nil {
		if !args.Watch || ctx.Err() != nil {
			return err
		}
		log.Printf("render failed: %v", err)
	}

	if args.Watch {
		return watchConfig(ctx, args.Config, func(o config.Options) error {
			return renderImage(ctx, o, args.Quiet)
		})
	}
	return nil
}

// renderImage resolves opts and renders one image to the configured output.
// Nothing is left at the output path if the render fails.
func renderImage(ctx context.Context, opts config.Options, quiet bool) error {
	settings, err := config.Resolve(opts)
	if err != nil {
		return err
	}
	cfg := settings.Config

	renderOpts := []render.Option{render.WithWorkers(settings.Workers)}
	if !quiet {
		renderOpts = append(renderOpts, render.WithRowHook(progressLogger(cfg.Height)))
	}
	r, err := render.New(cfg, settings.Antialias, renderOpts...)
	if err != nil {
		return err
	}

	out, err := sink.Create(settings.Output)
	if err != nil {
		return err
	}

	log.Printf("Rendering %dx%d, %s mode, %d iterations, escape bound %g into %q...",
		cfg.Width, cfg.Height, cfg.Mode, cfg.MaxIterations, cfg.EscapeBound, settings.Output)
	start := time.Now()
	if err := r.Render(ctx, out); err != nil {
		out.Abort()
		return fmt.Errorf("render %q: %w", settings.Output, err)
	}
	log.Printf("Image saved to %q in %s", settings.Output, time.Since(start))
	return nil
}

// progressLogger logs roughly every tenth of the frame.
func progressLogger(height int) func(y int) {
	step := max(height/10, 1)
	return func(y int) {
		if done := y + 1; done%step == 0 || done == height {
			log.Printf("finished: %.0f%%", 100*float64(done)/float64(height))
		}
	}
}
