package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/marben/mandel/config"
)

// reloadDelay collapses the burst of events a single editor save produces.
const reloadDelay = 100 * time.Millisecond

type configWatcher struct {
	file    string
	target  string
	delay   time.Duration
	watcher *fsnotify.Watcher
}

// newConfigWatcher starts watching configFile. Events are delivered once it returns.
func newConfigWatcher(configFile string) (*configWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify.NewWatcher: %w", err)
	}

	// editors often replace the file, so watch its directory
	target := filepath.Clean(configFile)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %q: %w", configFile, err)
	}
	return &configWatcher{file: configFile, target: target, delay: reloadDelay, watcher: watcher}, nil
}

func (cw *configWatcher) Close() error {
	return cw.watcher.Close()
}

// run calls render with freshly loaded options after every change to the
// config file, until ctx is done. A broken file is logged and skipped.
func (cw *configWatcher) run(ctx context.Context, render func(config.Options) error) error {
	timer := time.NewTimer(cw.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != cw.target || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(cw.delay)
		case <-timer.C:
			log.Println("Config file changed. Reloading...")
			opts, err := config.Load(cw.file)
			if err != nil {
				log.Printf("Failed to reload config: %v", err)
				continue
			}
			if err := render(opts); err != nil {
				if ctx.Err() != nil {
					return err
				}
				log.Printf("render failed: %v", err)
			}
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Config watcher error: %v", err)
		}
	}
}

// watchConfig re-renders on every change to configFile until ctx is done.
// It returns ctx's error when interrupted.
func watchConfig(ctx context.Context, configFile string, render func(config.Options) error) error {
	cw, err := newConfigWatcher(configFile)
	if err != nil {
		return err
	}
	defer cw.Close()

	log.Printf("Watching %q for changes...", configFile)
	return cw.run(ctx, render)
}
