package render

import (
	"context"
	"sync"

	mandel "github.com/marben/mandel"
)

// rowScheduler hands row indices to workers and keeps the finished rows
// until they can be emitted in order.
type rowScheduler struct {
	frame *Frame

	ctx       context.Context
	ctxCancel context.CancelFunc

	// one slot per row, buffered so a worker never waits on the consumer
	finished []chan []mandel.Color
	// tokens bounds how many rows may be in flight ahead of the consumer
	tokens chan struct{}
	jobs   chan int
}

func newRowScheduler(f *Frame) *rowScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	finished := make([]chan []mandel.Color, f.cfg.Height)
	for y := range finished {
		finished[y] = make(chan []mandel.Color, 1)
	}
	return &rowScheduler{
		frame:     f,
		ctx:       ctx,
		ctxCancel: cancel,
		finished:  finished,
		tokens:    make(chan struct{}, 2*f.workers),
		jobs:      make(chan int),
	}
}

// feed hands out rows top to bottom, never more than cap(tokens) ahead.
func (rs *rowScheduler) feed() {
	defer close(rs.jobs)
	for y := range rs.frame.cfg.Height {
		select {
		case rs.tokens <- struct{}{}:
		case <-rs.ctx.Done():
			return
		}
		select {
		case rs.jobs <- y:
		case <-rs.ctx.Done():
			return
		}
	}
}

// work renders rows until the feeder runs dry.
// can be called from multiple goroutines in parallel
func (rs *rowScheduler) work() {
	for y := range rs.jobs {
		rs.finished[y] <- rs.frame.Row(y)
	}
}

func (f *Frame) parallelRows(yield func(int, []mandel.Color) bool) {
	rs := newRowScheduler(f)
	var wg sync.WaitGroup
	defer func() {
		rs.ctxCancel()
		wg.Wait()
	}()

	go rs.feed()
	for range f.workers {
		wg.Go(rs.work)
	}

	for y := range f.cfg.Height {
		row := <-rs.finished[y]
		<-rs.tokens
		if !yield(y, row) {
			return
		}
	}
}
