package sketch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/opd-ai/go-sketch/pkg/canvas"
)

// fakeBackend records every flushed frame.
type fakeBackend struct {
	mu         sync.Mutex
	initErr    error
	flushErrAt int // 1-based flush call that fails; 0 never
	width      int
	height     int
	title      string
	flushes    [][]canvas.Command
	presents   int
	closed     bool
	events     *[]string
}

func (b *fakeBackend) SetTitle(title string) { b.title = title }

func (b *fakeBackend) Initialize(width, height int) error {
	b.log("init")
	b.width, b.height = width, height
	return b.initErr
}

func (b *fakeBackend) Flush(cmds []canvas.Command) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log("flush")
	if b.flushErrAt > 0 && len(b.flushes)+1 == b.flushErrAt {
		return errors.New("device lost")
	}
	b.flushes = append(b.flushes, append([]canvas.Command(nil), cmds...))
	return nil
}

func (b *fakeBackend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presents++
}

func (b *fakeBackend) Close() error {
	b.closed = true
	return nil
}

func (b *fakeBackend) log(ev string) {
	if b.events != nil {
		*b.events = append(*b.events, ev)
	}
}

func (b *fakeBackend) frames() [][]canvas.Command {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flushes
}

// fakeClock advances only when told to or when slept on.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	c.mu.Unlock()
	return ctx.Err()
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}
