// Package dispatcher marshals work from arbitrary goroutines onto the single
// goroutine that owns application and UI state.
//
// Native callbacks (Swift completion handlers, JNI threads, Win32 message
// loops) call Enqueue. The host runtime calls Drain once per update tick on
// its main goroutine, which is the only place queued work runs.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/petermattis/goid"
)

var ErrNotMainThread = errors.New("dispatcher: drain called off the main thread")

type Dispatcher struct {
	mu     sync.Mutex
	queue  []func()
	logger *slog.Logger

	// goroutine id of the bound main thread, 0 while unbound
	mainID atomic.Int64
}

var defaultDispatcher = sync.OnceValue(func() *Dispatcher {
	return New(slog.Default())
})

// Default returns the process-wide dispatcher, creating it on first use.
func Default() *Dispatcher {
	return defaultDispatcher()
}

func New(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{logger: logger}
}

// Enqueue appends action to the tail of the queue. It never runs action
// inline and is safe to call from any goroutine.
func (d *Dispatcher) Enqueue(action func()) {
	d.mu.Lock()
	d.queue = append(d.queue, action)
	d.mu.Unlock()
}

// BindMainThread designates the calling goroutine as the main thread.
func (d *Dispatcher) BindMainThread() {
	id := goid.Get()
	if prev := d.mainID.Swap(id); prev != 0 && prev != id {
		d.logger.Warn("dispatcher main thread rebound",
			"previous", prev,
			"current", id,
		)
	}
}

func (d *Dispatcher) IsMainThread() bool {
	id := d.mainID.Load()
	return id != 0 && id == goid.Get()
}

// Pending reports the number of actions waiting for the next drain.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// Drain runs every action queued before the call, in FIFO order. Actions
// enqueued while draining run on the next tick. The first Drain binds the
// main thread if BindMainThread was never called.
func (d *Dispatcher) Drain() (int, error) {
	id := goid.Get()
	if d.mainID.CompareAndSwap(0, id) {
		d.logger.Debug("dispatcher main thread bound", "goroutine", id)
	} else if d.mainID.Load() != id {
		d.logger.Error("dispatcher drain rejected",
			"goroutine", id,
			"main", d.mainID.Load(),
		)
		return 0, ErrNotMainThread
	}

	d.mu.Lock()
	batch := d.queue
	d.queue = nil
	d.mu.Unlock()

	for i, action := range batch {
		batch[i] = nil
		if action == nil {
			continue
		}
		d.run(action)
	}
	return len(batch), nil
}

func (d *Dispatcher) run(action func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("dispatcher action panicked",
				"err", fmt.Errorf("panic: %v", r),
			)
		}
	}()
	action()
}

// Run pumps the dispatcher every interval on a locked OS thread until ctx is
// done. It is meant for hosts that have no update loop of their own.
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	d.BindMainThread()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// flush whatever arrived before shutdown
			if _, err := d.Drain(); err != nil {
				return err
			}
			return ctx.Err()
		case <-ticker.C:
			if _, err := d.Drain(); err != nil {
				return err
			}
		}
	}
}
