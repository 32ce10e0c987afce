// Package event provides typed multicast events with token-based
// unsubscription.
package event

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/tidwall/btree"
)

// Token identifies a subscription. Keep it to unsubscribe later.
type Token uint64

type Handler[T any] func(T)

type Event[T any] struct {
	name   string
	logger *slog.Logger

	mu   sync.Mutex
	next uint64
	subs btree.Map[uint64, Handler[T]]
}

func New[T any](name string, logger *slog.Logger) *Event[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Event[T]{name: name, logger: logger}
}

// Subscribe adds fn and returns the token that removes it. Handlers fire in
// the order they were subscribed.
func (e *Event[T]) Subscribe(fn Handler[T]) Token {
	if fn == nil {
		return 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.next++
	e.subs.Set(e.next, fn)
	return Token(e.next)
}

// Unsubscribe removes the handler registered under t. It reports whether a
// handler was removed.
func (e *Event[T]) Unsubscribe(t Token) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.subs.Delete(uint64(t))
	if !ok {
		e.logger.Debug("event unsubscribe miss", "event", e.name, "token", uint64(t))
	}
	return ok
}

func (e *Event[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.subs.Len()
}

// Fire invokes every current handler synchronously with v and returns how
// many completed without panicking.
func (e *Event[T]) Fire(v T) int {
	e.mu.Lock()
	snapshot := make([]Handler[T], 0, e.subs.Len())
	e.subs.Scan(func(_ uint64, fn Handler[T]) bool {
		snapshot = append(snapshot, fn)
		return true
	})
	e.mu.Unlock()

	ok := 0
	for _, fn := range snapshot {
		if e.invoke(fn, v) {
			ok++
		}
	}
	return ok
}

func (e *Event[T]) invoke(fn Handler[T], v T) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("event handler panicked",
				"event", e.name,
				"err", fmt.Errorf("panic: %v", r),
			)
			ok = false
		}
	}()
	fn(v)
	return true
}
