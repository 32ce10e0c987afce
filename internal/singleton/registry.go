// Package singleton keeps exactly one instance per key for the lifetime of
// the process.
package singleton

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
)

type Registry struct {
	// creation only; lookups go through the map
	mu        sync.Mutex
	instances *xsync.Map[string, any]
	released  *xsync.Map[string, int]
	logger    *slog.Logger
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	return New(slog.Default())
})

func Default() *Registry {
	return defaultRegistry()
}

func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		instances: xsync.NewMap[string, any](),
		released:  xsync.NewMap[string, int](),
		logger:    logger,
	}
}

// Get returns the instance stored under key, calling create exactly once if
// there is none. A key that was released is re-created and the event logged.
func Get[T any](r *Registry, key string, create func() T) T {
	if v, ok := r.instances.Load(key); ok {
		return mustCast[T](key, v)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.instances.Load(key); ok {
		return mustCast[T](key, v)
	}

	if gen, ok := r.released.Load(key); ok {
		r.logger.Warn("singleton re-created after release",
			"key", key,
			"generation", gen+1,
		)
	} else {
		r.logger.Debug("singleton created", "key", key)
	}

	v := create()
	r.instances.Store(key, v)
	return v
}

// Release tears down the instance under key. It reports whether one existed.
func (r *Registry) Release(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.instances.Load(key); !ok {
		return false
	}
	r.instances.Delete(key)

	gen, _ := r.released.Load(key)
	r.released.Store(key, gen+1)
	r.logger.Info("singleton released", "key", key, "generation", gen+1)
	return true
}

func (r *Registry) Has(key string) bool {
	_, ok := r.instances.Load(key)
	return ok
}

func mustCast[T any](key string, v any) T {
	t, ok := v.(T)
	if !ok {
		var zero T
		panic(fmt.Sprintf("singleton: key %q holds %T, not %T", key, v, zero))
	}
	return t
}
