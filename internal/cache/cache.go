package cache

import (
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/sync/singleflight"
)

const DefaultTTL = 3 * time.Second

type entry[T any] struct {
	value     T
	fetchedAt time.Time
}

// Loader memoizes fetch per key. Concurrent misses for one key share a
// single fetch; stale entries are served while a refresh runs in the
// background.
type Loader[T any] struct {
	entries *xsync.Map[string, entry[T]]
	sfg     singleflight.Group
	ttl     time.Duration
	fetch   func(key string) (T, error)
}

func NewLoader[T any](ttl time.Duration, fetch func(key string) (T, error)) *Loader[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Loader[T]{
		entries: xsync.NewMap[string, entry[T]](),
		ttl:     ttl,
		fetch:   fetch,
	}
}

func (l *Loader[T]) Get(key string) (T, error) {
	e, ok := l.entries.Load(key)
	if ok {
		if time.Since(e.fetchedAt) > l.ttl {
			go func() {
				l.sfg.Do(key, func() (any, error) {
					result, err := l.fetch(key)
					if err == nil {
						l.entries.Store(key, entry[T]{value: result, fetchedAt: time.Now()})
					}
					return nil, nil
				})
			}()
		}
		return e.value, nil
	}

	v, err, _ := l.sfg.Do(key, func() (any, error) {
		if e, ok := l.entries.Load(key); ok {
			return e, nil
		}
		res, err := l.fetch(key)
		if err != nil {
			return nil, err
		}
		fresh := entry[T]{value: res, fetchedAt: time.Now()}
		l.entries.Store(key, fresh)
		return fresh, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(entry[T]).value, nil
}

// Forget drops key so the next Get fetches synchronously.
func (l *Loader[T]) Forget(key string) {
	l.entries.Delete(key)
}
