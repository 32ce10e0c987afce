package bridge

import (
	"errors"
	"fmt"

	"github.com/arko-chat/nativetoolkit/internal/models"
	"github.com/puzpuzpuz/xsync/v4"
)

var ErrNotRegistered = errors.New("bridge: no NativeDialogs registered")

var registered = xsync.NewMap[models.Platform, NativeDialogs]()

// Register is called once per platform from native (Swift/Kotlin) or from
// the Go backend's init before the first dialog is shown.
func Register(p models.Platform, b NativeDialogs) {
	if b == nil {
		registered.Delete(p)
		return
	}
	registered.Store(p, b)
}

func Unregister(p models.Platform) {
	registered.Delete(p)
}

// Get returns the registered bridge. Panics if Register was never called.
func Get(p models.Platform) NativeDialogs {
	b, ok := registered.Load(p)
	if !ok {
		panic(fmt.Sprintf("bridge: no NativeDialogs registered for %s: call bridge.Register() first", p))
	}
	return b
}

// Safe returns the bridge and an error instead of panicking.
func Safe(p models.Platform) (NativeDialogs, error) {
	b, ok := registered.Load(p)
	if !ok {
		return nil, fmt.Errorf("%w for %s", ErrNotRegistered, p)
	}
	return b, nil
}
