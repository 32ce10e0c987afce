package dialogs

import (
	"sync"

	"github.com/arko-chat/nativetoolkit/internal/models"
	"github.com/arko-chat/nativetoolkit/internal/singleton"
)

var (
	defaultsMu  sync.Mutex
	defaultOpts []Option
)

// Configure sets options applied to platform managers created after the
// call. Managers that already exist keep their settings.
func Configure(opts ...Option) {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	defaultOpts = append([]Option(nil), opts...)
}

func registryKey(p models.Platform) string {
	return "dialogs/" + string(p)
}

// For returns the process-wide manager for p, creating it on first use.
func For(p models.Platform) *Manager {
	return singleton.Get(singleton.Default(), registryKey(p), func() *Manager {
		defaultsMu.Lock()
		opts := append([]Option(nil), defaultOpts...)
		defaultsMu.Unlock()
		return NewManager(p, opts...)
	})
}

func IOS() *Manager     { return For(models.PlatformIOS) }
func Android() *Manager { return For(models.PlatformAndroid) }
func MacOS() *Manager   { return For(models.PlatformMacOS) }
func Windows() *Manager { return For(models.PlatformWindows) }
func Editor() *Manager  { return For(models.PlatformEditor) }

// Release tears down the manager for p. Subscribers of the old instance
// receive nothing further; the next For call creates a fresh manager.
func Release(p models.Platform) bool {
	return singleton.Default().Release(registryKey(p))
}
