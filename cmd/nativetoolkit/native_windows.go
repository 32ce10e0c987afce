package main

import (
	"log/slog"

	"github.com/arko-chat/nativetoolkit/internal/bridge"
	"github.com/arko-chat/nativetoolkit/internal/dialogs"
	"github.com/arko-chat/nativetoolkit/internal/models"
	"github.com/arko-chat/nativetoolkit/internal/platform/win32"
)

func nativePlatform() (models.Platform, error) {
	return models.PlatformWindows, nil
}

func registerNative(mgr *dialogs.Manager, logger *slog.Logger) (func(), error) {
	bridge.Register(models.PlatformWindows, win32.New(mgr, 0, logger))
	return func() { bridge.Unregister(models.PlatformWindows) }, nil
}
