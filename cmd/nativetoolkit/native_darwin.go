package main

import (
	"log/slog"

	"github.com/arko-chat/nativetoolkit/internal/bridge"
	"github.com/arko-chat/nativetoolkit/internal/dialogs"
	"github.com/arko-chat/nativetoolkit/internal/models"
	"github.com/arko-chat/nativetoolkit/internal/platform/osascript"
)

func nativePlatform() (models.Platform, error) {
	return models.PlatformMacOS, nil
}

func registerNative(mgr *dialogs.Manager, logger *slog.Logger) (func(), error) {
	b := osascript.New(mgr, osascript.WithLogger(logger))
	bridge.Register(models.PlatformMacOS, b)
	return func() {
		bridge.Unregister(models.PlatformMacOS)
		b.Close()
	}, nil
}
