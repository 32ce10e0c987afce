//go:build !darwin && !windows

package main

import (
	"errors"
	"log/slog"
	"runtime"

	"github.com/arko-chat/nativetoolkit/internal/dialogs"
	"github.com/arko-chat/nativetoolkit/internal/models"
)

var errNoNativeBackend = errors.New("no native dialog backend for " + runtime.GOOS + ", try the simulate command")

func nativePlatform() (models.Platform, error) {
	return "", errNoNativeBackend
}

func registerNative(*dialogs.Manager, *slog.Logger) (func(), error) {
	return nil, errNoNativeBackend
}
