// Package mobile is the gomobile entry point. Swift and Kotlin register
// their NativeDialogs implementation, pump the dispatcher from their main
// run loop with Tick, and report answers through the On* functions.
package mobile

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/arko-chat/nativetoolkit/internal/bridge"
	"github.com/arko-chat/nativetoolkit/internal/dialogs"
	"github.com/arko-chat/nativetoolkit/internal/dispatcher"
	"github.com/arko-chat/nativetoolkit/internal/localization"
	"github.com/arko-chat/nativetoolkit/internal/logger"
	"github.com/arko-chat/nativetoolkit/internal/models"
)

var (
	mu      sync.Mutex
	slogger = logger.New(os.Stdout, slog.LevelInfo, true)
	native  = logger.NewNative(slogger)
)

func RegisterIOSBridge(b bridge.NativeDialogs) {
	bridge.Register(models.PlatformIOS, b)
}

func RegisterAndroidBridge(b bridge.NativeDialogs) {
	bridge.Register(models.PlatformAndroid, b)
}

// Configure sets the log level, the label locale and the callback timeout
// in milliseconds (0 disables it). Call it before the first dialog.
func Configure(logLevel, locale string, timeoutMillis int64) error {
	mu.Lock()
	defer mu.Unlock()

	level, err := logger.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	slogger = logger.New(os.Stdout, level, true)
	native = logger.NewNative(slogger)

	dialogs.Configure(
		dialogs.WithLogger(slogger),
		dialogs.WithLabels(localization.Default().Labels(locale)),
		dialogs.WithTimeout(time.Duration(timeoutMillis)*time.Millisecond),
	)
	return nil
}

// Tick runs queued result events. Call it on the main thread once per
// frame or run loop pass. It returns the number of events delivered.
func Tick() int {
	n, err := dispatcher.Default().Drain()
	if err != nil {
		nativeLogger().Error(err.Error())
	}
	return n
}

func manager(platform string) (*dialogs.Manager, error) {
	p, err := models.ParsePlatform(platform)
	if err != nil {
		return nil, fmt.Errorf("mobile: %w", err)
	}
	return dialogs.For(p), nil
}

// OnCallback reports the answer to a dialog. kind is the dialog kind
// ("basic", "confirm", "text_input", ...) and payload is JSON or the
// delimited form.
func OnCallback(platform, kind, requestID, payload string) error {
	m, err := manager(platform)
	if err != nil {
		return err
	}
	k, err := models.ParseDialogKind(kind)
	if err != nil {
		return fmt.Errorf("mobile: %w", err)
	}
	m.HandleCallback(k, requestID, payload)
	return nil
}

func OnDialogCallback(platform, requestID, payload string) error {
	return OnCallback(platform, string(models.KindBasic), requestID, payload)
}

func OnConfirmationCallback(platform, requestID, payload string) error {
	return OnCallback(platform, string(models.KindConfirm), requestID, payload)
}

func OnDestructiveCallback(platform, requestID, payload string) error {
	return OnCallback(platform, string(models.KindDestructive), requestID, payload)
}

func OnActionSheetCallback(platform, requestID, payload string) error {
	return OnCallback(platform, string(models.KindActionSheet), requestID, payload)
}

func OnTextInputCallback(platform, requestID, payload string) error {
	return OnCallback(platform, string(models.KindTextInput), requestID, payload)
}

func OnLoginCallback(platform, requestID, payload string) error {
	return OnCallback(platform, string(models.KindLogin), requestID, payload)
}

func OnSingleChoiceCallback(platform, requestID, payload string) error {
	return OnCallback(platform, string(models.KindSingleChoice), requestID, payload)
}

func OnMultiChoiceCallback(platform, requestID, payload string) error {
	return OnCallback(platform, string(models.KindMultiChoice), requestID, payload)
}

// OnDismissed reports a dialog closed without any button, such as a tap
// outside a cancelable Android dialog.
func OnDismissed(platform, requestID string) error {
	m, err := manager(platform)
	if err != nil {
		return err
	}
	m.HandleDismissed(requestID)
	return nil
}

func nativeLogger() *logger.NativeLogger {
	mu.Lock()
	defer mu.Unlock()
	return native
}

// Log writes a native message into the Go log. level is one of trace,
// debug, info, warning and error.
func Log(level, message string) {
	l := nativeLogger()
	switch level {
	case "trace":
		l.Trace(message)
	case "debug":
		l.Debug(message)
	case "warn", "warning":
		l.Warning(message)
	case "error":
		l.Error(message)
	default:
		l.Info(message)
	}
}
