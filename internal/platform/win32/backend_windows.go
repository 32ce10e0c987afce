//go:build windows

package win32

import (
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sys/windows"

	"github.com/arko-chat/nativetoolkit/internal/bridge"
	"github.com/arko-chat/nativetoolkit/internal/models"
)

type Backend struct {
	sink   bridge.Sink
	logger *slog.Logger
	owner  windows.HWND
}

var _ bridge.NativeDialogs = (*Backend)(nil)

// New returns a backend that reports answers to sink. owner may be 0 for
// an unowned, task-modal box.
func New(sink bridge.Sink, owner uintptr, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		sink:   sink,
		logger: logger.With("backend", "win32"),
		owner:  windows.HWND(owner),
	}
}

func (b *Backend) ShowDialog(requestID, title, message, button string) error {
	return b.show(requestID, title, message, basicLayout(button))
}

func (b *Backend) ShowConfirmationDialog(requestID, title, message, confirm, cancel string) error {
	return b.show(requestID, title, message, confirmLayout(confirm, cancel))
}

func (b *Backend) ShowDestructiveDialog(requestID, title, message, destructive, cancel string) error {
	return b.show(requestID, title, message, destructiveLayout(destructive, cancel))
}

func (b *Backend) ShowActionSheet(string, string, string, string, string) error {
	return unsupported(models.KindActionSheet)
}

func (b *Backend) ShowTextInputDialog(string, string, string, string, string, string, bool) error {
	return unsupported(models.KindTextInput)
}

func (b *Backend) ShowLoginDialog(string, string, string, string, string, string, string) error {
	return unsupported(models.KindLogin)
}

func (b *Backend) ShowSingleChoiceDialog(string, string, string, int, string, string, bool) error {
	return unsupported(models.KindSingleChoice)
}

func (b *Backend) ShowMultiChoiceDialog(string, string, string, string, string, string, bool) error {
	return unsupported(models.KindMultiChoice)
}

func unsupported(kind models.DialogKind) error {
	return fmt.Errorf("win32: %s: %w", kind, bridge.ErrUnsupported)
}

func (b *Backend) show(requestID, title, message string, l layout) error {
	caption, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return fmt.Errorf("win32: title: %w", err)
	}
	text, err := windows.UTF16PtrFromString(message)
	if err != nil {
		return fmt.Errorf("win32: message: %w", err)
	}

	// MessageBoxW runs its own modal loop, which must stay on one OS thread.
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		code, err := windows.MessageBox(b.owner, text, caption, l.style)
		if code == 0 {
			b.logger.Error("MessageBoxW failed", "request", requestID, "err", err)
			b.sink.HandleCallback(l.kind, requestID, failurePayload(fmt.Errorf("MessageBoxW: %w", err)))
			return
		}

		payload, ok := l.payload(code)
		if !ok {
			b.logger.Debug("message box closed without a mapped button", "request", requestID, "code", code)
			b.sink.HandleDismissed(requestID)
			return
		}
		b.sink.HandleCallback(l.kind, requestID, payload)
	}()
	return nil
}
