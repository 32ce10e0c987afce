package bridge

import (
	"errors"

	"github.com/arko-chat/nativetoolkit/internal/models"
)

// ErrUnsupported is returned by a NativeDialogs implementation for a dialog
// kind it cannot render.
var ErrUnsupported = errors.New("bridge: dialog kind not supported by native layer")

// NativeDialogs is implemented by the native side (Swift/Kotlin through
// gomobile) or by a Go backend that talks to the platform directly.
//
// Rules for gomobile compatibility:
//   - methods may only use primitive types, strings, []byte, or other
//     gomobile-bound types as parameters and return values
//   - no variadic parameters
//   - string lists travel as JSON arrays
//   - errors are returned as the last return value
//
// Every method returns as soon as the dialog is shown. The answer arrives
// later through the dialog manager's callback entry point for that kind,
// carrying the same requestID.
type NativeDialogs interface {
	ShowDialog(requestID, title, message, button string) error

	ShowConfirmationDialog(requestID, title, message, confirm, cancel string) error

	ShowDestructiveDialog(requestID, title, message, destructive, cancel string) error

	// ShowActionSheet presents optionsJSON (a JSON array of labels) below
	// the message.
	ShowActionSheet(requestID, title, message, optionsJSON, cancel string) error

	ShowTextInputDialog(requestID, title, message, placeholder, confirm, cancel string, allowEmpty bool) error

	ShowLoginDialog(requestID, title, message, usernamePlaceholder, passwordPlaceholder, login, cancel string) error

	// ShowSingleChoiceDialog preselects checkedItem, or nothing when it is -1.
	ShowSingleChoiceDialog(requestID, title, optionsJSON string, checkedItem int, positive, negative string, cancelable bool) error

	// ShowMultiChoiceDialog preselects the indices in checkedJSON.
	ShowMultiChoiceDialog(requestID, title, optionsJSON, checkedJSON, positive, negative string, cancelable bool) error
}

// Sink receives native answers. Go backends call it from whatever goroutine
// the platform answered on.
type Sink interface {
	HandleCallback(kind models.DialogKind, requestID, payload string)

	// HandleDismissed reports a dialog that closed without any button.
	HandleDismissed(requestID string)
}
