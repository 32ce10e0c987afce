package dialogs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned synchronously by a Show call whose
	// parameters the native surface cannot render.
	ErrInvalidArgument = errors.New("dialogs: invalid argument")

	// ErrBusy is returned while another request awaits its native callback.
	ErrBusy = fmt.Errorf("%w: a dialog is already awaiting its native callback", ErrInvalidArgument)

	// ErrNativeUnavailable means no native call was made because the
	// platform or build cannot show this dialog.
	ErrNativeUnavailable = errors.New("dialogs: native dialog unavailable")

	// The remaining errors never leave a Show call; they are delivered as
	// the ErrorMessage of a failed result.
	ErrNativeCall     = errors.New("dialogs: native call failed")
	ErrCallbackDecode = errors.New("dialogs: callback payload could not be decoded")
	ErrTimeout        = errors.New("dialogs: native callback timed out")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
