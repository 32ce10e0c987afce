// Package win32 shows dialogs through user32 MessageBoxW. MessageBoxW only
// offers fixed button sets with system labels, so each layout maps the
// returned button ID back to the label the caller asked for.
package win32

import (
	"github.com/tidwall/sjson"

	"github.com/arko-chat/nativetoolkit/internal/models"
)

// MessageBox styles and return codes from winuser.h.
const (
	mbOK            = 0x00000000
	mbOKCancel      = 0x00000001
	mbIconQuestion  = 0x00000020
	mbIconWarning   = 0x00000030
	mbIconInfo      = 0x00000040
	mbDefButton2    = 0x00000100
	mbTaskModal     = 0x00002000
	mbSetForeground = 0x00010000
	mbTopMost       = 0x00040000

	idOK     = 1
	idCancel = 2
)

type layout struct {
	kind    models.DialogKind
	style   uint32
	affirm  string
	cancel  string
	buttons map[int32]string
}

func basicLayout(button string) layout {
	return layout{
		kind:    models.KindBasic,
		style:   mbOK | mbIconInfo | mbTaskModal | mbSetForeground,
		affirm:  button,
		buttons: map[int32]string{idOK: button},
	}
}

func confirmLayout(confirm, cancel string) layout {
	return layout{
		kind:    models.KindConfirm,
		style:   mbOKCancel | mbIconQuestion | mbTaskModal | mbSetForeground,
		affirm:  confirm,
		cancel:  cancel,
		buttons: map[int32]string{idOK: confirm, idCancel: cancel},
	}
}

// destructiveLayout focuses Cancel so Enter never destroys anything.
func destructiveLayout(destructive, cancel string) layout {
	return layout{
		kind:    models.KindDestructive,
		style:   mbOKCancel | mbIconWarning | mbDefButton2 | mbTaskModal | mbSetForeground | mbTopMost,
		affirm:  destructive,
		cancel:  cancel,
		buttons: map[int32]string{idOK: destructive, idCancel: cancel},
	}
}

// payload builds the callback payload for the button MessageBoxW returned.
// ok is false for a code the layout has no button for.
func (l layout) payload(code int32) (string, bool) {
	label, ok := l.buttons[code]
	if !ok {
		return "", false
	}
	out, err := sjson.Set("", "buttonPressed", label)
	if err != nil {
		return "", false
	}
	if l.kind != models.KindBasic {
		if out, err = sjson.Set(out, "confirmed", label == l.affirm); err != nil {
			return "", false
		}
	}
	return out, true
}

func failurePayload(err error) string {
	out, _ := sjson.Set(`{"success":false}`, "error", err.Error())
	return out
}
