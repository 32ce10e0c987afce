package dialogs

import (
	"encoding/json"
	"slices"

	"github.com/arko-chat/nativetoolkit/internal/bridge"
	"github.com/arko-chat/nativetoolkit/internal/localization"
	"github.com/arko-chat/nativetoolkit/internal/models"
)

// Every Show method returns the request ID that the result event carries.
// It fails synchronously with ErrInvalidArgument, ErrBusy or
// ErrNativeUnavailable, in which case no native call was made and no event
// will fire.

func (m *Manager) ShowDialog(d models.BasicDialog) (string, error) {
	d.Button = m.labels.Or(d.Button, localization.KeyOK)
	if err := requireLabel("button", d.Button); err != nil {
		return "", err
	}

	req := &pendingRequest{kind: models.KindBasic, affirm: d.Button, cancel: d.Button}
	return m.issue(req, func(b bridge.NativeDialogs) error {
		return b.ShowDialog(req.id, d.Title, d.Message, d.Button)
	})
}

func (m *Manager) ShowConfirmationDialog(d models.ConfirmationDialog) (string, error) {
	d.ConfirmButton = m.labels.Or(d.ConfirmButton, localization.KeyOK)
	d.CancelButton = m.labels.Or(d.CancelButton, localization.KeyCancel)
	if err := requirePair("confirm", d.ConfirmButton, "cancel", d.CancelButton); err != nil {
		return "", err
	}

	req := &pendingRequest{kind: models.KindConfirm, affirm: d.ConfirmButton, cancel: d.CancelButton}
	return m.issue(req, func(b bridge.NativeDialogs) error {
		return b.ShowConfirmationDialog(req.id, d.Title, d.Message, d.ConfirmButton, d.CancelButton)
	})
}

func (m *Manager) ShowDestructiveDialog(d models.DestructiveDialog) (string, error) {
	d.DestructiveButton = m.labels.Or(d.DestructiveButton, localization.KeyDelete)
	d.CancelButton = m.labels.Or(d.CancelButton, localization.KeyCancel)
	if err := requirePair("destructive", d.DestructiveButton, "cancel", d.CancelButton); err != nil {
		return "", err
	}

	req := &pendingRequest{kind: models.KindDestructive, affirm: d.DestructiveButton, cancel: d.CancelButton}
	return m.issue(req, func(b bridge.NativeDialogs) error {
		return b.ShowDestructiveDialog(req.id, d.Title, d.Message, d.DestructiveButton, d.CancelButton)
	})
}

func (m *Manager) ShowActionSheet(d models.ActionSheet) (string, error) {
	d.CancelButton = m.labels.Or(d.CancelButton, localization.KeyCancel)
	if err := requireOptions(d.Options); err != nil {
		return "", err
	}
	if err := requireLabel("cancel", d.CancelButton); err != nil {
		return "", err
	}
	if slices.Contains(d.Options, d.CancelButton) {
		return "", invalidf("cancel label %q duplicates an option", d.CancelButton)
	}
	options, err := json.Marshal(d.Options)
	if err != nil {
		return "", invalidf("options: %v", err)
	}

	req := &pendingRequest{
		kind:    models.KindActionSheet,
		cancel:  d.CancelButton,
		options: slices.Clone(d.Options),
	}
	return m.issue(req, func(b bridge.NativeDialogs) error {
		return b.ShowActionSheet(req.id, d.Title, d.Message, string(options), d.CancelButton)
	})
}

func (m *Manager) ShowTextInputDialog(d models.TextInputDialog) (string, error) {
	d.ConfirmButton = m.labels.Or(d.ConfirmButton, localization.KeyOK)
	d.CancelButton = m.labels.Or(d.CancelButton, localization.KeyCancel)
	if err := requirePair("confirm", d.ConfirmButton, "cancel", d.CancelButton); err != nil {
		return "", err
	}

	req := &pendingRequest{kind: models.KindTextInput, affirm: d.ConfirmButton, cancel: d.CancelButton}
	return m.issue(req, func(b bridge.NativeDialogs) error {
		return b.ShowTextInputDialog(req.id, d.Title, d.Message, d.Placeholder, d.ConfirmButton, d.CancelButton, d.AllowEmpty)
	})
}

func (m *Manager) ShowLoginDialog(d models.LoginDialog) (string, error) {
	d.LoginButton = m.labels.Or(d.LoginButton, localization.KeyLogin)
	d.CancelButton = m.labels.Or(d.CancelButton, localization.KeyCancel)
	d.UsernamePlaceholder = m.labels.Or(d.UsernamePlaceholder, localization.KeyUsername)
	d.PasswordPlaceholder = m.labels.Or(d.PasswordPlaceholder, localization.KeyPassword)
	if err := requirePair("login", d.LoginButton, "cancel", d.CancelButton); err != nil {
		return "", err
	}

	req := &pendingRequest{kind: models.KindLogin, affirm: d.LoginButton, cancel: d.CancelButton}
	return m.issue(req, func(b bridge.NativeDialogs) error {
		return b.ShowLoginDialog(req.id, d.Title, d.Message, d.UsernamePlaceholder, d.PasswordPlaceholder, d.LoginButton, d.CancelButton)
	})
}

func (m *Manager) ShowSingleChoiceItemDialog(d models.SingleChoiceDialog) (string, error) {
	d.PositiveButton = m.labels.Or(d.PositiveButton, localization.KeyOK)
	d.NegativeButton = m.labels.Or(d.NegativeButton, localization.KeyCancel)
	if err := requireOptions(d.Options); err != nil {
		return "", err
	}
	if err := requirePair("positive", d.PositiveButton, "negative", d.NegativeButton); err != nil {
		return "", err
	}
	if d.CheckedItem < -1 || d.CheckedItem >= len(d.Options) {
		return "", invalidf("checked item %d out of range for %d options", d.CheckedItem, len(d.Options))
	}
	options, err := json.Marshal(d.Options)
	if err != nil {
		return "", invalidf("options: %v", err)
	}

	req := &pendingRequest{
		kind:    models.KindSingleChoice,
		affirm:  d.PositiveButton,
		cancel:  d.NegativeButton,
		options: slices.Clone(d.Options),
	}
	return m.issue(req, func(b bridge.NativeDialogs) error {
		return b.ShowSingleChoiceDialog(req.id, d.Title, string(options), d.CheckedItem, d.PositiveButton, d.NegativeButton, d.Cancelable)
	})
}

func (m *Manager) ShowMultiChoiceItemDialog(d models.MultiChoiceDialog) (string, error) {
	d.PositiveButton = m.labels.Or(d.PositiveButton, localization.KeyOK)
	d.NegativeButton = m.labels.Or(d.NegativeButton, localization.KeyCancel)
	if err := requireOptions(d.Options); err != nil {
		return "", err
	}
	if err := requirePair("positive", d.PositiveButton, "negative", d.NegativeButton); err != nil {
		return "", err
	}

	checked := make([]int, 0, len(d.CheckedItems))
	seen := make(map[int]bool, len(d.CheckedItems))
	for _, idx := range d.CheckedItems {
		if idx < 0 || idx >= len(d.Options) {
			return "", invalidf("checked item %d out of range for %d options", idx, len(d.Options))
		}
		if seen[idx] {
			return "", invalidf("checked item %d listed twice", idx)
		}
		seen[idx] = true
		checked = append(checked, idx)
	}
	slices.Sort(checked)

	options, err := json.Marshal(d.Options)
	if err != nil {
		return "", invalidf("options: %v", err)
	}
	checkedJSON, err := json.Marshal(checked)
	if err != nil {
		return "", invalidf("checked items: %v", err)
	}

	req := &pendingRequest{
		kind:    models.KindMultiChoice,
		affirm:  d.PositiveButton,
		cancel:  d.NegativeButton,
		options: slices.Clone(d.Options),
	}
	return m.issue(req, func(b bridge.NativeDialogs) error {
		return b.ShowMultiChoiceDialog(req.id, d.Title, string(options), string(checkedJSON), d.PositiveButton, d.NegativeButton, d.Cancelable)
	})
}

func requireLabel(name, v string) error {
	if v == "" {
		return invalidf("%s button label is empty", name)
	}
	return nil
}

// requirePair rejects empty or identical labels, since the pressed button
// is reported by label.
func requirePair(aName, a, bName, b string) error {
	if err := requireLabel(aName, a); err != nil {
		return err
	}
	if err := requireLabel(bName, b); err != nil {
		return err
	}
	if a == b {
		return invalidf("%s and %s buttons share the label %q", aName, bName, a)
	}
	return nil
}

func requireOptions(options []string) error {
	if len(options) == 0 {
		return invalidf("at least one option is required")
	}
	for i, o := range options {
		if o == "" {
			return invalidf("option %d is empty", i)
		}
	}
	return nil
}
