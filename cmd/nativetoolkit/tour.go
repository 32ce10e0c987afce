package main

import (
	"fmt"
	"log/slog"

	"github.com/arko-chat/nativetoolkit/internal/dialogs"
	"github.com/arko-chat/nativetoolkit/internal/models"
)

// tour shows one dialog of every kind the manager supports, opening the
// next when the previous result arrives.
type tour struct {
	mgr    *dialogs.Manager
	logger *slog.Logger
	steps  []step
	next   int

	onStep func(title string)
}

type step struct {
	kind models.DialogKind
	show func(*dialogs.Manager) (string, error)
}

func newTour(mgr *dialogs.Manager, logger *slog.Logger) *tour {
	t := &tour{mgr: mgr, logger: logger}
	for _, s := range tourSteps {
		if mgr.Supports(s.kind) {
			t.steps = append(t.steps, s)
		}
	}

	mgr.DialogResult.Subscribe(func(r models.DialogResult) { t.done(r, "button", r.ButtonPressed) })
	mgr.ConfirmationResult.Subscribe(func(r models.ConfirmationResult) { t.done(r.DialogResult, "confirmed", r.Confirmed) })
	mgr.DestructiveResult.Subscribe(func(r models.DestructiveResult) { t.done(r.DialogResult, "confirmed", r.Confirmed) })
	mgr.ActionSheetResult.Subscribe(func(r models.ActionSheetResult) { t.done(r.DialogResult, "selected", r.SelectedIndex) })
	mgr.TextInputResult.Subscribe(func(r models.TextInputResult) { t.done(r.DialogResult, "text", r.InputText) })
	mgr.LoginResult.Subscribe(func(r models.LoginResult) { t.done(r.DialogResult, "username", r.Username) })
	mgr.SingleChoiceResult.Subscribe(func(r models.SingleChoiceResult) { t.done(r.DialogResult, "checked", r.CheckedItem) })
	mgr.MultiChoiceResult.Subscribe(func(r models.MultiChoiceResult) { t.done(r.DialogResult, "checked", r.CheckedItems) })
	return t
}

var tourSteps = []step{
	{models.KindBasic, func(m *dialogs.Manager) (string, error) {
		return m.ShowDialog(models.BasicDialog{Title: "Welcome", Message: "This is a basic dialog."})
	}},
	{models.KindConfirm, func(m *dialogs.Manager) (string, error) {
		return m.ShowConfirmationDialog(models.ConfirmationDialog{Title: "Save changes?", Message: "Your edits are not saved yet."})
	}},
	{models.KindDestructive, func(m *dialogs.Manager) (string, error) {
		return m.ShowDestructiveDialog(models.DestructiveDialog{Title: "Delete project?", Message: "This cannot be undone."})
	}},
	{models.KindActionSheet, func(m *dialogs.Manager) (string, error) {
		return m.ShowActionSheet(models.ActionSheet{Title: "Share", Options: []string{"Copy link", "Email", "Messages"}})
	}},
	{models.KindTextInput, func(m *dialogs.Manager) (string, error) {
		return m.ShowTextInputDialog(models.TextInputDialog{Title: "Rename", Message: "Enter a new name.", Placeholder: "Name"})
	}},
	{models.KindLogin, func(m *dialogs.Manager) (string, error) {
		return m.ShowLoginDialog(models.LoginDialog{Title: "Sign in", UsernamePlaceholder: "Username", PasswordPlaceholder: "Password"})
	}},
	{models.KindSingleChoice, func(m *dialogs.Manager) (string, error) {
		return m.ShowSingleChoiceItemDialog(models.SingleChoiceDialog{
			Title: "Quality", Options: []string{"Low", "Medium", "High"}, CheckedItem: 1, Cancelable: true,
		})
	}},
	{models.KindMultiChoice, func(m *dialogs.Manager) (string, error) {
		return m.ShowMultiChoiceItemDialog(models.MultiChoiceDialog{
			Title: "Toppings", Options: []string{"Cheese", "Olives", "Basil"}, CheckedItems: []int{0}, Cancelable: true,
		})
	}},
}

func (t *tour) start() error {
	if len(t.steps) == 0 {
		return fmt.Errorf("platform %s supports no dialog kinds", t.mgr.Platform())
	}
	return t.show()
}

func (t *tour) show() error {
	s := t.steps[t.next]
	id, err := s.show(t.mgr)
	if err != nil {
		return fmt.Errorf("show %s: %w", s.kind, err)
	}
	t.logger.Info("tour dialog shown", "kind", s.kind, "request_id", id, "step", t.next+1, "of", len(t.steps))
	if t.onStep != nil {
		t.onStep(string(s.kind))
	}
	return nil
}

// done runs on the main thread for every result.
func (t *tour) done(r models.DialogResult, key string, value any) {
	if !r.Success {
		t.logger.Warn("tour dialog failed", "request_id", r.RequestID, "err", r.ErrorMessage)
	} else {
		t.logger.Info("tour dialog answered",
			"request_id", r.RequestID,
			"button", r.ButtonPressed,
			"dismissed", r.Dismissed,
			key, value,
		)
	}

	t.next = (t.next + 1) % len(t.steps)
	if err := t.show(); err != nil {
		t.logger.Error("tour stopped", "err", err)
	}
}
