package dialogs

import (
	"fmt"

	"github.com/arko-chat/nativetoolkit/internal/event"
	"github.com/arko-chat/nativetoolkit/internal/models"
)

// Callback entry points. The native layer calls these by name, possibly
// from a thread unrelated to the main thread, with the request ID it was
// given and a payload in either encoding described in decode.go. Callbacks
// that do not match the outstanding request are dropped.

func (m *Manager) HandleDialogCallback(requestID, payload string) {
	m.HandleCallback(models.KindBasic, requestID, payload)
}

func (m *Manager) HandleConfirmationCallback(requestID, payload string) {
	m.HandleCallback(models.KindConfirm, requestID, payload)
}

func (m *Manager) HandleDestructiveCallback(requestID, payload string) {
	m.HandleCallback(models.KindDestructive, requestID, payload)
}

func (m *Manager) HandleActionSheetCallback(requestID, payload string) {
	m.HandleCallback(models.KindActionSheet, requestID, payload)
}

func (m *Manager) HandleTextInputCallback(requestID, payload string) {
	m.HandleCallback(models.KindTextInput, requestID, payload)
}

func (m *Manager) HandleLoginCallback(requestID, payload string) {
	m.HandleCallback(models.KindLogin, requestID, payload)
}

func (m *Manager) HandleSingleChoiceCallback(requestID, payload string) {
	m.HandleCallback(models.KindSingleChoice, requestID, payload)
}

func (m *Manager) HandleMultiChoiceCallback(requestID, payload string) {
	m.HandleCallback(models.KindMultiChoice, requestID, payload)
}

// HandleCallback routes a native answer for a request of the given kind.
func (m *Manager) HandleCallback(kind models.DialogKind, requestID, payload string) {
	defer m.recoverCallback(kind, requestID)

	req, ok := m.claim(requestID)
	if !ok {
		m.dropped(kind, requestID)
		return
	}

	m.logger.Debug("native callback received", "kind", kind, "request", requestID)

	o := outcome{payload: payload}
	if kind != req.kind {
		o = outcome{err: fmt.Errorf("%w: %s callback for a %s request", ErrCallbackDecode, kind, req.kind)}
	}
	m.publish(req, o)
}

// HandleDismissed reports that the dialog closed without a button press,
// such as a touch outside a cancelable dialog or a window close. The result
// is delivered as a cancellation.
func (m *Manager) HandleDismissed(requestID string) {
	defer m.recoverCallback("", requestID)

	req, ok := m.claim(requestID)
	if !ok {
		m.dropped("", requestID)
		return
	}
	m.logger.Debug("native dialog dismissed", "kind", req.kind, "request", requestID)
	m.publish(req, outcome{dismissed: true})
}

func (m *Manager) recoverCallback(kind models.DialogKind, requestID string) {
	if r := recover(); r != nil {
		m.logger.Error("native callback panicked",
			"kind", kind,
			"request", requestID,
			"err", fmt.Errorf("panic: %v", r),
		)
	}
}

type outcome struct {
	payload   string
	dismissed bool
	err       error
}

type codec[T any] struct {
	// fields is the delimited field count, button label included
	fields int
	decode func(*pendingRequest, wire) (T, error)
	wrap   func(models.DialogResult) T
}

func (m *Manager) publish(req *pendingRequest, o outcome) {
	switch req.kind {
	case models.KindBasic:
		emit(m, m.DialogResult, req, o, codec[models.DialogResult]{
			fields: 1,
			decode: decodeBasic,
			wrap:   func(r models.DialogResult) models.DialogResult { return r },
		})
	case models.KindConfirm:
		emit(m, m.ConfirmationResult, req, o, codec[models.ConfirmationResult]{
			fields: 1,
			decode: decodeConfirmation,
			wrap: func(r models.DialogResult) models.ConfirmationResult {
				return models.ConfirmationResult{DialogResult: r}
			},
		})
	case models.KindDestructive:
		emit(m, m.DestructiveResult, req, o, codec[models.DestructiveResult]{
			fields: 1,
			decode: decodeDestructive,
			wrap: func(r models.DialogResult) models.DestructiveResult {
				return models.DestructiveResult{DialogResult: r}
			},
		})
	case models.KindActionSheet:
		emit(m, m.ActionSheetResult, req, o, codec[models.ActionSheetResult]{
			fields: 2,
			decode: decodeActionSheet,
			wrap: func(r models.DialogResult) models.ActionSheetResult {
				return models.ActionSheetResult{DialogResult: r, SelectedIndex: -1}
			},
		})
	case models.KindTextInput:
		emit(m, m.TextInputResult, req, o, codec[models.TextInputResult]{
			fields: 2,
			decode: decodeTextInput,
			wrap: func(r models.DialogResult) models.TextInputResult {
				return models.TextInputResult{DialogResult: r}
			},
		})
	case models.KindLogin:
		emit(m, m.LoginResult, req, o, codec[models.LoginResult]{
			fields: 3,
			decode: decodeLogin,
			wrap: func(r models.DialogResult) models.LoginResult {
				return models.LoginResult{DialogResult: r}
			},
		})
	case models.KindSingleChoice:
		emit(m, m.SingleChoiceResult, req, o, codec[models.SingleChoiceResult]{
			fields: 2,
			decode: decodeSingleChoice,
			wrap: func(r models.DialogResult) models.SingleChoiceResult {
				return models.SingleChoiceResult{DialogResult: r, CheckedItem: -1}
			},
		})
	case models.KindMultiChoice:
		emit(m, m.MultiChoiceResult, req, o, codec[models.MultiChoiceResult]{
			fields: 2,
			decode: decodeMultiChoice,
			wrap: func(r models.DialogResult) models.MultiChoiceResult {
				return models.MultiChoiceResult{DialogResult: r, CheckedItems: []int{}}
			},
		})
	default:
		m.logger.Error("no event for dialog kind", "kind", req.kind, "request", req.id)
	}
}

// emit builds the typed result for req and queues its delivery on the
// dispatcher.
func emit[T any](m *Manager, ev *event.Event[T], req *pendingRequest, o outcome, c codec[T]) {
	res := resolve(m, req, o, c)
	m.dispatcher.Enqueue(func() {
		n := ev.Fire(res)
		m.logger.Debug("dialog result delivered",
			"kind", req.kind,
			"request", req.id,
			"listeners", n,
		)
	})
}

func resolve[T any](m *Manager, req *pendingRequest, o outcome, c codec[T]) T {
	if o.err != nil {
		return c.wrap(failedResult(req.id, o.err))
	}
	if o.dismissed {
		return c.wrap(dismissedResult(req))
	}

	w, err := parseWire(req.id, o.payload, c.fields)
	if err == nil {
		switch {
		case w.dismissed:
			return c.wrap(dismissedResult(req))
		case w.failed:
			return c.wrap(w.base)
		}
		var res T
		if res, err = c.decode(req, w); err == nil {
			return res
		}
	}

	m.logger.Warn("native callback decode failed",
		"kind", req.kind,
		"request", req.id,
		"err", err,
	)
	return c.wrap(failedResult(req.id, fmt.Errorf("%w: %w", ErrCallbackDecode, err)))
}

func failedResult(id string, err error) models.DialogResult {
	return models.DialogResult{
		RequestID:    id,
		Success:      false,
		ErrorMessage: err.Error(),
	}
}

func dismissedResult(req *pendingRequest) models.DialogResult {
	return models.DialogResult{
		RequestID:     req.id,
		ButtonPressed: req.cancel,
		Success:       true,
		Dismissed:     true,
	}
}
