// Package dialogs turns native dialog callbacks into typed events delivered
// on the dispatcher's main thread.
//
// A Manager owns at most one outstanding request. Show calls validate their
// parameters, mint a request ID and make the native call; the native layer
// answers through the callback entry point for that dialog kind, from any
// thread. The decoded result is queued on the dispatcher and fired on the
// next drain. Every accepted Show call produces exactly one event: on
// success, on native failure, on an undecodable payload, on dismissal and
// on timeout.
package dialogs

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/arko-chat/nativetoolkit/internal/bridge"
	"github.com/arko-chat/nativetoolkit/internal/dispatcher"
	"github.com/arko-chat/nativetoolkit/internal/event"
	"github.com/arko-chat/nativetoolkit/internal/localization"
	"github.com/arko-chat/nativetoolkit/internal/models"
)

const (
	DefaultTimeout = 5 * time.Minute

	completedHistory = 256
)

type State int

const (
	StateIdle State = iota
	StateAwaitingNativeCallback
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingNativeCallback:
		return "awaiting_native_callback"
	default:
		return "unknown"
	}
}

// Capabilities lists the dialog kinds each platform's native layer renders.
func Capabilities(p models.Platform) []models.DialogKind {
	switch p {
	case models.PlatformIOS:
		return []models.DialogKind{
			models.KindBasic, models.KindConfirm, models.KindDestructive,
			models.KindActionSheet, models.KindTextInput, models.KindLogin,
		}
	case models.PlatformAndroid:
		return []models.DialogKind{
			models.KindBasic, models.KindConfirm, models.KindTextInput,
			models.KindLogin, models.KindSingleChoice, models.KindMultiChoice,
		}
	case models.PlatformWindows:
		return []models.DialogKind{
			models.KindBasic, models.KindConfirm, models.KindDestructive,
		}
	case models.PlatformMacOS, models.PlatformEditor:
		return models.DialogKinds
	default:
		return nil
	}
}

type pendingRequest struct {
	id     string
	kind   models.DialogKind
	affirm string
	cancel string
	// options is set for kinds whose result is an index into it
	options []string
	timer   *time.Timer
	issued  time.Time
}

type Manager struct {
	platform   models.Platform
	kinds      map[models.DialogKind]bool
	dispatcher *dispatcher.Dispatcher
	logger     *slog.Logger
	timeout    time.Duration
	labels     localization.Labels
	native     func() (bridge.NativeDialogs, error)

	mu        sync.Mutex
	pending   *pendingRequest
	completed *lru.Cache[string, models.DialogKind]

	DialogResult       *event.Event[models.DialogResult]
	ConfirmationResult *event.Event[models.ConfirmationResult]
	DestructiveResult  *event.Event[models.DestructiveResult]
	ActionSheetResult  *event.Event[models.ActionSheetResult]
	TextInputResult    *event.Event[models.TextInputResult]
	LoginResult        *event.Event[models.LoginResult]
	SingleChoiceResult *event.Event[models.SingleChoiceResult]
	MultiChoiceResult  *event.Event[models.MultiChoiceResult]
}

var _ bridge.Sink = (*Manager)(nil)

type Option func(*Manager)

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

func WithDispatcher(d *dispatcher.Dispatcher) Option {
	return func(m *Manager) {
		if d != nil {
			m.dispatcher = d
		}
	}
}

// WithTimeout bounds how long a request waits for its native callback.
// Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.timeout = d
	}
}

// WithLabels sets the labels used for buttons the caller leaves empty.
func WithLabels(l localization.Labels) Option {
	return func(m *Manager) {
		m.labels = l
	}
}

// WithKinds overrides the platform capability table.
func WithKinds(kinds ...models.DialogKind) Option {
	return func(m *Manager) {
		m.kinds = make(map[models.DialogKind]bool, len(kinds))
		for _, k := range kinds {
			m.kinds[k] = true
		}
	}
}

// WithNative replaces the bridge registry lookup.
func WithNative(resolve func() (bridge.NativeDialogs, error)) Option {
	return func(m *Manager) {
		if resolve != nil {
			m.native = resolve
		}
	}
}

func NewManager(p models.Platform, opts ...Option) *Manager {
	completed, _ := lru.New[string, models.DialogKind](completedHistory)

	m := &Manager{
		platform:   p,
		dispatcher: dispatcher.Default(),
		logger:     slog.Default(),
		timeout:    DefaultTimeout,
		labels:     localization.Default().Labels(""),
		native:     func() (bridge.NativeDialogs, error) { return bridge.Safe(p) },
		completed:  completed,
	}
	WithKinds(Capabilities(p)...)(m)
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("platform", string(p))

	m.DialogResult = event.New[models.DialogResult]("dialog_result", m.logger)
	m.ConfirmationResult = event.New[models.ConfirmationResult]("confirmation_result", m.logger)
	m.DestructiveResult = event.New[models.DestructiveResult]("destructive_result", m.logger)
	m.ActionSheetResult = event.New[models.ActionSheetResult]("action_sheet_result", m.logger)
	m.TextInputResult = event.New[models.TextInputResult]("text_input_result", m.logger)
	m.LoginResult = event.New[models.LoginResult]("login_result", m.logger)
	m.SingleChoiceResult = event.New[models.SingleChoiceResult]("single_choice_result", m.logger)
	m.MultiChoiceResult = event.New[models.MultiChoiceResult]("multi_choice_result", m.logger)
	return m
}

func (m *Manager) Platform() models.Platform {
	return m.platform
}

func (m *Manager) Supports(kind models.DialogKind) bool {
	return m.kinds[kind]
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending != nil {
		return StateAwaitingNativeCallback
	}
	return StateIdle
}

// Outstanding returns the ID of the request awaiting its callback, or "".
func (m *Manager) Outstanding() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return ""
	}
	return m.pending.id
}

// issue moves the manager to AwaitingNativeCallback and makes the native
// call. A native error after that point is delivered as a failed event.
func (m *Manager) issue(req *pendingRequest, call func(b bridge.NativeDialogs) error) (string, error) {
	if !m.kinds[req.kind] {
		m.logger.Warn("dialog kind unavailable on platform", "kind", req.kind)
		return "", fmt.Errorf("%w: %s dialogs on %s", ErrNativeUnavailable, req.kind, m.platform)
	}

	native, err := m.native()
	if err != nil {
		m.logger.Warn("native dialogs unavailable", "kind", req.kind, "err", err)
		return "", fmt.Errorf("%w: %w", ErrNativeUnavailable, err)
	}

	req.id = uuid.NewString()
	req.issued = time.Now()

	m.mu.Lock()
	if m.pending != nil {
		outstanding := m.pending.id
		m.mu.Unlock()
		m.logger.Warn("dialog rejected while busy",
			"kind", req.kind,
			"outstanding", outstanding,
		)
		return "", ErrBusy
	}
	if m.timeout > 0 {
		id := req.id
		req.timer = time.AfterFunc(m.timeout, func() { m.expire(id) })
	}
	m.pending = req
	m.mu.Unlock()

	m.logger.Debug("dialog issued", "kind", req.kind, "request", req.id)

	if err := call(native); err != nil {
		if errors.Is(err, bridge.ErrUnsupported) {
			m.abandon(req.id)
			m.logger.Warn("native layer does not support dialog", "kind", req.kind, "err", err)
			return "", fmt.Errorf("%w: %w", ErrNativeUnavailable, err)
		}
		m.logger.Error("native dialog call failed",
			"kind", req.kind,
			"request", req.id,
			"err", err,
		)
		if claimed, ok := m.claim(req.id); ok {
			m.publish(claimed, outcome{err: fmt.Errorf("%w: %w", ErrNativeCall, err)})
		}
	}
	return req.id, nil
}

// claim takes the outstanding request if it matches id, returning the
// manager to Idle. Exactly one caller can claim a given request.
func (m *Manager) claim(id string) (*pendingRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending == nil || m.pending.id != id {
		return nil, false
	}
	req := m.pending
	m.pending = nil
	if req.timer != nil {
		req.timer.Stop()
	}
	m.completed.Add(id, req.kind)
	return req, true
}

// abandon returns to Idle without an event, for calls that never reached
// the native layer.
func (m *Manager) abandon(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending != nil && m.pending.id == id {
		if m.pending.timer != nil {
			m.pending.timer.Stop()
		}
		m.pending = nil
	}
}

func (m *Manager) expire(id string) {
	req, ok := m.claim(id)
	if !ok {
		return
	}
	m.logger.Warn("native callback timed out",
		"kind", req.kind,
		"request", id,
		"waited", time.Since(req.issued).Round(time.Millisecond),
	)
	m.publish(req, outcome{err: fmt.Errorf("%w after %s", ErrTimeout, m.timeout)})
}

func (m *Manager) dropped(kind models.DialogKind, id string) {
	if _, ok := m.completed.Peek(id); ok {
		m.logger.Warn("duplicate native callback dropped", "kind", kind, "request", id)
		return
	}
	m.logger.Warn("native callback for unknown request dropped", "kind", kind, "request", id)
}
