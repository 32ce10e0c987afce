// Package simulator is a NativeDialogs implementation that renders dialogs
// in a browser page connected over a websocket. It stands in for the native
// layer inside the editor and during development on machines without one.
package simulator

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/tidwall/gjson"

	"github.com/arko-chat/nativetoolkit/internal/bridge"
	"github.com/arko-chat/nativetoolkit/internal/models"
	"github.com/arko-chat/nativetoolkit/internal/ws"
)

var ErrBadOptions = errors.New("simulator: malformed option list")

// Request is sent to every connected page when a dialog is shown.
type Request struct {
	Type      string            `json:"type"`
	Kind      models.DialogKind `json:"kind"`
	RequestID string            `json:"requestId"`
	Payload   map[string]any    `json:"payload"`
	Issued    time.Time         `json:"issued"`
}

// Reply is what a page sends back. Payload is either a JSON object or a
// delimited string in the callback format the dialog manager decodes.
type Reply struct {
	Type      string
	RequestID string
	Payload   string
}

const (
	msgRequest   = "request"
	msgResolved  = "resolved"
	msgAnswer    = "answer"
	msgDismissed = "dismissed"
)

type Simulator struct {
	sink    bridge.Sink
	hub     *ws.Hub
	logger  *slog.Logger
	cookies *securecookie.SecureCookie

	// pending holds shown dialogs until a page answers, so pages that
	// connect late still render them
	pending *xsync.Map[string, Request]
}

var _ bridge.NativeDialogs = (*Simulator)(nil)

type Options struct {
	Logger *slog.Logger
	// HashKey signs pairing tokens. A random key is used when empty, which
	// invalidates tokens on restart.
	HashKey []byte
}

func New(sink bridge.Sink, opts Options) *Simulator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("backend", "simulator")

	key := opts.HashKey
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
	}

	return &Simulator{
		sink:    sink,
		hub:     ws.NewHub(logger),
		logger:  logger,
		cookies: securecookie.New(key, nil),
		pending: xsync.NewMap[string, Request](),
	}
}

// Pending returns the dialogs still waiting for a page to answer, oldest
// first.
func (s *Simulator) Pending() []Request {
	var out []Request
	s.pending.Range(func(_ string, r Request) bool {
		out = append(out, r)
		return true
	})
	slices.SortFunc(out, func(a, b Request) int { return a.Issued.Compare(b.Issued) })
	return out
}

func (s *Simulator) Clients() int {
	return s.hub.Count()
}

func (s *Simulator) ShowDialog(requestID, title, message, button string) error {
	return s.show(models.KindBasic, requestID, map[string]any{
		"title":   title,
		"message": message,
		"buttons": []string{button},
	})
}

func (s *Simulator) ShowConfirmationDialog(requestID, title, message, confirm, cancel string) error {
	return s.show(models.KindConfirm, requestID, map[string]any{
		"title":   title,
		"message": message,
		"buttons": []string{cancel, confirm},
		"affirm":  confirm,
		"cancel":  cancel,
	})
}

func (s *Simulator) ShowDestructiveDialog(requestID, title, message, destructive, cancel string) error {
	return s.show(models.KindDestructive, requestID, map[string]any{
		"title":       title,
		"message":     message,
		"buttons":     []string{destructive, cancel},
		"affirm":      destructive,
		"cancel":      cancel,
		"destructive": true,
	})
}

func (s *Simulator) ShowActionSheet(requestID, title, message, optionsJSON, cancel string) error {
	options, err := rawList(optionsJSON)
	if err != nil {
		return err
	}
	return s.show(models.KindActionSheet, requestID, map[string]any{
		"title":   title,
		"message": message,
		"options": options,
		"cancel":  cancel,
	})
}

func (s *Simulator) ShowTextInputDialog(requestID, title, message, placeholder, confirm, cancel string, allowEmpty bool) error {
	return s.show(models.KindTextInput, requestID, map[string]any{
		"title":       title,
		"message":     message,
		"placeholder": placeholder,
		"buttons":     []string{cancel, confirm},
		"affirm":      confirm,
		"cancel":      cancel,
		"allowEmpty":  allowEmpty,
	})
}

func (s *Simulator) ShowLoginDialog(requestID, title, message, usernamePlaceholder, passwordPlaceholder, login, cancel string) error {
	return s.show(models.KindLogin, requestID, map[string]any{
		"title":               title,
		"message":             message,
		"usernamePlaceholder": usernamePlaceholder,
		"passwordPlaceholder": passwordPlaceholder,
		"buttons":             []string{cancel, login},
		"affirm":              login,
		"cancel":              cancel,
	})
}

func (s *Simulator) ShowSingleChoiceDialog(requestID, title, optionsJSON string, checkedItem int, positive, negative string, cancelable bool) error {
	options, err := rawList(optionsJSON)
	if err != nil {
		return err
	}
	return s.show(models.KindSingleChoice, requestID, map[string]any{
		"title":       title,
		"options":     options,
		"checkedItem": checkedItem,
		"buttons":     []string{negative, positive},
		"affirm":      positive,
		"cancel":      negative,
		"cancelable":  cancelable,
	})
}

func (s *Simulator) ShowMultiChoiceDialog(requestID, title, optionsJSON, checkedJSON, positive, negative string, cancelable bool) error {
	options, err := rawList(optionsJSON)
	if err != nil {
		return err
	}
	checked, err := rawList(checkedJSON)
	if err != nil {
		return err
	}
	return s.show(models.KindMultiChoice, requestID, map[string]any{
		"title":        title,
		"options":      options,
		"checkedItems": checked,
		"buttons":      []string{negative, positive},
		"affirm":       positive,
		"cancel":       negative,
		"cancelable":   cancelable,
	})
}

func (s *Simulator) show(kind models.DialogKind, requestID string, payload map[string]any) error {
	req := Request{
		Type:      msgRequest,
		Kind:      kind,
		RequestID: requestID,
		Payload:   payload,
		Issued:    time.Now(),
	}
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("simulator: marshal request: %w", err)
	}

	s.pending.Store(requestID, req)
	n := s.hub.Broadcast(data)
	s.logger.Debug("simulated dialog shown", "kind", kind, "request", requestID, "pages", n)
	return nil
}

// handleMessage forwards a page's reply to the sink and tells every page
// the dialog is gone.
func (s *Simulator) handleMessage(c *ws.Client, raw []byte) {
	reply, err := parseReply(raw)
	if err != nil {
		s.logger.Warn("simulator reply rejected", "client", c.ID, "err", err)
		return
	}

	req, ok := s.pending.LoadAndDelete(reply.RequestID)
	if !ok {
		s.logger.Warn("simulator reply for unknown dialog", "client", c.ID, "request", reply.RequestID)
		return
	}

	switch reply.Type {
	case msgDismissed:
		s.sink.HandleDismissed(reply.RequestID)
	default:
		s.sink.HandleCallback(req.Kind, reply.RequestID, reply.Payload)
	}

	resolved, _ := json.Marshal(map[string]string{"type": msgResolved, "requestId": reply.RequestID})
	s.hub.Broadcast(resolved)
}

// replay sends every pending dialog to a page that just connected.
func (s *Simulator) replay(c *ws.Client) {
	for _, req := range s.Pending() {
		data, err := json.Marshal(req)
		if err != nil {
			continue
		}
		s.hub.Send(c, data)
	}
}

func parseReply(raw []byte) (Reply, error) {
	if !gjson.ValidBytes(raw) {
		return Reply{}, errors.New("reply is not JSON")
	}
	msg := gjson.ParseBytes(raw)

	r := Reply{
		Type:      msg.Get("type").String(),
		RequestID: msg.Get("requestId").String(),
	}
	if r.RequestID == "" {
		return Reply{}, errors.New("reply has no requestId")
	}

	switch r.Type {
	case msgDismissed:
		return r, nil
	case msgAnswer:
		p := msg.Get("payload")
		switch {
		case p.Type == gjson.String:
			r.Payload = p.String()
		case p.IsObject():
			r.Payload = p.Raw
		default:
			return Reply{}, errors.New("answer payload must be a string or an object")
		}
		return r, nil
	default:
		return Reply{}, fmt.Errorf("unknown reply type %q", r.Type)
	}
}

func rawList(raw string) (json.RawMessage, error) {
	if raw == "" {
		return json.RawMessage("[]"), nil
	}
	if !gjson.Valid(raw) || !gjson.Parse(raw).IsArray() {
		return nil, fmt.Errorf("%w: %q", ErrBadOptions, raw)
	}
	return json.RawMessage(raw), nil
}
