package osascript

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/arko-chat/nativetoolkit/internal/bridge"
	"github.com/arko-chat/nativetoolkit/internal/models"
)

// ErrUserCanceled is returned by a Runner when the dialog's cancel button
// or Escape ended the script (AppleScript error -128).
var ErrUserCanceled = errors.New("osascript: user canceled")

var ErrClosed = errors.New("osascript: backend closed")

// Runner executes an AppleScript program and returns what it printed.
type Runner func(ctx context.Context, script string) (string, error)

// Exec runs script with the system osascript binary.
func Exec(ctx context.Context, script string) (string, error) {
	var args []string
	for _, line := range strings.Split(script, "\n") {
		args = append(args, "-e", line)
	}

	cmd := exec.CommandContext(ctx, "osascript", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("osascript: %w", ctx.Err())
		}
		msg := stderr.String()
		if strings.Contains(msg, "(-128)") || strings.Contains(msg, "User canceled") {
			return "", ErrUserCanceled
		}
		return "", fmt.Errorf("osascript: %w, stderr: %s", err, strings.TrimSpace(msg))
	}
	return strings.TrimSuffix(stdout.String(), "\n"), nil
}

type Backend struct {
	sink   bridge.Sink
	run    Runner
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var _ bridge.NativeDialogs = (*Backend)(nil)

type Option func(*Backend)

func WithRunner(r Runner) Option {
	return func(b *Backend) {
		if r != nil {
			b.run = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.logger = l
		}
	}
}

func New(sink bridge.Sink, opts ...Option) *Backend {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Backend{
		sink:   sink,
		run:    Exec,
		logger: slog.Default(),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With("backend", "osascript")
	return b
}

// Close stops every running script and waits for their answers to be
// reported.
func (b *Backend) Close() {
	b.cancel()
	b.wg.Wait()
}

func (b *Backend) ShowDialog(requestID, title, message, button string) error {
	return b.spawn(models.KindBasic, requestID, func(ctx context.Context) (string, error) {
		out, err := b.run(ctx, basicScript(title, message, button))
		if err != nil {
			return "", err
		}
		return newPayload(out).String()
	})
}

func (b *Backend) ShowConfirmationDialog(requestID, title, message, confirm, cancel string) error {
	return b.spawn(models.KindConfirm, requestID, func(ctx context.Context) (string, error) {
		return b.confirm(ctx, confirmScript(title, message, confirm, cancel), confirm, cancel)
	})
}

func (b *Backend) ShowDestructiveDialog(requestID, title, message, destructive, cancel string) error {
	return b.spawn(models.KindDestructive, requestID, func(ctx context.Context) (string, error) {
		return b.confirm(ctx, destructiveScript(title, message, destructive, cancel), destructive, cancel)
	})
}

func (b *Backend) confirm(ctx context.Context, script, affirm, cancel string) (string, error) {
	out, err := b.run(ctx, script)
	switch {
	case errors.Is(err, ErrUserCanceled):
		out = cancel
	case err != nil:
		return "", err
	}
	return newPayload(out).set("confirmed", out == affirm).String()
}

func (b *Backend) ShowActionSheet(requestID, title, message, optionsJSON, cancel string) error {
	options, err := parseStrings(optionsJSON)
	if err != nil {
		return err
	}
	return b.spawn(models.KindActionSheet, requestID, func(ctx context.Context) (string, error) {
		picked, ok, err := b.choose(ctx, chooseScript(title, message, options, nil, "", cancel, false), options)
		if err != nil {
			return "", err
		}
		if !ok || len(picked) == 0 {
			return newPayload(cancel).set("selectedIndex", -1).String()
		}
		return newPayload(options[picked[0]]).set("selectedIndex", picked[0]).String()
	})
}

// ShowTextInputDialog asks again when the answer is empty and empty input
// is not allowed. AppleScript has no placeholder text, so placeholder is
// not shown.
func (b *Backend) ShowTextInputDialog(requestID, title, message, _, confirm, cancel string, allowEmpty bool) error {
	return b.spawn(models.KindTextInput, requestID, func(ctx context.Context) (string, error) {
		for {
			button, text, err := b.prompt(ctx, promptScript(title, message, "", confirm, cancel, false), cancel)
			if err != nil {
				return "", err
			}
			if button == confirm && text == "" && !allowEmpty {
				continue
			}
			return newPayload(button).set("inputText", text).String()
		}
	})
}

// ShowLoginDialog asks for the username and the password in two prompts.
// Canceling either one cancels the login.
func (b *Backend) ShowLoginDialog(requestID, title, message, usernamePlaceholder, passwordPlaceholder, login, cancel string) error {
	return b.spawn(models.KindLogin, requestID, func(ctx context.Context) (string, error) {
		button, user, err := b.prompt(ctx, promptScript(title, joinLines(message, usernamePlaceholder), "", login, cancel, false), cancel)
		if err != nil {
			return "", err
		}
		if button != login {
			return newPayload(cancel).String()
		}

		button, pass, err := b.prompt(ctx, promptScript(title, passwordPlaceholder, "", login, cancel, true), cancel)
		if err != nil {
			return "", err
		}
		if button != login {
			return newPayload(cancel).String()
		}
		return newPayload(login).set("username", user).set("password", pass).String()
	})
}

func (b *Backend) ShowSingleChoiceDialog(requestID, title, optionsJSON string, checkedItem int, positive, negative string, _ bool) error {
	options, err := parseStrings(optionsJSON)
	if err != nil {
		return err
	}
	var preselected []string
	if checkedItem >= 0 && checkedItem < len(options) {
		preselected = []string{options[checkedItem]}
	}

	return b.spawn(models.KindSingleChoice, requestID, func(ctx context.Context) (string, error) {
		picked, ok, err := b.choose(ctx, chooseScript(title, "", options, preselected, positive, negative, false), options)
		if err != nil {
			return "", err
		}
		if !ok || len(picked) == 0 {
			return newPayload(negative).set("checkedItem", -1).String()
		}
		return newPayload(positive).set("checkedItem", picked[0]).String()
	})
}

func (b *Backend) ShowMultiChoiceDialog(requestID, title, optionsJSON, checkedJSON, positive, negative string, _ bool) error {
	options, err := parseStrings(optionsJSON)
	if err != nil {
		return err
	}
	checked, err := parseInts(checkedJSON)
	if err != nil {
		return err
	}
	var preselected []string
	for _, idx := range checked {
		if idx >= 0 && idx < len(options) {
			preselected = append(preselected, options[idx])
		}
	}

	return b.spawn(models.KindMultiChoice, requestID, func(ctx context.Context) (string, error) {
		picked, ok, err := b.choose(ctx, chooseScript(title, "", options, preselected, positive, negative, true), options)
		if err != nil {
			return "", err
		}
		if !ok {
			return newPayload(negative).set("checkedItems", []int{}).String()
		}
		return newPayload(positive).set("checkedItems", picked).String()
	})
}

func (b *Backend) prompt(ctx context.Context, script, cancel string) (button, text string, err error) {
	out, err := b.run(ctx, script)
	switch {
	case errors.Is(err, ErrUserCanceled):
		return cancel, "", nil
	case err != nil:
		return "", "", err
	}
	button, text = splitAnswer(out)
	return button, text, nil
}

func (b *Backend) choose(ctx context.Context, script string, options []string) ([]int, bool, error) {
	out, err := b.run(ctx, script)
	switch {
	case errors.Is(err, ErrUserCanceled):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return chosenIndices(out, options)
}

// spawn runs job on its own goroutine and reports its outcome to the sink.
func (b *Backend) spawn(kind models.DialogKind, requestID string, job func(context.Context) (string, error)) error {
	if b.ctx.Err() != nil {
		return ErrClosed
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		payload, err := job(b.ctx)
		switch {
		case errors.Is(err, ErrUserCanceled):
			b.sink.HandleDismissed(requestID)
		case err != nil:
			b.logger.Error("osascript dialog failed", "kind", kind, "request", requestID, "err", err)
			b.sink.HandleCallback(kind, requestID, failurePayload(err))
		default:
			b.sink.HandleCallback(kind, requestID, payload)
		}
	}()
	return nil
}

type payload struct {
	s   string
	err error
}

func newPayload(button string) *payload {
	return (&payload{}).set("buttonPressed", button)
}

func (p *payload) set(key string, v any) *payload {
	if p.err == nil {
		p.s, p.err = sjson.Set(p.s, key, v)
	}
	return p
}

func (p *payload) String() (string, error) {
	return p.s, p.err
}

func failurePayload(err error) string {
	out, _ := sjson.Set(`{"success":false}`, "error", err.Error())
	return out
}

func parseStrings(raw string) ([]string, error) {
	res := gjson.Parse(raw)
	if !gjson.Valid(raw) || !res.IsArray() {
		return nil, fmt.Errorf("osascript: options are not a JSON array: %q", raw)
	}
	var out []string
	for _, v := range res.Array() {
		if v.Type != gjson.String {
			return nil, fmt.Errorf("osascript: option %s is not a string", v.Raw)
		}
		out = append(out, v.String())
	}
	return out, nil
}

func parseInts(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	res := gjson.Parse(raw)
	if !gjson.Valid(raw) || !res.IsArray() {
		return nil, fmt.Errorf("osascript: checked items are not a JSON array: %q", raw)
	}
	var out []int
	for _, v := range res.Array() {
		if v.Type != gjson.Number {
			return nil, fmt.Errorf("osascript: checked item %s is not a number", v.Raw)
		}
		out = append(out, int(v.Int()))
	}
	return out, nil
}

func joinLines(lines ...string) string {
	var kept []string
	for _, l := range lines {
		if l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n\n")
}
