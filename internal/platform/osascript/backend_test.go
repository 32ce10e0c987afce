package osascript

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/arko-chat/nativetoolkit/internal/models"
)

type answer struct {
	kind      models.DialogKind
	id        string
	payload   string
	dismissed bool
}

type recordingSink struct {
	answers chan answer
}

func newSink() *recordingSink {
	return &recordingSink{answers: make(chan answer, 4)}
}

func (s *recordingSink) HandleCallback(kind models.DialogKind, id, payload string) {
	s.answers <- answer{kind: kind, id: id, payload: payload}
}

func (s *recordingSink) HandleDismissed(id string) {
	s.answers <- answer{id: id, dismissed: true}
}

func (s *recordingSink) next(t *testing.T) answer {
	t.Helper()
	select {
	case a := <-s.answers:
		return a
	case <-time.After(time.Second):
		t.Fatal("no answer reported")
		return answer{}
	}
}

type scriptedRunner struct {
	mu      sync.Mutex
	replies []reply
	scripts []string
}

type reply struct {
	out string
	err error
}

func (r *scriptedRunner) run(_ context.Context, script string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scripts = append(r.scripts, script)
	if len(r.replies) == 0 {
		return "", errors.New("unexpected script")
	}
	next := r.replies[0]
	r.replies = r.replies[1:]
	return next.out, next.err
}

func (r *scriptedRunner) Scripts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.scripts...)
}

func newTestBackend(t *testing.T, replies ...reply) (*Backend, *recordingSink, *scriptedRunner) {
	t.Helper()
	sink := newSink()
	runner := &scriptedRunner{replies: replies}
	b := New(sink,
		WithRunner(runner.run),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	t.Cleanup(b.Close)
	return b, sink, runner
}

func TestBasicDialog(t *testing.T) {
	b, sink, runner := newTestBackend(t, reply{out: "Got it"})

	require.NoError(t, b.ShowDialog("r1", "Hello", "World", "Got it"))
	a := sink.next(t)
	assert.Equal(t, models.KindBasic, a.kind)
	assert.Equal(t, "r1", a.id)
	assert.JSONEq(t, `{"buttonPressed":"Got it"}`, a.payload)

	scripts := runner.Scripts()
	require.Len(t, scripts, 1)
	assert.Contains(t, scripts[0], `display dialog "World" with title "Hello" buttons {"Got it"}`)
}

func TestConfirmCancelButtonIsAnAnswer(t *testing.T) {
	b, sink, _ := newTestBackend(t, reply{err: ErrUserCanceled})

	require.NoError(t, b.ShowConfirmationDialog("r1", "Sure?", "", "Yes", "No"))
	a := sink.next(t)
	assert.False(t, a.dismissed)
	assert.JSONEq(t, `{"buttonPressed":"No","confirmed":false}`, a.payload)
}

func TestDestructiveDefaultsToCancel(t *testing.T) {
	b, sink, runner := newTestBackend(t, reply{out: "Delete"})

	require.NoError(t, b.ShowDestructiveDialog("r1", "Delete file?", "", "Delete", "Keep"))
	a := sink.next(t)
	assert.JSONEq(t, `{"buttonPressed":"Delete","confirmed":true}`, a.payload)
	assert.Contains(t, runner.Scripts()[0], `default button "Keep" cancel button "Keep" with icon caution`)
}

func TestTextInputRepromptsOnEmpty(t *testing.T) {
	b, sink, runner := newTestBackend(t,
		reply{out: "OK\n"},
		reply{out: "OK\nAlice\nSmith"},
	)

	require.NoError(t, b.ShowTextInputDialog("r1", "Name", "Who?", "placeholder", "OK", "Cancel", false))
	a := sink.next(t)
	assert.Equal(t, "OK", gjson.Get(a.payload, "buttonPressed").String())
	assert.Equal(t, "Alice\nSmith", gjson.Get(a.payload, "inputText").String())
	assert.Len(t, runner.Scripts(), 2)
}

func TestLoginUsesHiddenPasswordPrompt(t *testing.T) {
	b, sink, runner := newTestBackend(t,
		reply{out: "Log In\nalice"},
		reply{out: "Log In\nse|cret"},
	)

	require.NoError(t, b.ShowLoginDialog("r1", "Sign in", "", "Username", "Password", "Log In", "Cancel"))
	a := sink.next(t)
	assert.JSONEq(t, `{"buttonPressed":"Log In","username":"alice","password":"se|cret"}`, a.payload)

	scripts := runner.Scripts()
	require.Len(t, scripts, 2)
	assert.NotContains(t, scripts[0], "hidden answer")
	assert.Contains(t, scripts[1], "with hidden answer")
}

func TestLoginCanceledAtPassword(t *testing.T) {
	b, sink, _ := newTestBackend(t,
		reply{out: "Log In\nalice"},
		reply{err: ErrUserCanceled},
	)

	require.NoError(t, b.ShowLoginDialog("r1", "", "", "Username", "Password", "Log In", "Cancel"))
	assert.JSONEq(t, `{"buttonPressed":"Cancel"}`, sink.next(t).payload)
}

func TestActionSheet(t *testing.T) {
	b, sink, _ := newTestBackend(t, reply{out: "picked\nShare"})

	require.NoError(t, b.ShowActionSheet("r1", "", "Do what?", `["Copy","Share"]`, "Cancel"))
	assert.JSONEq(t, `{"buttonPressed":"Share","selectedIndex":1}`, sink.next(t).payload)
}

func TestActionSheetCanceled(t *testing.T) {
	b, sink, _ := newTestBackend(t, reply{out: "canceled"})

	require.NoError(t, b.ShowActionSheet("r1", "", "", `["Copy"]`, "Cancel"))
	assert.JSONEq(t, `{"buttonPressed":"Cancel","selectedIndex":-1}`, sink.next(t).payload)
}

func TestSingleChoicePreselects(t *testing.T) {
	b, sink, runner := newTestBackend(t, reply{out: "picked\nC"})

	require.NoError(t, b.ShowSingleChoiceDialog("r1", "Pick", `["A","B","C"]`, 1, "Use", "Back", true))
	assert.JSONEq(t, `{"buttonPressed":"Use","checkedItem":2}`, sink.next(t).payload)
	assert.Contains(t, runner.Scripts()[0], `default items {"B"}`)
}

func TestMultiChoice(t *testing.T) {
	b, sink, runner := newTestBackend(t, reply{out: "picked\nA\nA"})

	require.NoError(t, b.ShowMultiChoiceDialog("r1", "Pick", `["A","B","A"]`, `[1]`, "OK", "Cancel", true))
	assert.JSONEq(t, `{"buttonPressed":"OK","checkedItems":[0,2]}`, sink.next(t).payload)
	assert.Contains(t, runner.Scripts()[0], "with multiple selections allowed")
}

func TestMultiChoiceCanceled(t *testing.T) {
	b, sink, _ := newTestBackend(t, reply{err: ErrUserCanceled})

	require.NoError(t, b.ShowMultiChoiceDialog("r1", "Pick", `["A"]`, `[]`, "OK", "Cancel", true))
	assert.JSONEq(t, `{"buttonPressed":"Cancel","checkedItems":[]}`, sink.next(t).payload)
}

func TestBadOptionsFailSynchronously(t *testing.T) {
	b, _, runner := newTestBackend(t)

	assert.Error(t, b.ShowActionSheet("r1", "", "", `["A",`, "Cancel"))
	assert.Error(t, b.ShowSingleChoiceDialog("r1", "", `[1,2]`, 0, "OK", "Cancel", true))
	assert.Error(t, b.ShowMultiChoiceDialog("r1", "", `["A"]`, `["0"]`, "OK", "Cancel", true))
	assert.Empty(t, runner.Scripts())
}

func TestScriptFailureIsReported(t *testing.T) {
	b, sink, _ := newTestBackend(t, reply{err: errors.New("osascript: exit status 1")})

	require.NoError(t, b.ShowDialog("r1", "", "Hi", "OK"))
	a := sink.next(t)
	assert.False(t, gjson.Get(a.payload, "success").Bool())
	assert.Equal(t, "osascript: exit status 1", gjson.Get(a.payload, "error").String())
}

func TestBasicDialogEscapeIsDismissal(t *testing.T) {
	b, sink, _ := newTestBackend(t, reply{err: ErrUserCanceled})

	require.NoError(t, b.ShowDialog("r1", "", "Hi", "OK"))
	assert.True(t, sink.next(t).dismissed)
}

func TestClosedBackendRejectsDialogs(t *testing.T) {
	b, _, _ := newTestBackend(t)
	b.Close()
	assert.ErrorIs(t, b.ShowDialog("r1", "", "", "OK"), ErrClosed)
}

func TestCloseCancelsRunningScript(t *testing.T) {
	sink := newSink()
	started := make(chan struct{})
	b := New(sink, WithRunner(func(ctx context.Context, _ string) (string, error) {
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	}))

	require.NoError(t, b.ShowDialog("r1", "", "", "OK"))
	<-started
	b.Close()

	a := sink.next(t)
	assert.True(t, strings.Contains(gjson.Get(a.payload, "error").String(), "canceled"))
}
