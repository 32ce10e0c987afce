package dialogs

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arko-chat/nativetoolkit/internal/bridge"
	"github.com/arko-chat/nativetoolkit/internal/dispatcher"
	"github.com/arko-chat/nativetoolkit/internal/localization"
	"github.com/arko-chat/nativetoolkit/internal/models"
)

type nativeCall struct {
	method string
	id     string
	args   []any
}

type fakeNative struct {
	mu    sync.Mutex
	calls []nativeCall
	err   error
}

func (f *fakeNative) record(method, id string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, nativeCall{method: method, id: id, args: args})
	return f.err
}

func (f *fakeNative) Calls() []nativeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]nativeCall(nil), f.calls...)
}

func (f *fakeNative) ShowDialog(id, title, message, button string) error {
	return f.record("ShowDialog", id, title, message, button)
}

func (f *fakeNative) ShowConfirmationDialog(id, title, message, confirm, cancel string) error {
	return f.record("ShowConfirmationDialog", id, title, message, confirm, cancel)
}

func (f *fakeNative) ShowDestructiveDialog(id, title, message, destructive, cancel string) error {
	return f.record("ShowDestructiveDialog", id, title, message, destructive, cancel)
}

func (f *fakeNative) ShowActionSheet(id, title, message, options, cancel string) error {
	return f.record("ShowActionSheet", id, title, message, options, cancel)
}

func (f *fakeNative) ShowTextInputDialog(id, title, message, placeholder, confirm, cancel string, allowEmpty bool) error {
	return f.record("ShowTextInputDialog", id, title, message, placeholder, confirm, cancel, allowEmpty)
}

func (f *fakeNative) ShowLoginDialog(id, title, message, userPlaceholder, passPlaceholder, login, cancel string) error {
	return f.record("ShowLoginDialog", id, title, message, userPlaceholder, passPlaceholder, login, cancel)
}

func (f *fakeNative) ShowSingleChoiceDialog(id, title, options string, checked int, positive, negative string, cancelable bool) error {
	return f.record("ShowSingleChoiceDialog", id, title, options, checked, positive, negative, cancelable)
}

func (f *fakeNative) ShowMultiChoiceDialog(id, title, options, checked, positive, negative string, cancelable bool) error {
	return f.record("ShowMultiChoiceDialog", id, title, options, checked, positive, negative, cancelable)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManager(t *testing.T, p models.Platform, opts ...Option) (*Manager, *dispatcher.Dispatcher, *fakeNative) {
	t.Helper()
	native := &fakeNative{}
	d := dispatcher.New(quietLogger())
	base := []Option{
		WithLogger(quietLogger()),
		WithDispatcher(d),
		WithNative(func() (bridge.NativeDialogs, error) { return native, nil }),
	}
	return NewManager(p, append(base, opts...)...), d, native
}

func drain(t *testing.T, d *dispatcher.Dispatcher) int {
	t.Helper()
	n, err := d.Drain()
	require.NoError(t, err)
	return n
}

func TestTextInputRoundTrip(t *testing.T) {
	m, d, native := newTestManager(t, models.PlatformIOS)

	var got []models.TextInputResult
	m.TextInputResult.Subscribe(func(r models.TextInputResult) { got = append(got, r) })

	id, err := m.ShowTextInputDialog(models.TextInputDialog{
		Title:         "Enter Name",
		Message:       "Please enter your name",
		Placeholder:   "placeholder",
		ConfirmButton: "OK",
		CancelButton:  "Cancel",
		AllowEmpty:    false,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, StateAwaitingNativeCallback, m.State())
	assert.Equal(t, id, m.Outstanding())

	calls := native.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "ShowTextInputDialog", calls[0].method)
	assert.Equal(t, id, calls[0].id)
	assert.Equal(t, []any{"Enter Name", "Please enter your name", "placeholder", "OK", "Cancel", false}, calls[0].args)

	m.HandleTextInputCallback(id, `{"buttonPressed":"OK","inputText":"Alice"}`)
	assert.Equal(t, StateIdle, m.State())
	assert.Empty(t, got, "events fire only while draining")

	assert.Equal(t, 1, drain(t, d))
	require.Len(t, got, 1)
	assert.Equal(t, models.TextInputResult{
		DialogResult: models.DialogResult{
			RequestID:     id,
			ButtonPressed: "OK",
			Success:       true,
			ErrorMessage:  "",
		},
		InputText: "Alice",
	}, got[0])
}

func TestDelimitedPayload(t *testing.T) {
	m, d, _ := newTestManager(t, models.PlatformIOS)

	var got models.TextInputResult
	m.TextInputResult.Subscribe(func(r models.TextInputResult) { got = r })

	id, err := m.ShowTextInputDialog(models.TextInputDialog{Title: "Name"})
	require.NoError(t, err)

	m.HandleTextInputCallback(id, "OK|Alice|Smith")
	drain(t, d)

	assert.True(t, got.Success)
	assert.Equal(t, "OK", got.ButtonPressed)
	assert.Equal(t, "Alice|Smith", got.InputText)
}

func TestInvalidDefaultIndexFailsSynchronously(t *testing.T) {
	m, d, native := newTestManager(t, models.PlatformAndroid)

	_, err := m.ShowSingleChoiceItemDialog(models.SingleChoiceDialog{
		Title:       "Pick",
		Options:     []string{"A", "B"},
		CheckedItem: 5,
	})
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Empty(t, native.Calls())
	assert.Zero(t, d.Pending())
	assert.Equal(t, StateIdle, m.State())
}

func TestInvalidArguments(t *testing.T) {
	m, _, native := newTestManager(t, models.PlatformMacOS, WithLabels(localization.Labels{}))

	cases := map[string]func() (string, error){
		"empty button": func() (string, error) {
			return m.ShowDialog(models.BasicDialog{Title: "t"})
		},
		"same labels": func() (string, error) {
			return m.ShowConfirmationDialog(models.ConfirmationDialog{ConfirmButton: "OK", CancelButton: "OK"})
		},
		"no options": func() (string, error) {
			return m.ShowActionSheet(models.ActionSheet{CancelButton: "Cancel"})
		},
		"empty option": func() (string, error) {
			return m.ShowActionSheet(models.ActionSheet{Options: []string{"A", ""}, CancelButton: "Cancel"})
		},
		"cancel duplicates option": func() (string, error) {
			return m.ShowActionSheet(models.ActionSheet{Options: []string{"Cancel"}, CancelButton: "Cancel"})
		},
		"negative single index": func() (string, error) {
			return m.ShowSingleChoiceItemDialog(models.SingleChoiceDialog{
				Options: []string{"A"}, CheckedItem: -2, PositiveButton: "OK", NegativeButton: "No",
			})
		},
		"multi index out of range": func() (string, error) {
			return m.ShowMultiChoiceItemDialog(models.MultiChoiceDialog{
				Options: []string{"A", "B"}, CheckedItems: []int{2}, PositiveButton: "OK", NegativeButton: "No",
			})
		},
		"multi index repeated": func() (string, error) {
			return m.ShowMultiChoiceItemDialog(models.MultiChoiceDialog{
				Options: []string{"A", "B"}, CheckedItems: []int{1, 1}, PositiveButton: "OK", NegativeButton: "No",
			})
		},
		"login without cancel": func() (string, error) {
			return m.ShowLoginDialog(models.LoginDialog{LoginButton: "Go"})
		},
	}

	for name, show := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := show()
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
	assert.Empty(t, native.Calls())
}

func TestBusyRejectsSecondRequest(t *testing.T) {
	m, d, native := newTestManager(t, models.PlatformIOS)

	first, err := m.ShowDialog(models.BasicDialog{Title: "one"})
	require.NoError(t, err)

	_, err = m.ShowDialog(models.BasicDialog{Title: "two"})
	require.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Len(t, native.Calls(), 1)

	m.HandleDialogCallback(first, "OK")
	drain(t, d)

	_, err = m.ShowDialog(models.BasicDialog{Title: "three"})
	assert.NoError(t, err)
}

func TestDuplicateAndUnknownCallbacksAreDropped(t *testing.T) {
	m, d, _ := newTestManager(t, models.PlatformIOS)

	calls := 0
	m.DialogResult.Subscribe(func(models.DialogResult) { calls++ })

	id, err := m.ShowDialog(models.BasicDialog{Title: "t"})
	require.NoError(t, err)

	m.HandleDialogCallback("not-a-request", "OK")
	m.HandleDialogCallback(id, "OK")
	m.HandleDialogCallback(id, "OK")
	drain(t, d)
	drain(t, d)

	assert.Equal(t, 1, calls)
}

func TestCallbacksFromManyGoroutinesDeliverOnce(t *testing.T) {
	m, d, _ := newTestManager(t, models.PlatformIOS)

	calls := 0
	m.ConfirmationResult.Subscribe(func(models.ConfirmationResult) { calls++ })

	id, err := m.ShowConfirmationDialog(models.ConfirmationDialog{Title: "t"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.HandleConfirmationCallback(id, "OK")
		}()
	}
	wg.Wait()
	drain(t, d)

	assert.Equal(t, 1, calls)
}

func TestNativeCallFailureIsDeliveredAsEvent(t *testing.T) {
	m, d, native := newTestManager(t, models.PlatformIOS)
	native.err = errors.New("permission denied")

	var got []models.DialogResult
	m.DialogResult.Subscribe(func(r models.DialogResult) { got = append(got, r) })

	id, err := m.ShowDialog(models.BasicDialog{Title: "t"})
	require.NoError(t, err)
	assert.Equal(t, StateIdle, m.State())

	drain(t, d)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].RequestID)
	assert.False(t, got[0].Success)
	assert.Equal(t, "dialogs: native call failed: permission denied", got[0].ErrorMessage)
}

func TestUnsupportedByNativeLayerIsUnavailable(t *testing.T) {
	m, d, native := newTestManager(t, models.PlatformIOS)
	native.err = fmt.Errorf("ios: %w", bridge.ErrUnsupported)

	_, err := m.ShowDialog(models.BasicDialog{Title: "t"})
	require.ErrorIs(t, err, ErrNativeUnavailable)
	assert.Equal(t, StateIdle, m.State())
	assert.Zero(t, d.Pending())
}

func TestUnavailableKindAndBridge(t *testing.T) {
	m, _, native := newTestManager(t, models.PlatformWindows)
	assert.False(t, m.Supports(models.KindLogin))

	_, err := m.ShowLoginDialog(models.LoginDialog{Title: "t"})
	require.ErrorIs(t, err, ErrNativeUnavailable)
	assert.Empty(t, native.Calls())

	unregistered := NewManager(models.PlatformAndroid,
		WithLogger(quietLogger()),
		WithDispatcher(dispatcher.New(quietLogger())),
	)
	_, err = unregistered.ShowDialog(models.BasicDialog{Title: "t"})
	require.ErrorIs(t, err, ErrNativeUnavailable)
	assert.ErrorIs(t, err, bridge.ErrNotRegistered)
}

func TestTimeoutSynthesizesFailure(t *testing.T) {
	m, d, _ := newTestManager(t, models.PlatformIOS, WithTimeout(20*time.Millisecond))

	var got []models.LoginResult
	m.LoginResult.Subscribe(func(r models.LoginResult) { got = append(got, r) })

	id, err := m.ShowLoginDialog(models.LoginDialog{Title: "Sign in"})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return d.Pending() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, StateIdle, m.State())

	m.HandleLoginCallback(id, "Log In|alice|secret")
	drain(t, d)

	require.Len(t, got, 1)
	assert.False(t, got[0].Success)
	assert.Contains(t, got[0].ErrorMessage, ErrTimeout.Error())
	assert.Empty(t, got[0].Username)
}

func TestDismissalSynthesizesCancellation(t *testing.T) {
	m, d, _ := newTestManager(t, models.PlatformAndroid)

	var got []models.SingleChoiceResult
	m.SingleChoiceResult.Subscribe(func(r models.SingleChoiceResult) { got = append(got, r) })

	id, err := m.ShowSingleChoiceItemDialog(models.SingleChoiceDialog{
		Title:       "Pick",
		Options:     []string{"A", "B"},
		CheckedItem: 1,
		Cancelable:  true,
	})
	require.NoError(t, err)

	m.HandleDismissed(id)
	m.HandleDismissed(id)
	drain(t, d)

	require.Len(t, got, 1)
	assert.Equal(t, models.SingleChoiceResult{
		DialogResult: models.DialogResult{
			RequestID:     id,
			ButtonPressed: "Cancel",
			Success:       true,
			Dismissed:     true,
		},
		CheckedItem: -1,
	}, got[0])
}

func TestDismissedPayload(t *testing.T) {
	m, d, _ := newTestManager(t, models.PlatformIOS)

	var got models.ConfirmationResult
	m.ConfirmationResult.Subscribe(func(r models.ConfirmationResult) { got = r })

	id, err := m.ShowConfirmationDialog(models.ConfirmationDialog{ConfirmButton: "Yes", CancelButton: "No"})
	require.NoError(t, err)

	m.HandleConfirmationCallback(id, `{"dismissed":true}`)
	drain(t, d)

	assert.True(t, got.Dismissed)
	assert.False(t, got.Confirmed)
	assert.Equal(t, "No", got.ButtonPressed)
}

func TestDecodeErrorIsDeliveredAsFailure(t *testing.T) {
	m, d, _ := newTestManager(t, models.PlatformAndroid)

	var got []models.MultiChoiceResult
	m.MultiChoiceResult.Subscribe(func(r models.MultiChoiceResult) { got = append(got, r) })

	id, err := m.ShowMultiChoiceItemDialog(models.MultiChoiceDialog{Options: []string{"A", "B"}})
	require.NoError(t, err)

	m.HandleMultiChoiceCallback(id, `{"buttonPressed":"OK","checkedItems":[0,7]}`)
	drain(t, d)

	require.Len(t, got, 1)
	assert.False(t, got[0].Success)
	assert.Contains(t, got[0].ErrorMessage, ErrCallbackDecode.Error())
	assert.Equal(t, []int{}, got[0].CheckedItems)
}

func TestCallbackForWrongKindFailsRequest(t *testing.T) {
	m, d, _ := newTestManager(t, models.PlatformIOS)

	var got []models.TextInputResult
	m.TextInputResult.Subscribe(func(r models.TextInputResult) { got = append(got, r) })
	basic := 0
	m.DialogResult.Subscribe(func(models.DialogResult) { basic++ })

	id, err := m.ShowTextInputDialog(models.TextInputDialog{})
	require.NoError(t, err)

	m.HandleDialogCallback(id, "OK")
	drain(t, d)

	require.Len(t, got, 1)
	assert.False(t, got[0].Success)
	assert.Contains(t, got[0].ErrorMessage, "basic callback for a text_input request")
	assert.Zero(t, basic)
}

func TestPanickingSubscriberDoesNotBlockOthers(t *testing.T) {
	m, d, _ := newTestManager(t, models.PlatformIOS)

	var got []string
	m.DialogResult.Subscribe(func(models.DialogResult) { panic("listener bug") })
	m.DialogResult.Subscribe(func(r models.DialogResult) { got = append(got, r.ButtonPressed) })

	id, err := m.ShowDialog(models.BasicDialog{Button: "Fine"})
	require.NoError(t, err)
	m.HandleDialogCallback(id, "Fine")
	drain(t, d)

	assert.Equal(t, []string{"Fine"}, got)
}

func TestUnsubscribedListenerIsNotCalled(t *testing.T) {
	m, d, _ := newTestManager(t, models.PlatformIOS)

	calls := 0
	tok := m.DialogResult.Subscribe(func(models.DialogResult) { calls++ })
	require.True(t, m.DialogResult.Unsubscribe(tok))

	id, err := m.ShowDialog(models.BasicDialog{})
	require.NoError(t, err)
	m.HandleDialogCallback(id, "OK")
	drain(t, d)

	assert.Zero(t, calls)
}

func TestDefaultLabelsFollowLocale(t *testing.T) {
	m, _, native := newTestManager(t, models.PlatformIOS,
		WithLabels(localization.Default().Labels("fr")),
	)

	_, err := m.ShowDestructiveDialog(models.DestructiveDialog{Title: "Supprimer ?"})
	require.NoError(t, err)

	calls := native.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []any{"Supprimer ?", "", "Supprimer", "Annuler"}, calls[0].args)
}

func TestOptionListsAreSentAsJSON(t *testing.T) {
	m, _, native := newTestManager(t, models.PlatformAndroid)

	_, err := m.ShowMultiChoiceItemDialog(models.MultiChoiceDialog{
		Title:        "Toppings",
		Options:      []string{"Cheese", "Ham", "Olives"},
		CheckedItems: []int{2, 0},
		Cancelable:   true,
	})
	require.NoError(t, err)

	calls := native.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []any{"Toppings", `["Cheese","Ham","Olives"]`, `[0,2]`, "OK", "Cancel", true}, calls[0].args)
}

func TestPlatformSingletons(t *testing.T) {
	a := IOS()
	assert.Same(t, a, IOS())
	assert.NotSame(t, a, Android())
	assert.Equal(t, models.PlatformIOS, a.Platform())

	require.True(t, Release(models.PlatformIOS))
	b := IOS()
	assert.NotSame(t, a, b)
	t.Cleanup(func() { Release(models.PlatformIOS) })
}
