package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/arko-chat/nativetoolkit/internal/dialogs"
	"github.com/arko-chat/nativetoolkit/internal/dispatcher"
	"github.com/arko-chat/nativetoolkit/internal/localization"
	"github.com/arko-chat/nativetoolkit/internal/models"
)

type showFlags struct {
	kind        string
	title       string
	message     string
	options     []string
	checked     []int
	placeholder string
	allowEmpty  bool
	timeout     time.Duration
}

func runShow(ctx context.Context, env *environment, args []string) error {
	var f showFlags
	fs := newFlags("show")
	fs.StringVarP(&f.kind, "kind", "k", string(models.KindBasic), "dialog kind")
	fs.StringVarP(&f.title, "title", "t", "", "dialog title")
	fs.StringVarP(&f.message, "message", "m", "", "dialog message")
	fs.StringSliceVarP(&f.options, "option", "o", nil, "option label, repeatable")
	fs.IntSliceVar(&f.checked, "checked", nil, "preselected option indexes")
	fs.StringVar(&f.placeholder, "placeholder", "", "text field placeholder")
	fs.BoolVar(&f.allowEmpty, "allow-empty", false, "accept empty text input")
	fs.DurationVar(&f.timeout, "timeout", time.Duration(env.cfg.DialogTimeout), "time to wait for an answer, 0 waits forever")
	if err := fs.Parse(args); err != nil {
		return err
	}

	kind, err := models.ParseDialogKind(f.kind)
	if err != nil {
		return err
	}

	platform, err := nativePlatform()
	if err != nil {
		return err
	}
	dialogs.Configure(
		dialogs.WithLogger(env.logger),
		dialogs.WithTimeout(f.timeout),
		dialogs.WithLabels(localization.Default().Labels(env.cfg.Locale)),
	)
	mgr := dialogs.For(platform)

	closeNative, err := registerNative(mgr, env.logger)
	if err != nil {
		return err
	}
	defer closeNative()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var result any
	record := func(v any) {
		result = v
		cancel()
	}
	subscribeAll(mgr, record)

	id, err := showKind(mgr, kind, f)
	if err != nil {
		return err
	}
	env.logger.Debug("native dialog shown", "kind", kind, "request_id", id)

	if err := dispatcher.Default().Run(ctx, 0); quiet(err) != nil {
		return err
	}
	if result == nil {
		return ctx.Err()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func subscribeAll(mgr *dialogs.Manager, record func(any)) {
	mgr.DialogResult.Subscribe(func(r models.DialogResult) { record(r) })
	mgr.ConfirmationResult.Subscribe(func(r models.ConfirmationResult) { record(r) })
	mgr.DestructiveResult.Subscribe(func(r models.DestructiveResult) { record(r) })
	mgr.ActionSheetResult.Subscribe(func(r models.ActionSheetResult) { record(r) })
	mgr.TextInputResult.Subscribe(func(r models.TextInputResult) { record(r) })
	mgr.LoginResult.Subscribe(func(r models.LoginResult) { record(r) })
	mgr.SingleChoiceResult.Subscribe(func(r models.SingleChoiceResult) { record(r) })
	mgr.MultiChoiceResult.Subscribe(func(r models.MultiChoiceResult) { record(r) })
}

func showKind(mgr *dialogs.Manager, kind models.DialogKind, f showFlags) (string, error) {
	switch kind {
	case models.KindBasic:
		return mgr.ShowDialog(models.BasicDialog{Title: f.title, Message: f.message})
	case models.KindConfirm:
		return mgr.ShowConfirmationDialog(models.ConfirmationDialog{Title: f.title, Message: f.message})
	case models.KindDestructive:
		return mgr.ShowDestructiveDialog(models.DestructiveDialog{Title: f.title, Message: f.message})
	case models.KindActionSheet:
		return mgr.ShowActionSheet(models.ActionSheet{Title: f.title, Message: f.message, Options: f.options})
	case models.KindTextInput:
		return mgr.ShowTextInputDialog(models.TextInputDialog{
			Title: f.title, Message: f.message, Placeholder: f.placeholder, AllowEmpty: f.allowEmpty,
		})
	case models.KindLogin:
		return mgr.ShowLoginDialog(models.LoginDialog{Title: f.title, Message: f.message})
	case models.KindSingleChoice:
		checked := -1
		if len(f.checked) > 0 {
			checked = f.checked[0]
		}
		return mgr.ShowSingleChoiceItemDialog(models.SingleChoiceDialog{
			Title: f.title, Options: f.options, CheckedItem: checked, Cancelable: true,
		})
	case models.KindMultiChoice:
		return mgr.ShowMultiChoiceItemDialog(models.MultiChoiceDialog{
			Title: f.title, Options: f.options, CheckedItems: f.checked, Cancelable: true,
		})
	default:
		return "", fmt.Errorf("unknown dialog kind %q", kind)
	}
}
