package dialogs

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/arko-chat/nativetoolkit/internal/models"
)

// Native payloads arrive in one of two encodings:
//
//	{"buttonPressed":"OK","inputText":"Alice"}    JSON object
//	OK|Alice                                      label, then kind fields
//
// A JSON payload may carry "success":false or "error" to report a native
// failure, or "dismissed":true for a dialog closed without a button. The
// delimited form reports failures as "error:<message>".
const (
	fieldSep    = "|"
	listSep     = ","
	errorPrefix = "error:"
)

type wire struct {
	base      models.DialogResult
	json      gjson.Result
	isJSON    bool
	rest      []string
	failed    bool
	dismissed bool
}

// parseWire splits raw into the common result and the kind fields. fields
// is the number of delimited fields the kind uses, label included; the last
// field keeps any further separators.
func parseWire(id, raw string, fields int) (wire, error) {
	w := wire{base: models.DialogResult{RequestID: id}}

	trimmed := strings.TrimSpace(raw)
	switch {
	case trimmed == "":
		return w, errors.New("empty payload")

	case strings.HasPrefix(trimmed, "{"):
		if !gjson.Valid(trimmed) {
			return w, errors.New("malformed JSON payload")
		}
		res := gjson.Parse(trimmed)
		if !res.IsObject() {
			return w, errors.New("payload is not a JSON object")
		}
		w.isJSON = true
		w.json = res

		if res.Get("dismissed").Bool() {
			w.dismissed = true
			return w, nil
		}

		msg := res.Get("error").String()
		success := res.Get("success")
		if msg != "" || (success.Exists() && !success.Bool()) {
			if msg == "" {
				msg = "native dialog reported failure"
			}
			w.failed = true
			w.base.ButtonPressed = res.Get("buttonPressed").String()
			w.base.ErrorMessage = fmt.Errorf("%w: %s", ErrNativeCall, msg).Error()
			return w, nil
		}

		btn := res.Get("buttonPressed")
		if btn.Type != gjson.String || btn.String() == "" {
			return w, errors.New("buttonPressed missing or not a string")
		}
		w.base.ButtonPressed = btn.String()
		w.base.Success = true
		return w, nil

	case strings.HasPrefix(trimmed, errorPrefix):
		w.failed = true
		msg := strings.TrimSpace(strings.TrimPrefix(trimmed, errorPrefix))
		if msg == "" {
			msg = "native dialog reported failure"
		}
		w.base.ErrorMessage = fmt.Errorf("%w: %s", ErrNativeCall, msg).Error()
		return w, nil

	default:
		parts := strings.SplitN(raw, fieldSep, max(fields, 1))
		if parts[0] == "" {
			return w, errors.New("empty button label")
		}
		w.base.ButtonPressed = parts[0]
		w.base.Success = true
		w.rest = parts[1:]
		return w, nil
	}
}

// field returns the JSON key or the i-th delimited kind field.
func (w wire) field(key string, i int) (gjson.Result, string, bool) {
	if w.isJSON {
		r := w.json.Get(key)
		return r, "", r.Exists()
	}
	if i < len(w.rest) {
		return gjson.Result{}, w.rest[i], true
	}
	return gjson.Result{}, "", false
}

func (w wire) stringField(key string, i int) (string, error) {
	r, s, ok := w.field(key, i)
	if !ok {
		return "", nil
	}
	if w.isJSON {
		if r.Type != gjson.String {
			return "", fmt.Errorf("%s is not a string", key)
		}
		return r.String(), nil
	}
	return s, nil
}

func (w wire) intField(key string, i int) (int, bool, error) {
	r, s, ok := w.field(key, i)
	if !ok {
		return 0, false, nil
	}
	if w.isJSON {
		if r.Type != gjson.Number {
			return 0, false, fmt.Errorf("%s is not a number", key)
		}
		return int(r.Int()), true, nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return n, true, nil
}

func (w wire) intsField(key string, i int) ([]int, error) {
	r, s, ok := w.field(key, i)
	if !ok {
		return []int{}, nil
	}

	out := []int{}
	if w.isJSON {
		if !r.IsArray() {
			return nil, fmt.Errorf("%s is not an array", key)
		}
		for _, v := range r.Array() {
			if v.Type != gjson.Number {
				return nil, fmt.Errorf("%s holds a non-number", key)
			}
			out = append(out, int(v.Int()))
		}
	} else {
		for _, part := range strings.Split(s, listSep) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

func checkIndex(key string, idx, n int, allowNone bool) error {
	if allowNone && idx == -1 {
		return nil
	}
	if idx < 0 || idx >= n {
		return fmt.Errorf("%s %d out of range [0,%d)", key, idx, n)
	}
	return nil
}

func decodeBasic(_ *pendingRequest, w wire) (models.DialogResult, error) {
	return w.base, nil
}

func confirmed(w wire, affirm string) (bool, error) {
	if w.isJSON {
		if r := w.json.Get("confirmed"); r.Exists() {
			if r.Type != gjson.True && r.Type != gjson.False {
				return false, errors.New("confirmed is not a boolean")
			}
			return r.Bool(), nil
		}
	}
	return w.base.ButtonPressed == affirm, nil
}

func decodeConfirmation(req *pendingRequest, w wire) (models.ConfirmationResult, error) {
	ok, err := confirmed(w, req.affirm)
	if err != nil {
		return models.ConfirmationResult{}, err
	}
	return models.ConfirmationResult{DialogResult: w.base, Confirmed: ok}, nil
}

func decodeDestructive(req *pendingRequest, w wire) (models.DestructiveResult, error) {
	ok, err := confirmed(w, req.affirm)
	if err != nil {
		return models.DestructiveResult{}, err
	}
	return models.DestructiveResult{DialogResult: w.base, Confirmed: ok}, nil
}

func decodeActionSheet(req *pendingRequest, w wire) (models.ActionSheetResult, error) {
	idx, ok, err := w.intField("selectedIndex", 0)
	if err != nil {
		return models.ActionSheetResult{}, err
	}
	if !ok {
		// derive from the label when the native side only sent the button
		idx = slices.Index(req.options, w.base.ButtonPressed)
		if idx < 0 && w.base.ButtonPressed != req.cancel {
			return models.ActionSheetResult{}, fmt.Errorf("button %q matches no option", w.base.ButtonPressed)
		}
	}
	if err := checkIndex("selectedIndex", idx, len(req.options), true); err != nil {
		return models.ActionSheetResult{}, err
	}
	return models.ActionSheetResult{DialogResult: w.base, SelectedIndex: idx}, nil
}

func decodeTextInput(_ *pendingRequest, w wire) (models.TextInputResult, error) {
	text, err := w.stringField("inputText", 0)
	if err != nil {
		return models.TextInputResult{}, err
	}
	return models.TextInputResult{DialogResult: w.base, InputText: text}, nil
}

func decodeLogin(_ *pendingRequest, w wire) (models.LoginResult, error) {
	user, err := w.stringField("username", 0)
	if err != nil {
		return models.LoginResult{}, err
	}
	pass, err := w.stringField("password", 1)
	if err != nil {
		return models.LoginResult{}, err
	}
	return models.LoginResult{DialogResult: w.base, Username: user, Password: pass}, nil
}

func decodeSingleChoice(req *pendingRequest, w wire) (models.SingleChoiceResult, error) {
	idx, ok, err := w.intField("checkedItem", 0)
	if err != nil {
		return models.SingleChoiceResult{}, err
	}
	if !ok {
		idx = -1
	}
	if err := checkIndex("checkedItem", idx, len(req.options), true); err != nil {
		return models.SingleChoiceResult{}, err
	}
	return models.SingleChoiceResult{DialogResult: w.base, CheckedItem: idx}, nil
}

func decodeMultiChoice(req *pendingRequest, w wire) (models.MultiChoiceResult, error) {
	items, err := w.intsField("checkedItems", 0)
	if err != nil {
		return models.MultiChoiceResult{}, err
	}
	for _, idx := range items {
		if err := checkIndex("checkedItems", idx, len(req.options), false); err != nil {
			return models.MultiChoiceResult{}, err
		}
	}
	return models.MultiChoiceResult{DialogResult: w.base, CheckedItems: items}, nil
}
