// Package osascript shows dialogs on macOS by running AppleScript through
// /usr/bin/osascript. Every script prints its answer as linefeed separated
// fields so labels and typed text never need unquoting.
package osascript

import (
	"fmt"
	"strings"
)

// Status line printed by chooseScript ahead of the chosen items.
const (
	statusPicked   = "picked"
	statusCanceled = "canceled"
)

// quote renders s as an AppleScript string literal. Line breaks become
// concatenated linefeed constants so a script never spans -e arguments
// mid-string.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if !strings.Contains(s, "\n") {
		return `"` + s + `"`
	}
	return `("` + strings.ReplaceAll(s, "\n", `" & linefeed & "`) + `")`
}

func list(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = quote(it)
	}
	return "{" + strings.Join(quoted, ", ") + "}"
}

// titled returns the with title clause, or nothing for an untitled dialog.
func titled(title string) string {
	if title == "" {
		return ""
	}
	return " with title " + quote(title)
}

func buttonScript(title, message string, buttons []string, defaultButton, cancelButton, icon string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "display dialog %s%s buttons %s default button %s",
		quote(message), titled(title), list(buttons), quote(defaultButton))
	if cancelButton != "" {
		b.WriteString(" cancel button " + quote(cancelButton))
	}
	if icon != "" {
		b.WriteString(" with icon " + icon)
	}
	return "return button returned of (" + b.String() + ")"
}

func basicScript(title, message, button string) string {
	return buttonScript(title, message, []string{button}, button, "", "note")
}

func confirmScript(title, message, confirm, cancel string) string {
	return buttonScript(title, message, []string{cancel, confirm}, confirm, cancel, "")
}

func destructiveScript(title, message, destructive, cancel string) string {
	return buttonScript(title, message, []string{destructive, cancel}, cancel, cancel, "caution")
}

// promptScript asks for one line of text and prints the button, a
// linefeed, then the text.
func promptScript(title, message, answer, confirm, cancel string, hidden bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "set r to display dialog %s default answer %s%s buttons %s default button %s cancel button %s",
		quote(message), quote(answer), titled(title), list([]string{cancel, confirm}), quote(confirm), quote(cancel))
	if hidden {
		b.WriteString(" with hidden answer")
	}
	b.WriteString("\nreturn (button returned of r) & linefeed & (text returned of r)")
	return b.String()
}

// chooseScript prints a status line, then the chosen items one per line.
func chooseScript(title, prompt string, options, preselected []string, ok, cancel string, multiple bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "set picked to choose from list %s", list(options))
	if title != "" {
		b.WriteString(" with title " + quote(title))
	}
	if prompt != "" {
		b.WriteString(" with prompt " + quote(prompt))
	}
	if len(preselected) > 0 {
		b.WriteString(" default items " + list(preselected))
	}
	if ok != "" {
		b.WriteString(" OK button name " + quote(ok))
	}
	b.WriteString(" cancel button name " + quote(cancel))
	if multiple {
		b.WriteString(" with multiple selections allowed and empty selection allowed")
	}
	b.WriteString("\nif picked is false then return " + quote(statusCanceled))
	b.WriteString("\nset AppleScript's text item delimiters to linefeed")
	b.WriteString("\nreturn " + quote(statusPicked) + " & linefeed & (picked as text)")
	return b.String()
}

// chosenIndices maps the lines printed by chooseScript back to option
// positions. Repeated labels claim successive positions. ok is false when
// the user canceled.
func chosenIndices(out string, options []string) (picked []int, ok bool, err error) {
	status, items, _ := strings.Cut(strings.TrimSuffix(out, "\n"), "\n")
	switch status {
	case statusCanceled:
		return nil, false, nil
	case statusPicked:
	default:
		return nil, false, fmt.Errorf("osascript: unexpected choose from list status %q", status)
	}

	picked = []int{}
	if items == "" {
		return picked, true, nil
	}

	used := make([]bool, len(options))
	for _, line := range strings.Split(items, "\n") {
		idx := -1
		for i, o := range options {
			if o == line && !used[i] {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, false, fmt.Errorf("osascript: chosen item %q matches no option", line)
		}
		used[idx] = true
		picked = append(picked, idx)
	}
	return picked, true, nil
}

// splitAnswer separates the button from the text printed by promptScript.
// Typed text may itself hold linefeeds.
func splitAnswer(out string) (button, text string) {
	out = strings.TrimSuffix(out, "\n")
	button, text, _ = strings.Cut(out, "\n")
	return button, text
}
