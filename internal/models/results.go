package models

// DialogResult is the part every dialog result carries. ErrorMessage is
// empty when Success is true.
type DialogResult struct {
	RequestID     string
	ButtonPressed string
	Success       bool
	ErrorMessage  string
	// Dismissed is set when the dialog closed without a button press and the
	// result was synthesized as a cancellation.
	Dismissed bool
}

type ConfirmationResult struct {
	DialogResult
	Confirmed bool
}

type DestructiveResult struct {
	DialogResult
	Confirmed bool
}

type ActionSheetResult struct {
	DialogResult
	// SelectedIndex is -1 when the cancel button was pressed.
	SelectedIndex int
}

type TextInputResult struct {
	DialogResult
	InputText string
}

type LoginResult struct {
	DialogResult
	Username string
	Password string
}

type SingleChoiceResult struct {
	DialogResult
	CheckedItem int
}

type MultiChoiceResult struct {
	DialogResult
	CheckedItems []int
}
