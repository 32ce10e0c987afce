package models

// Display parameters for each dialog kind. Empty button labels are filled
// from the localization catalog before validation.

type BasicDialog struct {
	Title   string
	Message string
	Button  string
}

type ConfirmationDialog struct {
	Title         string
	Message       string
	ConfirmButton string
	CancelButton  string
}

type DestructiveDialog struct {
	Title             string
	Message           string
	DestructiveButton string
	CancelButton      string
}

type ActionSheet struct {
	Title        string
	Message      string
	Options      []string
	CancelButton string
}

type TextInputDialog struct {
	Title         string
	Message       string
	Placeholder   string
	ConfirmButton string
	CancelButton  string
	AllowEmpty    bool
}

type LoginDialog struct {
	Title               string
	Message             string
	UsernamePlaceholder string
	PasswordPlaceholder string
	LoginButton         string
	CancelButton        string
}

type SingleChoiceDialog struct {
	Title   string
	Options []string
	// CheckedItem is the preselected option, -1 for none.
	CheckedItem    int
	PositiveButton string
	NegativeButton string
	Cancelable     bool
}

type MultiChoiceDialog struct {
	Title          string
	Options        []string
	CheckedItems   []int
	PositiveButton string
	NegativeButton string
	Cancelable     bool
}
