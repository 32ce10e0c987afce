package models

import "fmt"

type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformMacOS   Platform = "macos"
	PlatformWindows Platform = "windows"
	PlatformEditor  Platform = "editor"
)

var Platforms = []Platform{
	PlatformIOS,
	PlatformAndroid,
	PlatformMacOS,
	PlatformWindows,
	PlatformEditor,
}

func ParsePlatform(s string) (Platform, error) {
	for _, p := range Platforms {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

type DialogKind string

const (
	KindBasic        DialogKind = "basic"
	KindConfirm      DialogKind = "confirm"
	KindDestructive  DialogKind = "destructive"
	KindActionSheet  DialogKind = "action_sheet"
	KindTextInput    DialogKind = "text_input"
	KindLogin        DialogKind = "login"
	KindSingleChoice DialogKind = "single_choice"
	KindMultiChoice  DialogKind = "multi_choice"
)

var DialogKinds = []DialogKind{
	KindBasic,
	KindConfirm,
	KindDestructive,
	KindActionSheet,
	KindTextInput,
	KindLogin,
	KindSingleChoice,
	KindMultiChoice,
}

func ParseDialogKind(s string) (DialogKind, error) {
	for _, k := range DialogKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown dialog kind %q", s)
}
