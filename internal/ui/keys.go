package ui

import (
	"unicode"

	"golang.org/x/mobile/event/key"
)

// KeyShortcut describes a keyboard combination that triggers an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// shortcutFor normalizes a key event into the form used by the keymap.
// Letters match regardless of case; control combinations match on the code
// since drivers report them with varying runes.
func shortcutFor(e key.Event) KeyShortcut {
	mods := e.Modifiers &^ key.ModShift
	if mods&key.ModControl != 0 {
		return KeyShortcut{Code: e.Code, Modifiers: mods}
	}
	if e.Rune > 0 {
		return KeyShortcut{Rune: unicode.ToLower(e.Rune), Modifiers: mods}
	}
	return KeyShortcut{Code: e.Code, Modifiers: mods}
}

func ctrl(code key.Code) KeyShortcut { return KeyShortcut{Code: code, Modifiers: key.ModControl} }

// defaultKeymap binds shortcuts to action names registered by the window.
func defaultKeymap() map[KeyShortcut]string {
	return map[KeyShortcut]string{
		{Rune: 'a'}:            "tool-arrow",
		{Rune: 'b'}:            "tool-box",
		{Rune: 'h'}:            "tool-highlight",
		{Rune: 't'}:            "tool-text",
		{Rune: 'n'}:            "tool-none",
		{Rune: '['}:            "color-prev",
		{Rune: ']'}:            "color-next",
		{Code: key.CodeEscape}: "close",
		ctrl(key.CodeZ):        "undo",
		ctrl(key.CodeC):        "copy",
		ctrl(key.CodeS):        "save",
		ctrl(key.CodeU):        "upload",
		ctrl(key.CodeP):        "pdf",
		ctrl(key.CodeQ):        "close",
	}
}
