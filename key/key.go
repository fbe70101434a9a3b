// Package key provides a physical key vocabulary for repeat-free input
// streams.
//
// Code values follow the Linux input event numbering (KEY_ESC = 1,
// KEY_A = 30, ...), so events captured from an evdev device translate
// one to one. Sources that synthesize events (scripts, recordings,
// remote feeds) address keys by name through FromName.
package key

import (
	"fmt"
	"strings"
)

// Code identifies a physical key using the Linux input event code
// numbering.
type Code uint16

const (
	None       Code = 0
	Escape     Code = 1
	Num1       Code = 2
	Num2       Code = 3
	Num3       Code = 4
	Num4       Code = 5
	Num5       Code = 6
	Num6       Code = 7
	Num7       Code = 8
	Num8       Code = 9
	Num9       Code = 10
	Num0       Code = 11
	Minus      Code = 12
	Equal      Code = 13
	Backspace  Code = 14
	Tab        Code = 15
	Q          Code = 16
	W          Code = 17
	E          Code = 18
	R          Code = 19
	T          Code = 20
	Y          Code = 21
	U          Code = 22
	I          Code = 23
	O          Code = 24
	P          Code = 25
	LeftBrace  Code = 26
	RightBrace Code = 27
	Enter      Code = 28
	LeftCtrl   Code = 29
	A          Code = 30
	S          Code = 31
	D          Code = 32
	F          Code = 33
	G          Code = 34
	H          Code = 35
	J          Code = 36
	K          Code = 37
	L          Code = 38
	Semicolon  Code = 39
	Apostrophe Code = 40
	Grave      Code = 41
	LeftShift  Code = 42
	Backslash  Code = 43
	Z          Code = 44
	X          Code = 45
	C          Code = 46
	V          Code = 47
	B          Code = 48
	N          Code = 49
	M          Code = 50
	Comma      Code = 51
	Dot        Code = 52
	Slash      Code = 53
	RightShift Code = 54
	KPAsterisk Code = 55
	LeftAlt    Code = 56
	Space      Code = 57
	CapsLock   Code = 58
	F1         Code = 59
	F2         Code = 60
	F3         Code = 61
	F4         Code = 62
	F5         Code = 63
	F6         Code = 64
	F7         Code = 65
	F8         Code = 66
	F9         Code = 67
	F10        Code = 68
	NumLock    Code = 69
	ScrollLock Code = 70
	KP7        Code = 71
	KP8        Code = 72
	KP9        Code = 73
	KPMinus    Code = 74
	KP4        Code = 75
	KP5        Code = 76
	KP6        Code = 77
	KPPlus     Code = 78
	KP1        Code = 79
	KP2        Code = 80
	KP3        Code = 81
	KP0        Code = 82
	KPDot      Code = 83
	F11        Code = 87
	F12        Code = 88
	KPEnter    Code = 96
	RightCtrl  Code = 97
	KPSlash    Code = 98
	SysRq      Code = 99
	RightAlt   Code = 100
	Home       Code = 102
	Up         Code = 103
	PageUp     Code = 104
	Left       Code = 105
	Right      Code = 106
	End        Code = 107
	Down       Code = 108
	PageDown   Code = 109
	Insert     Code = 110
	Delete     Code = 111
	LeftMeta   Code = 125
	RightMeta  Code = 126
	Menu       Code = 127
)

// codeNames maps codes to their canonical names.
var codeNames = map[Code]string{
	None:       "NONE",
	Escape:     "ESC",
	Num1:       "1",
	Num2:       "2",
	Num3:       "3",
	Num4:       "4",
	Num5:       "5",
	Num6:       "6",
	Num7:       "7",
	Num8:       "8",
	Num9:       "9",
	Num0:       "0",
	Minus:      "MINUS",
	Equal:      "EQUAL",
	Backspace:  "BACKSPACE",
	Tab:        "TAB",
	Q:          "Q",
	W:          "W",
	E:          "E",
	R:          "R",
	T:          "T",
	Y:          "Y",
	U:          "U",
	I:          "I",
	O:          "O",
	P:          "P",
	LeftBrace:  "LEFTBRACE",
	RightBrace: "RIGHTBRACE",
	Enter:      "ENTER",
	LeftCtrl:   "LEFTCTRL",
	A:          "A",
	S:          "S",
	D:          "D",
	F:          "F",
	G:          "G",
	H:          "H",
	J:          "J",
	K:          "K",
	L:          "L",
	Semicolon:  "SEMICOLON",
	Apostrophe: "APOSTROPHE",
	Grave:      "GRAVE",
	LeftShift:  "LEFTSHIFT",
	Backslash:  "BACKSLASH",
	Z:          "Z",
	X:          "X",
	C:          "C",
	V:          "V",
	B:          "B",
	N:          "N",
	M:          "M",
	Comma:      "COMMA",
	Dot:        "DOT",
	Slash:      "SLASH",
	RightShift: "RIGHTSHIFT",
	KPAsterisk: "KPASTERISK",
	LeftAlt:    "LEFTALT",
	Space:      "SPACE",
	CapsLock:   "CAPSLOCK",
	F1:         "F1",
	F2:         "F2",
	F3:         "F3",
	F4:         "F4",
	F5:         "F5",
	F6:         "F6",
	F7:         "F7",
	F8:         "F8",
	F9:         "F9",
	F10:        "F10",
	NumLock:    "NUMLOCK",
	ScrollLock: "SCROLLLOCK",
	KP7:        "KP7",
	KP8:        "KP8",
	KP9:        "KP9",
	KPMinus:    "KPMINUS",
	KP4:        "KP4",
	KP5:        "KP5",
	KP6:        "KP6",
	KPPlus:     "KPPLUS",
	KP1:        "KP1",
	KP2:        "KP2",
	KP3:        "KP3",
	KP0:        "KP0",
	KPDot:      "KPDOT",
	F11:        "F11",
	F12:        "F12",
	KPEnter:    "KPENTER",
	RightCtrl:  "RIGHTCTRL",
	KPSlash:    "KPSLASH",
	SysRq:      "SYSRQ",
	RightAlt:   "RIGHTALT",
	Home:       "HOME",
	Up:         "UP",
	PageUp:     "PAGEUP",
	Left:       "LEFT",
	Right:      "RIGHT",
	End:        "END",
	Down:       "DOWN",
	PageDown:   "PAGEDOWN",
	Insert:     "INSERT",
	Delete:     "DELETE",
	LeftMeta:   "LEFTMETA",
	RightMeta:  "RIGHTMETA",
	Menu:       "MENU",
}

// nameCodes is the lowercase reverse of codeNames plus aliases.
var nameCodes = make(map[string]Code, len(codeNames)+8)

func init() {
	for c, n := range codeNames {
		nameCodes[strings.ToLower(n)] = c
	}

	// Common aliases accepted on input only.
	nameCodes["escape"] = Escape
	nameCodes["return"] = Enter
	nameCodes["ctrl"] = LeftCtrl
	nameCodes["shift"] = LeftShift
	nameCodes["alt"] = LeftAlt
	nameCodes["meta"] = LeftMeta
	nameCodes["del"] = Delete
	nameCodes["ins"] = Insert
}

// String returns the canonical name for the code. Codes without a name
// format as CODE(n).
func (c Code) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("CODE(%d)", uint16(c))
}

// Name returns the canonical name for the code, if it has one. Unlike
// String it does not invent a placeholder, so callers can tell named
// keys from codes that will not survive a name round trip.
func (c Code) Name() (string, bool) {
	n, ok := codeNames[c]
	return n, ok
}

// FromName resolves a key name case-insensitively. It accepts the
// canonical names produced by String plus a few common aliases.
func FromName(name string) (Code, bool) {
	c, ok := nameCodes[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// IsModifier reports whether the code is a modifier key. Callers often
// exclude modifiers from auto-repeat.
func (c Code) IsModifier() bool {
	switch c {
	case LeftShift, RightShift, LeftCtrl, RightCtrl,
		LeftAlt, RightAlt, LeftMeta, RightMeta, CapsLock:
		return true
	default:
		return false
	}
}
