// Package keys translates raw terminal input into symbolic key events.
//
// Recognized families:
//
//	ESC letter
//	ESC [ letter
//	ESC [ modifier letter
//	ESC [ 1 ; modifier letter
//	ESC [ num char
//	ESC [ num ; modifier char
//	ESC O letter
//	ESC O modifier letter
//	ESC O 1 ; modifier letter
//	ESC N letter
//	ESC [ [ num ; modifier char
//	ESC [ [ 1 ; modifier letter
//	ESC ESC [ num char
//	ESC ESC O letter
//
// char is usually ~ but $ and ^ also happen with rxvt. The modifier is
// 1 + (shift * 1) + (left_alt * 2) + (ctrl * 4) + (right_alt * 8).
// Two leading ESCs mean the same as one.
package keys

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const esc = "\x1b"

// Key is a decoded key press
type Key struct {
	Name  string // "" when the sequence was not recognized
	Ctrl  bool
	Meta  bool
	Shift bool

	// Sequence is the raw input that produced the key
	Sequence string
	// Code is the escape sequence with leading ESCs and modifiers removed
	Code string
}

// Result is the outcome of decoding one chunk of input. Char is set when
// the chunk is a single rune or plain text without an escape prefix. Key is
// nil when nothing symbolic was found; an unrecognized escape sequence
// yields a Key with an empty Name.
type Result struct {
	Char string
	Key  *Key
}

// Name returns the key name, or "" when no key was decoded
func (r Result) Name() string {
	if r.Key == nil {
		return ""
	}
	return r.Key.Name
}

// Text returns the literal text this result would insert: the single
// character or, failing that, the raw sequence, without control runes.
func (r Result) Text() string {
	s := r.Char
	if s == "" && r.Key != nil {
		s = r.Key.Sequence
	}
	return stripControls(s)
}

var (
	metaKeyCodeRe     = regexp.MustCompile(`^\x1b([a-zA-Z0-9])$`)
	functionKeyCodeRe = regexp.MustCompile(`^(?:\x1b+)(O|N|\[|\[\[)(?:(\d+)(?:;(\d+))?([~^$])|(?:1;)?(\d+)?([a-zA-Z]))`)
)

type codeSpec struct {
	name  string
	shift bool
	ctrl  bool
}

var codeTable = map[string]codeSpec{
	// xterm/gnome ESC O letter
	"OP": {name: "f1"},
	"OQ": {name: "f2"},
	"OR": {name: "f3"},
	"OS": {name: "f4"},

	// xterm/rxvt ESC [ number ~
	"[11~": {name: "f1"},
	"[12~": {name: "f2"},
	"[13~": {name: "f3"},
	"[14~": {name: "f4"},

	// cygwin, libuv
	"[[A": {name: "f1"},
	"[[B": {name: "f2"},
	"[[C": {name: "f3"},
	"[[D": {name: "f4"},
	"[[E": {name: "f5"},

	"[15~": {name: "f5"},
	"[17~": {name: "f6"},
	"[18~": {name: "f7"},
	"[19~": {name: "f8"},
	"[20~": {name: "f9"},
	"[21~": {name: "f10"},
	"[23~": {name: "f11"},
	"[24~": {name: "f12"},

	// xterm ESC [ letter
	"[A": {name: "up"},
	"[B": {name: "down"},
	"[C": {name: "right"},
	"[D": {name: "left"},
	"[E": {name: "clear"},
	"[F": {name: "end"},
	"[H": {name: "home"},

	// xterm/gnome ESC O letter
	"OA": {name: "up"},
	"OB": {name: "down"},
	"OC": {name: "right"},
	"OD": {name: "left"},
	"OE": {name: "clear"},
	"OF": {name: "end"},
	"OH": {name: "home"},

	"[1~": {name: "home"},
	"[2~": {name: "insert"},
	"[3~": {name: "delete"},
	"[4~": {name: "end"},
	"[5~": {name: "pageup"},
	"[6~": {name: "pagedown"},

	// putty
	"[[5~": {name: "pageup"},
	"[[6~": {name: "pagedown"},

	// rxvt
	"[7~": {name: "home"},
	"[8~": {name: "end"},

	"[a": {name: "up", shift: true},
	"[b": {name: "down", shift: true},
	"[c": {name: "right", shift: true},
	"[d": {name: "left", shift: true},
	"[e": {name: "clear", shift: true},

	"[2$": {name: "insert", shift: true},
	"[3$": {name: "delete", shift: true},
	"[5$": {name: "pageup", shift: true},
	"[6$": {name: "pagedown", shift: true},
	"[7$": {name: "home", shift: true},
	"[8$": {name: "end", shift: true},

	"Oa": {name: "up", ctrl: true},
	"Ob": {name: "down", ctrl: true},
	"Oc": {name: "right", ctrl: true},
	"Od": {name: "left", ctrl: true},
	"Oe": {name: "clear", ctrl: true},

	"[2^": {name: "insert", ctrl: true},
	"[3^": {name: "delete", ctrl: true},
	"[5^": {name: "pageup", ctrl: true},
	"[6^": {name: "pagedown", ctrl: true},
	"[7^": {name: "home", ctrl: true},
	"[8^": {name: "end", ctrl: true},

	"[Z": {name: "tab", shift: true},
}

// Decode translates one chunk of terminal input
func Decode(s string) Result {
	var res Result
	if utf8.RuneCountInString(s) == 1 {
		res.Char = s
	}

	key := &Key{Sequence: s}

	switch {
	case s == "":
		return res
	case s == "\r" || s == "\n":
		key.Name = "enter"
	case s == "\t":
		key.Name = "tab"
	case s == "\b" || s == "\x7f" || s == esc+"\x7f" || s == esc+"\b":
		// xterm.js sends ^H for ctrl+backspace
		key.Name = "backspace"
		key.Meta = strings.HasPrefix(s, esc)
		key.Ctrl = s == "\b"
	case s == esc || s == esc+esc:
		key.Name = "escape"
		key.Meta = len(s) == 2
	case s == " " || s == esc+" ":
		key.Name = "space"
		key.Meta = len(s) == 2
	case len(s) == 1 && s[0] == 0:
		key.Name = "space"
		key.Ctrl = true
	case len(s) == 1 && s[0] <= 0x1a:
		key.Name = string(rune(s[0]) + 'a' - 1)
		key.Ctrl = true
	case len(s) == 1 && s[0] >= 'a' && s[0] <= 'z':
		key.Name = s
	case len(s) == 1 && s[0] >= 'A' && s[0] <= 'Z':
		key.Name = strings.ToLower(s)
		key.Shift = true
	default:
		if m := metaKeyCodeRe.FindStringSubmatch(s); m != nil {
			key.Name = strings.ToLower(m[1])
			key.Meta = true
			key.Shift = m[1] >= "A" && m[1] <= "Z"
			break
		}
		if m := functionKeyCodeRe.FindStringSubmatch(s); m != nil {
			decodeFunctionKey(key, m)
			break
		}
		if strings.HasPrefix(s, esc) {
			// unknown escape sequence, surfaced raw with no name
			break
		}
		// plain text such as digits, punctuation or a short burst of runes
		res.Char = s
		return res
	}

	res.Key = key
	return res
}

// decodeFunctionKey fills key from a functionKeyCodeRe match. An
// unrecognized code leaves Name empty but still returns the key so the
// caller can see the raw sequence.
func decodeFunctionKey(key *Key, m []string) {
	// reassemble the code leaving out leading ESCs, the modifier and any
	// meaningless "1;"
	code := m[1] + m[2] + m[4] + m[6]

	modifier := 1
	if m[3] != "" {
		modifier, _ = strconv.Atoi(m[3])
	} else if m[5] != "" {
		modifier, _ = strconv.Atoi(m[5])
	}
	bits := modifier - 1
	if bits < 0 {
		bits = 0
	}

	key.Code = code
	key.Ctrl = bits&4 != 0
	key.Meta = bits&10 != 0
	key.Shift = bits&1 != 0

	spec, ok := codeTable[code]
	if !ok {
		return
	}
	key.Name = spec.name
	key.Shift = key.Shift || spec.shift
	key.Ctrl = key.Ctrl || spec.ctrl
}

func stripControls(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
