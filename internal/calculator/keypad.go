package calculator

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Key is the label of a keypad button.
type Key string

const (
	KeyEquals       Key = "="
	KeyClear        Key = "C"
	KeyDelete       Key = "DEL"
	KeyBackspace    Key = "⌫"
	KeyClearHistory Key = "CH"
	KeyHistory      Key = "HISTORY"
)

// ErrUnknownKey is returned when a label does not match any button.
var ErrUnknownKey = errors.New("unknown key")

// Press applies the button labelled k to s. An unknown label leaves s
// unchanged and returns ErrUnknownKey.
func Press(s State, k Key) (State, error) {
	switch k {
	case KeyEquals:
		return s.Calculate(), nil
	case KeyClear:
		return s.Clear(), nil
	case KeyDelete, KeyBackspace:
		return s.DeleteLastDigit(), nil
	case KeyClearHistory, KeyHistory:
		return s.ClearHistory(), nil
	}

	if d, ok := digitKey(k); ok {
		return s.InputDigit(d), nil
	}

	if op, err := ParseOp(string(k)); err == nil {
		return s.InputOperation(op), nil
	}

	return s, fmt.Errorf("%w %q", ErrUnknownKey, string(k))
}

// PressAll applies keys in order. It stops at the first unknown key and
// returns the state reached before it together with the error.
func PressAll(s State, keys ...Key) (State, error) {
	for _, k := range keys {
		next, err := Press(s, k)
		if err != nil {
			return s, err
		}
		s = next
	}
	return s, nil
}

func digitKey(k Key) (rune, bool) {
	if utf8.RuneCountInString(string(k)) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(string(k))
	if (r >= '0' && r <= '9') || r == '.' {
		return r, true
	}
	return 0, false
}

var wordKeys = map[string]Key{
	"C":       KeyClear,
	"DEL":     KeyDelete,
	"CH":      KeyClearHistory,
	"HISTORY": KeyHistory,
}

// SplitKeys tokenizes a line of typed keys. Tokens are separated by
// whitespace; the words C, DEL, CH and HISTORY (any case) stay whole and every
// other token is split into single-character keys, so "12+3=" yields
// "1", "2", "+", "3", "=".
func SplitKeys(line string) []Key {
	var keys []Key
	for _, field := range strings.Fields(line) {
		if k, ok := wordKeys[strings.ToUpper(field)]; ok {
			keys = append(keys, k)
			continue
		}
		for _, r := range field {
			keys = append(keys, Key(string(r)))
		}
	}
	return keys
}
