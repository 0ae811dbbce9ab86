package calculator

import (
	"errors"
	"fmt"
)

// Op is a pending arithmetic operation as shown on the keypad.
type Op string

const (
	OpNone     Op = ""
	OpAdd      Op = "+"
	OpSubtract Op = "-"
	OpMultiply Op = "×"
	OpDivide   Op = "÷"
)

// ErrUnknownOperation is returned by ParseOp for symbols that are not one of
// the four keypad operations.
var ErrUnknownOperation = errors.New("unknown operation")

// ParseOp maps an operator symbol to its Op. The Unicode minus sign and the
// ASCII "*" and "/" are accepted as aliases.
func ParseOp(s string) (Op, error) {
	switch s {
	case "+":
		return OpAdd, nil
	case "-", "−":
		return OpSubtract, nil
	case "×", "*":
		return OpMultiply, nil
	case "÷", "/":
		return OpDivide, nil
	}
	return OpNone, fmt.Errorf("%w %q", ErrUnknownOperation, s)
}

// Evaluate applies op to prev and current with IEEE-754 semantics. Division
// by zero yields ±Inf or NaN rather than an error.
func Evaluate(prev float64, op Op, current float64) float64 {
	switch op {
	case OpAdd:
		return prev + current
	case OpSubtract:
		return prev - current
	case OpMultiply:
		return prev * current
	case OpDivide:
		return prev / current
	}
	return 0
}

// FormatCalculation renders a history record: "<prev> <op> <current> = <result>".
func FormatCalculation(prev float64, op Op, current, result float64) string {
	return fmt.Sprintf("%s %s %s = %s", FormatNumber(prev), op, FormatNumber(current), FormatNumber(result))
}

// State is the complete calculator state. It has value semantics: every
// operation returns a new State and leaves the receiver untouched.
type State struct {
	Display          string
	PreviousOperand  string
	PendingOperation Op
	IsNewNumber      bool
	History          []string
}

// NewState returns the cleared state with an empty history.
func NewState() State {
	return State{
		Display:     "0",
		IsNewNumber: true,
	}
}

// InputDigit enters d, one of '0'–'9' or '.'. A second decimal point in the
// same operand is accepted as typed.
func (s State) InputDigit(d rune) State {
	switch {
	case s.IsNewNumber:
		s.Display = string(d)
		s.IsNewNumber = false
	case s.Display == "0":
		s.Display = string(d)
	default:
		s.Display += string(d)
	}
	return s
}

// InputOperation queues op with the current display as the left operand.
// Any operation already pending is replaced, not evaluated.
func (s State) InputOperation(op Op) State {
	s.PendingOperation = op
	s.PreviousOperand = s.Display
	s.IsNewNumber = true
	return s
}

// Calculate evaluates the pending operation and appends it to the history.
// Without a pending operation it returns s unchanged.
func (s State) Calculate() State {
	if s.PendingOperation == OpNone || s.PreviousOperand == "" {
		return s
	}

	prev := ParseNumber(s.PreviousOperand)
	current := ParseNumber(s.Display)
	result := Evaluate(prev, s.PendingOperation, current)

	s.History = appendHistory(s.History, FormatCalculation(prev, s.PendingOperation, current, result))
	s.Display = FormatNumber(result)
	s.PreviousOperand = ""
	s.PendingOperation = OpNone
	s.IsNewNumber = true
	return s
}

// Clear resets everything except the history.
func (s State) Clear() State {
	s.Display = "0"
	s.PreviousOperand = ""
	s.PendingOperation = OpNone
	s.IsNewNumber = true
	return s
}

// ClearHistory empties the history.
func (s State) ClearHistory() State {
	s.History = nil
	return s
}

// DeleteLastDigit removes the last character of the display, falling back to
// "0" when only one character is left.
func (s State) DeleteLastDigit() State {
	r := []rune(s.Display)
	if len(r) <= 1 {
		s.Display = "0"
		return s
	}
	s.Display = string(r[:len(r)-1])
	return s
}

// Snapshot returns a copy of s whose History does not share storage with s.
func (s State) Snapshot() State {
	if s.History != nil {
		s.History = append([]string(nil), s.History...)
	}
	return s
}

// appendHistory always allocates so earlier states never observe the new entry.
func appendHistory(history []string, entry string) []string {
	out := make([]string, len(history), len(history)+1)
	copy(out, history)
	return append(out, entry)
}
