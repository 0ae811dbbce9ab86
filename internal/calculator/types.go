package calculator

// PressRequest is the JSON body for POST /calculator/sessions/{id}/keys.
// Either Key or Keys may be set; Key is pressed first.
type PressRequest struct {
	Key  Key   `json:"key,omitempty"`
	Keys []Key `json:"keys,omitempty"`
}

// keys returns the presses in order.
func (p PressRequest) keys() []Key {
	if p.Key == "" {
		return p.Keys
	}
	return append([]Key{p.Key}, p.Keys...)
}

// SessionResponse is the JSON view of a session's calculator state.
type SessionResponse struct {
	ID               string   `json:"id"`
	Display          string   `json:"display"`
	PreviousOperand  string   `json:"previous_operand"`
	PendingOperation Op       `json:"pending_operation"`
	IsNewNumber      bool     `json:"is_new_number"`
	History          []string `json:"history"`
}

func newSessionResponse(sess Session) SessionResponse {
	history := sess.State.History
	if history == nil {
		history = []string{}
	}
	return SessionResponse{
		ID:               sess.ID,
		Display:          sess.State.Display,
		PreviousOperand:  sess.State.PreviousOperand,
		PendingOperation: sess.State.PendingOperation,
		IsNewNumber:      sess.State.IsNewNumber,
		History:          history,
	}
}

// PressErrorResponse is the 400 body for a batch that hit an unknown key. The
// session reflects the presses applied before it.
type PressErrorResponse struct {
	Error   string          `json:"error"`
	Session SessionResponse `json:"session"`
}

// EvaluateRequest is the JSON body for POST /calculator/evaluate. Operands
// are display text and are read the same way the keypad reads them.
type EvaluateRequest struct {
	A  string `json:"a"`
	Op string `json:"op"`
	B  string `json:"b"`
}

// EvaluateResponse is the JSON response for POST /calculator/evaluate.
type EvaluateResponse struct {
	A      string `json:"a"`
	Op     Op     `json:"op"`
	B      string `json:"b"`
	Result string `json:"result"`
	Entry  string `json:"entry"` // history line, "<a> <op> <b> = <result>"
}
