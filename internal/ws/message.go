package ws

// ErrQueryRequired is the error frame text for a message without a usable query.
const ErrQueryRequired = "Query is required"

// Request is an inbound session message. Query is a pointer so a missing
// field and an explicit null are both detected.
type Request struct {
	Query *string `json:"query"`
}

// AnswerFrame carries one generated fragment to the caller.
type AnswerFrame struct {
	Answer string `json:"answer"`
}

// ErrorFrame reports a rejected message or a failed generation. The session
// stays usable after it is sent.
type ErrorFrame struct {
	Error string `json:"error"`
}
