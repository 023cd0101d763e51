package domain

// ConversationTurn is one exchange shown in the chat history.
// History is display-only: it is never fed back into retrieval or generation.
type ConversationTurn struct {
	Query           string
	DisplayResponse string
}

// History is an ordered sequence of turns owned by the calling session.
type History []ConversationTurn

// Append returns a new history with the turn added, leaving h untouched.
func (h History) Append(turn ConversationTurn) History {
	out := make(History, len(h), len(h)+1)
	copy(out, h)
	return append(out, turn)
}

// Session identifies one chat session in the UI or MCP layers.
type Session struct {
	// ID is a random identifier used to correlate log lines.
	ID string

	// Mode is the currently selected operating mode.
	Mode Mode

	// History holds the turns of this session.
	History History
}
