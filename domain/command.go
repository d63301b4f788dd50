package domain

import "github.com/google/uuid"

// PostMessageCommand carries a message sending intent.
// From is the acting identity supplied out-of-band by the transport.
type PostMessageCommand struct {
	From string
	To   string
	Text string
	Kind string
}

// EditMessageCommand carries a message rewrite intent.
// Only the original author may apply it.
type EditMessageCommand struct {
	ID    uuid.UUID
	Actor string
	To    string
	Text  string
	Kind  string
}

// ListMessagesQuery asks for the history visible to Viewer.
// A nil Limit means unbounded.
type ListMessagesQuery struct {
	Viewer string
	Limit  *int
}
