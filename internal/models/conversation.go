package models

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	MessageContentMaxLen = 5000
)

type Conversation struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message belongs to a conversation and may reference a todo
// the exchange was about.
type Message struct {
	ID             string
	ConversationID string
	TodoID         string
	Role           string
	Content        string
	CreatedAt      time.Time
}
