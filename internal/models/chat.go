package models

import "time"

// Message is a single conversation turn in the chat-completion format.
type Message struct {
	Role    string `json:"role"`    // "system", "user" or "assistant".
	Content string `json:"content"` // Message text.
}

// Chat represents a stored conversation exchange.
//
// UserID is a weak reference: deleting a user does not cascade to chats and
// no existence check is performed when a chat is written.
type Chat struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
}
