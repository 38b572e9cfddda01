package realtime

import (
	"encoding/json"
	"time"

	"github.com/ashkanrb/agenthub-server/internal/store"
)

// EventUser identifies the author of a broadcast message. ID is null for
// system-generated messages.
type EventUser struct {
	ID *int64 `json:"id"`
}

// MessageEvent is the wire payload pushed to conversation subscribers
// whenever a message is created.
type MessageEvent struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	Content        string    `json:"content"`
	IsSystem       bool      `json:"is_system"`
	FilePath       *string   `json:"file_path"`
	SentAt         time.Time `json:"sent_at"`
	User           EventUser `json:"user"`
}

// ConversationEvent announces conversation-level changes on a user channel.
type ConversationEvent struct {
	Event          string `json:"event"`
	ConversationID int64  `json:"conversation_id,omitempty"`
}

// EncodeMessage serializes a persisted message for broadcast. authorID is
// the conversation owner and is omitted (null) for system messages.
func EncodeMessage(msg *store.Message, authorID int64) ([]byte, error) {
	event := MessageEvent{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		Content:        msg.Content,
		IsSystem:       msg.IsSystem,
		FilePath:       msg.FilePath,
		SentAt:         msg.SentAt,
	}
	if !msg.IsSystem {
		event.User.ID = &authorID
	}
	return json.Marshal(event)
}

// EncodeNewConversation serializes the conversation-created notice.
func EncodeNewConversation(conversationID int64) ([]byte, error) {
	return json.Marshal(ConversationEvent{
		Event:          "new_conversation",
		ConversationID: conversationID,
	})
}
