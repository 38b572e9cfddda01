package http

import (
	"time"

	"github.com/ashkanrb/agenthub-server/internal/store"
)

const timeFormat = "2006-01-02T15:04:05Z07:00"

// MessageUser identifies the author of a message. ID is null for
// system-authored messages.
type MessageUser struct {
	ID *int64 `json:"id"`
}

// MessageResponse represents a message in API responses.
type MessageResponse struct {
	ID             int64       `json:"id"`
	ConversationID int64       `json:"conversation_id"`
	Content        string      `json:"content"`
	IsSystem       bool        `json:"is_system"`
	FilePath       *string     `json:"file_path"`
	SentAt         string      `json:"sent_at"`
	User           MessageUser `json:"user"`
}

// ConversationResponse represents a conversation in API responses.
type ConversationResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	CreatedAt string `json:"created_at"`
}

func messageResponse(msg *store.Message, authorID int64) MessageResponse {
	resp := MessageResponse{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		Content:        msg.Content,
		IsSystem:       msg.IsSystem,
		FilePath:       msg.FilePath,
		SentAt:         msg.SentAt.Format(timeFormat),
	}
	if !msg.IsSystem {
		id := authorID
		resp.User.ID = &id
	}
	return resp
}

func conversationResponse(conv *store.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:        conv.ID,
		UserID:    conv.UserID,
		CreatedAt: conv.CreatedAt.Format(timeFormat),
	}
}

func formatTime(t time.Time) string {
	return t.Format(timeFormat)
}
