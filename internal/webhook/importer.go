package webhook

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ashkanrb/agenthub-server/internal/realtime"
	"github.com/ashkanrb/agenthub-server/internal/store"
)

// Store defines what the importer needs from persistence.
type Store interface {
	CreateConversation(ctx context.Context, userID int64) (*store.Conversation, error)
	CreateMessage(ctx context.Context, msg *store.Message) (*store.Message, error)
}

// Importer converts an externally supplied transcript into a conversation
// plus an ordered sequence of messages, then announces the new
// conversation on the owner's realtime channel. This is a batch import,
// not part of the live orchestration path.
type Importer struct {
	store Store
	hub   *realtime.Hub
	log   *zerolog.Logger
}

// NewImporter wires the transcript importer.
func NewImporter(st Store, hub *realtime.Hub, logger *zerolog.Logger) *Importer {
	return &Importer{
		store: st,
		hub:   hub,
		log:   logger,
	}
}

// ImportTranscript creates a conversation owned by userID and inserts one
// message per transcript turn, in transcript order, so stored send order
// matches conversational order. Turns with an empty role or empty text are
// skipped. Role "user" becomes a user-authored message; any other role a
// system one.
func (i *Importer) ImportTranscript(ctx context.Context, userID int64, transcript []TranscriptTurn) (*store.Conversation, error) {
	conv, err := i.store.CreateConversation(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	imported := 0
	for _, turn := range transcript {
		if turn.Role == "" || turn.Message == "" {
			continue
		}
		if _, err := i.store.CreateMessage(ctx, &store.Message{
			ConversationID: conv.ID,
			IsSystem:       !strings.EqualFold(turn.Role, "user"),
			Content:        turn.Message,
		}); err != nil {
			return nil, fmt.Errorf("import transcript turn: %w", err)
		}
		imported++
	}

	i.log.Info().
		Int64("conversation_id", conv.ID).
		Int64("user_id", userID).
		Int("turns", imported).
		Msg("transcript imported")

	i.announce(conv)

	return conv, nil
}

// announce notifies the owner's channel that a conversation appeared.
// Best-effort, like every broadcast.
func (i *Importer) announce(conv *store.Conversation) {
	payload, err := realtime.EncodeNewConversation(conv.ID)
	if err != nil {
		i.log.Error().Err(err).Int64("conversation_id", conv.ID).Msg("failed to encode conversation event")
		return
	}
	i.hub.Publish(realtime.UserConversationsChannel(conv.UserID), payload)
}
