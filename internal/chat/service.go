package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ashkanrb/agenthub-server/internal/realtime"
	"github.com/ashkanrb/agenthub-server/internal/store"
)

// Store defines what the service needs from persistence.
type Store interface {
	store.ConversationStore
	store.MessageStore
}

// ReplyGenerator turns user content into a generated system reply by
// calling an external endpoint.
type ReplyGenerator interface {
	Generate(ctx context.Context, endpoint, content string) (string, error)
}

// AttachmentStorage persists attachment blobs and returns stable paths.
type AttachmentStorage interface {
	SaveMessageFile(filename string, r io.Reader) (string, error)
}

// Service executes the lifecycle of an inbound user message and its
// generated reply: authorize, store attachment, persist, publish, generate,
// persist, publish. The user message's durability never depends on the
// reply step.
type Service struct {
	store   Store
	hub     *realtime.Hub
	replies ReplyGenerator
	files   AttachmentStorage
	log     *zerolog.Logger
}

// NewService wires the orchestrator. The hub is injected rather than
// ambient so its lifecycle is owned by the caller.
func NewService(st Store, hub *realtime.Hub, replies ReplyGenerator, files AttachmentStorage, logger *zerolog.Logger) *Service {
	return &Service{
		store:   st,
		hub:     hub,
		replies: replies,
		files:   files,
		log:     logger,
	}
}

// Attachment is an optional file submitted with a message.
type Attachment struct {
	Filename string
	Reader   io.Reader
}

// SubmitRequest carries one inbound user message.
type SubmitRequest struct {
	// ConversationID targets an existing conversation; nil creates a new
	// one owned by the author.
	ConversationID *int64
	AuthorID       int64
	Content        string
	Attachment     *Attachment
	// Endpoint is the external response-generation URL for this agent.
	Endpoint string
}

// SubmitUserMessage persists and publishes the user message, then requests
// a system reply from the external endpoint. A failed reply generation is
// logged and suppressed: the persisted user message is returned either way,
// and a conversation may legitimately hold a user message with no reply.
func (s *Service) SubmitUserMessage(ctx context.Context, req *SubmitRequest) (*store.Message, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrEmptyContent
	}

	// Authorization happens before any write.
	conv, err := s.resolveConversation(ctx, req.ConversationID, req.AuthorID)
	if err != nil {
		return nil, err
	}

	var filePath *string
	if req.Attachment != nil {
		path, err := s.files.SaveMessageFile(req.Attachment.Filename, req.Attachment.Reader)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAttachmentStorage, err)
		}
		filePath = &path
	}

	if conv == nil {
		conv, err = s.store.CreateConversation(ctx, req.AuthorID)
		if err != nil {
			return nil, fmt.Errorf("create conversation: %w", err)
		}
		s.log.Debug().Int64("conversation_id", conv.ID).Int64("user_id", req.AuthorID).Msg("conversation created")
	}

	userMsg, err := s.store.CreateMessage(ctx, &store.Message{
		ConversationID: conv.ID,
		IsSystem:       false,
		Content:        req.Content,
		FilePath:       filePath,
	})
	if err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}

	s.publishMessage(userMsg, conv.UserID)

	// The user message is durable at this point; everything below only
	// affects whether a system reply appears.
	s.generateReply(ctx, conv, req.Endpoint, req.Content)

	return userMsg, nil
}

// resolveConversation loads and authorizes the targeted conversation, or
// returns nil when a new one should be created for the author.
func (s *Service) resolveConversation(ctx context.Context, conversationID *int64, authorID int64) (*store.Conversation, error) {
	if conversationID == nil {
		return nil, nil
	}

	conv, err := s.store.GetConversationByID(ctx, *conversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if conv.UserID != authorID {
		return nil, ErrNotAuthorized
	}
	return conv, nil
}

// generateReply invokes the external endpoint and, on success, persists and
// publishes the system message into the same conversation. Failures are
// logged and swallowed.
func (s *Service) generateReply(ctx context.Context, conv *store.Conversation, endpoint, content string) {
	if endpoint == "" {
		return
	}

	reply, err := s.replies.Generate(ctx, endpoint, content)
	if err != nil {
		s.log.Warn().Err(err).Int64("conversation_id", conv.ID).Msg("reply generation failed, no system message")
		return
	}

	sysMsg, err := s.store.CreateMessage(ctx, &store.Message{
		ConversationID: conv.ID,
		IsSystem:       true,
		Content:        reply,
	})
	if err != nil {
		s.log.Error().Err(err).Int64("conversation_id", conv.ID).Msg("failed to persist system message")
		return
	}

	s.publishMessage(sysMsg, conv.UserID)
}

// publishMessage broadcasts a persisted message to the conversation's
// realtime channel. Best-effort: encoding or delivery problems never affect
// stored state.
func (s *Service) publishMessage(msg *store.Message, ownerID int64) {
	payload, err := realtime.EncodeMessage(msg, ownerID)
	if err != nil {
		s.log.Error().Err(err).Int64("message_id", msg.ID).Msg("failed to encode message event")
		return
	}
	s.hub.Publish(realtime.ConversationChannel(msg.ConversationID), payload)
}

// Actor identifies the caller of read/update/delete operations.
type Actor struct {
	UserID  int64
	IsAdmin bool
}

// CreateConversation explicitly creates an empty conversation for the actor.
func (s *Service) CreateConversation(ctx context.Context, actor Actor) (*store.Conversation, error) {
	return s.store.CreateConversation(ctx, actor.UserID)
}

// ListConversations lists the actor's conversations.
func (s *Service) ListConversations(ctx context.Context, actor Actor) ([]*store.Conversation, error) {
	return s.store.ListConversationsByUser(ctx, actor.UserID)
}

// GetConversation returns a conversation the actor may read.
func (s *Service) GetConversation(ctx context.Context, actor Actor, id int64) (*store.Conversation, error) {
	conv, err := s.store.GetConversationByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	if conv.UserID != actor.UserID && !actor.IsAdmin {
		return nil, ErrNotAuthorized
	}
	return conv, nil
}

// DeleteConversation removes a conversation and, by cascade, its messages.
// Only the owner may delete.
func (s *Service) DeleteConversation(ctx context.Context, actor Actor, id int64) error {
	conv, err := s.store.GetConversationByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrConversationNotFound
		}
		return err
	}
	if conv.UserID != actor.UserID {
		return ErrNotAuthorized
	}
	return s.store.DeleteConversation(ctx, id)
}

// ListMessages returns a conversation's messages in send order for the
// owner or an admin.
func (s *Service) ListMessages(ctx context.Context, actor Actor, conversationID int64) ([]*store.Message, error) {
	conv, err := s.store.GetConversationByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	if conv.UserID != actor.UserID && !actor.IsAdmin {
		return nil, ErrNotAuthorized
	}
	return s.store.ListMessagesByConversation(ctx, conversationID)
}

// GetMessage returns a single message the actor may read.
func (s *Service) GetMessage(ctx context.Context, actor Actor, id int64) (*store.Message, error) {
	msg, err := s.authorizeMessage(ctx, actor, id, true)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// MessageUpdate carries the editable message fields. Authorship is fixed at
// creation and cannot be changed here.
type MessageUpdate struct {
	Content  *string
	FilePath *string
}

// UpdateMessage edits content or file path of a message in a conversation
// owned by the actor.
func (s *Service) UpdateMessage(ctx context.Context, actor Actor, id int64, update MessageUpdate) (*store.Message, error) {
	msg, err := s.authorizeMessage(ctx, actor, id, false)
	if err != nil {
		return nil, err
	}

	if update.Content != nil {
		if strings.TrimSpace(*update.Content) == "" {
			return nil, ErrEmptyContent
		}
		msg.Content = *update.Content
	}
	if update.FilePath != nil {
		msg.FilePath = update.FilePath
	}

	if err := s.store.UpdateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("update message: %w", err)
	}
	return s.store.GetMessageByID(ctx, id)
}

// DeleteMessage removes a message from a conversation owned by the actor.
func (s *Service) DeleteMessage(ctx context.Context, actor Actor, id int64) error {
	if _, err := s.authorizeMessage(ctx, actor, id, false); err != nil {
		return err
	}
	return s.store.DeleteMessage(ctx, id)
}

// authorizeMessage loads a message and checks conversation ownership.
// allowAdmin widens read access to admins.
func (s *Service) authorizeMessage(ctx context.Context, actor Actor, id int64, allowAdmin bool) (*store.Message, error) {
	msg, err := s.store.GetMessageByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}

	conv, err := s.store.GetConversationByID(ctx, msg.ConversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	if conv.UserID != actor.UserID && !(allowAdmin && actor.IsAdmin) {
		return nil, ErrNotAuthorized
	}
	return msg, nil
}
