package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ashkanrb/agenthub-server/internal/chat"
)

// ConversationHandlers provides HTTP handlers for conversation endpoints.
type ConversationHandlers struct {
	chat *chat.Service
	log  *zerolog.Logger
}

// NewConversationHandlers creates a new conversation handlers instance.
func NewConversationHandlers(svc *chat.Service, logger *zerolog.Logger) *ConversationHandlers {
	return &ConversationHandlers{
		chat: svc,
		log:  logger,
	}
}

// CreateConversation handles creating an empty conversation.
// POST /api/conversations
func (h *ConversationHandlers) CreateConversation(c *gin.Context) {
	uid, admin, ok := currentActor(c, h.log)
	if !ok {
		return
	}

	conv, err := h.chat.CreateConversation(c.Request.Context(), chat.Actor{UserID: uid, IsAdmin: admin})
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", uid).Msg("failed to create conversation")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Int64("conversation_id", conv.ID).Int64("user_id", uid).Msg("conversation created")
	c.JSON(http.StatusCreated, conversationResponse(conv))
}

// ListConversations handles listing the current user's conversations.
// GET /api/conversations
func (h *ConversationHandlers) ListConversations(c *gin.Context) {
	uid, admin, ok := currentActor(c, h.log)
	if !ok {
		return
	}

	convs, err := h.chat.ListConversations(c.Request.Context(), chat.Actor{UserID: uid, IsAdmin: admin})
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", uid).Msg("failed to list conversations")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]ConversationResponse, 0, len(convs))
	for _, conv := range convs {
		response = append(response, conversationResponse(conv))
	}
	c.JSON(http.StatusOK, response)
}

// GetConversation handles fetching a single conversation.
// GET /api/conversations/:id
func (h *ConversationHandlers) GetConversation(c *gin.Context) {
	uid, admin, ok := currentActor(c, h.log)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid conversation id"})
		return
	}

	conv, err := h.chat.GetConversation(c.Request.Context(), chat.Actor{UserID: uid, IsAdmin: admin}, id)
	if err != nil {
		writeChatError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, conversationResponse(conv))
}

// DeleteConversation handles deleting a conversation and its messages.
// DELETE /api/conversations/:id
func (h *ConversationHandlers) DeleteConversation(c *gin.Context) {
	uid, admin, ok := currentActor(c, h.log)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid conversation id"})
		return
	}

	if err := h.chat.DeleteConversation(c.Request.Context(), chat.Actor{UserID: uid, IsAdmin: admin}, id); err != nil {
		writeChatError(c, h.log, err)
		return
	}

	h.log.Info().Int64("conversation_id", id).Int64("user_id", uid).Msg("conversation deleted")
	c.Status(http.StatusNoContent)
}

// ListMessages handles listing a conversation's messages in send order.
// GET /api/conversations/:id/messages
func (h *ConversationHandlers) ListMessages(c *gin.Context) {
	uid, admin, ok := currentActor(c, h.log)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid conversation id"})
		return
	}

	actor := chat.Actor{UserID: uid, IsAdmin: admin}
	conv, err := h.chat.GetConversation(c.Request.Context(), actor, id)
	if err != nil {
		writeChatError(c, h.log, err)
		return
	}

	msgs, err := h.chat.ListMessages(c.Request.Context(), actor, id)
	if err != nil {
		writeChatError(c, h.log, err)
		return
	}

	response := make([]MessageResponse, 0, len(msgs))
	for _, msg := range msgs {
		response = append(response, messageResponse(msg, conv.UserID))
	}
	c.JSON(http.StatusOK, response)
}

// writeChatError maps chat service sentinels to HTTP responses.
func writeChatError(c *gin.Context, logger *zerolog.Logger, err error) {
	switch {
	case errors.Is(err, chat.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not authorized"})
	case errors.Is(err, chat.ErrConversationNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "conversation not found"})
	case errors.Is(err, chat.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "message not found"})
	case errors.Is(err, chat.ErrEmptyContent):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "content must not be empty"})
	case errors.Is(err, chat.ErrAttachmentStorage):
		logger.Error().Err(err).Msg("attachment storage failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to store attachment"})
	default:
		logger.Error().Err(err).Msg("chat operation failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}
