package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ashkanrb/agenthub-server/internal/chat"
)

// MessageHandlers provides HTTP handlers for message endpoints.
type MessageHandlers struct {
	chat *chat.Service
	log  *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(svc *chat.Service, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		chat: svc,
		log:  logger,
	}
}

// SubmitMessage handles a multipart message submission. Form fields:
// content (required), conversation_id (optional), link (reply generation
// endpoint), file (optional attachment).
// POST /api/messages
func (h *MessageHandlers) SubmitMessage(c *gin.Context) {
	uid, _, ok := currentActor(c, h.log)
	if !ok {
		return
	}

	content := c.PostForm("content")
	if strings.TrimSpace(content) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "content must not be empty"})
		return
	}

	endpoint := c.PostForm("link")
	if endpoint == "" {
		endpoint = c.PostForm("endpoint")
	}

	req := &chat.SubmitRequest{
		AuthorID: uid,
		Content:  content,
		Endpoint: endpoint,
	}

	if raw := c.PostForm("conversation_id"); raw != "" {
		convID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid conversation id"})
			return
		}
		req.ConversationID = &convID
	}

	if fileHeader, err := c.FormFile("file"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			h.log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("failed to open uploaded file")
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid file upload"})
			return
		}
		defer file.Close()
		req.Attachment = &chat.Attachment{
			Filename: fileHeader.Filename,
			Reader:   file,
		}
	}

	msg, err := h.chat.SubmitUserMessage(c.Request.Context(), req)
	if err != nil {
		writeChatError(c, h.log, err)
		return
	}

	h.log.Info().Int64("message_id", msg.ID).Int64("conversation_id", msg.ConversationID).Int64("user_id", uid).Msg("message submitted")
	c.JSON(http.StatusCreated, messageResponse(msg, uid))
}

// GetMessage handles fetching a single message.
// GET /api/messages/:id
func (h *MessageHandlers) GetMessage(c *gin.Context) {
	uid, admin, ok := currentActor(c, h.log)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid message id"})
		return
	}

	actor := chat.Actor{UserID: uid, IsAdmin: admin}
	msg, err := h.chat.GetMessage(c.Request.Context(), actor, id)
	if err != nil {
		writeChatError(c, h.log, err)
		return
	}

	conv, err := h.chat.GetConversation(c.Request.Context(), actor, msg.ConversationID)
	if err != nil {
		writeChatError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse(msg, conv.UserID))
}

// UpdateMessageRequest represents the update message request body.
type UpdateMessageRequest struct {
	Content  string  `json:"content" binding:"required"`
	FilePath *string `json:"file_path"`
}

// UpdateMessage handles editing a message's content and file reference.
// Owner only.
// PUT /api/messages/:id
func (h *MessageHandlers) UpdateMessage(c *gin.Context) {
	uid, admin, ok := currentActor(c, h.log)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid message id"})
		return
	}

	var req UpdateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid update message request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	msg, err := h.chat.UpdateMessage(c.Request.Context(), chat.Actor{UserID: uid, IsAdmin: admin}, id, chat.MessageUpdate{
		Content:  &req.Content,
		FilePath: req.FilePath,
	})
	if err != nil {
		writeChatError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse(msg, uid))
}

// DeleteMessage handles deleting a message. Owner only.
// DELETE /api/messages/:id
func (h *MessageHandlers) DeleteMessage(c *gin.Context) {
	uid, admin, ok := currentActor(c, h.log)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid message id"})
		return
	}

	if err := h.chat.DeleteMessage(c.Request.Context(), chat.Actor{UserID: uid, IsAdmin: admin}, id); err != nil {
		writeChatError(c, h.log, err)
		return
	}

	h.log.Info().Int64("message_id", id).Int64("user_id", uid).Msg("message deleted")
	c.Status(http.StatusNoContent)
}
