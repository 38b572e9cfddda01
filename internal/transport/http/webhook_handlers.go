package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ashkanrb/agenthub-server/internal/webhook"
)

// signatureHeader carries the timestamped HMAC of the webhook body.
const signatureHeader = "Elevenlabs-Signature"

// maxWebhookBody bounds the transcript payload size.
const maxWebhookBody = 1 << 20

// WebhookHandlers provides the server-to-server transcript ingestion
// endpoint.
type WebhookHandlers struct {
	importer  *webhook.Importer
	secret    []byte
	tolerance time.Duration
	limiter   *rateLimiter
	log       *zerolog.Logger
}

// NewWebhookHandlers creates a new webhook handlers instance.
func NewWebhookHandlers(importer *webhook.Importer, secret string, tolerance time.Duration, limiter *rateLimiter, logger *zerolog.Logger) *WebhookHandlers {
	return &WebhookHandlers{
		importer:  importer,
		secret:    []byte(secret),
		tolerance: tolerance,
		limiter:   limiter,
		log:       logger,
	}
}

// HandleTranscript verifies and imports a voice-service transcript.
// POST /webhook/voice
func (h *WebhookHandlers) HandleTranscript(c *gin.Context) {
	if !h.limiter.allow() {
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to read webhook body")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := webhook.VerifySignature(h.secret, c.GetHeader(signatureHeader), body, time.Now(), h.tolerance); err != nil {
		h.log.Warn().Err(err).Msg("webhook signature rejected")
		status := http.StatusUnauthorized
		if errors.Is(err, webhook.ErrMissingSignature) || errors.Is(err, webhook.ErrMalformedSignature) {
			status = http.StatusBadRequest
		}
		c.JSON(status, ErrorResponse{Error: "invalid signature"})
		return
	}

	payload, err := webhook.ParsePayload(body)
	if err != nil {
		h.log.Warn().Err(err).Msg("malformed webhook payload")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "malformed payload"})
		return
	}

	userID := int64(payload.Data.ConversationInitiationClientData.DynamicVariables.UserID)
	if userID == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing user_id"})
		return
	}

	conv, err := h.importer.ImportTranscript(c.Request.Context(), userID, payload.Data.Transcript)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Str("agent_id", payload.Data.AgentID).Msg("failed to import transcript")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().
		Int64("conversation_id", conv.ID).
		Int64("user_id", userID).
		Str("agent_id", payload.Data.AgentID).
		Int("turns", len(payload.Data.Transcript)).
		Msg("transcript imported")
	c.JSON(http.StatusOK, gin.H{"status": "ok", "conversation_id": conv.ID})
}
