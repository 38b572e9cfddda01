package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ashkanrb/agenthub-server/internal/store"
)

// SubscriptionHandlers provides HTTP handlers for subscription endpoints.
type SubscriptionHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewSubscriptionHandlers creates a new subscription handlers instance.
func NewSubscriptionHandlers(st store.Store, logger *zerolog.Logger) *SubscriptionHandlers {
	return &SubscriptionHandlers{
		store: st,
		log:   logger,
	}
}

// CreateSubscriptionRequest represents the subscribe request body.
type CreateSubscriptionRequest struct {
	PlanID   int64   `json:"plan_id" binding:"required"`
	AgentIDs []int64 `json:"agent_ids" binding:"required,min=1"`
}

// SubscriptionResponse represents a subscription in API responses.
type SubscriptionResponse struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"user_id"`
	PlanID    int64   `json:"plan_id"`
	Status    string  `json:"status"`
	AgentIDs  []int64 `json:"agent_ids"`
	StartedAt string  `json:"started_at"`
	ExpiresAt *string `json:"expires_at"`
	CreatedAt string  `json:"created_at"`
}

func subscriptionResponse(sub *store.Subscription) SubscriptionResponse {
	resp := SubscriptionResponse{
		ID:        sub.ID,
		UserID:    sub.UserID,
		PlanID:    sub.PlanID,
		Status:    string(sub.Status),
		AgentIDs:  sub.AgentIDs,
		StartedAt: formatTime(sub.StartedAt),
		CreatedAt: formatTime(sub.CreatedAt),
	}
	if sub.ExpiresAt != nil {
		s := formatTime(*sub.ExpiresAt)
		resp.ExpiresAt = &s
	}
	return resp
}

// CreateSubscription handles subscribing the current user to a plan with a
// chosen set of agents.
// POST /api/subscriptions
func (h *SubscriptionHandlers) CreateSubscription(c *gin.Context) {
	uid, _, ok := currentActor(c, h.log)
	if !ok {
		return
	}

	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create subscription request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	plan, err := h.store.GetPlanByID(c.Request.Context(), req.PlanID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "plan not found"})
			return
		}
		h.log.Error().Err(err).Int64("plan_id", req.PlanID).Msg("failed to get plan")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if !plan.IsActive {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "plan is not active"})
		return
	}

	if len(req.AgentIDs) > plan.MaxAgents {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "too many agents for this plan"})
		return
	}

	for _, agentID := range req.AgentIDs {
		agent, err := h.store.GetAgentByID(c.Request.Context(), agentID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, ErrorResponse{Error: "agent not found"})
				return
			}
			h.log.Error().Err(err).Int64("agent_id", agentID).Msg("failed to get agent")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}
		if !agent.IsActive {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "agent is not active"})
			return
		}
	}

	sub, err := h.store.CreateSubscription(c.Request.Context(), &store.Subscription{
		UserID:   uid,
		PlanID:   plan.ID,
		Status:   store.SubscriptionStatusActive,
		AgentIDs: req.AgentIDs,
	})
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", uid).Int64("plan_id", plan.ID).Msg("failed to create subscription")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Int64("subscription_id", sub.ID).Int64("user_id", uid).Int64("plan_id", plan.ID).Msg("subscription created")
	c.JSON(http.StatusCreated, subscriptionResponse(sub))
}

// ListSubscriptions handles listing the current user's subscriptions.
// GET /api/subscriptions
func (h *SubscriptionHandlers) ListSubscriptions(c *gin.Context) {
	uid, _, ok := currentActor(c, h.log)
	if !ok {
		return
	}

	subs, err := h.store.ListSubscriptionsByUser(c.Request.Context(), uid)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", uid).Msg("failed to list subscriptions")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]SubscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		response = append(response, subscriptionResponse(sub))
	}
	c.JSON(http.StatusOK, response)
}

// CancelSubscription handles cancelling an active subscription.
// POST /api/subscriptions/:id/cancel
func (h *SubscriptionHandlers) CancelSubscription(c *gin.Context) {
	uid, _, ok := currentActor(c, h.log)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid subscription id"})
		return
	}

	sub, err := h.store.GetSubscriptionByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "subscription not found"})
			return
		}
		h.log.Error().Err(err).Int64("subscription_id", id).Msg("failed to get subscription")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	if sub.UserID != uid {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not your subscription"})
		return
	}
	if sub.Status != store.SubscriptionStatusActive {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "subscription is not active"})
		return
	}

	if err := h.store.UpdateSubscriptionStatus(c.Request.Context(), id, store.SubscriptionStatusCancelled); err != nil {
		h.log.Error().Err(err).Int64("subscription_id", id).Msg("failed to cancel subscription")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	sub.Status = store.SubscriptionStatusCancelled
	h.log.Info().Int64("subscription_id", id).Int64("user_id", uid).Msg("subscription cancelled")
	c.JSON(http.StatusOK, subscriptionResponse(sub))
}
