package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ashkanrb/agenthub-server/internal/store"
)

// AgentHandlers provides HTTP handlers for agent catalog endpoints.
type AgentHandlers struct {
	store store.AgentStore
	log   *zerolog.Logger
}

// NewAgentHandlers creates a new agent handlers instance.
func NewAgentHandlers(st store.AgentStore, logger *zerolog.Logger) *AgentHandlers {
	return &AgentHandlers{
		store: st,
		log:   logger,
	}
}

// AgentRequest represents the create/update agent request body.
type AgentRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=128"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	WebhookURL  string  `json:"webhook_url" binding:"required"`
	IsActive    *bool   `json:"is_active"`
}

// AgentResponse represents an agent in API responses.
type AgentResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	WebhookURL  string  `json:"webhook_url"`
	IsActive    bool    `json:"is_active"`
	CreatedAt   string  `json:"created_at"`
}

func agentResponse(agent *store.Agent) AgentResponse {
	return AgentResponse{
		ID:          agent.ID,
		Name:        agent.Name,
		Description: agent.Description,
		Price:       agent.Price,
		WebhookURL:  agent.WebhookURL,
		IsActive:    agent.IsActive,
		CreatedAt:   formatTime(agent.CreatedAt),
	}
}

// ListAgents handles listing active agents.
// GET /api/agents
func (h *AgentHandlers) ListAgents(c *gin.Context) {
	agents, err := h.store.ListAgents(c.Request.Context(), true)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list agents")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]AgentResponse, 0, len(agents))
	for _, agent := range agents {
		response = append(response, agentResponse(agent))
	}
	c.JSON(http.StatusOK, response)
}

// GetAgent handles fetching a single agent.
// GET /api/agents/:id
func (h *AgentHandlers) GetAgent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid agent id"})
		return
	}

	agent, err := h.store.GetAgentByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "agent not found"})
			return
		}
		h.log.Error().Err(err).Int64("agent_id", id).Msg("failed to get agent")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, agentResponse(agent))
}

// CreateAgent handles agent creation. Admin only.
// POST /api/agents
func (h *AgentHandlers) CreateAgent(c *gin.Context) {
	var req AgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create agent request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	agent, err := h.store.CreateAgent(c.Request.Context(), &store.Agent{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		WebhookURL:  req.WebhookURL,
		IsActive:    active,
	})
	if err != nil {
		h.log.Error().Err(err).Str("agent_name", req.Name).Msg("failed to create agent")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Int64("agent_id", agent.ID).Str("agent_name", agent.Name).Msg("agent created")
	c.JSON(http.StatusCreated, agentResponse(agent))
}

// UpdateAgent handles agent updates. Admin only.
// PUT /api/agents/:id
func (h *AgentHandlers) UpdateAgent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid agent id"})
		return
	}

	var req AgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid update agent request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	agent, err := h.store.GetAgentByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "agent not found"})
			return
		}
		h.log.Error().Err(err).Int64("agent_id", id).Msg("failed to get agent")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	agent.Name = req.Name
	agent.Description = req.Description
	agent.Price = req.Price
	agent.WebhookURL = req.WebhookURL
	if req.IsActive != nil {
		agent.IsActive = *req.IsActive
	}

	if err := h.store.UpdateAgent(c.Request.Context(), agent); err != nil {
		h.log.Error().Err(err).Int64("agent_id", id).Msg("failed to update agent")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, agentResponse(agent))
}

// DeleteAgent handles agent removal. Admin only.
// DELETE /api/agents/:id
func (h *AgentHandlers) DeleteAgent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid agent id"})
		return
	}

	if err := h.store.DeleteAgent(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "agent not found"})
			return
		}
		h.log.Error().Err(err).Int64("agent_id", id).Msg("failed to delete agent")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}
