package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ashkanrb/agenthub-server/internal/store"
)

// PlanHandlers provides HTTP handlers for plan catalog endpoints.
type PlanHandlers struct {
	store store.PlanStore
	log   *zerolog.Logger
}

// NewPlanHandlers creates a new plan handlers instance.
func NewPlanHandlers(st store.PlanStore, logger *zerolog.Logger) *PlanHandlers {
	return &PlanHandlers{
		store: st,
		log:   logger,
	}
}

// PlanRequest represents the create/update plan request body.
type PlanRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=128"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	MaxAgents   int      `json:"max_agents" binding:"required,min=1"`
	IsActive    *bool    `json:"is_active"`
}

// PlanResponse represents a plan in API responses.
type PlanResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	MaxAgents   int      `json:"max_agents"`
	IsActive    bool     `json:"is_active"`
	CreatedAt   string   `json:"created_at"`
}

func planResponse(plan *store.Plan) PlanResponse {
	return PlanResponse{
		ID:          plan.ID,
		Name:        plan.Name,
		Description: plan.Description,
		Price:       plan.Price,
		MaxAgents:   plan.MaxAgents,
		IsActive:    plan.IsActive,
		CreatedAt:   formatTime(plan.CreatedAt),
	}
}

// ListPlans handles listing active plans.
// GET /api/plans
func (h *PlanHandlers) ListPlans(c *gin.Context) {
	plans, err := h.store.ListPlans(c.Request.Context(), true)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list plans")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]PlanResponse, 0, len(plans))
	for _, plan := range plans {
		response = append(response, planResponse(plan))
	}
	c.JSON(http.StatusOK, response)
}

// GetPlan handles fetching a single plan.
// GET /api/plans/:id
func (h *PlanHandlers) GetPlan(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid plan id"})
		return
	}

	plan, err := h.store.GetPlanByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "plan not found"})
			return
		}
		h.log.Error().Err(err).Int64("plan_id", id).Msg("failed to get plan")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, planResponse(plan))
}

// CreatePlan handles plan creation. Admin only.
// POST /api/plans
func (h *PlanHandlers) CreatePlan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create plan request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	plan, err := h.store.CreatePlan(c.Request.Context(), &store.Plan{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		MaxAgents:   req.MaxAgents,
		IsActive:    active,
	})
	if err != nil {
		h.log.Error().Err(err).Str("plan_name", req.Name).Msg("failed to create plan")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Int64("plan_id", plan.ID).Str("plan_name", plan.Name).Msg("plan created")
	c.JSON(http.StatusCreated, planResponse(plan))
}

// UpdatePlan handles plan updates. Admin only.
// PUT /api/plans/:id
func (h *PlanHandlers) UpdatePlan(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid plan id"})
		return
	}

	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid update plan request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	plan, err := h.store.GetPlanByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "plan not found"})
			return
		}
		h.log.Error().Err(err).Int64("plan_id", id).Msg("failed to get plan")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	plan.Name = req.Name
	plan.Description = req.Description
	plan.Price = req.Price
	plan.MaxAgents = req.MaxAgents
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	if err := h.store.UpdatePlan(c.Request.Context(), plan); err != nil {
		h.log.Error().Err(err).Int64("plan_id", id).Msg("failed to update plan")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, planResponse(plan))
}

// DeletePlan handles plan removal. Admin only.
// DELETE /api/plans/:id
func (h *PlanHandlers) DeletePlan(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid plan id"})
		return
	}

	if err := h.store.DeletePlan(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "plan not found"})
			return
		}
		h.log.Error().Err(err).Int64("plan_id", id).Msg("failed to delete plan")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}
