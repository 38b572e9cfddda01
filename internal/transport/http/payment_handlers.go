package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ashkanrb/agenthub-server/internal/store"
)

// PaymentHandlers provides HTTP handlers for payment record endpoints.
// Payments are records of settled charges; no processor integration
// happens here.
type PaymentHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewPaymentHandlers creates a new payment handlers instance.
func NewPaymentHandlers(st store.Store, logger *zerolog.Logger) *PaymentHandlers {
	return &PaymentHandlers{
		store: st,
		log:   logger,
	}
}

// CreatePaymentRequest represents the create payment request body. Either
// subscription_id references an existing subscription of the caller, or
// plan_id asks for a fresh subscription to be opened with the payment.
type CreatePaymentRequest struct {
	SubscriptionID *int64  `json:"subscription_id"`
	PlanID         *int64  `json:"plan_id"`
	PaymentType    string  `json:"payment_type" binding:"required"`
	Currency       string  `json:"currency" binding:"required"`
	Amount         float64 `json:"amount" binding:"required"`
	TransactionID  string  `json:"transaction_id" binding:"required"`
}

// UpdatePaymentRequest represents the update payment request body.
type UpdatePaymentRequest struct {
	PaymentType   *string  `json:"payment_type"`
	Currency      *string  `json:"currency"`
	Amount        *float64 `json:"amount"`
	TransactionID *string  `json:"transaction_id"`
}

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID             int64   `json:"id"`
	UserID         int64   `json:"user_id"`
	SubscriptionID int64   `json:"subscription_id"`
	PaymentType    string  `json:"payment_type"`
	Currency       string  `json:"currency"`
	Amount         float64 `json:"amount"`
	TransactionID  string  `json:"transaction_id"`
	PaidAt         string  `json:"paid_at"`
	CreatedAt      string  `json:"created_at"`
}

func paymentResponse(payment *store.Payment) PaymentResponse {
	return PaymentResponse{
		ID:             payment.ID,
		UserID:         payment.UserID,
		SubscriptionID: payment.SubscriptionID,
		PaymentType:    payment.PaymentType,
		Currency:       payment.Currency,
		Amount:         payment.Amount,
		TransactionID:  payment.TransactionID,
		PaidAt:         formatTime(payment.PaidAt),
		CreatedAt:      formatTime(payment.CreatedAt),
	}
}

// CreatePayment records a payment for the current user. Paying for an
// existing subscription reactivates it; paying with only a plan id opens a
// new active subscription.
// POST /api/payments
func (h *PaymentHandlers) CreatePayment(c *gin.Context) {
	uid, _, ok := currentActor(c, h.log)
	if !ok {
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create payment request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	var subscriptionID int64
	switch {
	case req.SubscriptionID != nil:
		sub, err := h.store.GetSubscriptionByID(c.Request.Context(), *req.SubscriptionID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, ErrorResponse{Error: "subscription not found"})
				return
			}
			h.log.Error().Err(err).Int64("subscription_id", *req.SubscriptionID).Msg("failed to get subscription")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}
		if sub.UserID != uid {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "not your subscription"})
			return
		}
		if sub.Status != store.SubscriptionStatusActive {
			if err := h.store.UpdateSubscriptionStatus(c.Request.Context(), sub.ID, store.SubscriptionStatusActive); err != nil {
				h.log.Error().Err(err).Int64("subscription_id", sub.ID).Msg("failed to activate subscription")
				c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
				return
			}
		}
		subscriptionID = sub.ID

	case req.PlanID != nil:
		plan, err := h.store.GetPlanByID(c.Request.Context(), *req.PlanID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, ErrorResponse{Error: "plan not found"})
				return
			}
			h.log.Error().Err(err).Int64("plan_id", *req.PlanID).Msg("failed to get plan")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}

		sub, err := h.store.CreateSubscription(c.Request.Context(), &store.Subscription{
			UserID: uid,
			PlanID: plan.ID,
			Status: store.SubscriptionStatusActive,
		})
		if err != nil {
			h.log.Error().Err(err).Int64("user_id", uid).Int64("plan_id", plan.ID).Msg("failed to create subscription for payment")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}
		subscriptionID = sub.ID

	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "subscription_id or plan_id is required"})
		return
	}

	payment, err := h.store.CreatePayment(c.Request.Context(), &store.Payment{
		UserID:         uid,
		SubscriptionID: subscriptionID,
		PaymentType:    req.PaymentType,
		Currency:       req.Currency,
		Amount:         req.Amount,
		TransactionID:  req.TransactionID,
	})
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", uid).Int64("subscription_id", subscriptionID).Msg("failed to create payment")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().
		Int64("payment_id", payment.ID).
		Int64("user_id", uid).
		Int64("subscription_id", subscriptionID).
		Str("transaction_id", payment.TransactionID).
		Msg("payment recorded")
	c.JSON(http.StatusCreated, paymentResponse(payment))
}

// ListPayments lists the current user's payments.
// GET /api/payments
func (h *PaymentHandlers) ListPayments(c *gin.Context) {
	uid, _, ok := currentActor(c, h.log)
	if !ok {
		return
	}

	payments, err := h.store.ListPaymentsByUser(c.Request.Context(), uid)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", uid).Msg("failed to list payments")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]PaymentResponse, 0, len(payments))
	for _, payment := range payments {
		response = append(response, paymentResponse(payment))
	}
	c.JSON(http.StatusOK, response)
}

// GetPayment fetches a single payment. Owner or admin.
// GET /api/payments/:id
func (h *PaymentHandlers) GetPayment(c *gin.Context) {
	uid, admin, ok := currentActor(c, h.log)
	if !ok {
		return
	}

	payment, ok := h.authorizedPayment(c, uid, admin)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, paymentResponse(payment))
}

// ListSubscriptionPayments lists payments against one subscription. Owner
// of the subscription or admin.
// GET /api/subscriptions/:id/payments
func (h *PaymentHandlers) ListSubscriptionPayments(c *gin.Context) {
	uid, admin, ok := currentActor(c, h.log)
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
	if sub.UserID != uid && !admin {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not your subscription"})
		return
	}

	payments, err := h.store.ListPaymentsBySubscription(c.Request.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Int64("subscription_id", id).Msg("failed to list subscription payments")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]PaymentResponse, 0, len(payments))
	for _, payment := range payments {
		response = append(response, paymentResponse(payment))
	}
	c.JSON(http.StatusOK, response)
}

// UpdatePayment edits a payment record. Owner only.
// PUT /api/payments/:id
func (h *PaymentHandlers) UpdatePayment(c *gin.Context) {
	uid, _, ok := currentActor(c, h.log)
	if !ok {
		return
	}

	payment, ok := h.authorizedPayment(c, uid, false)
	if !ok {
		return
	}

	var req UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid update payment request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.PaymentType != nil {
		payment.PaymentType = *req.PaymentType
	}
	if req.Currency != nil {
		payment.Currency = *req.Currency
	}
	if req.Amount != nil {
		payment.Amount = *req.Amount
	}
	if req.TransactionID != nil {
		payment.TransactionID = *req.TransactionID
	}

	if err := h.store.UpdatePayment(c.Request.Context(), payment); err != nil {
		h.log.Error().Err(err).Int64("payment_id", payment.ID).Msg("failed to update payment")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, paymentResponse(payment))
}

// DeletePayment removes a payment record. Owner only.
// DELETE /api/payments/:id
func (h *PaymentHandlers) DeletePayment(c *gin.Context) {
	uid, _, ok := currentActor(c, h.log)
	if !ok {
		return
	}

	payment, ok := h.authorizedPayment(c, uid, false)
	if !ok {
		return
	}

	if err := h.store.DeletePayment(c.Request.Context(), payment.ID); err != nil {
		h.log.Error().Err(err).Int64("payment_id", payment.ID).Msg("failed to delete payment")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Int64("payment_id", payment.ID).Int64("user_id", uid).Msg("payment deleted")
	c.Status(http.StatusNoContent)
}

// authorizedPayment loads the :id payment and enforces ownership;
// privileged callers (admin reads) bypass the owner check. Writes the
// response on failure.
func (h *PaymentHandlers) authorizedPayment(c *gin.Context, uid int64, privileged bool) (*store.Payment, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid payment id"})
		return nil, false
	}

	payment, err := h.store.GetPaymentByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "payment not found"})
			return nil, false
		}
		h.log.Error().Err(err).Int64("payment_id", id).Msg("failed to get payment")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return nil, false
	}

	if payment.UserID != uid && !privileged {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not your payment"})
		return nil, false
	}

	return payment, true
}
