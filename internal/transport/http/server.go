package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ashkanrb/agenthub-server/internal/auth"
	"github.com/ashkanrb/agenthub-server/internal/chat"
	"github.com/ashkanrb/agenthub-server/internal/config"
	"github.com/ashkanrb/agenthub-server/internal/realtime"
	"github.com/ashkanrb/agenthub-server/internal/store"
	"github.com/ashkanrb/agenthub-server/internal/webhook"
)

// Deps bundles everything the HTTP layer needs.
type Deps struct {
	Config   config.Config
	Store    store.Store
	Auth     *auth.Service
	Chat     *chat.Service
	Hub      *realtime.Hub
	Importer *webhook.Importer
	Log      *zerolog.Logger
}

// NewServer builds the HTTP server with all routes registered. The
// returned stop channel ends background route state (rate limit resets)
// when closed.
func NewServer(deps Deps) (*stdhttp.Server, chan struct{}) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(deps.Log))

	router.GET("/health", healthHandler)
	router.Static("/uploads", deps.Config.UploadDir)

	authHandlers := NewAuthHandlers(deps.Auth, deps.Log)
	agentHandlers := NewAgentHandlers(deps.Store, deps.Log)
	planHandlers := NewPlanHandlers(deps.Store, deps.Log)
	subHandlers := NewSubscriptionHandlers(deps.Store, deps.Log)
	paymentHandlers := NewPaymentHandlers(deps.Store, deps.Log)
	convHandlers := NewConversationHandlers(deps.Chat, deps.Log)
	msgHandlers := NewMessageHandlers(deps.Chat, deps.Log)
	wsHandler := NewWSHandler(deps.Hub, deps.Log)

	stop := make(chan struct{})
	limiter := newRateLimiter(deps.Config.WebhookRateLimit)
	limiter.startReset(stop)
	webhookHandlers := NewWebhookHandlers(deps.Importer, deps.Config.WebhookSecret, deps.Config.WebhookTolerance, limiter, deps.Log)

	router.POST("/api/register", authHandlers.Register)
	router.POST("/api/login", authHandlers.Login)

	api := router.Group("/api")
	api.Use(AuthMiddleware(deps.Auth, deps.Log))
	{
		api.GET("/agents", agentHandlers.ListAgents)
		api.GET("/agents/:id", agentHandlers.GetAgent)

		api.GET("/plans", planHandlers.ListPlans)
		api.GET("/plans/:id", planHandlers.GetPlan)

		api.POST("/subscriptions", subHandlers.CreateSubscription)
		api.GET("/subscriptions", subHandlers.ListSubscriptions)
		api.POST("/subscriptions/:id/cancel", subHandlers.CancelSubscription)
		api.GET("/subscriptions/:id/payments", paymentHandlers.ListSubscriptionPayments)

		api.POST("/payments", paymentHandlers.CreatePayment)
		api.GET("/payments", paymentHandlers.ListPayments)
		api.GET("/payments/:id", paymentHandlers.GetPayment)
		api.PUT("/payments/:id", paymentHandlers.UpdatePayment)
		api.DELETE("/payments/:id", paymentHandlers.DeletePayment)

		api.POST("/conversations", convHandlers.CreateConversation)
		api.GET("/conversations", convHandlers.ListConversations)
		api.GET("/conversations/:id", convHandlers.GetConversation)
		api.DELETE("/conversations/:id", convHandlers.DeleteConversation)
		api.GET("/conversations/:id/messages", convHandlers.ListMessages)

		api.POST("/messages", msgHandlers.SubmitMessage)
		api.GET("/messages/:id", msgHandlers.GetMessage)
		api.PUT("/messages/:id", msgHandlers.UpdateMessage)
		api.DELETE("/messages/:id", msgHandlers.DeleteMessage)
	}

	admin := api.Group("")
	admin.Use(AdminMiddleware())
	{
		admin.POST("/agents", agentHandlers.CreateAgent)
		admin.PUT("/agents/:id", agentHandlers.UpdateAgent)
		admin.DELETE("/agents/:id", agentHandlers.DeleteAgent)

		admin.POST("/plans", planHandlers.CreatePlan)
		admin.PUT("/plans/:id", planHandlers.UpdatePlan)
		admin.DELETE("/plans/:id", planHandlers.DeletePlan)
	}

	router.GET("/ws/:room", wsHandler.Handle)
	router.POST("/webhook/voice", webhookHandlers.HandleTranscript)

	return &stdhttp.Server{
		Addr:              deps.Config.Addr,
		Handler:           router,
		ReadHeaderTimeout: deps.Config.ReadHeaderTimeout,
	}, stop
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
