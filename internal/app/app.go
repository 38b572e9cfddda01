package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ashkanrb/agenthub-server/internal/auth"
	"github.com/ashkanrb/agenthub-server/internal/chat"
	"github.com/ashkanrb/agenthub-server/internal/config"
	"github.com/ashkanrb/agenthub-server/internal/gateway"
	"github.com/ashkanrb/agenthub-server/internal/realtime"
	"github.com/ashkanrb/agenthub-server/internal/store"
	"github.com/ashkanrb/agenthub-server/internal/store/sqlite"
	transporthttp "github.com/ashkanrb/agenthub-server/internal/transport/http"
	"github.com/ashkanrb/agenthub-server/internal/upload"
	"github.com/ashkanrb/agenthub-server/internal/webhook"
)

// App wires together storage, services, and the transport layer.
type App struct {
	server          *stdhttp.Server
	serverStop      chan struct{}
	shutdownTimeout time.Duration
	hub             *realtime.Hub
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	files, err := upload.NewStorage(cfg.UploadDir)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init upload storage: %w", err)
	}

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.TokenTTL,
	}
	authService := auth.NewService(st, jwtConfig)

	hub := realtime.NewHub(logger)
	replies := gateway.NewClient(cfg.GatewayTimeout, logger)
	chatService := chat.NewService(st, hub, replies, files, logger)
	importer := webhook.NewImporter(st, hub, logger)

	server, stop := transporthttp.NewServer(transporthttp.Deps{
		Config:   cfg,
		Store:    st,
		Auth:     authService,
		Chat:     chatService,
		Hub:      hub,
		Importer: importer,
		Log:      logger,
	})

	return &App{
		server:          server,
		serverStop:      stop,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup releases background resources in dependency order.
func (a *App) cleanup() {
	close(a.serverStop)

	if a.hub != nil {
		a.hub.Close()
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
