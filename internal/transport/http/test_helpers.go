package http

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ashkanrb/agenthub-server/internal/auth"
	"github.com/ashkanrb/agenthub-server/internal/chat"
	"github.com/ashkanrb/agenthub-server/internal/config"
	"github.com/ashkanrb/agenthub-server/internal/realtime"
	"github.com/ashkanrb/agenthub-server/internal/store"
	"github.com/ashkanrb/agenthub-server/internal/store/sqlite"
	"github.com/ashkanrb/agenthub-server/internal/upload"
	"github.com/ashkanrb/agenthub-server/internal/webhook"
)

// createTestStore creates an in-memory SQLite store with schema applied
// and keeps a raw handle for test-only tweaks (admin promotion).
func createTestStore(t *testing.T) (store.Store, *sql.DB) {
	t.Helper()

	schema := `
	CREATE TABLE users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name    TEXT NOT NULL DEFAULT '',
		last_name     TEXT NOT NULL DEFAULT '',
		is_admin      BOOLEAN NOT NULL DEFAULT 0,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE agents (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price       REAL NOT NULL DEFAULT 0,
		webhook_url TEXT NOT NULL,
		is_active   BOOLEAN NOT NULL DEFAULT 1,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE plans (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price       REAL,
		max_agents  INTEGER NOT NULL DEFAULT 1,
		is_active   BOOLEAN NOT NULL DEFAULT 1,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE subscriptions (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    INTEGER NOT NULL,
		plan_id    INTEGER NOT NULL,
		status     TEXT NOT NULL DEFAULT 'active',
		started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		expires_at DATETIME,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		FOREIGN KEY (plan_id) REFERENCES plans(id)
	);

	CREATE TABLE subscription_agents (
		subscription_id INTEGER NOT NULL,
		agent_id        INTEGER NOT NULL,
		PRIMARY KEY (subscription_id, agent_id),
		FOREIGN KEY (subscription_id) REFERENCES subscriptions(id) ON DELETE CASCADE,
		FOREIGN KEY (agent_id) REFERENCES agents(id) ON DELETE CASCADE
	);

	CREATE TABLE payments (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id         INTEGER NOT NULL,
		subscription_id INTEGER NOT NULL,
		payment_type    TEXT NOT NULL,
		currency        TEXT NOT NULL,
		amount          REAL NOT NULL,
		transaction_id  TEXT NOT NULL,
		paid_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		FOREIGN KEY (subscription_id) REFERENCES subscriptions(id) ON DELETE CASCADE
	);

	CREATE TABLE conversations (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    INTEGER NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE TABLE messages (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id INTEGER NOT NULL,
		is_system       BOOLEAN NOT NULL DEFAULT 0,
		content         TEXT NOT NULL,
		file_path       TEXT,
		sent_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
	);

	CREATE INDEX idx_messages_conversation ON messages(conversation_id, sent_at);
	CREATE INDEX idx_conversations_user ON conversations(user_id);
	CREATE INDEX idx_subscriptions_user ON subscriptions(user_id);
	`

	var raw *sql.DB
	st, err := sqlite.NewWithSetup(":memory:", func(db *sql.DB) error {
		raw = db
		_, err := db.Exec(schema)
		return err
	})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	return st, raw
}

// createTestAuthService creates an auth service for testing.
func createTestAuthService(t *testing.T, st store.Store, jwtSecret string) *auth.Service {
	t.Helper()

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(jwtSecret),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}

	return auth.NewService(st, jwtConfig)
}

// registerUser registers a user and returns the token.
func registerUser(t *testing.T, authService *auth.Service, email string) string {
	t.Helper()

	token, err := authService.Register(context.Background(), email, "password123", "Test", "User")
	if err != nil {
		t.Fatalf("failed to register user %s: %v", email, err)
	}
	return token
}

// promoteAdmin flips a user's admin flag directly in the database, then
// returns a fresh token carrying the admin claim.
func promoteAdmin(t *testing.T, db *sql.DB, authService *auth.Service, email string) string {
	t.Helper()

	if _, err := db.Exec(`UPDATE users SET is_admin = 1 WHERE email = ?`, email); err != nil {
		t.Fatalf("failed to promote admin: %v", err)
	}

	token, err := authService.Login(context.Background(), email, "password123")
	if err != nil {
		t.Fatalf("failed to login admin: %v", err)
	}
	return token
}

// nopReplies is a ReplyGenerator that never answers.
type nopReplies struct{}

func (nopReplies) Generate(context.Context, string, string) (string, error) {
	return "", context.DeadlineExceeded
}

// fixedReplies always answers with the same text.
type fixedReplies struct {
	reply string
}

func (f fixedReplies) Generate(context.Context, string, string) (string, error) {
	return f.reply, nil
}

// buildTestDeps wires a complete Deps over the given store.
func buildTestDeps(t *testing.T, st store.Store, authService *auth.Service, replies chat.ReplyGenerator, webhookSecret string) Deps {
	t.Helper()

	disabledLogger := zerolog.New(nil)

	files, err := upload.NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create upload storage: %v", err)
	}

	hub := realtime.NewHub(&disabledLogger)
	t.Cleanup(hub.Close)

	chatService := chat.NewService(st, hub, replies, files, &disabledLogger)
	importer := webhook.NewImporter(st, hub, &disabledLogger)

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.UploadDir = files.BaseDir()
	cfg.WebhookSecret = webhookSecret
	cfg.WebhookRateLimit = 0

	return Deps{
		Config:   cfg,
		Store:    st,
		Auth:     authService,
		Chat:     chatService,
		Hub:      hub,
		Importer: importer,
		Log:      &disabledLogger,
	}
}
