package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ashkanrb/agenthub-server/internal/store"
)

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := open(dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewWithSetup creates a new SQLite store and runs a setup function
// instead of the built-in schema. Useful for tests.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := open(dbPath)
	if err != nil {
		return nil, err
	}

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

func open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

// CreateUser creates a new user with hashed password.
func (s *SQLiteStore) CreateUser(ctx context.Context, email, passwordHash, firstName, lastName string) (*store.User, error) {
	query := `
		INSERT INTO users (email, password_hash, first_name, last_name)
		VALUES (?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, email, passwordHash, firstName, lastName)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, is_admin, created_at
		FROM users
		WHERE id = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, is_admin, created_at
		FROM users
		WHERE email = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*store.User, error) {
	var user store.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.IsAdmin,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

// ==== AgentStore implementation ====

// CreateAgent creates a new agent.
func (s *SQLiteStore) CreateAgent(ctx context.Context, agent *store.Agent) (*store.Agent, error) {
	query := `
		INSERT INTO agents (name, description, price, webhook_url, is_active)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, agent.Name, agent.Description, agent.Price, agent.WebhookURL, agent.IsActive)
	if err != nil {
		return nil, fmt.Errorf("insert agent: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetAgentByID(ctx, id)
}

// GetAgentByID retrieves an agent by ID.
func (s *SQLiteStore) GetAgentByID(ctx context.Context, id int64) (*store.Agent, error) {
	query := `
		SELECT id, name, description, price, webhook_url, is_active, created_at
		FROM agents
		WHERE id = ?
	`
	var agent store.Agent
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&agent.ID,
		&agent.Name,
		&agent.Description,
		&agent.Price,
		&agent.WebhookURL,
		&agent.IsActive,
		&agent.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query agent: %w", err)
	}
	return &agent, nil
}

// ListAgents lists agents; activeOnly restricts to active ones.
func (s *SQLiteStore) ListAgents(ctx context.Context, activeOnly bool) ([]*store.Agent, error) {
	query := `
		SELECT id, name, description, price, webhook_url, is_active, created_at
		FROM agents
	`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query agents: %w", err)
	}
	defer rows.Close()

	agents := make([]*store.Agent, 0)
	for rows.Next() {
		var agent store.Agent
		if err := rows.Scan(
			&agent.ID,
			&agent.Name,
			&agent.Description,
			&agent.Price,
			&agent.WebhookURL,
			&agent.IsActive,
			&agent.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		agents = append(agents, &agent)
	}
	return agents, rows.Err()
}

// UpdateAgent overwrites mutable agent fields.
func (s *SQLiteStore) UpdateAgent(ctx context.Context, agent *store.Agent) error {
	query := `
		UPDATE agents
		SET name = ?, description = ?, price = ?, webhook_url = ?, is_active = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query, agent.Name, agent.Description, agent.Price, agent.WebhookURL, agent.IsActive, agent.ID)
	if err != nil {
		return fmt.Errorf("update agent: %w", err)
	}
	return requireAffected(result)
}

// DeleteAgent removes an agent.
func (s *SQLiteStore) DeleteAgent(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM agents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete agent: %w", err)
	}
	return requireAffected(result)
}

// ==== PlanStore implementation ====

// CreatePlan creates a new plan.
func (s *SQLiteStore) CreatePlan(ctx context.Context, plan *store.Plan) (*store.Plan, error) {
	query := `
		INSERT INTO plans (name, description, price, max_agents, is_active)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, plan.Name, plan.Description, plan.Price, plan.MaxAgents, plan.IsActive)
	if err != nil {
		return nil, fmt.Errorf("insert plan: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetPlanByID(ctx, id)
}

// GetPlanByID retrieves a plan by ID.
func (s *SQLiteStore) GetPlanByID(ctx context.Context, id int64) (*store.Plan, error) {
	query := `
		SELECT id, name, description, price, max_agents, is_active, created_at
		FROM plans
		WHERE id = ?
	`
	var plan store.Plan
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&plan.ID,
		&plan.Name,
		&plan.Description,
		&plan.Price,
		&plan.MaxAgents,
		&plan.IsActive,
		&plan.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query plan: %w", err)
	}
	return &plan, nil
}

// ListPlans lists plans; activeOnly restricts to active ones.
func (s *SQLiteStore) ListPlans(ctx context.Context, activeOnly bool) ([]*store.Plan, error) {
	query := `
		SELECT id, name, description, price, max_agents, is_active, created_at
		FROM plans
	`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer rows.Close()

	plans := make([]*store.Plan, 0)
	for rows.Next() {
		var plan store.Plan
		if err := rows.Scan(
			&plan.ID,
			&plan.Name,
			&plan.Description,
			&plan.Price,
			&plan.MaxAgents,
			&plan.IsActive,
			&plan.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, &plan)
	}
	return plans, rows.Err()
}

// UpdatePlan overwrites mutable plan fields.
func (s *SQLiteStore) UpdatePlan(ctx context.Context, plan *store.Plan) error {
	query := `
		UPDATE plans
		SET name = ?, description = ?, price = ?, max_agents = ?, is_active = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query, plan.Name, plan.Description, plan.Price, plan.MaxAgents, plan.IsActive, plan.ID)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	return requireAffected(result)
}

// DeletePlan removes a plan.
func (s *SQLiteStore) DeletePlan(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	return requireAffected(result)
}

// ==== SubscriptionStore implementation ====

// CreateSubscription creates a subscription with its agent set.
func (s *SQLiteStore) CreateSubscription(ctx context.Context, sub *store.Subscription) (*store.Subscription, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO subscriptions (user_id, plan_id, status, expires_at)
		VALUES (?, ?, ?, ?)
	`
	status := sub.Status
	if status == "" {
		status = store.SubscriptionStatusActive
	}
	result, err := tx.ExecContext(ctx, query, sub.UserID, sub.PlanID, status, sub.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("insert subscription: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	for _, agentID := range sub.AgentIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO subscription_agents (subscription_id, agent_id) VALUES (?, ?)`,
			id, agentID,
		); err != nil {
			return nil, fmt.Errorf("insert subscription agent: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit subscription: %w", err)
	}

	return s.GetSubscriptionByID(ctx, id)
}

// GetSubscriptionByID retrieves a subscription with its agent IDs.
func (s *SQLiteStore) GetSubscriptionByID(ctx context.Context, id int64) (*store.Subscription, error) {
	query := `
		SELECT id, user_id, plan_id, status, started_at, expires_at, created_at
		FROM subscriptions
		WHERE id = ?
	`
	var sub store.Subscription
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&sub.ID,
		&sub.UserID,
		&sub.PlanID,
		&sub.Status,
		&sub.StartedAt,
		&sub.ExpiresAt,
		&sub.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query subscription: %w", err)
	}

	agentIDs, err := s.listSubscriptionAgents(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	sub.AgentIDs = agentIDs

	return &sub, nil
}

// ListSubscriptionsByUser lists subscriptions belonging to a user.
func (s *SQLiteStore) ListSubscriptionsByUser(ctx context.Context, userID int64) ([]*store.Subscription, error) {
	query := `
		SELECT id, user_id, plan_id, status, started_at, expires_at, created_at
		FROM subscriptions
		WHERE user_id = ?
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	subs := make([]*store.Subscription, 0)
	for rows.Next() {
		var sub store.Subscription
		if err := rows.Scan(
			&sub.ID,
			&sub.UserID,
			&sub.PlanID,
			&sub.Status,
			&sub.StartedAt,
			&sub.ExpiresAt,
			&sub.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, &sub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, sub := range subs {
		agentIDs, err := s.listSubscriptionAgents(ctx, sub.ID)
		if err != nil {
			return nil, err
		}
		sub.AgentIDs = agentIDs
	}

	return subs, nil
}

// UpdateSubscriptionStatus transitions a subscription's status.
func (s *SQLiteStore) UpdateSubscriptionStatus(ctx context.Context, id int64, status store.SubscriptionStatus) error {
	result, err := s.db.ExecContext(ctx, `UPDATE subscriptions SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update subscription status: %w", err)
	}
	return requireAffected(result)
}

func (s *SQLiteStore) listSubscriptionAgents(ctx context.Context, subscriptionID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT agent_id FROM subscription_agents WHERE subscription_id = ? ORDER BY agent_id`,
		subscriptionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query subscription agents: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan subscription agent: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ==== PaymentStore implementation ====

// CreatePayment persists a payment record.
func (s *SQLiteStore) CreatePayment(ctx context.Context, payment *store.Payment) (*store.Payment, error) {
	query := `
		INSERT INTO payments (user_id, subscription_id, payment_type, currency, amount, transaction_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		payment.UserID, payment.SubscriptionID, payment.PaymentType,
		payment.Currency, payment.Amount, payment.TransactionID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetPaymentByID(ctx, id)
}

// GetPaymentByID retrieves a payment by ID.
func (s *SQLiteStore) GetPaymentByID(ctx context.Context, id int64) (*store.Payment, error) {
	query := `
		SELECT id, user_id, subscription_id, payment_type, currency, amount, transaction_id, paid_at, created_at
		FROM payments
		WHERE id = ?
	`
	var payment store.Payment
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&payment.ID,
		&payment.UserID,
		&payment.SubscriptionID,
		&payment.PaymentType,
		&payment.Currency,
		&payment.Amount,
		&payment.TransactionID,
		&payment.PaidAt,
		&payment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query payment: %w", err)
	}
	return &payment, nil
}

// ListPaymentsByUser lists payments made by a user.
func (s *SQLiteStore) ListPaymentsByUser(ctx context.Context, userID int64) ([]*store.Payment, error) {
	query := `
		SELECT id, user_id, subscription_id, payment_type, currency, amount, transaction_id, paid_at, created_at
		FROM payments
		WHERE user_id = ?
		ORDER BY id
	`
	return s.queryPayments(ctx, query, userID)
}

// ListPaymentsBySubscription lists payments against a subscription.
func (s *SQLiteStore) ListPaymentsBySubscription(ctx context.Context, subscriptionID int64) ([]*store.Payment, error) {
	query := `
		SELECT id, user_id, subscription_id, payment_type, currency, amount, transaction_id, paid_at, created_at
		FROM payments
		WHERE subscription_id = ?
		ORDER BY id
	`
	return s.queryPayments(ctx, query, subscriptionID)
}

func (s *SQLiteStore) queryPayments(ctx context.Context, query string, arg any) ([]*store.Payment, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	payments := make([]*store.Payment, 0)
	for rows.Next() {
		var payment store.Payment
		if err := rows.Scan(
			&payment.ID,
			&payment.UserID,
			&payment.SubscriptionID,
			&payment.PaymentType,
			&payment.Currency,
			&payment.Amount,
			&payment.TransactionID,
			&payment.PaidAt,
			&payment.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, &payment)
	}
	return payments, rows.Err()
}

// UpdatePayment overwrites mutable payment fields.
func (s *SQLiteStore) UpdatePayment(ctx context.Context, payment *store.Payment) error {
	query := `
		UPDATE payments
		SET payment_type = ?, currency = ?, amount = ?, transaction_id = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		payment.PaymentType, payment.Currency, payment.Amount, payment.TransactionID, payment.ID,
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	return requireAffected(result)
}

// DeletePayment removes a payment record.
func (s *SQLiteStore) DeletePayment(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM payments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return requireAffected(result)
}

// ==== ConversationStore implementation ====

// CreateConversation creates a conversation owned by the user.
func (s *SQLiteStore) CreateConversation(ctx context.Context, userID int64) (*store.Conversation, error) {
	result, err := s.db.ExecContext(ctx, `INSERT INTO conversations (user_id) VALUES (?)`, userID)
	if err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetConversationByID(ctx, id)
}

// GetConversationByID retrieves a conversation by ID.
func (s *SQLiteStore) GetConversationByID(ctx context.Context, id int64) (*store.Conversation, error) {
	query := `
		SELECT id, user_id, created_at
		FROM conversations
		WHERE id = ?
	`
	var conv store.Conversation
	err := s.db.QueryRowContext(ctx, query, id).Scan(&conv.ID, &conv.UserID, &conv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query conversation: %w", err)
	}
	return &conv, nil
}

// ListConversationsByUser lists conversations owned by a user.
func (s *SQLiteStore) ListConversationsByUser(ctx context.Context, userID int64) ([]*store.Conversation, error) {
	query := `
		SELECT id, user_id, created_at
		FROM conversations
		WHERE user_id = ?
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	convs := make([]*store.Conversation, 0)
	for rows.Next() {
		var conv store.Conversation
		if err := rows.Scan(&conv.ID, &conv.UserID, &conv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		convs = append(convs, &conv)
	}
	return convs, rows.Err()
}

// DeleteConversation removes a conversation and all its messages.
func (s *SQLiteStore) DeleteConversation(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return requireAffected(result)
}

// ==== MessageStore implementation ====

// CreateMessage persists a message and assigns ID and SentAt.
func (s *SQLiteStore) CreateMessage(ctx context.Context, msg *store.Message) (*store.Message, error) {
	query := `
		INSERT INTO messages (conversation_id, is_system, content, file_path)
		VALUES (?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, msg.ConversationID, msg.IsSystem, msg.Content, msg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetMessageByID(ctx, id)
}

// GetMessageByID retrieves a message by ID.
func (s *SQLiteStore) GetMessageByID(ctx context.Context, id int64) (*store.Message, error) {
	query := `
		SELECT id, conversation_id, is_system, content, file_path, sent_at
		FROM messages
		WHERE id = ?
	`
	var msg store.Message
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&msg.ID,
		&msg.ConversationID,
		&msg.IsSystem,
		&msg.Content,
		&msg.FilePath,
		&msg.SentAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query message: %w", err)
	}
	return &msg, nil
}

// ListMessagesByConversation lists a conversation's messages in send order.
func (s *SQLiteStore) ListMessagesByConversation(ctx context.Context, conversationID int64) ([]*store.Message, error) {
	query := `
		SELECT id, conversation_id, is_system, content, file_path, sent_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY sent_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	msgs := make([]*store.Message, 0)
	for rows.Next() {
		var msg store.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.IsSystem,
			&msg.Content,
			&msg.FilePath,
			&msg.SentAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, &msg)
	}
	return msgs, rows.Err()
}

// UpdateMessage overwrites content and file path of a message.
func (s *SQLiteStore) UpdateMessage(ctx context.Context, msg *store.Message) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE messages SET content = ?, file_path = ? WHERE id = ?`,
		msg.Content, msg.FilePath, msg.ID,
	)
	if err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	return requireAffected(result)
}

// DeleteMessage removes a message.
func (s *SQLiteStore) DeleteMessage(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
