package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// User represents a registered account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	IsAdmin      bool
	CreatedAt    time.Time
}

// Agent is a bookable automation agent. WebhookURL is the endpoint that
// turns a user message into a generated reply.
type Agent struct {
	ID          int64
	Name        string
	Description string
	Price       float64
	WebhookURL  string
	IsActive    bool
	CreatedAt   time.Time
}

// Plan bundles agents under a subscription tier.
type Plan struct {
	ID          int64
	Name        string
	Description string
	Price       *float64 // nil for free plans
	MaxAgents   int
	IsActive    bool
	CreatedAt   time.Time
}

// SubscriptionStatus defines subscription lifecycle states.
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
)

// Subscription links a user to a plan and a set of agents.
type Subscription struct {
	ID        int64
	UserID    int64
	PlanID    int64
	Status    SubscriptionStatus
	AgentIDs  []int64
	StartedAt time.Time
	ExpiresAt *time.Time
	CreatedAt time.Time
}

// Payment records a settled charge against a subscription. Records are
// written by the API after an external processor has handled the money;
// TransactionID is the processor's reference.
type Payment struct {
	ID             int64
	UserID         int64
	SubscriptionID int64
	PaymentType    string
	Currency       string
	Amount         float64
	TransactionID  string
	PaidAt         time.Time
	CreatedAt      time.Time
}

// Conversation is an ordered thread of messages owned by one user.
type Conversation struct {
	ID        int64
	UserID    int64
	CreatedAt time.Time
}

// Message is a single utterance in a conversation. IsSystem is set once
// at creation: user-authored and system-generated are mutually exclusive.
type Message struct {
	ID             int64
	ConversationID int64
	IsSystem       bool
	Content        string
	FilePath       *string
	SentAt         time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, email, passwordHash, firstName, lastName string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// AgentStore handles agent persistence.
type AgentStore interface {
	// CreateAgent creates a new agent.
	CreateAgent(ctx context.Context, agent *Agent) (*Agent, error)

	// GetAgentByID retrieves an agent by ID.
	GetAgentByID(ctx context.Context, id int64) (*Agent, error)

	// ListAgents lists agents; activeOnly restricts to active ones.
	ListAgents(ctx context.Context, activeOnly bool) ([]*Agent, error)

	// UpdateAgent overwrites mutable agent fields.
	UpdateAgent(ctx context.Context, agent *Agent) error

	// DeleteAgent removes an agent.
	DeleteAgent(ctx context.Context, id int64) error
}

// PlanStore handles plan persistence.
type PlanStore interface {
	// CreatePlan creates a new plan.
	CreatePlan(ctx context.Context, plan *Plan) (*Plan, error)

	// GetPlanByID retrieves a plan by ID.
	GetPlanByID(ctx context.Context, id int64) (*Plan, error)

	// ListPlans lists plans; activeOnly restricts to active ones.
	ListPlans(ctx context.Context, activeOnly bool) ([]*Plan, error)

	// UpdatePlan overwrites mutable plan fields.
	UpdatePlan(ctx context.Context, plan *Plan) error

	// DeletePlan removes a plan.
	DeletePlan(ctx context.Context, id int64) error
}

// SubscriptionStore handles subscription persistence.
type SubscriptionStore interface {
	// CreateSubscription creates a subscription with its agent set.
	CreateSubscription(ctx context.Context, sub *Subscription) (*Subscription, error)

	// GetSubscriptionByID retrieves a subscription with its agent IDs.
	GetSubscriptionByID(ctx context.Context, id int64) (*Subscription, error)

	// ListSubscriptionsByUser lists subscriptions belonging to a user.
	ListSubscriptionsByUser(ctx context.Context, userID int64) ([]*Subscription, error)

	// UpdateSubscriptionStatus transitions a subscription's status.
	UpdateSubscriptionStatus(ctx context.Context, id int64, status SubscriptionStatus) error
}

// PaymentStore handles payment record persistence.
type PaymentStore interface {
	// CreatePayment persists a payment record.
	CreatePayment(ctx context.Context, payment *Payment) (*Payment, error)

	// GetPaymentByID retrieves a payment by ID.
	GetPaymentByID(ctx context.Context, id int64) (*Payment, error)

	// ListPaymentsByUser lists payments made by a user.
	ListPaymentsByUser(ctx context.Context, userID int64) ([]*Payment, error)

	// ListPaymentsBySubscription lists payments against a subscription.
	ListPaymentsBySubscription(ctx context.Context, subscriptionID int64) ([]*Payment, error)

	// UpdatePayment overwrites mutable payment fields.
	UpdatePayment(ctx context.Context, payment *Payment) error

	// DeletePayment removes a payment record.
	DeletePayment(ctx context.Context, id int64) error
}

// ConversationStore handles conversation persistence.
type ConversationStore interface {
	// CreateConversation creates a conversation owned by the user.
	CreateConversation(ctx context.Context, userID int64) (*Conversation, error)

	// GetConversationByID retrieves a conversation by ID.
	GetConversationByID(ctx context.Context, id int64) (*Conversation, error)

	// ListConversationsByUser lists conversations owned by a user.
	ListConversationsByUser(ctx context.Context, userID int64) ([]*Conversation, error)

	// DeleteConversation removes a conversation and all its messages.
	DeleteConversation(ctx context.Context, id int64) error
}

// MessageStore handles message persistence.
type MessageStore interface {
	// CreateMessage persists a message and assigns ID and SentAt.
	CreateMessage(ctx context.Context, msg *Message) (*Message, error)

	// GetMessageByID retrieves a message by ID.
	GetMessageByID(ctx context.Context, id int64) (*Message, error)

	// ListMessagesByConversation lists a conversation's messages in send order.
	ListMessagesByConversation(ctx context.Context, conversationID int64) ([]*Message, error)

	// UpdateMessage overwrites content and file path of a message.
	UpdateMessage(ctx context.Context, msg *Message) error

	// DeleteMessage removes a message.
	DeleteMessage(ctx context.Context, id int64) error
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	AgentStore
	PlanStore
	SubscriptionStore
	PaymentStore
	ConversationStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
