package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/ashkanrb/agenthub-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createTestUser(t *testing.T, s *SQLiteStore, email string) *store.User {
	t.Helper()

	user, err := s.CreateUser(context.Background(), email, "hash", "Test", "User")
	if err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return user
}

func TestMessageOrderWithinConversation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, s, "alice@example.com")
	conv, err := s.CreateConversation(ctx, user.ID)
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}

	texts := []string{"first", "second", "third"}
	for i, text := range texts {
		if _, err := s.CreateMessage(ctx, &store.Message{
			ConversationID: conv.ID,
			IsSystem:       i%2 == 1,
			Content:        text,
		}); err != nil {
			t.Fatalf("create message %q: %v", text, err)
		}
	}

	msgs, err := s.ListMessagesByConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != len(texts) {
		t.Fatalf("expected %d messages, got %d", len(texts), len(msgs))
	}
	for i, msg := range msgs {
		if msg.Content != texts[i] {
			t.Errorf("expected %q at index %d, got %q", texts[i], i, msg.Content)
		}
		if msg.ConversationID != conv.ID {
			t.Errorf("message %d has conversation %d, want %d", msg.ID, msg.ConversationID, conv.ID)
		}
	}
	if msgs[0].IsSystem || !msgs[1].IsSystem {
		t.Errorf("authorship flags not preserved: %+v", msgs)
	}
}

func TestDeleteConversationCascadesToMessages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, s, "bob@example.com")
	conv, err := s.CreateConversation(ctx, user.ID)
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}

	msg, err := s.CreateMessage(ctx, &store.Message{ConversationID: conv.ID, Content: "hi"})
	if err != nil {
		t.Fatalf("create message: %v", err)
	}

	if err := s.DeleteConversation(ctx, conv.ID); err != nil {
		t.Fatalf("delete conversation: %v", err)
	}

	if _, err := s.GetConversationByID(ctx, conv.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for conversation, got %v", err)
	}
	if _, err := s.GetMessageByID(ctx, msg.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for cascaded message, got %v", err)
	}
}

func TestSubscriptionAgentSetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, s, "carol@example.com")

	plan, err := s.CreatePlan(ctx, &store.Plan{Name: "starter", MaxAgents: 2, IsActive: true})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}

	var agentIDs []int64
	for _, name := range []string{"scheduler", "researcher"} {
		agent, err := s.CreateAgent(ctx, &store.Agent{Name: name, WebhookURL: "http://example.com/hook", IsActive: true})
		if err != nil {
			t.Fatalf("create agent %s: %v", name, err)
		}
		agentIDs = append(agentIDs, agent.ID)
	}

	sub, err := s.CreateSubscription(ctx, &store.Subscription{
		UserID:   user.ID,
		PlanID:   plan.ID,
		AgentIDs: agentIDs,
	})
	if err != nil {
		t.Fatalf("create subscription: %v", err)
	}

	if sub.Status != store.SubscriptionStatusActive {
		t.Errorf("expected active status, got %s", sub.Status)
	}
	if len(sub.AgentIDs) != 2 {
		t.Fatalf("expected 2 agent ids, got %v", sub.AgentIDs)
	}

	if err := s.UpdateSubscriptionStatus(ctx, sub.ID, store.SubscriptionStatusCancelled); err != nil {
		t.Fatalf("update status: %v", err)
	}

	subs, err := s.ListSubscriptionsByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("list subscriptions: %v", err)
	}
	if len(subs) != 1 || subs[0].Status != store.SubscriptionStatusCancelled {
		t.Fatalf("unexpected subscriptions: %+v", subs)
	}
}

func TestPaymentRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, s, "erin@example.com")

	plan, err := s.CreatePlan(ctx, &store.Plan{Name: "starter", MaxAgents: 1, IsActive: true})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	sub, err := s.CreateSubscription(ctx, &store.Subscription{UserID: user.ID, PlanID: plan.ID})
	if err != nil {
		t.Fatalf("create subscription: %v", err)
	}

	payment, err := s.CreatePayment(ctx, &store.Payment{
		UserID:         user.ID,
		SubscriptionID: sub.ID,
		PaymentType:    "credit_card",
		Currency:       "USD",
		Amount:         9.99,
		TransactionID:  "txn_001",
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if payment.PaidAt.IsZero() || payment.CreatedAt.IsZero() {
		t.Error("expected timestamps assigned on insert")
	}

	byUser, err := s.ListPaymentsByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(byUser) != 1 || byUser[0].TransactionID != "txn_001" {
		t.Fatalf("unexpected payments by user: %+v", byUser)
	}

	bySub, err := s.ListPaymentsBySubscription(ctx, sub.ID)
	if err != nil {
		t.Fatalf("list by subscription: %v", err)
	}
	if len(bySub) != 1 || bySub[0].ID != payment.ID {
		t.Fatalf("unexpected payments by subscription: %+v", bySub)
	}

	payment.Amount = 19.99
	if err := s.UpdatePayment(ctx, payment); err != nil {
		t.Fatalf("update payment: %v", err)
	}
	updated, err := s.GetPaymentByID(ctx, payment.ID)
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if updated.Amount != 19.99 {
		t.Errorf("expected amount 19.99, got %v", updated.Amount)
	}

	if err := s.DeletePayment(ctx, payment.ID); err != nil {
		t.Fatalf("delete payment: %v", err)
	}
	if _, err := s.GetPaymentByID(ctx, payment.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := createTestUser(t, s, "dave@example.com")

	user, err := s.GetUserByEmail(ctx, "dave@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if user.ID != created.ID {
		t.Fatalf("expected user %d, got %d", created.ID, user.ID)
	}

	if _, err := s.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
