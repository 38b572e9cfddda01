package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
)

func TestCreatePaymentForExistingSubscriptionReactivatesIt(t *testing.T) {
	st, db := createTestStore(t)
	defer st.Close()

	authService := createTestAuthService(t, st, "test-secret")
	server, stop := NewServer(buildTestDeps(t, st, authService, nopReplies{}, "whsec"))
	defer close(stop)

	userToken := registerUser(t, authService, "user@example.com")
	registerUser(t, authService, "admin@example.com")
	adminToken := promoteAdmin(t, db, authService, "admin@example.com")

	// Seed one agent, one plan, one subscription, then cancel it.
	resp := doJSON(t, server.Handler, http.MethodPost, "/api/agents", adminToken,
		`{"name":"support-bot","webhook_url":"https://agents.example.com/support"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("failed to seed agent: %d %s", resp.Code, resp.Body.String())
	}
	resp = doJSON(t, server.Handler, http.MethodPost, "/api/plans", adminToken,
		`{"name":"starter","max_agents":1}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("failed to seed plan: %d %s", resp.Code, resp.Body.String())
	}
	resp = doJSON(t, server.Handler, http.MethodPost, "/api/subscriptions", userToken,
		`{"plan_id":1,"agent_ids":[1]}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("failed to seed subscription: %d %s", resp.Code, resp.Body.String())
	}
	resp = doJSON(t, server.Handler, http.MethodPost, "/api/subscriptions/1/cancel", userToken, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("failed to cancel subscription: %d %s", resp.Code, resp.Body.String())
	}

	// Paying for the cancelled subscription brings it back to active.
	resp = doJSON(t, server.Handler, http.MethodPost, "/api/payments", userToken,
		`{"subscription_id":1,"payment_type":"credit_card","currency":"USD","amount":9.99,"transaction_id":"txn_100"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var payment PaymentResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &payment); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if payment.SubscriptionID != 1 || payment.TransactionID != "txn_100" {
		t.Errorf("unexpected payment: %+v", payment)
	}

	resp = doJSON(t, server.Handler, http.MethodGet, "/api/subscriptions", userToken, "")
	var subs []SubscriptionResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &subs); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(subs) != 1 || subs[0].Status != "active" {
		t.Errorf("expected subscription reactivated, got %+v", subs)
	}
}

func TestCreatePaymentWithPlanOpensSubscription(t *testing.T) {
	st, db := createTestStore(t)
	defer st.Close()

	authService := createTestAuthService(t, st, "test-secret")
	server, stop := NewServer(buildTestDeps(t, st, authService, nopReplies{}, "whsec"))
	defer close(stop)

	userToken := registerUser(t, authService, "user@example.com")
	registerUser(t, authService, "admin@example.com")
	adminToken := promoteAdmin(t, db, authService, "admin@example.com")

	resp := doJSON(t, server.Handler, http.MethodPost, "/api/plans", adminToken,
		`{"name":"starter","max_agents":1}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("failed to seed plan: %d %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(t, server.Handler, http.MethodPost, "/api/payments", userToken,
		`{"plan_id":1,"payment_type":"paypal","currency":"EUR","amount":4.99,"transaction_id":"txn_200"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var payment PaymentResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &payment); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if payment.SubscriptionID == 0 {
		t.Fatal("expected a subscription to be opened for the payment")
	}

	// The opened subscription is active and belongs to the payer.
	resp = doJSON(t, server.Handler, http.MethodGet, "/api/subscriptions", userToken, "")
	var subs []SubscriptionResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &subs); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(subs) != 1 || subs[0].Status != "active" || subs[0].ID != payment.SubscriptionID {
		t.Errorf("unexpected subscriptions: %+v", subs)
	}

	// Neither subscription_id nor plan_id is a bad request.
	resp = doJSON(t, server.Handler, http.MethodPost, "/api/payments", userToken,
		`{"payment_type":"paypal","currency":"EUR","amount":4.99,"transaction_id":"txn_201"}`)
	if resp.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 without subscription or plan, got %d", resp.Code)
	}

	// Unknown plan
	resp = doJSON(t, server.Handler, http.MethodPost, "/api/payments", userToken,
		`{"plan_id":99,"payment_type":"paypal","currency":"EUR","amount":4.99,"transaction_id":"txn_202"}`)
	if resp.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for unknown plan, got %d", resp.Code)
	}
}

func TestPaymentOwnershipRules(t *testing.T) {
	st, db := createTestStore(t)
	defer st.Close()

	authService := createTestAuthService(t, st, "test-secret")
	server, stop := NewServer(buildTestDeps(t, st, authService, nopReplies{}, "whsec"))
	defer close(stop)

	userToken := registerUser(t, authService, "user@example.com")
	otherToken := registerUser(t, authService, "other@example.com")
	registerUser(t, authService, "admin@example.com")
	adminToken := promoteAdmin(t, db, authService, "admin@example.com")

	resp := doJSON(t, server.Handler, http.MethodPost, "/api/plans", adminToken,
		`{"name":"starter","max_agents":1}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("failed to seed plan: %d %s", resp.Code, resp.Body.String())
	}
	resp = doJSON(t, server.Handler, http.MethodPost, "/api/payments", userToken,
		`{"plan_id":1,"payment_type":"credit_card","currency":"USD","amount":9.99,"transaction_id":"txn_300"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("failed to seed payment: %d %s", resp.Code, resp.Body.String())
	}
	var payment PaymentResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &payment); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	path := fmt.Sprintf("/api/payments/%d", payment.ID)
	subPayments := fmt.Sprintf("/api/subscriptions/%d/payments", payment.SubscriptionID)

	// A stranger cannot read the payment or the subscription's payments.
	if resp := doJSON(t, server.Handler, http.MethodGet, path, otherToken, ""); resp.Code != http.StatusForbidden {
		t.Errorf("expected status 403 for stranger get, got %d", resp.Code)
	}
	if resp := doJSON(t, server.Handler, http.MethodGet, subPayments, otherToken, ""); resp.Code != http.StatusForbidden {
		t.Errorf("expected status 403 for stranger subscription payments, got %d", resp.Code)
	}

	// Owner and admin can read.
	if resp := doJSON(t, server.Handler, http.MethodGet, path, userToken, ""); resp.Code != http.StatusOK {
		t.Errorf("expected status 200 for owner get, got %d", resp.Code)
	}
	if resp := doJSON(t, server.Handler, http.MethodGet, path, adminToken, ""); resp.Code != http.StatusOK {
		t.Errorf("expected status 200 for admin get, got %d", resp.Code)
	}
	resp = doJSON(t, server.Handler, http.MethodGet, subPayments, adminToken, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for admin subscription payments, got %d", resp.Code)
	}
	var payments []PaymentResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &payments); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(payments) != 1 {
		t.Errorf("expected 1 payment, got %d", len(payments))
	}

	// Listing shows only the caller's payments.
	resp = doJSON(t, server.Handler, http.MethodGet, "/api/payments", otherToken, "")
	if err := json.Unmarshal(resp.Body.Bytes(), &payments); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(payments) != 0 {
		t.Errorf("expected 0 payments for other user, got %d", len(payments))
	}

	// Updates and deletes are owner-only, even for admins.
	if resp := doJSON(t, server.Handler, http.MethodPut, path, adminToken, `{"amount":1.00}`); resp.Code != http.StatusForbidden {
		t.Errorf("expected status 403 for admin update, got %d", resp.Code)
	}
	resp = doJSON(t, server.Handler, http.MethodPut, path, userToken, `{"amount":19.99,"transaction_id":"txn_300r"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for owner update, got %d: %s", resp.Code, resp.Body.String())
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payment); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if payment.Amount != 19.99 || payment.TransactionID != "txn_300r" {
		t.Errorf("unexpected updated payment: %+v", payment)
	}

	if resp := doJSON(t, server.Handler, http.MethodDelete, path, otherToken, ""); resp.Code != http.StatusForbidden {
		t.Errorf("expected status 403 for stranger delete, got %d", resp.Code)
	}
	if resp := doJSON(t, server.Handler, http.MethodDelete, path, userToken, ""); resp.Code != http.StatusNoContent {
		t.Errorf("expected status 204 for owner delete, got %d", resp.Code)
	}
	if resp := doJSON(t, server.Handler, http.MethodGet, path, userToken, ""); resp.Code != http.StatusNotFound {
		t.Errorf("expected status 404 after delete, got %d", resp.Code)
	}
}
