package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	logger := zerolog.Nop()
	return NewHub(&logger)
}

func TestHubSingleSubscriberReceivesPayload(t *testing.T) {
	h := newTestHub()
	defer h.Close()

	ch, _ := h.Subscribe(t.Context(), "conversation_1")

	h.Publish("conversation_1", []byte(`{"content":"hi"}`))

	select {
	case payload := <-ch:
		assert.JSONEq(t, `{"content":"hi"}`, string(payload))
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for payload")
	}
}

func TestHubChannelsAreIsolated(t *testing.T) {
	h := newTestHub()
	defer h.Close()

	ch1, _ := h.Subscribe(t.Context(), "conversation_1")
	ch2, _ := h.Subscribe(t.Context(), "conversation_2")

	h.Publish("conversation_1", []byte("a"))

	select {
	case payload := <-ch1:
		assert.Equal(t, "a", string(payload))
	case <-time.After(time.Second):
		t.Fatal("subscriber for conversation_1 timed out")
	}

	select {
	case <-ch2:
		t.Fatal("subscriber for conversation_2 should not receive the payload")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubPublishWithoutSubscribersIsNoop(t *testing.T) {
	h := newTestHub()
	defer h.Close()

	// Must not panic or register anything.
	h.Publish("conversation_99", []byte("hello"))
	assert.Equal(t, 0, h.SubscriberCount("conversation_99"))
}

func TestHubUnsubscribeStopsDeliveryAndPrunesChannel(t *testing.T) {
	h := newTestHub()
	defer h.Close()

	ch, subID := h.Subscribe(t.Context(), "conversation_1")
	require.Equal(t, 1, h.SubscriberCount("conversation_1"))

	h.Unsubscribe("conversation_1", subID)

	// Channel is closed on unsubscribe.
	_, open := <-ch
	assert.False(t, open)

	// Last subscriber gone: the channel entry itself is removed.
	assert.Equal(t, 0, h.SubscriberCount("conversation_1"))

	// Publishing afterwards is a no-op.
	h.Publish("conversation_1", []byte("late"))
}

func TestHubContextCancellationCleansUp(t *testing.T) {
	h := newTestHub()
	defer h.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := h.Subscribe(ctx, "conversation_1")

	cancel()

	// Cleanup is asynchronous; wait for the channel to close.
	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after context cancellation")
	}

	assert.Equal(t, 0, h.SubscriberCount("conversation_1"))
}

func TestHubConcurrentSubscribePublishUnsubscribe(t *testing.T) {
	h := newTestHub()
	defer h.Close()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			ch, subID := h.Subscribe(ctx, "conversation_1")
			h.Publish("conversation_1", []byte("x"))
			// Drain whatever arrived before leaving.
			select {
			case <-ch:
			default:
			}
			h.Unsubscribe("conversation_1", subID)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, h.SubscriberCount("conversation_1"))
}

func TestHubPublishRacingUnsubscribeDoesNotPanic(t *testing.T) {
	h := newTestHub()
	defer h.Close()

	// Publish must never send on a channel that Unsubscribe has closed,
	// however the two interleave.
	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					h.Publish("conversation_1", []byte("x"))
				}
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	for i := 0; i < 2000; i++ {
		_, subID := h.Subscribe(ctx, "conversation_1")
		h.Unsubscribe("conversation_1", subID)
	}

	close(stop)
	wg.Wait()

	assert.Equal(t, 0, h.SubscriberCount("conversation_1"))
}

func TestChannelNames(t *testing.T) {
	assert.Equal(t, "conversation_42", ConversationChannel(42))
	assert.Equal(t, "user_7_conversations", UserConversationsChannel(7))
}
