package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// subscriberBufferSize is the channel buffer for each subscriber.
const subscriberBufferSize = 64

// ConversationChannel returns the broadcast channel name for a conversation.
func ConversationChannel(conversationID int64) string {
	return fmt.Sprintf("conversation_%d", conversationID)
}

// UserConversationsChannel returns the per-user channel used for
// cross-conversation notices such as conversation creation.
func UserConversationsChannel(userID int64) string {
	return fmt.Sprintf("user_%d_conversations", userID)
}

// Hub provides in-memory pub/sub for serialized message events. Subscribers
// register for a channel name and receive every payload published to it
// while subscribed. Delivery is best-effort: there is no history or replay,
// and a slow subscriber has payloads dropped rather than blocking others.
//
// The hub is constructed at server start and injected into publishers; it
// holds no domain data.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]chan []byte // channel -> subID -> ch
	log         *zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zerolog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]map[string]chan []byte),
		log:         logger,
	}
}

// Subscribe registers a subscriber on the given channel and returns the
// delivery channel plus a subscription ID for later unsubscription. The
// subscription is removed automatically when ctx is cancelled, so an
// abruptly terminated connection cleans itself up.
func (h *Hub) Subscribe(ctx context.Context, channel string) (<-chan []byte, string) {
	subID := uuid.New().String()
	ch := make(chan []byte, subscriberBufferSize)

	h.mu.Lock()
	if _, ok := h.subscribers[channel]; !ok {
		h.subscribers[channel] = make(map[string]chan []byte)
	}
	h.subscribers[channel][subID] = ch
	h.mu.Unlock()

	h.log.Debug().Str("channel", channel).Str("sub_id", subID).Msg("subscriber added")

	go func() {
		<-ctx.Done()
		h.Unsubscribe(channel, subID)
	}()

	return ch, subID
}

// Publish delivers the payload to every current subscriber of the channel.
// Each delivery attempt is independent; a full subscriber buffer only drops
// the payload for that subscriber. Publishing to a channel with no
// subscribers is a no-op.
func (h *Hub) Publish(channel string, payload []byte) {
	// Sends stay under the read lock: Unsubscribe and Close close subscriber
	// channels under the write lock, so a send outside the lock could race a
	// close. Sends never block, so holding the lock here is cheap.
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers[channel] {
		select {
		case ch <- payload:
		default:
			h.log.Debug().Str("channel", channel).Msg("dropped payload for slow subscriber")
		}
	}
}

// Unsubscribe removes a subscription and closes its delivery channel.
// When the channel's last subscriber leaves, the channel entry is removed.
func (h *Hub) Unsubscribe(channel, subID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.subscribers[channel]
	if !ok {
		return
	}

	ch, exists := subs[subID]
	if !exists {
		return
	}

	delete(subs, subID)
	close(ch)

	if len(subs) == 0 {
		delete(h.subscribers, channel)
	}

	h.log.Debug().Str("channel", channel).Str("sub_id", subID).Msg("subscriber removed")
}

// SubscriberCount reports how many subscribers a channel currently has.
func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[channel])
}

// Close shuts down the hub and closes all subscriber channels.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for channel, subs := range h.subscribers {
		for subID, ch := range subs {
			close(ch)
			delete(subs, subID)
		}
		delete(h.subscribers, channel)
	}
}
