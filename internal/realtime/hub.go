// Package realtime fans out freshly created notifications to live
// subscribers. Each signed-in session holds one Subscription scoped to its
// user id; publishes for other users are never visible to it.
package realtime

import (
	"log/slog"
	"sync"

	"github.com/cronch-app/notify/internal/domain"
)

const subscriptionBuffer = 64

// Subscription is one live listener for a single user's inserts.
type Subscription struct {
	hub    *Hub
	userID string
	out    chan *domain.Notification

	closeOnce sync.Once
}

// Out returns the channel delivering inserts in publish order.
// The channel is closed when the subscription is closed.
func (s *Subscription) Out() <-chan *domain.Notification {
	return s.out
}

// Close detaches the subscription from the hub and closes Out.
// Safe to call more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.hub.remove(s)
		close(s.out)
	})
}

// Hub is an in-process registry of per-user subscriptions.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscribe registers a new listener for userID's inserts.
func (h *Hub) Subscribe(userID string) *Subscription {
	s := &Subscription{
		hub:    h,
		userID: userID,
		out:    make(chan *domain.Notification, subscriptionBuffer),
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][s] = struct{}{}
	return s
}

// Publish delivers n to every live subscription for n.UserID. Publish never
// blocks: a subscriber that stopped draining its channel loses the event.
func (h *Hub) Publish(n *domain.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[n.UserID] {
		select {
		case s.out <- n:
		default:
			slog.Warn("realtime subscriber not draining, dropping event",
				"user_id", n.UserID, "notification_id", n.NotificationID)
		}
	}
}

// SubscriberCount reports the number of live subscriptions for a user.
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[s.userID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.userID)
		}
	}
}
