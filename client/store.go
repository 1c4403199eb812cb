// Package client implements the in-app notification state for one signed-in
// user: the ordered list, the unread counter, realtime merge, and optimistic
// mark-read/delete against the notify service.
package client

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cronch-app/notify/internal/domain"
)

const (
	// fetchLimit matches the server's initial page size.
	fetchLimit = 50
	// maxEntries caps realtime growth during long sessions; the oldest rows
	// fall off and reappear only on the next full fetch.
	maxEntries = 200
)

// Backend is the remote service surface the store consumes.
type Backend interface {
	FetchNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, notificationID string) error
	Subscribe(ctx context.Context, userID string) (Subscription, error)
}

// Subscription is a live insert stream for one user. Out is closed when the
// subscription ends.
type Subscription interface {
	Out() <-chan *domain.Notification
	Close() error
}

// Notifier displays a platform notification for a fresh insert. Best effort:
// errors are logged and swallowed.
type Notifier interface {
	Show(title, body string) error
}

// Toaster enqueues an in-app toast whose variant follows the notification type.
type Toaster interface {
	Toast(t domain.NotificationType, message string)
}

// Store holds the notification list and unread counter for the current user.
// List and counter always mutate inside one critical section, so no reader
// observes them out of sync.
type Store struct {
	backend  Backend
	notifier Notifier // optional
	toaster  Toaster  // optional

	mu     sync.Mutex
	userID string
	items  []domain.Notification
	unread int
	sub    Subscription
	gen    int // bumped on every teardown; stale subscription events are dropped
}

func NewStore(backend Backend, notifier Notifier, toaster Toaster) *Store {
	return &Store{backend: backend, notifier: notifier, toaster: toaster}
}

// Initialize fetches the recent page for userID and opens a realtime
// subscription. Idempotent: re-invoking tears down the previous subscription
// first, so a single insert is only ever delivered once. An empty userID
// clears all state (sign-out).
//
// A fetch failure keeps whatever is already in memory; a subscribe failure
// degrades to fetch-only operation. Neither is returned to the caller.
func (s *Store) Initialize(ctx context.Context, userID string) {
	s.mu.Lock()
	s.teardownLocked()
	if userID == "" {
		s.userID = ""
		s.items = nil
		s.unread = 0
		s.mu.Unlock()
		return
	}
	s.userID = userID
	gen := s.gen
	s.mu.Unlock()

	if list, err := s.backend.FetchNotifications(ctx, userID, fetchLimit); err != nil {
		slog.Error("notifications: fetch", "user_id", userID, "err", err)
	} else {
		s.mu.Lock()
		if gen == s.gen { // not re-initialized while we were fetching
			s.items = list
			s.unread = countUnread(list)
		}
		s.mu.Unlock()
	}

	sub, err := s.backend.Subscribe(ctx, userID)
	if err != nil {
		slog.Error("notifications: subscribe", "user_id", userID, "err", err)
		return
	}
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		_ = sub.Close()
		return
	}
	s.sub = sub
	s.mu.Unlock()
	go s.consume(sub, gen)
}

// Close tears down the realtime subscription. Events already in flight are
// ignored once Close returns.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
}

// Notifications returns a snapshot of the list, newest first.
func (s *Store) Notifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Notification, len(s.items))
	copy(out, s.items)
	return out
}

// UnreadCount returns the number of unread entries in the list.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// MarkAsRead flips the entry locally and recomputes the counter before the
// backend write. A write failure is logged only — the optimistic state stands
// until the next fetch.
func (s *Store) MarkAsRead(ctx context.Context, notificationID string) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].NotificationID == notificationID {
			s.items[i].IsRead = true
			break
		}
	}
	s.unread = countUnread(s.items)
	s.mu.Unlock()

	if err := s.backend.MarkRead(ctx, notificationID); err != nil {
		slog.Error("notifications: mark read", "id", notificationID, "err", err)
	}
}

// MarkAllAsRead flips every entry locally and zeroes the counter, then issues
// one bulk backend update scoped to the current user.
func (s *Store) MarkAllAsRead(ctx context.Context) {
	s.mu.Lock()
	for i := range s.items {
		s.items[i].IsRead = true
	}
	s.unread = 0
	userID := s.userID
	s.mu.Unlock()

	if userID == "" {
		return
	}
	if err := s.backend.MarkAllRead(ctx, userID); err != nil {
		slog.Error("notifications: mark all read", "user_id", userID, "err", err)
	}
}

// Delete removes the entry locally and recomputes the counter before the
// backend delete. On failure the ghost row reappears only on the next fetch.
func (s *Store) Delete(ctx context.Context, notificationID string) {
	s.mu.Lock()
	kept := s.items[:0]
	for _, n := range s.items {
		if n.NotificationID != notificationID {
			kept = append(kept, n)
		}
	}
	s.items = kept
	s.unread = countUnread(s.items)
	s.mu.Unlock()

	if err := s.backend.Delete(ctx, notificationID); err != nil {
		slog.Error("notifications: delete", "id", notificationID, "err", err)
	}
}

func (s *Store) consume(sub Subscription, gen int) {
	for n := range sub.Out() {
		if n == nil {
			continue
		}
		if !s.merge(*n, gen) {
			return // store re-initialized or closed, stop consuming
		}
		s.sideEffects(n)
	}
}

// merge prepends a realtime insert and bumps the counter in one step.
// Realtime events are assumed newer than everything in memory, so no re-sort
// happens; duplicates from a reconnect replay are not filtered.
func (s *Store) merge(n domain.Notification, gen int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.items = append([]domain.Notification{n}, s.items...)
	if len(s.items) > maxEntries {
		dropped := s.items[maxEntries:]
		s.items = s.items[:maxEntries]
		for _, d := range dropped {
			if !d.IsRead {
				s.unread--
			}
		}
	}
	if !n.IsRead {
		s.unread++
	}
	return true
}

func (s *Store) sideEffects(n *domain.Notification) {
	if s.notifier != nil {
		if err := s.notifier.Show(n.Title, n.Message); err != nil {
			slog.Warn("notifications: platform notification", "err", err)
		}
	}
	if s.toaster != nil {
		s.toaster.Toast(n.Type.Normalize(), n.Message)
	}
}

func (s *Store) teardownLocked() {
	s.gen++
	if s.sub != nil {
		_ = s.sub.Close()
		s.sub = nil
	}
}

func countUnread(items []domain.Notification) int {
	count := 0
	for i := range items {
		if !items[i].IsRead {
			count++
		}
	}
	return count
}
