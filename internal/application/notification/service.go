package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/cronch-app/notify/internal/domain"
	"github.com/cronch-app/notify/internal/pkg/id"
	"github.com/cronch-app/notify/internal/pkg/validate"
)

// fetchLimit bounds the initial page a client renders. Older rows are only
// re-read on the next full fetch, never streamed.
const fetchLimit = 50

type Service interface {
	// Create persists a notification and fans it out to the owner's live
	// realtime subscriptions and push endpoints.
	Create(ctx context.Context, req domain.CreateNotificationRequest) (*domain.Notification, error)
	// ListRecent returns the newest fetchLimit rows for the user, read or not.
	ListRecent(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID, userID string) error
	// MarkAllAsRead flips every unread row scoped to the user. The scope key
	// is the user id here, matching ListRecent and the realtime filter.
	MarkAllAsRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, notificationID, userID string) error
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListRecent(ctx context.Context, userID string, limit int32) ([]domain.Notification, error)
	SetRead(ctx context.Context, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, notificationID string) error
}

type publisher interface {
	Publish(n *domain.Notification)
}

type pushDispatcher interface {
	Dispatch(ctx context.Context, n *domain.Notification)
}

type service struct {
	repo notificationStore
	hub  publisher
	push pushDispatcher // nil when push delivery is not configured
}

func NewService(repo notificationStore, hub publisher, push pushDispatcher) Service {
	return &service{repo: repo, hub: hub, push: push}
}

func (s *service) Create(ctx context.Context, req domain.CreateNotificationRequest) (*domain.Notification, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	n := &domain.Notification{
		NotificationID: id.New(),
		UserID:         req.UserID,
		BusinessID:     req.BusinessID,
		Type:           domain.NotificationType(req.Type).Normalize(),
		Title:          req.Title,
		Message:        req.Message,
		Link:           req.Link,
		IsRead:         false,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.Put(ctx, n); err != nil {
		return nil, fmt.Errorf("store notification: %w", err)
	}
	s.hub.Publish(n)
	if s.push != nil {
		s.push.Dispatch(ctx, n)
	}
	return n, nil
}

func (s *service) ListRecent(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.repo.ListRecent(ctx, userID, fetchLimit)
}

func (s *service) MarkAsRead(ctx context.Context, notificationID, userID string) error {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return fmt.Errorf("notification %s: %w", notificationID, domain.ErrForbidden)
	}
	return s.repo.SetRead(ctx, notificationID)
}

func (s *service) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *service) Delete(ctx context.Context, notificationID, userID string) error {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return fmt.Errorf("notification %s: %w", notificationID, domain.ErrForbidden)
	}
	return s.repo.Delete(ctx, notificationID)
}
