package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cronch-app/notify/internal/domain"
	"github.com/cronch-app/notify/internal/infrastructure/webpush"
	"github.com/cronch-app/notify/internal/pkg/validate"
)

// Payload is the JSON body delivered to the service worker's push handler.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
}

type Service interface {
	// Register upserts a subscription keyed by endpoint. Calling it again for
	// the same endpoint refreshes keys and user agent instead of duplicating.
	Register(ctx context.Context, userID, businessID string, req domain.RegisterPushSubscriptionRequest) (*domain.PushSubscription, error)
	// Dispatch delivers a stored notification to every subscription of its
	// owner. Failures are logged, never returned: push is best effort and the
	// realtime/in-app channels remain the fallback.
	Dispatch(ctx context.Context, n *domain.Notification)
	// Broadcast delivers a payload to every registered subscription.
	Broadcast(ctx context.Context, p Payload)
}

type subscriptionStore interface {
	Upsert(ctx context.Context, s *domain.PushSubscription) error
	Get(ctx context.Context, endpoint string) (*domain.PushSubscription, error)
	ListByUser(ctx context.Context, userID string) ([]domain.PushSubscription, error)
	ListAll(ctx context.Context) ([]domain.PushSubscription, error)
	Delete(ctx context.Context, endpoint string) error
}

type service struct {
	repo   subscriptionStore
	web    webpush.Sender // nil when VAPID keys are not configured
	mobile mobileSender   // nil when SNS is not configured
}

type mobileSender interface {
	Publish(ctx context.Context, targetArn string, payload string) error
}

func NewService(repo subscriptionStore, web webpush.Sender, mobile mobileSender) Service {
	return &service{repo: repo, web: web, mobile: mobile}
}

func (s *service) Register(ctx context.Context, userID, businessID string, req domain.RegisterPushSubscriptionRequest) (*domain.PushSubscription, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	platform := domain.SubscriptionPlatform(req.Platform)
	if platform == "" {
		platform = domain.PlatformWeb
	}
	if platform == domain.PlatformWeb && (req.Keys.P256DH == "" || req.Keys.Auth == "") {
		return nil, fmt.Errorf("web subscription requires p256dh and auth keys: %w", domain.ErrBadRequest)
	}

	now := time.Now().UTC()
	sub := &domain.PushSubscription{
		Endpoint:   req.Endpoint,
		UserID:     userID,
		BusinessID: businessID,
		Platform:   platform,
		Keys:       req.Keys,
		UserAgent:  req.UserAgent,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	// Keep the original creation time when re-registering a known endpoint.
	if existing, err := s.repo.Get(ctx, req.Endpoint); err == nil {
		sub.CreatedAt = existing.CreatedAt
	}
	if err := s.repo.Upsert(ctx, sub); err != nil {
		return nil, fmt.Errorf("upsert push subscription: %w", err)
	}
	return sub, nil
}

func (s *service) Dispatch(ctx context.Context, n *domain.Notification) {
	subs, err := s.repo.ListByUser(ctx, n.UserID)
	if err != nil {
		slog.Error("push dispatch: list subscriptions", "user_id", n.UserID, "err", err)
		return
	}
	s.sendAll(ctx, subs, Payload{Title: n.Title, Body: n.Message, URL: n.Link})
}

func (s *service) Broadcast(ctx context.Context, p Payload) {
	subs, err := s.repo.ListAll(ctx)
	if err != nil {
		slog.Error("push broadcast: list subscriptions", "err", err)
		return
	}
	s.sendAll(ctx, subs, p)
}

func (s *service) sendAll(ctx context.Context, subs []domain.PushSubscription, p Payload) {
	body, err := json.Marshal(p)
	if err != nil {
		slog.Error("push: marshal payload", "err", err)
		return
	}
	for i := range subs {
		s.sendOne(ctx, &subs[i], body)
	}
}

func (s *service) sendOne(ctx context.Context, sub *domain.PushSubscription, body []byte) {
	var err error
	switch sub.Platform {
	case domain.PlatformMobile:
		if s.mobile == nil {
			return
		}
		err = s.mobile.Publish(ctx, sub.Endpoint, string(body))
	default:
		if s.web == nil {
			return
		}
		err = s.web.Send(ctx, sub, body)
	}
	if errors.Is(err, webpush.ErrSubscriptionGone) {
		// The browser unsubscribed; drop the dead row so we stop retrying.
		if delErr := s.repo.Delete(ctx, sub.Endpoint); delErr != nil {
			slog.Warn("push: prune dead subscription", "endpoint", sub.Endpoint, "err", delErr)
		}
		return
	}
	if err != nil {
		slog.Warn("push: send failed", "endpoint", sub.Endpoint, "platform", sub.Platform, "err", err)
	}
}
