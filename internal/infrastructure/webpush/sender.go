package webpush

import (
	"context"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/cronch-app/notify/internal/config"
	"github.com/cronch-app/notify/internal/domain"
)

// ErrSubscriptionGone signals a permanently dead endpoint (the browser
// unsubscribed or the installation was removed). Callers should prune the row.
var ErrSubscriptionGone = fmt.Errorf("push subscription gone")

// Sender delivers Web Push messages signed with the service's VAPID key pair.
type Sender interface {
	Send(ctx context.Context, sub *domain.PushSubscription, payload []byte) error
}

type sender struct {
	publicKey  string
	privateKey string
	subscriber string
}

func NewSender(cfg *config.Config) (Sender, error) {
	if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
		return nil, fmt.Errorf("VAPID keys not configured")
	}
	return &sender{
		publicKey:  cfg.VAPIDPublicKey,
		privateKey: cfg.VAPIDPrivateKey,
		subscriber: cfg.VAPIDSubscriber,
	}, nil
}

func (s *sender) Send(ctx context.Context, sub *domain.PushSubscription, payload []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256DH,
			Auth:   sub.Keys.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             3600,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrSubscriptionGone
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}
	return nil
}
