package http

import (
	"github.com/cronch-app/notify/internal/infrastructure/dynamo"
	jwtinfra "github.com/cronch-app/notify/internal/infrastructure/jwt"
	"github.com/cronch-app/notify/internal/infrastructure/sns"
	"github.com/cronch-app/notify/internal/infrastructure/webpush"
	"github.com/cronch-app/notify/internal/realtime"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	NotificationRepo *dynamo.NotificationRepo
	PushSubRepo      *dynamo.PushSubscriptionRepo
	Hub              *realtime.Hub
	WebSender        webpush.Sender   // nil when VAPID keys are not configured
	MobileSender     sns.MobileSender // nil when SNS is not configured
	JWTProvider      *jwtinfra.Provider
}
