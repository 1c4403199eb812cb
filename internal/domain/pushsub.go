package domain

import "time"

// SubscriptionPlatform selects the delivery channel for a push subscription.
type SubscriptionPlatform string

const (
	// PlatformWeb is a browser Push API subscription (endpoint URL + VAPID keys).
	PlatformWeb SubscriptionPlatform = "web"
	// PlatformMobile is an SNS platform-application endpoint (endpoint is the target ARN).
	PlatformMobile SubscriptionPlatform = "mobile"
)

// SubscriptionKeys are the client encryption keys of a browser push
// subscription, base64url-encoded as handed out by the Push API.
type SubscriptionKeys struct {
	P256DH string `json:"p256dh" dynamodbav:"p256dh"`
	Auth   string `json:"auth" dynamodbav:"auth"`
}

// PushSubscription is one registered delivery endpoint for a device.
// The endpoint is the natural key: registering the same browser twice
// overwrites keys and user agent instead of duplicating the row.
type PushSubscription struct {
	Endpoint   string               `json:"endpoint" dynamodbav:"endpoint"`
	UserID     string               `json:"user_id" dynamodbav:"user_id"`
	BusinessID string               `json:"business_id" dynamodbav:"business_id"`
	Platform   SubscriptionPlatform `json:"platform" dynamodbav:"platform"`
	Keys       SubscriptionKeys     `json:"keys" dynamodbav:"keys"`
	UserAgent  string               `json:"user_agent" dynamodbav:"user_agent"`
	CreatedAt  time.Time            `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time            `json:"updated" dynamodbav:"updated_at"`
}

type RegisterPushSubscriptionRequest struct {
	Endpoint  string           `json:"endpoint" validate:"required,max=2000"`
	Platform  string           `json:"platform" validate:"omitempty,oneof=web mobile"`
	Keys      SubscriptionKeys `json:"keys"`
	UserAgent string           `json:"user_agent" validate:"max=500"`
}
