package domain

import "time"

// NotificationType is the severity/visual category of a notification.
type NotificationType string

const (
	TypeInfo    NotificationType = "info"
	TypeSuccess NotificationType = "success"
	TypeWarning NotificationType = "warning"
	TypeError   NotificationType = "error"
)

// Normalize maps unknown type values to TypeInfo so rows written by newer
// producers still render with a sane default.
func (t NotificationType) Normalize() NotificationType {
	switch t {
	case TypeInfo, TypeSuccess, TypeWarning, TypeError:
		return t
	default:
		return TypeInfo
	}
}

type Notification struct {
	NotificationID string           `json:"id" dynamodbav:"notification_id"`
	UserID         string           `json:"user_id" dynamodbav:"user_id"`
	BusinessID     string           `json:"business_id" dynamodbav:"business_id"`
	Type           NotificationType `json:"type" dynamodbav:"type"`
	Title          string           `json:"title" dynamodbav:"title"`
	Message        string           `json:"message" dynamodbav:"message"`
	Link           string           `json:"link,omitempty" dynamodbav:"link"`
	IsRead         bool             `json:"is_read" dynamodbav:"is_read"`
	CreatedAt      time.Time        `json:"created_at" dynamodbav:"created_at"`
}

type CreateNotificationRequest struct {
	UserID     string `json:"user_id" validate:"required"`
	BusinessID string `json:"business_id" validate:"required"`
	Type       string `json:"type" validate:"omitempty,oneof=info success warning error"`
	Title      string `json:"title" validate:"required,max=200"`
	Message    string `json:"message" validate:"required,max=2000"`
	Link       string `json:"link" validate:"omitempty,max=500"`
}
