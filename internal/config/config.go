package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	JWTPublicKeyPath string

	// VAPID key pair for Web Push. The public key is the same value the
	// browser client passes to PushManager.subscribe.
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubscriber string // contact mailto/https URL sent to push services

	SNSRegion string

	// Daily closing reminder: fires once per day while the local clock is
	// inside [ReminderHour:00, ReminderHour:ReminderWindowMin].
	ReminderHour      int
	ReminderWindowMin int
	ReminderInterval  time.Duration

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Notifications     string
	PushSubscriptions string
	ReminderGuards    string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Notifications:     getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			PushSubscriptions: getEnv("DYNAMO_TABLE_PUSH_SUBSCRIPTIONS", "push_subscriptions"),
			ReminderGuards:    getEnv("DYNAMO_TABLE_REMINDER_GUARDS", "reminder_guards"),
		},

		JWTPublicKeyPath: getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),

		VAPIDPublicKey:  getEnv("VAPID_PUBLIC_KEY", ""),
		VAPIDPrivateKey: getEnv("VAPID_PRIVATE_KEY", ""),
		VAPIDSubscriber: getEnv("VAPID_SUBSCRIBER", "mailto:soporte@cronch.app"),

		SNSRegion: getEnv("SNS_REGION", "us-east-1"),

		ReminderHour:      getEnvInt("REMINDER_HOUR", 16),
		ReminderWindowMin: getEnvInt("REMINDER_WINDOW_MINUTES", 10),
		ReminderInterval:  time.Duration(getEnvInt("REMINDER_INTERVAL_MINUTES", 5)) * time.Minute,

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
