package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/cronch-app/notify/internal/application/push"
	"github.com/cronch-app/notify/internal/config"
	"github.com/cronch-app/notify/internal/infrastructure/dynamo"
	jwtinfra "github.com/cronch-app/notify/internal/infrastructure/jwt"
	"github.com/cronch-app/notify/internal/infrastructure/sns"
	"github.com/cronch-app/notify/internal/infrastructure/webpush"
	"github.com/cronch-app/notify/internal/realtime"
	"github.com/cronch-app/notify/internal/reminder"
	transporthttp "github.com/cronch-app/notify/internal/transport/http"
)

// reminderNotifier bridges the scheduler to the push fan-out.
type reminderNotifier struct {
	push push.Service
}

func (n reminderNotifier) Notify(ctx context.Context) error {
	n.push.Broadcast(ctx, push.Payload{Title: reminder.DefaultTitle, Body: reminder.DefaultBody})
	return nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional — graceful fallback if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// Web Push sender (optional — graceful fallback if VAPID keys are missing).
	var webSender webpush.Sender
	if s, err := webpush.NewSender(cfg); err == nil {
		webSender = s
	} else {
		log.Printf("WARN: web push sender not available: %v", err)
	}

	// SNS mobile push sender (optional — graceful fallback).
	var mobileSender sns.MobileSender
	if s, err := sns.NewSender(cfg); err == nil {
		mobileSender = s
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	notificationRepo := dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications)
	pushSubRepo := dynamo.NewPushSubscriptionRepo(dynamoClient, cfg.DynamoTables.PushSubscriptions)
	guardRepo := dynamo.NewReminderGuardRepo(dynamoClient, cfg.DynamoTables.ReminderGuards)

	hub := realtime.NewHub()

	deps := &transporthttp.Deps{
		NotificationRepo: notificationRepo,
		PushSubRepo:      pushSubRepo,
		Hub:              hub,
		WebSender:        webSender,
		MobileSender:     mobileSender,
		JWTProvider:      jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	// Daily closing reminder. The broadcast path shares the subscription repo
	// and senders with the HTTP stack.
	pushSvc := push.NewService(pushSubRepo, webSender, mobileSender)
	schedCtx, schedCancel := context.WithCancel(context.Background())
	sched := reminder.NewScheduler(reminder.Config{
		Hour:          cfg.ReminderHour,
		WindowMinutes: cfg.ReminderWindowMin,
		Interval:      cfg.ReminderInterval,
	}, guardRepo, reminderNotifier{push: pushSvc})
	sched.Start(schedCtx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	schedCancel()
	sched.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
