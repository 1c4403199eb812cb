package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/cronch-app/notify/internal/application/notification"
	"github.com/cronch-app/notify/internal/application/push"
	"github.com/cronch-app/notify/internal/config"
	"github.com/cronch-app/notify/internal/domain"
	"github.com/cronch-app/notify/internal/transport/http/handler"
	appmiddleware "github.com/cronch-app/notify/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — keeps reconnect storms from a broken
	// client off the stream endpoint.
	streamRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	pushSvc := push.NewService(deps.PushSubRepo, deps.WebSender, deps.MobileSender)
	notifSvc := notification.NewService(deps.NotificationRepo, deps.Hub, pushSvc)

	healthH := handler.NewHealthHandler()
	notifH := handler.NewNotificationHandler(notifSvc)
	streamH := handler.NewStreamHandler(deps.Hub)
	pushH := handler.NewPushSubscriptionHandler(pushSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.Get("/test", healthH.Test)
		r.Post("/test", healthH.Test)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/notifications", notifH.List)
			r.Put("/notifications/{id}/read", notifH.MarkAsRead)
			r.Post("/notifications/read-all", notifH.MarkAllAsRead)
			r.Delete("/notifications/{id}", notifH.Delete)
			r.With(streamRL.Limit).Get("/notifications/stream", streamH.Stream)
			r.Put("/push-subscriptions", pushH.Register)

			// Service-role only: backend jobs create notifications, end users
			// never do.
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleService))

				r.Post("/notifications", notifH.Create)
			})
		})
	})

	return r
}
