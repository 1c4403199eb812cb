package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cronch-app/notify/internal/application/push"
	"github.com/cronch-app/notify/internal/domain"
	"github.com/cronch-app/notify/internal/transport/http/middleware"
)

// PushSubscriptionHandler handles push subscription registration.
type PushSubscriptionHandler struct {
	svc push.Service
}

func NewPushSubscriptionHandler(svc push.Service) *PushSubscriptionHandler {
	return &PushSubscriptionHandler{svc: svc}
}

// Register upserts the caller's push subscription, keyed by endpoint. Clients
// call this on every session start; repeat calls refresh keys and user agent.
func (h *PushSubscriptionHandler) Register(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.RegisterPushSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sub, err := h.svc.Register(r.Context(), claims.UserID, claims.BusinessID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}
