package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cronch-app/notify/internal/domain"
	jwtinfra "github.com/cronch-app/notify/internal/infrastructure/jwt"
	"github.com/cronch-app/notify/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockNotifSvc struct{ mock.Mock }

func (m *mockNotifSvc) Create(ctx context.Context, req domain.CreateNotificationRequest) (*domain.Notification, error) {
	args := m.Called(ctx, req)
	if n, _ := args.Get(0).(*domain.Notification); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotifSvc) ListRecent(ctx context.Context, userID string) ([]domain.Notification, error) {
	args := m.Called(ctx, userID)
	if list, _ := args.Get(0).([]domain.Notification); list != nil {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotifSvc) MarkAsRead(ctx context.Context, notificationID, userID string) error {
	return m.Called(ctx, notificationID, userID).Error(0)
}

func (m *mockNotifSvc) MarkAllAsRead(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockNotifSvc) Delete(ctx context.Context, notificationID, userID string) error {
	return m.Called(ctx, notificationID, userID).Error(0)
}

// --- helpers ---

// withClaims injects verified claims the way the auth middleware does.
func withClaims(r *http.Request, userID, businessID, role string) *http.Request {
	claims := &jwtinfra.Claims{UserID: userID, BusinessID: businessID, Role: role}
	return r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, claims))
}

// withChiID injects a chi URL param "id" into the request context.
func withChiID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// --- List tests ---

func TestList_MissingClaims(t *testing.T) {
	svc := &mockNotifSvc{}
	h := NewNotificationHandler(svc)
	r := httptest.NewRequest(http.MethodGet, "/v1/notifications", nil)
	rr := httptest.NewRecorder()
	h.List(rr, r)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestList_HappyPath(t *testing.T) {
	svc := &mockNotifSvc{}
	svc.On("ListRecent", mock.Anything, "u1").Return([]domain.Notification{
		{NotificationID: "n2", UserID: "u1", Title: "newest"},
		{NotificationID: "n1", UserID: "u1", Title: "older"},
	}, nil)
	h := NewNotificationHandler(svc)

	r := withClaims(httptest.NewRequest(http.MethodGet, "/v1/notifications", nil), "u1", "b1", domain.RoleUser)
	rr := httptest.NewRecorder()
	h.List(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp []domain.Notification
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "n2", resp[0].NotificationID)
	svc.AssertExpectations(t)
}

func TestList_EmptyReturnsArray(t *testing.T) {
	svc := &mockNotifSvc{}
	svc.On("ListRecent", mock.Anything, "u1").Return([]domain.Notification(nil), nil)
	h := NewNotificationHandler(svc)

	r := withClaims(httptest.NewRequest(http.MethodGet, "/v1/notifications", nil), "u1", "b1", domain.RoleUser)
	rr := httptest.NewRecorder()
	h.List(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())
}

// --- Create tests ---

func TestCreate_InvalidBody(t *testing.T) {
	svc := &mockNotifSvc{}
	h := NewNotificationHandler(svc)
	r := httptest.NewRequest(http.MethodPost, "/v1/notifications", bytes.NewBufferString("not-json"))
	rr := httptest.NewRecorder()
	h.Create(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreate_ValidationFailure(t *testing.T) {
	svc := &mockNotifSvc{}
	svc.On("Create", mock.Anything, mock.Anything).Return(nil, domain.ErrBadRequest)
	h := NewNotificationHandler(svc)
	body, _ := json.Marshal(domain.CreateNotificationRequest{Title: "missing user"})
	r := httptest.NewRequest(http.MethodPost, "/v1/notifications", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Create(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertExpectations(t)
}

func TestCreate_HappyPath(t *testing.T) {
	svc := &mockNotifSvc{}
	n := &domain.Notification{NotificationID: "n1", UserID: "u1", Type: domain.TypeSuccess, Title: "Venta registrada"}
	svc.On("Create", mock.Anything, mock.Anything).Return(n, nil)
	h := NewNotificationHandler(svc)

	body, _ := json.Marshal(domain.CreateNotificationRequest{
		UserID: "u1", BusinessID: "b1", Type: "success",
		Title: "Venta registrada", Message: "Se registró una venta de $500",
	})
	r := httptest.NewRequest(http.MethodPost, "/v1/notifications", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Create(rr, r)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var resp domain.Notification
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "n1", resp.NotificationID)
	svc.AssertExpectations(t)
}

// --- MarkAsRead tests ---

func TestMarkAsRead_HappyPath(t *testing.T) {
	svc := &mockNotifSvc{}
	svc.On("MarkAsRead", mock.Anything, "n1", "u1").Return(nil)
	h := NewNotificationHandler(svc)

	r := withClaims(httptest.NewRequest(http.MethodPut, "/v1/notifications/n1/read", nil), "u1", "b1", domain.RoleUser)
	r = withChiID(r, "n1")
	rr := httptest.NewRecorder()
	h.MarkAsRead(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestMarkAsRead_NotOwner(t *testing.T) {
	svc := &mockNotifSvc{}
	svc.On("MarkAsRead", mock.Anything, "n1", "u2").Return(domain.ErrForbidden)
	h := NewNotificationHandler(svc)

	r := withClaims(httptest.NewRequest(http.MethodPut, "/v1/notifications/n1/read", nil), "u2", "b1", domain.RoleUser)
	r = withChiID(r, "n1")
	rr := httptest.NewRecorder()
	h.MarkAsRead(rr, r)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	svc.AssertExpectations(t)
}

func TestMarkAsRead_NotFound(t *testing.T) {
	svc := &mockNotifSvc{}
	svc.On("MarkAsRead", mock.Anything, "missing", "u1").Return(domain.ErrNotFound)
	h := NewNotificationHandler(svc)

	r := withClaims(httptest.NewRequest(http.MethodPut, "/v1/notifications/missing/read", nil), "u1", "b1", domain.RoleUser)
	r = withChiID(r, "missing")
	rr := httptest.NewRecorder()
	h.MarkAsRead(rr, r)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	svc.AssertExpectations(t)
}

// --- MarkAllAsRead / Delete tests ---

func TestMarkAllAsRead_HappyPath(t *testing.T) {
	svc := &mockNotifSvc{}
	svc.On("MarkAllAsRead", mock.Anything, "u1").Return(nil)
	h := NewNotificationHandler(svc)

	r := withClaims(httptest.NewRequest(http.MethodPost, "/v1/notifications/read-all", nil), "u1", "b1", domain.RoleUser)
	rr := httptest.NewRecorder()
	h.MarkAllAsRead(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestDelete_HappyPath(t *testing.T) {
	svc := &mockNotifSvc{}
	svc.On("Delete", mock.Anything, "n1", "u1").Return(nil)
	h := NewNotificationHandler(svc)

	r := withClaims(httptest.NewRequest(http.MethodDelete, "/v1/notifications/n1", nil), "u1", "b1", domain.RoleUser)
	r = withChiID(r, "n1")
	rr := httptest.NewRecorder()
	h.Delete(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}
