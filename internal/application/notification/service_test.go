package notification

import (
	"context"
	"testing"

	"github.com/cronch-app/notify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockNotifStore struct{ mock.Mock }

func (m *mockNotifStore) Put(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}
func (m *mockNotifStore) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	args := m.Called(ctx, notificationID)
	if n, _ := args.Get(0).(*domain.Notification); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockNotifStore) ListRecent(ctx context.Context, userID string, limit int32) ([]domain.Notification, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]domain.Notification), args.Error(1)
}
func (m *mockNotifStore) SetRead(ctx context.Context, notificationID string) error {
	return m.Called(ctx, notificationID).Error(0)
}
func (m *mockNotifStore) MarkAllRead(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
func (m *mockNotifStore) Delete(ctx context.Context, notificationID string) error {
	return m.Called(ctx, notificationID).Error(0)
}

type recordingHub struct {
	published []*domain.Notification
}

func (h *recordingHub) Publish(n *domain.Notification) { h.published = append(h.published, n) }

type recordingDispatcher struct {
	dispatched []*domain.Notification
}

func (d *recordingDispatcher) Dispatch(_ context.Context, n *domain.Notification) {
	d.dispatched = append(d.dispatched, n)
}

func baseReq() domain.CreateNotificationRequest {
	return domain.CreateNotificationRequest{
		UserID:     "u1",
		BusinessID: "b1",
		Type:       "success",
		Title:      "Venta registrada",
		Message:    "Se registró una venta por $1200",
		Link:       "/sales",
	}
}

// --- Create tests ---

func TestCreate_PersistsAndFansOut(t *testing.T) {
	repo := &mockNotifStore{}
	repo.On("Put", mock.Anything, mock.Anything).Return(nil)
	hub := &recordingHub{}
	disp := &recordingDispatcher{}

	svc := NewService(repo, hub, disp)
	n, err := svc.Create(context.Background(), baseReq())

	require.NoError(t, err)
	assert.NotEmpty(t, n.NotificationID)
	assert.False(t, n.IsRead)
	assert.False(t, n.CreatedAt.IsZero())
	require.Len(t, hub.published, 1)
	assert.Same(t, n, hub.published[0])
	require.Len(t, disp.dispatched, 1)
	repo.AssertExpectations(t)
}

func TestCreate_UnknownTypeNormalizedToInfo(t *testing.T) {
	repo := &mockNotifStore{}
	repo.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(repo, &recordingHub{}, nil)
	req := baseReq()
	req.Type = "" // omitted by older producers

	n, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.TypeInfo, n.Type)
}

func TestCreate_ValidationFailure(t *testing.T) {
	svc := NewService(&mockNotifStore{}, &recordingHub{}, nil)
	req := baseReq()
	req.Title = ""

	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestCreate_StoreFailureSkipsFanOut(t *testing.T) {
	repo := &mockNotifStore{}
	repo.On("Put", mock.Anything, mock.Anything).Return(assert.AnError)
	hub := &recordingHub{}

	svc := NewService(repo, hub, nil)
	_, err := svc.Create(context.Background(), baseReq())

	require.Error(t, err)
	assert.Empty(t, hub.published)
}

// --- read/delete tests ---

func TestListRecent_UsesFetchLimit(t *testing.T) {
	repo := &mockNotifStore{}
	repo.On("ListRecent", mock.Anything, "u1", int32(fetchLimit)).
		Return([]domain.Notification{{NotificationID: "n1"}}, nil)

	svc := NewService(repo, &recordingHub{}, nil)
	out, err := svc.ListRecent(context.Background(), "u1")

	require.NoError(t, err)
	assert.Len(t, out, 1)
	repo.AssertExpectations(t)
}

func TestMarkAsRead_OwnershipEnforced(t *testing.T) {
	repo := &mockNotifStore{}
	repo.On("Get", mock.Anything, "n1").Return(&domain.Notification{NotificationID: "n1", UserID: "someone-else"}, nil)

	svc := NewService(repo, &recordingHub{}, nil)
	err := svc.MarkAsRead(context.Background(), "n1", "u1")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	repo.AssertNotCalled(t, "SetRead", mock.Anything, mock.Anything)
}

func TestMarkAsRead_Owner(t *testing.T) {
	repo := &mockNotifStore{}
	repo.On("Get", mock.Anything, "n1").Return(&domain.Notification{NotificationID: "n1", UserID: "u1"}, nil)
	repo.On("SetRead", mock.Anything, "n1").Return(nil)

	svc := NewService(repo, &recordingHub{}, nil)
	require.NoError(t, svc.MarkAsRead(context.Background(), "n1", "u1"))
	repo.AssertExpectations(t)
}

func TestMarkAllAsRead_ScopedByUser(t *testing.T) {
	repo := &mockNotifStore{}
	repo.On("MarkAllRead", mock.Anything, "u1").Return(nil)

	svc := NewService(repo, &recordingHub{}, nil)
	require.NoError(t, svc.MarkAllAsRead(context.Background(), "u1"))
	repo.AssertExpectations(t)
}

func TestDelete_OwnershipEnforced(t *testing.T) {
	repo := &mockNotifStore{}
	repo.On("Get", mock.Anything, "n1").Return(&domain.Notification{NotificationID: "n1", UserID: "someone-else"}, nil)

	svc := NewService(repo, &recordingHub{}, nil)
	err := svc.Delete(context.Background(), "n1", "u1")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
