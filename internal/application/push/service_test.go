package push

import (
	"context"
	"testing"

	"github.com/cronch-app/notify/internal/domain"
	"github.com/cronch-app/notify/internal/infrastructure/webpush"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockSubStore struct{ mock.Mock }

func (m *mockSubStore) Upsert(ctx context.Context, s *domain.PushSubscription) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockSubStore) Get(ctx context.Context, endpoint string) (*domain.PushSubscription, error) {
	args := m.Called(ctx, endpoint)
	if s, _ := args.Get(0).(*domain.PushSubscription); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSubStore) ListByUser(ctx context.Context, userID string) ([]domain.PushSubscription, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.PushSubscription), args.Error(1)
}
func (m *mockSubStore) ListAll(ctx context.Context) ([]domain.PushSubscription, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.PushSubscription), args.Error(1)
}
func (m *mockSubStore) Delete(ctx context.Context, endpoint string) error {
	return m.Called(ctx, endpoint).Error(0)
}

type mockWebSender struct{ mock.Mock }

func (m *mockWebSender) Send(ctx context.Context, sub *domain.PushSubscription, payload []byte) error {
	return m.Called(ctx, sub, payload).Error(0)
}

// --- helpers ---

func baseReq() domain.RegisterPushSubscriptionRequest {
	return domain.RegisterPushSubscriptionRequest{
		Endpoint:  "https://push.example.com/ep1",
		Keys:      domain.SubscriptionKeys{P256DH: "BKey", Auth: "secret"},
		UserAgent: "Mozilla/5.0",
	}
}

// --- Register tests ---

func TestRegister_NewEndpoint(t *testing.T) {
	repo := &mockSubStore{}
	repo.On("Get", mock.Anything, "https://push.example.com/ep1").Return(nil, domain.ErrNotFound)
	repo.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(repo, nil, nil)
	sub, err := svc.Register(context.Background(), "u1", "b1", baseReq())

	require.NoError(t, err)
	assert.Equal(t, "u1", sub.UserID)
	assert.Equal(t, "b1", sub.BusinessID)
	assert.Equal(t, domain.PlatformWeb, sub.Platform)
	assert.False(t, sub.CreatedAt.IsZero())
	repo.AssertExpectations(t)
}

func TestRegister_ExistingEndpoint_RefreshesNotDuplicates(t *testing.T) {
	repo := &mockSubStore{}
	existing := &domain.PushSubscription{
		Endpoint:  "https://push.example.com/ep1",
		UserID:    "u1",
		UserAgent: "old-agent",
	}
	existing.CreatedAt = existing.CreatedAt.AddDate(-1, 0, 0)
	repo.On("Get", mock.Anything, "https://push.example.com/ep1").Return(existing, nil)

	var upserted *domain.PushSubscription
	repo.On("Upsert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		upserted = args.Get(1).(*domain.PushSubscription)
	}).Return(nil)

	svc := NewService(repo, nil, nil)
	req := baseReq()
	req.UserAgent = "new-agent"
	_, err := svc.Register(context.Background(), "u1", "b1", req)

	require.NoError(t, err)
	require.NotNil(t, upserted)
	// Same key (one row), latest agent and keys, original creation time.
	assert.Equal(t, existing.Endpoint, upserted.Endpoint)
	assert.Equal(t, "new-agent", upserted.UserAgent)
	assert.Equal(t, "BKey", upserted.Keys.P256DH)
	assert.Equal(t, existing.CreatedAt, upserted.CreatedAt)
	repo.AssertNumberOfCalls(t, "Upsert", 1)
}

func TestRegister_WebWithoutKeysRejected(t *testing.T) {
	svc := NewService(&mockSubStore{}, nil, nil)
	req := baseReq()
	req.Keys = domain.SubscriptionKeys{}

	_, err := svc.Register(context.Background(), "u1", "b1", req)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestRegister_MissingEndpointRejected(t *testing.T) {
	svc := NewService(&mockSubStore{}, nil, nil)
	req := baseReq()
	req.Endpoint = ""

	_, err := svc.Register(context.Background(), "u1", "b1", req)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

// --- Dispatch tests ---

func TestDispatch_SendsToEachWebSubscription(t *testing.T) {
	repo := &mockSubStore{}
	subs := []domain.PushSubscription{
		{Endpoint: "ep1", UserID: "u1", Platform: domain.PlatformWeb},
		{Endpoint: "ep2", UserID: "u1", Platform: domain.PlatformWeb},
	}
	repo.On("ListByUser", mock.Anything, "u1").Return(subs, nil)

	web := &mockWebSender{}
	web.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil).Twice()

	svc := NewService(repo, web, nil)
	svc.Dispatch(context.Background(), &domain.Notification{UserID: "u1", Title: "t", Message: "m"})

	web.AssertExpectations(t)
}

func TestDispatch_PrunesGoneSubscription(t *testing.T) {
	repo := &mockSubStore{}
	subs := []domain.PushSubscription{{Endpoint: "ep-dead", UserID: "u1", Platform: domain.PlatformWeb}}
	repo.On("ListByUser", mock.Anything, "u1").Return(subs, nil)
	repo.On("Delete", mock.Anything, "ep-dead").Return(nil)

	web := &mockWebSender{}
	web.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(webpush.ErrSubscriptionGone)

	svc := NewService(repo, web, nil)
	svc.Dispatch(context.Background(), &domain.Notification{UserID: "u1"})

	repo.AssertCalled(t, "Delete", mock.Anything, "ep-dead")
}

func TestDispatch_SendFailureIsSwallowed(t *testing.T) {
	repo := &mockSubStore{}
	subs := []domain.PushSubscription{{Endpoint: "ep1", UserID: "u1", Platform: domain.PlatformWeb}}
	repo.On("ListByUser", mock.Anything, "u1").Return(subs, nil)

	web := &mockWebSender{}
	web.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	svc := NewService(repo, web, nil)
	// Must not panic or propagate.
	svc.Dispatch(context.Background(), &domain.Notification{UserID: "u1"})

	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
