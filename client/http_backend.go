package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cronch-app/notify/internal/domain"
	"github.com/gorilla/websocket"
)

// HTTPBackend talks to the notify service over its REST API and WebSocket
// stream. The bearer token already pins the signed-in user, so the userID
// arguments of the Backend interface are implied by the credential.
type HTTPBackend struct {
	baseURL    string
	token      string
	httpClient *http.Client
	dialer     *websocket.Dialer
}

func NewHTTPBackend(baseURL, token string) *HTTPBackend {
	return &HTTPBackend{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		dialer:     websocket.DefaultDialer,
	}
}

// FetchNotifications ignores the limit argument: the service bounds the page
// size itself and always returns the newest page.
func (b *HTTPBackend) FetchNotifications(ctx context.Context, _ string, _ int) ([]domain.Notification, error) {
	var out []domain.Notification
	err := b.do(ctx, http.MethodGet, "/v1/notifications", &out)
	return out, err
}

func (b *HTTPBackend) MarkRead(ctx context.Context, notificationID string) error {
	return b.do(ctx, http.MethodPut, "/v1/notifications/"+url.PathEscape(notificationID)+"/read", nil)
}

func (b *HTTPBackend) MarkAllRead(ctx context.Context, _ string) error {
	return b.do(ctx, http.MethodPost, "/v1/notifications/read-all", nil)
}

func (b *HTTPBackend) Delete(ctx context.Context, notificationID string) error {
	return b.do(ctx, http.MethodDelete, "/v1/notifications/"+url.PathEscape(notificationID), nil)
}

// Subscribe opens the WebSocket stream. The returned subscription's channel
// closes when the connection drops; the store does not reconnect on its own.
func (b *HTTPBackend) Subscribe(ctx context.Context, _ string) (Subscription, error) {
	wsURL := "ws" + strings.TrimPrefix(b.baseURL, "http") + "/v1/notifications/stream"
	header := http.Header{"Authorization": []string{"Bearer " + b.token}}
	conn, resp, err := b.dialer.DialContext(ctx, wsURL, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial stream: %w", err)
	}
	sub := &wsSubscription{conn: conn, out: make(chan *domain.Notification, 64)}
	go sub.read()
	return sub, nil
}

func (b *HTTPBackend) do(ctx context.Context, method, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+b.token)
	req.Header.Set("Accept", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var envelope struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		if envelope.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, envelope.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

type wsSubscription struct {
	conn      *websocket.Conn
	out       chan *domain.Notification
	closeOnce sync.Once
}

func (s *wsSubscription) Out() <-chan *domain.Notification { return s.out }

func (s *wsSubscription) Close() error {
	var err error
	s.closeOnce.Do(func() { err = s.conn.Close() })
	return err
}

func (s *wsSubscription) read() {
	defer close(s.out)
	for {
		var n domain.Notification
		if err := s.conn.ReadJSON(&n); err != nil {
			return
		}
		s.out <- &n
	}
}
