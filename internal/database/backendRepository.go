package database

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/assitosante/notification-agent/internal/entity"
)

// backendRepository talks to the Santé Virtuelle REST API:
// GET  /notifications/
// POST /notifications/{id}/mark-read/
// POST /notifications/mark-all-read/
type backendRepository struct {
	baseURL   string
	authToken string
	client    *http.Client
}

func NewBackendRepository(baseURL, authToken string, timeout time.Duration) NotificationRepository {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &backendRepository{
		baseURL:   strings.TrimRight(baseURL, "/"),
		authToken: authToken,
		client:    &http.Client{Timeout: timeout},
	}
}

func (r *backendRepository) List(ctx context.Context) ([]entity.Notification, error) {
	resp, err := r.do(ctx, http.MethodGet, "/notifications/")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch notifications: %s", resp.Status)
	}

	var notifications []entity.Notification
	if err := json.NewDecoder(resp.Body).Decode(&notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}

	return notifications, nil
}

func (r *backendRepository) MarkRead(ctx context.Context, id int64) error {
	resp, err := r.do(ctx, http.MethodPost, fmt.Sprintf("/notifications/%d/mark-read/", id))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return entity.ErrNotificationNotFound
	default:
		return fmt.Errorf("failed to mark notification %d as read: %s", id, resp.Status)
	}
}

func (r *backendRepository) MarkAllRead(ctx context.Context) error {
	resp, err := r.do(ctx, http.MethodPost, "/notifications/mark-all-read/")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("failed to mark all notifications as read: %s", resp.Status)
	}

	return nil
}

func (r *backendRepository) do(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if r.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+r.authToken)
	}

	return r.client.Do(req)
}
