package database

import (
	"context"

	"github.com/assitosante/notification-agent/internal/entity"
)

// NotificationRepository is the backend-owned notification inbox. The Django
// API is the source of truth; the agent never deletes records.
type NotificationRepository interface {
	List(ctx context.Context) ([]entity.Notification, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context) error
}

// InboxCache keeps a local copy of the inbox for warm starts when the
// backend is unreachable.
type InboxCache interface {
	Save(ctx context.Context, notifications []entity.Notification) error
	Load(ctx context.Context) ([]entity.Notification, error)
}
