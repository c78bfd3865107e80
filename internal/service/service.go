package service

import (
	"context"

	"github.com/assitosante/notification-agent/internal/entity"
)

type NotificationService interface {
	Load(ctx context.Context) error
	Notifications() []entity.Notification
	UnreadCount() int
	AddNotification(notification entity.Notification)
	MarkAsRead(ctx context.Context, id int64) error
	ClearAll(ctx context.Context) error
	HandleLiveNotification(notification entity.Notification)
	HandleMedicationReminder(reminder entity.MedicationReminder)
}
