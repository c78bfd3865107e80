package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/assitosante/notification-agent/internal/database"
	"github.com/assitosante/notification-agent/internal/entity"
	"github.com/assitosante/notification-agent/internal/push"

	"github.com/sirupsen/logrus"
)

// notificationService aggregates the inbox from two sources: the backend
// REST fetch and locally-fired events (reminders, live pushes). The backend
// stays the source of truth for read state; local mutations happen only
// after the backend call succeeds.
type notificationService struct {
	repo    database.NotificationRepository
	cache   database.InboxCache
	gateway *push.Gateway

	mu            sync.RWMutex
	notifications []entity.Notification
	unread        int
}

func NewNotificationService(repo database.NotificationRepository, cache database.InboxCache, gateway *push.Gateway) NotificationService {
	return &notificationService{
		repo:    repo,
		cache:   cache,
		gateway: gateway,
	}
}

// Load replaces local state with the backend's inbox and refreshes the
// cache. When the backend is unreachable it falls back to the cached copy,
// leaving whatever was already loaded untouched if the cache misses too.
func (s *notificationService) Load(ctx context.Context) error {
	notifications, err := s.repo.List(ctx)
	if err != nil {
		logrus.Errorf("Failed to load notifications from backend: %v", err)
		return s.loadFromCache(ctx, err)
	}

	s.replace(notifications)

	if s.cache != nil {
		if err := s.cache.Save(ctx, notifications); err != nil {
			logrus.Warnf("Failed to cache notifications: %v", err)
		}
	}

	return nil
}

func (s *notificationService) loadFromCache(ctx context.Context, cause error) error {
	if s.cache == nil {
		return cause
	}

	cached, err := s.cache.Load(ctx)
	if err != nil {
		logrus.Warnf("Failed to load cached notifications: %v", err)
		return cause
	}
	if cached == nil {
		return cause
	}

	logrus.Infof("Loaded %d notifications from cache", len(cached))
	s.replace(cached)
	return nil
}

func (s *notificationService) replace(notifications []entity.Notification) {
	unread := 0
	for _, n := range notifications {
		if !n.IsRead {
			unread++
		}
	}

	s.mu.Lock()
	s.notifications = notifications
	s.unread = unread
	s.mu.Unlock()
}

// Notifications returns a snapshot of the inbox, newest first.
func (s *notificationService) Notifications() []entity.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]entity.Notification, len(s.notifications))
	copy(snapshot, s.notifications)
	return snapshot
}

func (s *notificationService) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}

// AddNotification prepends a locally-created record and bumps the unread
// count. No backend round trip.
func (s *notificationService) AddNotification(notification entity.Notification) {
	s.mu.Lock()
	s.notifications = append([]entity.Notification{notification}, s.notifications...)
	s.unread++
	s.mu.Unlock()
}

// MarkAsRead persists the read state first; local state only changes after
// the backend accepts it.
func (s *notificationService) MarkAsRead(ctx context.Context, id int64) error {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		logrus.Errorf("Failed to mark notification %d as read: %v", id, err)
		return fmt.Errorf("mark as read: %w", err)
	}

	s.mu.Lock()
	for i := range s.notifications {
		if s.notifications[i].ID == id && !s.notifications[i].IsRead {
			s.notifications[i].IsRead = true
			s.unread--
			break
		}
	}
	s.mu.Unlock()

	return nil
}

// ClearAll marks every record as read, backend first.
func (s *notificationService) ClearAll(ctx context.Context) error {
	if err := s.repo.MarkAllRead(ctx); err != nil {
		logrus.Errorf("Failed to mark all notifications as read: %v", err)
		return fmt.Errorf("clear all: %w", err)
	}

	s.mu.Lock()
	for i := range s.notifications {
		s.notifications[i].IsRead = true
	}
	s.unread = 0
	s.mu.Unlock()

	return nil
}

// HandleLiveNotification ingests a notification envelope from the live feed
// and mirrors it to the push gateway.
func (s *notificationService) HandleLiveNotification(notification entity.Notification) {
	if notification.ID == 0 {
		notification = entity.NewLocalNotification(notification.Title, notification.Message,
			notification.Type, notification.Data)
	}
	if notification.Title == "" {
		notification.Title = "Nouvelle notification"
	}
	if notification.Message == "" {
		notification.Message = "Vous avez une nouvelle notification"
	}

	s.AddNotification(notification)

	if s.gateway != nil {
		s.gateway.ShowNotification(notification.Title, push.Options{
			Body: notification.Message,
			Data: notification.Data,
		})
	}
}

// HandleMedicationReminder turns a medication_reminder envelope into an
// inbox record plus a push notification with the fixed template.
func (s *notificationService) HandleMedicationReminder(reminder entity.MedicationReminder) {
	message := fmt.Sprintf("C'est l'heure de prendre %s (%s)", reminder.Medicament, reminder.Dosage)

	notification := entity.NewLocalNotification("Rappel de médicament", message,
		entity.TypeMedicationReminder, &entity.NotificationData{URL: "/patient/medication-reminders"})

	s.AddNotification(notification)

	if s.gateway != nil {
		s.gateway.ShowNotification("💊 Rappel de médicament", push.Options{
			Body:               message,
			Tag:                "medication-reminder",
			Renotify:           true,
			RequireInteraction: true,
			Data:               notification.Data,
		})
		s.gateway.Chime()
	}
}
