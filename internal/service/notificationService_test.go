package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/assitosante/notification-agent/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackendDown = errors.New("backend down")

type fakeRepository struct {
	notifications []entity.Notification
	listErr       error
	markErr       error
	markedRead    []int64
	markedAll     int
}

func (f *fakeRepository) List(context.Context) ([]entity.Notification, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.notifications, nil
}

func (f *fakeRepository) MarkRead(_ context.Context, id int64) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.markedRead = append(f.markedRead, id)
	return nil
}

func (f *fakeRepository) MarkAllRead(context.Context) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.markedAll++
	return nil
}

type fakeCache struct {
	saved  []entity.Notification
	stored []entity.Notification
	err    error
}

func (f *fakeCache) Save(_ context.Context, notifications []entity.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.saved = notifications
	return nil
}

func (f *fakeCache) Load(context.Context) ([]entity.Notification, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stored, nil
}

func inbox() []entity.Notification {
	now := time.Now()
	return []entity.Notification{
		{ID: 7, Title: "RDV confirmé", Type: entity.TypeRendezVous, IsRead: false, CreatedAt: now},
		{ID: 6, Title: "Nouvel article", Type: entity.TypeArticle, IsRead: true, CreatedAt: now},
		{ID: 5, Title: "Message", Type: entity.TypeMessage, IsRead: false, CreatedAt: now},
		{ID: 4, Title: "Bienvenue", Type: entity.TypeInfo, IsRead: true, CreatedAt: now},
		{ID: 3, Title: "Rappel", Type: entity.TypeAppointmentReminder, IsRead: false, CreatedAt: now},
	}
}

func TestLoadComputesUnreadCount(t *testing.T) {
	repo := &fakeRepository{notifications: inbox()}
	cache := &fakeCache{}
	s := NewNotificationService(repo, cache, nil)

	require.NoError(t, s.Load(context.Background()))

	assert.Len(t, s.Notifications(), 5)
	assert.Equal(t, 3, s.UnreadCount())
	assert.Len(t, cache.saved, 5)
}

func TestLoadFallsBackToCache(t *testing.T) {
	repo := &fakeRepository{listErr: errBackendDown}
	cache := &fakeCache{stored: inbox()}
	s := NewNotificationService(repo, cache, nil)

	require.NoError(t, s.Load(context.Background()))

	assert.Len(t, s.Notifications(), 5)
	assert.Equal(t, 3, s.UnreadCount())
}

func TestLoadFailsWhenBackendAndCacheMiss(t *testing.T) {
	repo := &fakeRepository{listErr: errBackendDown}
	s := NewNotificationService(repo, &fakeCache{}, nil)

	assert.ErrorIs(t, s.Load(context.Background()), errBackendDown)
	assert.Empty(t, s.Notifications())
}

func TestMarkAsRead(t *testing.T) {
	repo := &fakeRepository{notifications: inbox()}
	s := NewNotificationService(repo, nil, nil)
	require.NoError(t, s.Load(context.Background()))

	require.NoError(t, s.MarkAsRead(context.Background(), 7))

	assert.Equal(t, []int64{7}, repo.markedRead)
	assert.Equal(t, 2, s.UnreadCount())

	for _, n := range s.Notifications() {
		switch n.ID {
		case 7:
			assert.True(t, n.IsRead)
		case 5, 3:
			assert.False(t, n.IsRead)
		default:
			assert.True(t, n.IsRead)
		}
	}
}

func TestMarkAsReadBackendFailureLeavesStateUnchanged(t *testing.T) {
	repo := &fakeRepository{notifications: inbox()}
	s := NewNotificationService(repo, nil, nil)
	require.NoError(t, s.Load(context.Background()))

	repo.markErr = errBackendDown

	assert.ErrorIs(t, s.MarkAsRead(context.Background(), 7), errBackendDown)
	assert.Equal(t, 3, s.UnreadCount())

	for _, n := range s.Notifications() {
		if n.ID == 7 {
			assert.False(t, n.IsRead)
		}
	}
}

func TestClearAll(t *testing.T) {
	repo := &fakeRepository{notifications: inbox()}
	s := NewNotificationService(repo, nil, nil)
	require.NoError(t, s.Load(context.Background()))

	require.NoError(t, s.ClearAll(context.Background()))

	assert.Equal(t, 1, repo.markedAll)
	assert.Equal(t, 0, s.UnreadCount())
	for _, n := range s.Notifications() {
		assert.True(t, n.IsRead)
	}
}

func TestClearAllBackendFailureLeavesStateUnchanged(t *testing.T) {
	repo := &fakeRepository{notifications: inbox(), markErr: errBackendDown}
	s := NewNotificationService(repo, nil, nil)
	require.NoError(t, s.Load(context.Background()))

	assert.ErrorIs(t, s.ClearAll(context.Background()), errBackendDown)
	assert.Equal(t, 3, s.UnreadCount())
}

func TestAddNotificationPrepends(t *testing.T) {
	repo := &fakeRepository{notifications: inbox()}
	s := NewNotificationService(repo, nil, nil)
	require.NoError(t, s.Load(context.Background()))

	fired := entity.NewLocalNotification("Rappel de rendez-vous", "demain", entity.TypeAppointmentReminder, nil)
	s.AddNotification(fired)

	notifications := s.Notifications()
	require.Len(t, notifications, 6)
	assert.Equal(t, fired.ID, notifications[0].ID)
	assert.Equal(t, 4, s.UnreadCount())
}

func TestHandleMedicationReminder(t *testing.T) {
	s := NewNotificationService(&fakeRepository{}, nil, nil)

	s.HandleMedicationReminder(entity.MedicationReminder{Medicament: "Doliprane", Dosage: "500mg"})

	notifications := s.Notifications()
	require.Len(t, notifications, 1)
	assert.Equal(t, "Rappel de médicament", notifications[0].Title)
	assert.Equal(t, "C'est l'heure de prendre Doliprane (500mg)", notifications[0].Message)
	assert.Equal(t, entity.TypeMedicationReminder, notifications[0].Type)
	assert.Equal(t, 1, s.UnreadCount())
}

func TestHandleLiveNotificationFillsDefaults(t *testing.T) {
	s := NewNotificationService(&fakeRepository{}, nil, nil)

	s.HandleLiveNotification(entity.Notification{Message: "Votre dossier a été mis à jour"})

	notifications := s.Notifications()
	require.Len(t, notifications, 1)
	assert.Equal(t, "Nouvelle notification", notifications[0].Title)
	assert.NotZero(t, notifications[0].ID)
	assert.False(t, notifications[0].IsRead)
}
