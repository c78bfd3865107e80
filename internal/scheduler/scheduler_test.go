package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/assitosante/notification-agent/internal/entity"
	"github.com/assitosante/notification-agent/internal/push"
	"github.com/assitosante/notification-agent/internal/wsclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu    sync.Mutex
	sends []push.Options
}

func (s *recordingSender) Send(_ context.Context, _ string, opts push.Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sends = append(s.sends, opts)
	return nil
}

func (s *recordingSender) tags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var tags []string
	for _, o := range s.sends {
		tags = append(tags, o.Tag)
	}
	return tags
}

func confirmedAppointment() entity.Appointment {
	return entity.Appointment{
		ID:         42,
		Date:       "2025-12-01",
		Heure:      "10:00:00",
		Statut:     entity.StatusConfirmed,
		MedecinNom: "Martin",
	}
}

func newTestScheduler(onFired FiredFunc) (*ReminderScheduler, *recordingSender) {
	sender := &recordingSender{}
	gateway := push.NewGateway(push.Defaults{}, sender)
	gateway.RequestPermission()

	return New(gateway, time.Minute, onFired), sender
}

func TestAddAppointmentReminderCreatesTwoSubReminders(t *testing.T) {
	s, _ := newTestScheduler(nil)

	s.AddAppointmentReminder(confirmedAppointment())

	entries := s.Entries()
	require.Len(t, entries, 1)
	require.Len(t, entries[0].SubReminders, 2)

	start := time.Date(2025, 12, 1, 10, 0, 0, 0, time.Local)
	assert.True(t, entries[0].SubReminders[0].Time.Equal(start.Add(-24*time.Hour)))
	assert.True(t, entries[0].SubReminders[1].Time.Equal(start.Add(-time.Hour)))
}

func TestAddAppointmentReminderReplacesExisting(t *testing.T) {
	s, _ := newTestScheduler(nil)

	appointment := confirmedAppointment()
	s.AddAppointmentReminder(appointment)

	appointment.Heure = "14:00:00"
	s.AddAppointmentReminder(appointment)

	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "14:00:00", entries[0].Appointment.Heure)
}

func TestAddAppointmentReminderIgnoresNonConfirmed(t *testing.T) {
	s, _ := newTestScheduler(nil)

	appointment := confirmedAppointment()
	appointment.Statut = entity.StatusPending
	s.AddAppointmentReminder(appointment)

	assert.Empty(t, s.Entries())
}

func TestHandleAppointmentUpdate(t *testing.T) {
	tests := []struct {
		name      string
		statut    string
		wantEntry bool
	}{
		{name: "confirmed adds entry", statut: entity.StatusConfirmed, wantEntry: true},
		{name: "pending removes entry", statut: entity.StatusPending, wantEntry: false},
		{name: "cancelled removes entry", statut: entity.StatusCancelled, wantEntry: false},
		{name: "rescheduled removes entry", statut: entity.StatusRescheduled, wantEntry: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestScheduler(nil)
			s.AddAppointmentReminder(confirmedAppointment())

			appointment := confirmedAppointment()
			appointment.Statut = tt.statut
			s.HandleAppointmentUpdate(appointment)

			if tt.wantEntry {
				assert.Len(t, s.Entries(), 1)
			} else {
				assert.Empty(t, s.Entries())
			}
		})
	}
}

// Appointment on 2025-12-01 at 10:00, scanned at 2025-11-30 10:00:01: the
// one-day sub-reminder fires, the one-hour one stays armed.
func TestCheckRemindersFiresOneDayBefore(t *testing.T) {
	var fired []entity.Notification
	s, sender := newTestScheduler(func(n entity.Notification) { fired = append(fired, n) })

	s.AddAppointmentReminder(confirmedAppointment())
	s.now = func() time.Time { return time.Date(2025, 11, 30, 10, 0, 1, 0, time.Local) }

	s.CheckReminders()

	require.Len(t, fired, 1)
	assert.Equal(t, "Rappel de rendez-vous", fired[0].Title)
	assert.Equal(t, "Votre rendez-vous avec le Dr. Martin est prévu demain à 10:00:00", fired[0].Message)
	assert.Equal(t, entity.TypeAppointmentReminder, fired[0].Type)
	assert.False(t, fired[0].IsRead)
	require.NotNil(t, fired[0].Data)
	assert.Equal(t, int64(42), fired[0].Data.AppointmentID)

	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].SubReminders[0].Triggered)
	assert.False(t, entries[0].SubReminders[1].Triggered)

	assert.Equal(t, []string{"appointment-42"}, sender.tags())
}

func TestCheckRemindersFiresAtMostOnce(t *testing.T) {
	var fired []entity.Notification
	s, _ := newTestScheduler(func(n entity.Notification) { fired = append(fired, n) })

	s.AddAppointmentReminder(confirmedAppointment())
	s.now = func() time.Time { return time.Date(2025, 11, 30, 10, 0, 1, 0, time.Local) }

	s.CheckReminders()
	s.CheckReminders()
	s.CheckReminders()

	assert.Len(t, fired, 1)
}

func TestCheckRemindersAfterCancellation(t *testing.T) {
	var fired []entity.Notification
	s, _ := newTestScheduler(func(n entity.Notification) { fired = append(fired, n) })

	s.AddAppointmentReminder(confirmedAppointment())

	cancelled := confirmedAppointment()
	cancelled.Statut = entity.StatusCancelled
	s.HandleAppointmentUpdate(cancelled)

	s.now = func() time.Time { return time.Date(2025, 12, 1, 9, 30, 0, 0, time.Local) }
	s.CheckReminders()

	assert.Empty(t, fired)
	assert.Empty(t, s.Entries())
}

// A confirmed appointment registered minutes before it starts: both trigger
// times are already past, so both sub-reminders fire on the next scan.
func TestCheckRemindersLateRegistration(t *testing.T) {
	var fired []entity.Notification
	s, _ := newTestScheduler(func(n entity.Notification) { fired = append(fired, n) })

	s.AddAppointmentReminder(confirmedAppointment())
	s.now = func() time.Time { return time.Date(2025, 12, 1, 9, 45, 0, 0, time.Local) }

	s.CheckReminders()

	require.Len(t, fired, 2)
	assert.Equal(t, "Rappel de rendez-vous", fired[0].Title)
	assert.Equal(t, "Rappel de rendez-vous imminent", fired[1].Title)
}

func TestCheckRemindersIndependentSubReminders(t *testing.T) {
	var fired []entity.Notification
	s, _ := newTestScheduler(func(n entity.Notification) { fired = append(fired, n) })

	s.AddAppointmentReminder(confirmedAppointment())

	s.now = func() time.Time { return time.Date(2025, 11, 30, 10, 0, 1, 0, time.Local) }
	s.CheckReminders()
	require.Len(t, fired, 1)

	s.now = func() time.Time { return time.Date(2025, 12, 1, 9, 0, 1, 0, time.Local) }
	s.CheckReminders()

	require.Len(t, fired, 2)
	assert.Equal(t, "Rappel de rendez-vous imminent", fired[1].Title)
}

func TestInitGuardsDoubleInit(t *testing.T) {
	s, _ := newTestScheduler(nil)
	defer s.StopPeriodicCheck()

	ws := wsclient.NewClient(wsclient.Config{})

	require.NoError(t, s.Init(ws))
	assert.ErrorIs(t, s.Init(ws), entity.ErrAlreadyInitialized)
}

func TestStopPeriodicCheckIsIdempotent(t *testing.T) {
	s, _ := newTestScheduler(nil)

	s.StopPeriodicCheck()
	s.StopPeriodicCheck()

	require.NoError(t, s.Init(wsclient.NewClient(wsclient.Config{})))
	s.StopPeriodicCheck()
	s.StopPeriodicCheck()
}
