package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/assitosante/notification-agent/internal/entity"
	"github.com/assitosante/notification-agent/internal/push"
	"github.com/assitosante/notification-agent/internal/wsclient"

	"github.com/sirupsen/logrus"
)

const defaultCheckInterval = time.Minute

// FiredFunc receives each reminder notification as it fires. The sink is an
// explicit callback wired at composition time; there is no global event bus.
type FiredFunc func(notification entity.Notification)

// ReminderScheduler converts confirmed appointments into timed, exactly-once
// local notifications. Entries are keyed by appointment id; re-adding an
// appointment replaces its prior entry.
type ReminderScheduler struct {
	gateway       *push.Gateway
	onFired       FiredFunc
	checkInterval time.Duration
	now           func() time.Time

	mu          sync.Mutex
	entries     map[int64]*entity.ReminderEntry
	initialized bool
	unsubscribe func()
	stopTicker  context.CancelFunc
}

func New(gateway *push.Gateway, checkInterval time.Duration, onFired FiredFunc) *ReminderScheduler {
	if checkInterval <= 0 {
		checkInterval = defaultCheckInterval
	}

	return &ReminderScheduler{
		gateway:       gateway,
		onFired:       onFired,
		checkInterval: checkInterval,
		now:           time.Now,
		entries:       make(map[int64]*entity.ReminderEntry),
	}
}

// Init subscribes to the live appointment feed and starts the periodic scan.
// A second call fails instead of double-subscribing.
func (s *ReminderScheduler) Init(ws *wsclient.Client) error {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return entity.ErrAlreadyInitialized
	}
	s.initialized = true
	s.unsubscribe = ws.OnAppointmentUpdate(s.HandleAppointmentUpdate)
	s.mu.Unlock()

	s.startPeriodicCheck()
	return nil
}

// HandleAppointmentUpdate is the sole integration point between live updates
// and scheduler state: confirmed appointments gain a reminder entry, any
// other status drops it.
func (s *ReminderScheduler) HandleAppointmentUpdate(appointment entity.Appointment) {
	if appointment.IsConfirmed() {
		s.AddAppointmentReminder(appointment)
	} else {
		s.RemoveReminder(appointment.ID)
	}
}

// AddAppointmentReminder registers the two sub-reminders for a confirmed
// appointment. Any existing entry for the id is dropped first, so the call
// replaces rather than duplicates.
func (s *ReminderScheduler) AddAppointmentReminder(appointment entity.Appointment) {
	s.RemoveReminder(appointment.ID)

	entry, err := entity.NewReminderEntry(appointment)
	if err != nil {
		if err != entity.ErrAppointmentNotConfirmed {
			logrus.Errorf("Failed to build reminder entry for appointment %d: %v", appointment.ID, err)
		}
		return
	}

	s.mu.Lock()
	s.entries[entry.ID] = entry
	s.mu.Unlock()
}

// RemoveReminder deletes the entry for the appointment id if present.
func (s *ReminderScheduler) RemoveReminder(appointmentID int64) {
	s.mu.Lock()
	delete(s.entries, appointmentID)
	s.mu.Unlock()
}

// ClearReminders drops every entry.
func (s *ReminderScheduler) ClearReminders() {
	s.mu.Lock()
	s.entries = make(map[int64]*entity.ReminderEntry)
	s.mu.Unlock()
}

// Entries returns a snapshot of the active reminder entries, ordered by
// appointment id.
func (s *ReminderScheduler) Entries() []entity.ReminderEntry {
	s.mu.Lock()
	snapshot := make([]entity.ReminderEntry, 0, len(s.entries))
	for _, e := range s.entries {
		snapshot = append(snapshot, *e)
	}
	s.mu.Unlock()

	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].ID < snapshot[j].ID })
	return snapshot
}

// CheckReminders fires every untriggered sub-reminder whose time has come
// and marks it triggered. A sub-reminder whose time was already past at
// registration fires on the first scan; there is no suppression window.
func (s *ReminderScheduler) CheckReminders() {
	now := s.now()

	type due struct {
		appointment entity.Appointment
		trigger     entity.TriggerType
	}
	var fired []due

	s.mu.Lock()
	for _, entry := range s.entries {
		for i := range entry.SubReminders {
			sub := &entry.SubReminders[i]
			if !sub.Triggered && !now.Before(sub.Time) {
				sub.Triggered = true
				fired = append(fired, due{appointment: entry.Appointment, trigger: sub.Type})
			}
		}
	}
	s.mu.Unlock()

	for _, f := range fired {
		s.triggerReminder(f.appointment, f.trigger)
	}
}

func (s *ReminderScheduler) triggerReminder(appointment entity.Appointment, trigger entity.TriggerType) {
	var title, message string

	switch trigger {
	case entity.OneDayBefore:
		title = "Rappel de rendez-vous"
		message = fmt.Sprintf("Votre rendez-vous avec le Dr. %s est prévu demain à %s",
			appointment.MedecinNom, appointment.Heure)
	case entity.OneHourBefore:
		title = "Rappel de rendez-vous imminent"
		message = fmt.Sprintf("Votre rendez-vous avec le Dr. %s est prévu dans une heure à %s",
			appointment.MedecinNom, appointment.Heure)
	default:
		return
	}

	notification := entity.NewLocalNotification(title, message, entity.TypeAppointmentReminder,
		&entity.NotificationData{
			AppointmentID:   appointment.ID,
			AppointmentDate: appointment.Date,
			AppointmentTime: appointment.Heure,
			URL:             "/patient/rendez-vous",
		})

	logrus.Infof("Reminder fired for appointment %d (%s)", appointment.ID, trigger)

	if s.onFired != nil {
		s.onFired(notification)
	}

	if s.gateway != nil {
		// One tag per appointment so repeated fires replace instead of stack.
		s.gateway.ShowNotification(title, push.Options{
			Body:               message,
			Tag:                fmt.Sprintf("appointment-%d", appointment.ID),
			Renotify:           true,
			RequireInteraction: true,
			Data:               notification.Data,
		})
		s.gateway.Chime()
	}
}

func (s *ReminderScheduler) startPeriodicCheck() {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.stopTicker = cancel
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.checkInterval)
		defer ticker.Stop()

		logrus.Info("Reminder scheduler started")

		for {
			select {
			case <-ctx.Done():
				logrus.Info("Reminder scheduler stopped")
				return
			case <-ticker.C:
				s.CheckReminders()
			}
		}
	}()
}

// StopPeriodicCheck cancels the scan ticker. Safe to call repeatedly or when
// no scan is running; entries are kept, the scan simply stops.
func (s *ReminderScheduler) StopPeriodicCheck() {
	s.mu.Lock()
	cancel := s.stopTicker
	s.stopTicker = nil
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.initialized = false
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if unsubscribe != nil {
		unsubscribe()
	}
}
