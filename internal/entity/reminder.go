package entity

import "time"

// TriggerType identifies which of the two alert points a sub-reminder is.
type TriggerType string

const (
	OneDayBefore  TriggerType = "one_day_before"
	OneHourBefore TriggerType = "one_hour_before"
)

// SubReminder is a single scheduled alert point. Once Triggered is set it is
// never re-armed for the same entry.
type SubReminder struct {
	Time      time.Time   `json:"time"`
	Type      TriggerType `json:"type"`
	Triggered bool        `json:"triggered"`
}

// ReminderEntry is the scheduler's per-appointment record: a snapshot of the
// appointment plus its two sub-reminders (one day before, one hour before).
type ReminderEntry struct {
	ID           int64         `json:"id"`
	Appointment  Appointment   `json:"appointment"`
	SubReminders []SubReminder `json:"sub_reminders"`
}

// NewReminderEntry snapshots a confirmed appointment and computes its two
// trigger timestamps.
func NewReminderEntry(appointment Appointment) (*ReminderEntry, error) {
	if !appointment.IsConfirmed() {
		return nil, ErrAppointmentNotConfirmed
	}

	start, err := appointment.StartTime()
	if err != nil {
		return nil, err
	}

	return &ReminderEntry{
		ID:          appointment.ID,
		Appointment: appointment,
		SubReminders: []SubReminder{
			{Time: start.Add(-24 * time.Hour), Type: OneDayBefore},
			{Time: start.Add(-time.Hour), Type: OneHourBefore},
		},
	}, nil
}
