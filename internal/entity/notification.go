package entity

import "time"

// Notification types shared with the backend and the web UI
const (
	TypeInfo                = "info"
	TypeSuccess             = "success"
	TypeWarning             = "warning"
	TypeError               = "error"
	TypeMedicationReminder  = "medication_reminder"
	TypeAppointmentReminder = "appointment_reminder"
	TypeRendezVous          = "rendez_vous"
	TypeMessage             = "message"
	TypeArticle             = "article"
)

// Notification is a single inbox record. Records fetched from the backend
// keep the backend's id and read flag; records created locally (fired
// reminders, live events) get a millisecond timestamp id and start unread.
type Notification struct {
	ID        int64             `json:"id"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Type      string            `json:"type"`
	IsRead    bool              `json:"is_read"`
	CreatedAt time.Time         `json:"created_at"`
	Data      *NotificationData `json:"data,omitempty"`
}

// NotificationData carries the deep-linking payload attached to a record.
type NotificationData struct {
	AppointmentID   int64  `json:"appointment_id,omitempty"`
	AppointmentDate string `json:"appointment_date,omitempty"`
	AppointmentTime string `json:"appointment_time,omitempty"`
	URL             string `json:"url,omitempty"`
}

// MedicationReminder is the payload of a medication_reminder envelope.
type MedicationReminder struct {
	Medicament string `json:"medicament"`
	Dosage     string `json:"dosage"`
}

// NewLocalNotification builds an unread record with a time-based id.
func NewLocalNotification(title, message, notifType string, data *NotificationData) Notification {
	now := time.Now()
	return Notification{
		ID:        now.UnixMilli(),
		Title:     title,
		Message:   message,
		Type:      notifType,
		IsRead:    false,
		CreatedAt: now,
		Data:      data,
	}
}
