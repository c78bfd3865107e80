package entity

import "encoding/json"

// Envelope event types pushed by the backend
const (
	EventNotification       = "notification"
	EventMedicationReminder = "medication_reminder"
	EventAppointmentUpdate  = "appointment_update"
)

// Envelope is the shape of a decoded WebSocket frame. Consultation chat
// frames carry a bare content field instead of a typed payload.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Content string          `json:"content,omitempty"`
}
