package entity

import (
	"fmt"
	"time"
)

// Appointment statuses as delivered by the backend
const (
	StatusPending     = "PENDING"
	StatusConfirmed   = "CONFIRMED"
	StatusCancelled   = "CANCELLED"
	StatusRescheduled = "RESCHEDULED"
)

// Appointment mirrors the backend's rendez-vous payload. The agent only
// reads it; the backend owns the record.
type Appointment struct {
	ID         int64  `json:"id"`
	Date       string `json:"date"`  // YYYY-MM-DD
	Heure      string `json:"heure"` // HH:MM or HH:MM:SS
	Statut     string `json:"statut"`
	MedecinNom string `json:"medecin_nom"`
	PatientNom string `json:"patient_nom,omitempty"`
}

func (a *Appointment) IsConfirmed() bool {
	return a.Statut == StatusConfirmed
}

// StartTime combines the date and heure fields into a single local timestamp.
func (a *Appointment) StartTime() (time.Time, error) {
	heure := a.Heure
	if len(heure) == 5 { // HH:MM without seconds
		heure += ":00"
	}

	t, err := time.ParseInLocation("2006-01-02T15:04:05", a.Date+"T"+heure, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date=%q heure=%q", ErrInvalidAppointmentTime, a.Date, a.Heure)
	}

	return t, nil
}
