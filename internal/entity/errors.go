package entity

import "errors"

var (
	// Reminder errors
	ErrInvalidAppointmentTime  = errors.New("invalid appointment date or time")
	ErrAppointmentNotConfirmed = errors.New("appointment is not confirmed")

	// Scheduler errors
	ErrAlreadyInitialized = errors.New("reminder scheduler already initialized")

	// Inbox errors
	ErrNotificationNotFound = errors.New("notification not found")
)
