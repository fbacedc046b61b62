package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "SCHEDULED"
	StatusCancelled AppointmentStatus = "CANCELLED"
	StatusCompleted AppointmentStatus = "COMPLETED"
	StatusNoShow    AppointmentStatus = "NO_SHOW"
	StatusPending   AppointmentStatus = "PENDING"
	// StatusPendingSync marks appointments whose calendar event creation
	// failed; the sync sweep retries them.
	StatusPendingSync  AppointmentStatus = "PENDING_SYNC"
	StatusRescheduled  AppointmentStatus = "RESCHEDULED"
	StatusConfirmed    AppointmentStatus = "CONFIRMED"
	StatusReminderSent AppointmentStatus = "REMINDER_SENT"
)

// ActiveStatuses are the statuses that still hold a doctor's time slot.
// Appointments in these statuses participate in conflict checks.
func ActiveStatuses() []AppointmentStatus {
	return []AppointmentStatus{
		StatusScheduled,
		StatusConfirmed,
		StatusPendingSync,
		StatusPending,
		StatusReminderSent,
	}
}

// SyncStatuses are the statuses the sync sweep converges to the calendar.
func SyncStatuses() []AppointmentStatus {
	return []AppointmentStatus{
		StatusScheduled,
		StatusConfirmed,
		StatusPendingSync,
		StatusPending,
	}
}

// Appointment links a Patient, Doctor, and Service to a time slot and
// carries the ID of its mirrored calendar event, if any.
type Appointment struct {
	BaseModel
	PatientID       string            `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID        uint              `gorm:"index;not null" json:"doctorId"`
	ServiceID       *uint             `json:"serviceId"`
	StartTime       time.Time         `gorm:"not null" json:"startTime"`
	EndTime         time.Time         `gorm:"not null" json:"endTime"`
	ReasonNote      string            `gorm:"type:text" json:"reasonNote"`
	Status          AppointmentStatus `gorm:"size:20;default:'SCHEDULED'" json:"status"`
	CalendarEventID string            `gorm:"size:255" json:"calendarEventId"`

	// Relations
	Patient Patient  `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  Doctor   `gorm:"foreignKey:DoctorID" json:"-"`
	Service *Service `gorm:"foreignKey:ServiceID" json:"-"`
}
