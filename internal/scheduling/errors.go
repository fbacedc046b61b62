package scheduling

import (
	"errors"
	"fmt"
	"time"

	"dental-clinic-server/internal/models"
)

// ErrCalendarUnavailable is returned by the availability query when the
// calendar cannot be reached. Callers must not confuse it with a fully
// booked schedule.
var ErrCalendarUnavailable = errors.New("calendar service unavailable")

// ValidationError means the request itself is malformed (e.g. end time
// not after start time).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError means a referenced record does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ConflictSummary describes one appointment blocking a requested slot.
type ConflictSummary struct {
	AppointmentID string                   `json:"appointmentId"`
	StartTime     time.Time                `json:"startTime"`
	EndTime       time.Time                `json:"endTime"`
	PatientID     string                   `json:"patientId"`
	Status        models.AppointmentStatus `json:"status"`
}

// ConflictError means the doctor already has overlapping active
// appointments in the requested time range. It carries the full
// conflicting set for the caller's 409 response.
type ConflictError struct {
	DoctorID  uint
	StartTime time.Time
	EndTime   time.Time
	Conflicts []ConflictSummary
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("doctor %d already has %d appointment(s) between %s and %s",
		e.DoctorID, len(e.Conflicts), e.StartTime.Format(time.RFC3339), e.EndTime.Format(time.RFC3339))
}

// InvalidStateError means the operation is not permitted for the
// appointment's current status.
type InvalidStateError struct {
	AppointmentID string
	Status        models.AppointmentStatus
	Op            string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s appointment %s with status %s", e.Op, e.AppointmentID, e.Status)
}

// PersistenceError wraps a failed store mutation. Always fatal; the
// transaction was rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
