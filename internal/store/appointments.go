package store

import (
	"time"

	"gorm.io/gorm"

	"dental-clinic-server/internal/models"
)

// AppointmentFilter narrows FindAppointments. Zero values mean "any".
// From and To bound the start time as a half-open interval [From, To).
type AppointmentFilter struct {
	PatientID string
	DoctorID  uint
	Status    models.AppointmentStatus
	From      time.Time
	To        time.Time
}

// AppointmentUpdate is the allow-listed partial update for appointments.
// Only the fields named here can be changed through UpdateAppointment;
// nil pointers leave the column untouched.
type AppointmentUpdate struct {
	StartTime  *time.Time
	EndTime    *time.Time
	ReasonNote *string
	ServiceID  *uint
	Status     *models.AppointmentStatus
}

func (u AppointmentUpdate) changes() map[string]interface{} {
	changes := make(map[string]interface{})
	if u.StartTime != nil {
		changes["start_time"] = *u.StartTime
	}
	if u.EndTime != nil {
		changes["end_time"] = *u.EndTime
	}
	if u.ReasonNote != nil {
		changes["reason_note"] = *u.ReasonNote
	}
	if u.ServiceID != nil {
		changes["service_id"] = *u.ServiceID
	}
	if u.Status != nil {
		changes["status"] = *u.Status
	}
	return changes
}

// CreateAppointment inserts a new appointment row and fills in its ID.
func (s *Store) CreateAppointment(appointment *models.Appointment) error {
	return s.db.Create(appointment).Error
}

// GetAppointment fetches one appointment by ID.
func (s *Store) GetAppointment(id string) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := s.db.First(&appointment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}

// FindAppointments lists appointments matching the filter, ordered by
// start time.
func (s *Store) FindAppointments(filter AppointmentFilter) ([]models.Appointment, error) {
	query := s.db.Order("start_time asc")
	if filter.PatientID != "" {
		query = query.Where("patient_id = ?", filter.PatientID)
	}
	if filter.DoctorID != 0 {
		query = query.Where("doctor_id = ?", filter.DoctorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if !filter.From.IsZero() {
		query = query.Where("start_time >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("start_time < ?", filter.To)
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

// FindOverlapping returns the doctor's appointments in the given statuses
// whose [start, end) interval overlaps [start, end). excludeID, when
// non-empty, drops that appointment from the result (used by reschedule
// to ignore the appointment being moved).
func (s *Store) FindOverlapping(doctorID uint, start, end time.Time, excludeID string, statuses []models.AppointmentStatus) ([]models.Appointment, error) {
	query := s.db.
		Where("doctor_id = ?", doctorID).
		Where("status IN ?", statuses).
		// Half-open interval overlap: A.start < B.end AND A.end > B.start.
		Where("start_time < ?", end).
		Where("end_time > ?", start)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

// FindAppointmentsByStatuses lists all appointments in any of the given
// statuses. Used by the sync sweep.
func (s *Store) FindAppointmentsByStatuses(statuses []models.AppointmentStatus) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := s.db.Where("status IN ?", statuses).Order("start_time asc").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// FindAppointmentByEventID looks an appointment up by its mirrored
// calendar event ID.
func (s *Store) FindAppointmentByEventID(eventID string) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := s.db.First(&appointment, "calendar_event_id = ?", eventID).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}

// UpdateAppointment applies an allow-listed partial update.
// RowsAffected counts matched rows (clientFoundRows in the DSN), so 0
// means the row does not exist rather than "nothing changed".
func (s *Store) UpdateAppointment(id string, update AppointmentUpdate) error {
	changes := update.changes()
	if len(changes) == 0 {
		return nil
	}
	result := s.db.Model(&models.Appointment{}).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetCalendarEvent records the mirrored event ID and moves the
// appointment into the given status, typically SCHEDULED after a
// successful insert.
func (s *Store) SetCalendarEvent(id, eventID string, status models.AppointmentStatus) error {
	return s.db.Model(&models.Appointment{}).Where("id = ?", id).
		Updates(map[string]interface{}{"calendar_event_id": eventID, "status": status}).Error
}

// DeleteAppointment hard-deletes an appointment row.
func (s *Store) DeleteAppointment(id string) error {
	result := s.db.Delete(&models.Appointment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RescheduleSwap inserts the replacement appointment and marks the old
// one RESCHEDULED in a single transaction, so a failure leaves neither
// row changed.
func (s *Store) RescheduleSwap(oldID string, replacement *models.Appointment) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(replacement).Error; err != nil {
			return err
		}
		return tx.Model(&models.Appointment{}).Where("id = ?", oldID).
			Update("status", models.StatusRescheduled).Error
	})
}
