// Package scheduling is the appointment lifecycle core. The relational
// record is always the durable fact; the calendar event is a best-effort
// projection that may lag or be absent. Every operation leaves the store
// valid even if every calendar call fails, and no failed mirror is
// retried in the request path: the sync sweep converges them later.
package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"dental-clinic-server/internal/calendar"
	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/store"
)

// Storage is the persistence contract the engine depends on.
type Storage interface {
	GetPatient(id string) (*models.Patient, error)
	GetDoctor(id uint) (*models.Doctor, error)
	GetService(id uint) (*models.Service, error)
	CreateAppointment(appointment *models.Appointment) error
	GetAppointment(id string) (*models.Appointment, error)
	FindAppointments(filter store.AppointmentFilter) ([]models.Appointment, error)
	FindOverlapping(doctorID uint, start, end time.Time, excludeID string, statuses []models.AppointmentStatus) ([]models.Appointment, error)
	UpdateAppointment(id string, update store.AppointmentUpdate) error
	SetCalendarEvent(id, eventID string, status models.AppointmentStatus) error
	DeleteAppointment(id string) error
	RescheduleSwap(oldID string, replacement *models.Appointment) error
}

// CalendarGateway is the mirroring contract the engine depends on.
type CalendarGateway interface {
	InsertEvent(ctx context.Context, calendarID string, event calendar.Event) (string, string, error)
	GetEvent(ctx context.Context, calendarID, eventID string) (*calendar.Event, error)
	UpdateEvent(ctx context.Context, calendarID, eventID string, event calendar.Event) error
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
	ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time, includeCancelled bool) ([]calendar.Event, error)
}

// CalendarResolver maps a doctor name to a calendar ID.
type CalendarResolver interface {
	CalendarIDForDoctor(doctorName string) string
}

// Engine reconciles store appointments with their mirrored calendar
// events.
type Engine struct {
	store    Storage
	cal      CalendarGateway
	resolver CalendarResolver
	loc      *time.Location
	log      zerolog.Logger
}

// NewEngine creates an Engine.
func NewEngine(storage Storage, cal CalendarGateway, resolver CalendarResolver, loc *time.Location, log zerolog.Logger) *Engine {
	return &Engine{
		store:    storage,
		cal:      cal,
		resolver: resolver,
		loc:      loc,
		log:      log.With().Str("component", "scheduling").Logger(),
	}
}

// CreateRequest carries the fields for a new appointment.
type CreateRequest struct {
	PatientID string
	DoctorID  uint
	ServiceID *uint
	StartTime time.Time
	EndTime   time.Time
	Reason    string
}

// CreateResult reports a create or reschedule outcome. A non-empty
// Warning means partial success: the row is committed but the calendar
// was not updated.
type CreateResult struct {
	AppointmentID   string                   `json:"appointmentId"`
	CalendarEventID string                   `json:"calendarEventId,omitempty"`
	CalendarLink    string                   `json:"calendarLink,omitempty"`
	Status          models.AppointmentStatus `json:"status"`
	Warning         string                   `json:"warning,omitempty"`
}

// Create books a new appointment. The store insert is the durability
// boundary: once validation and the conflict check pass, the row commits
// in PENDING_SYNC and the calendar insert is best-effort afterward.
func (e *Engine) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, &ValidationError{Msg: "end_time must be after start_time"}
	}

	patient, err := e.store.GetPatient(req.PatientID)
	if err != nil {
		return nil, e.lookupError("patient", req.PatientID, err)
	}
	doctor, err := e.store.GetDoctor(req.DoctorID)
	if err != nil {
		return nil, e.lookupError("doctor", strconv.Itoa(int(req.DoctorID)), err)
	}
	var service *models.Service
	if req.ServiceID != nil {
		service, err = e.store.GetService(*req.ServiceID)
		if err != nil {
			return nil, e.lookupError("service", strconv.Itoa(int(*req.ServiceID)), err)
		}
	}

	if err := e.checkConflicts(req.DoctorID, req.StartTime, req.EndTime, ""); err != nil {
		return nil, err
	}

	appointment := &models.Appointment{
		PatientID:  req.PatientID,
		DoctorID:   req.DoctorID,
		ServiceID:  req.ServiceID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		ReasonNote: req.Reason,
		Status:     models.StatusPendingSync,
	}
	if err := e.store.CreateAppointment(appointment); err != nil {
		return nil, &PersistenceError{Op: "create appointment", Err: err}
	}

	result := &CreateResult{
		AppointmentID: appointment.ID,
		Status:        models.StatusPendingSync,
	}
	e.mirrorInsert(ctx, appointment, patient, doctor, service, result)
	return result, nil
}

// RescheduleResult reports a reschedule outcome.
type RescheduleResult struct {
	OldAppointmentID string                   `json:"oldAppointmentId"`
	NewAppointmentID string                   `json:"newAppointmentId"`
	CalendarEventID  string                   `json:"calendarEventId,omitempty"`
	CalendarLink     string                   `json:"calendarLink,omitempty"`
	Status           models.AppointmentStatus `json:"status"`
	Warning          string                   `json:"warning,omitempty"`
}

// Reschedule moves a SCHEDULED appointment to a new slot by creating a
// replacement row and marking the old one RESCHEDULED. Validation and the
// conflict check (excluding the old row itself) run before any mutation,
// so a conflict leaves the old appointment untouched.
func (e *Engine) Reschedule(ctx context.Context, oldID string, req CreateRequest) (*RescheduleResult, error) {
	old, err := e.store.GetAppointment(oldID)
	if err != nil {
		return nil, e.lookupError("appointment", oldID, err)
	}
	if old.Status != models.StatusScheduled {
		return nil, &InvalidStateError{AppointmentID: oldID, Status: old.Status, Op: "reschedule"}
	}

	if !req.EndTime.After(req.StartTime) {
		return nil, &ValidationError{Msg: "end_time must be after start_time"}
	}

	patient, err := e.store.GetPatient(req.PatientID)
	if err != nil {
		return nil, e.lookupError("patient", req.PatientID, err)
	}
	doctor, err := e.store.GetDoctor(req.DoctorID)
	if err != nil {
		return nil, e.lookupError("doctor", strconv.Itoa(int(req.DoctorID)), err)
	}
	var service *models.Service
	if req.ServiceID != nil {
		service, err = e.store.GetService(*req.ServiceID)
		if err != nil {
			return nil, e.lookupError("service", strconv.Itoa(int(*req.ServiceID)), err)
		}
	}

	if err := e.checkConflicts(req.DoctorID, req.StartTime, req.EndTime, oldID); err != nil {
		return nil, err
	}

	replacement := &models.Appointment{
		PatientID:  req.PatientID,
		DoctorID:   req.DoctorID,
		ServiceID:  req.ServiceID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		ReasonNote: req.Reason,
		Status:     models.StatusPendingSync,
	}
	if err := e.store.RescheduleSwap(oldID, replacement); err != nil {
		return nil, &PersistenceError{Op: "reschedule swap", Err: err}
	}

	result := &RescheduleResult{
		OldAppointmentID: oldID,
		NewAppointmentID: replacement.ID,
		Status:           models.StatusPendingSync,
	}

	createResult := &CreateResult{AppointmentID: replacement.ID, Status: models.StatusPendingSync}
	e.mirrorInsert(ctx, replacement, patient, doctor, service, createResult)
	result.CalendarEventID = createResult.CalendarEventID
	result.CalendarLink = createResult.CalendarLink
	result.Status = createResult.Status
	result.Warning = createResult.Warning

	// Best-effort: mark the old event so the calendar UI shows the slot
	// was moved. Failure here is logged only.
	if old.CalendarEventID != "" {
		e.annotateEvent(ctx, old, models.StatusRescheduled)
	}

	return result, nil
}

// UpdateResult reports a field or status update outcome.
type UpdateResult struct {
	Appointment *models.Appointment `json:"appointment"`
	Warning     string              `json:"warning,omitempty"`
}

// Update applies an allow-listed partial update and best-effort mirrors
// time changes (and any status marker) onto the calendar event. Calendar
// failures never undo the store update.
func (e *Engine) Update(ctx context.Context, id string, update store.AppointmentUpdate) (*UpdateResult, error) {
	appointment, err := e.store.GetAppointment(id)
	if err != nil {
		return nil, e.lookupError("appointment", id, err)
	}

	newStart := appointment.StartTime
	newEnd := appointment.EndTime
	if update.StartTime != nil {
		newStart = *update.StartTime
	}
	if update.EndTime != nil {
		newEnd = *update.EndTime
	}
	if !newEnd.After(newStart) {
		return nil, &ValidationError{Msg: "end_time must be after start_time"}
	}

	if err := e.store.UpdateAppointment(id, update); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Resource: "appointment", ID: id}
		}
		return nil, &PersistenceError{Op: "update appointment", Err: err}
	}

	updated, err := e.store.GetAppointment(id)
	if err != nil {
		return nil, &PersistenceError{Op: "reload appointment", Err: err}
	}

	result := &UpdateResult{Appointment: updated}

	if updated.CalendarEventID == "" {
		return result, nil
	}

	timesChanged := update.StartTime != nil || update.EndTime != nil
	if timesChanged {
		if warn := e.mirrorTimes(ctx, updated); warn != "" {
			result.Warning = warn
		}
	}
	if update.Status != nil {
		if warn := e.annotateEvent(ctx, updated, *update.Status); warn != "" && result.Warning == "" {
			result.Warning = warn
		}
	}

	return result, nil
}

// UpdateStatus transitions an appointment to the given status and, for
// statuses with a title marker, best-effort annotates the mirrored event.
func (e *Engine) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) (*UpdateResult, error) {
	return e.Update(ctx, id, store.AppointmentUpdate{Status: &status})
}

// Cancel marks an appointment CANCELLED, keeping the record.
func (e *Engine) Cancel(ctx context.Context, id string) (*UpdateResult, error) {
	return e.UpdateStatus(ctx, id, models.StatusCancelled)
}

// DeleteResult reports a hard delete outcome.
type DeleteResult struct {
	AppointmentID        string `json:"appointmentId"`
	CalendarEventDeleted bool   `json:"calendarEventDeleted"`
	Warning              string `json:"warning,omitempty"`
}

// Delete hard-deletes an appointment. The row delete is the durability
// boundary: once it commits the record is gone, and the mirrored event
// delete is best-effort. A provider NotFound counts as deleted.
func (e *Engine) Delete(ctx context.Context, id string) (*DeleteResult, error) {
	appointment, err := e.store.GetAppointment(id)
	if err != nil {
		return nil, e.lookupError("appointment", id, err)
	}

	// The doctor name is needed for calendar resolution after the row is
	// gone, so resolve it first.
	doctorName := ""
	if doctor, err := e.store.GetDoctor(appointment.DoctorID); err == nil {
		doctorName = doctor.Name
	}

	if err := e.store.DeleteAppointment(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Resource: "appointment", ID: id}
		}
		return nil, &PersistenceError{Op: "delete appointment", Err: err}
	}

	result := &DeleteResult{AppointmentID: id}
	if appointment.CalendarEventID == "" {
		return result, nil
	}

	calendarID := e.resolver.CalendarIDForDoctor(doctorName)
	err = e.cal.DeleteEvent(ctx, calendarID, appointment.CalendarEventID)
	switch {
	case err == nil, calendar.IsNotFound(err):
		result.CalendarEventDeleted = true
	default:
		e.log.Warn().Err(err).Str("appointment_id", id).Str("event_id", appointment.CalendarEventID).
			Msg("appointment deleted but calendar event removal failed")
		result.Warning = fmt.Sprintf("appointment deleted but calendar event removal failed: %v", err)
	}
	return result, nil
}

// BulkDeleteResult reports a bulk delete pass.
type BulkDeleteResult struct {
	Date              string               `json:"date"`
	AppointmentsFound int                  `json:"appointmentsFound"`
	Deleted           int                  `json:"deleted"`
	Failed            int                  `json:"failed"`
	CalendarDeleted   int                  `json:"calendarDeleted"`
	CalendarFailed    int                  `json:"calendarFailed"`
	DeletedIDs        []string             `json:"deletedIds,omitempty"`
	FailedIDs         []string             `json:"failedIds,omitempty"`
	Candidates        []models.Appointment `json:"candidates,omitempty"`
	DryRun            bool                 `json:"dryRun"`
}

// BulkDeleteByDate deletes every appointment starting on the given
// calendar day (clinic timezone). In dry-run mode it returns the
// candidates with zero mutation. Each appointment is deleted
// independently; one failure never blocks the rest.
func (e *Engine) BulkDeleteByDate(ctx context.Context, date string, dryRun bool) (*BulkDeleteResult, error) {
	day, err := time.ParseInLocation("2006-01-02", date, e.loc)
	if err != nil {
		return nil, &ValidationError{Msg: "invalid date format, use YYYY-MM-DD"}
	}

	// AddDate keeps the window correct on DST transition days, where the
	// local day is not 24 hours.
	appointments, err := e.store.FindAppointments(store.AppointmentFilter{
		From: day,
		To:   day.AddDate(0, 0, 1),
	})
	if err != nil {
		return nil, &PersistenceError{Op: "find appointments by date", Err: err}
	}

	result := &BulkDeleteResult{
		Date:              date,
		AppointmentsFound: len(appointments),
		DryRun:            dryRun,
	}
	if dryRun {
		result.Candidates = appointments
		return result, nil
	}

	for _, appointment := range appointments {
		deleted, err := e.Delete(ctx, appointment.ID)
		if err != nil {
			result.Failed++
			result.FailedIDs = append(result.FailedIDs, appointment.ID)
			e.log.Error().Err(err).Str("appointment_id", appointment.ID).Msg("bulk delete: appointment delete failed")
			continue
		}
		result.Deleted++
		result.DeletedIDs = append(result.DeletedIDs, appointment.ID)
		if appointment.CalendarEventID != "" {
			if deleted.CalendarEventDeleted {
				result.CalendarDeleted++
			} else {
				result.CalendarFailed++
			}
		}
	}
	return result, nil
}

// checkConflicts fails with ConflictError when the doctor has overlapping
// active appointments in [start, end). The overlap query and the caller's
// subsequent insert are not serialized; two concurrent creates can both
// pass, which is accepted at clinic-booking concurrency.
func (e *Engine) checkConflicts(doctorID uint, start, end time.Time, excludeID string) error {
	conflicts, err := e.store.FindOverlapping(doctorID, start, end, excludeID, models.ActiveStatuses())
	if err != nil {
		return &PersistenceError{Op: "conflict check", Err: err}
	}
	if len(conflicts) == 0 {
		return nil
	}

	summaries := make([]ConflictSummary, 0, len(conflicts))
	for _, apt := range conflicts {
		summaries = append(summaries, ConflictSummary{
			AppointmentID: apt.ID,
			StartTime:     apt.StartTime,
			EndTime:       apt.EndTime,
			PatientID:     apt.PatientID,
			Status:        apt.Status,
		})
	}
	e.log.Warn().Uint("doctor_id", doctorID).Time("start", start).Time("end", end).
		Int("conflicts", len(summaries)).Msg("appointment conflict detected")
	return &ConflictError{DoctorID: doctorID, StartTime: start, EndTime: end, Conflicts: summaries}
}

// mirrorInsert tries to create the calendar event for a freshly committed
// appointment. On success the row moves to SCHEDULED with the event ID;
// on any failure the row stays PENDING_SYNC and the result carries a
// warning instead of an error.
func (e *Engine) mirrorInsert(ctx context.Context, appointment *models.Appointment, patient *models.Patient, doctor *models.Doctor, service *models.Service, result *CreateResult) {
	serviceName := "Appointment"
	serviceID := "0"
	if service != nil {
		serviceName = service.Name
		serviceID = strconv.Itoa(int(service.ID))
	}

	payload := calendar.Encode(
		appointment.ID,
		patient.FullName(),
		serviceName,
		appointment.PatientID,
		strconv.Itoa(int(appointment.DoctorID)),
		serviceID,
		appointment.ReasonNote,
	)

	calendarID := e.resolver.CalendarIDForDoctor(doctor.Name)
	eventID, link, err := e.cal.InsertEvent(ctx, calendarID, calendar.Event{
		Title:       payload.Title,
		Description: payload.Description,
		Start:       appointment.StartTime,
		End:         appointment.EndTime,
	})
	if err != nil {
		e.log.Warn().Err(err).Str("appointment_id", appointment.ID).
			Msg("appointment saved but calendar sync failed, left PENDING_SYNC for the sweep")
		result.Warning = fmt.Sprintf("appointment saved but calendar sync failed: %v", err)
		return
	}

	if err := e.store.SetCalendarEvent(appointment.ID, eventID, models.StatusScheduled); err != nil {
		// The event exists but the row does not reference it; the sweep's
		// orphan pass removes it and recreates from PENDING_SYNC.
		e.log.Error().Err(err).Str("appointment_id", appointment.ID).Str("event_id", eventID).
			Msg("failed to record calendar event id")
		result.Warning = fmt.Sprintf("calendar event created but could not be recorded: %v", err)
		return
	}

	appointment.CalendarEventID = eventID
	appointment.Status = models.StatusScheduled
	result.CalendarEventID = eventID
	result.CalendarLink = link
	result.Status = models.StatusScheduled
}

// mirrorTimes pushes changed start/end times to the mirrored event,
// preserving its title and description. Returns a warning string on
// failure.
func (e *Engine) mirrorTimes(ctx context.Context, appointment *models.Appointment) string {
	calendarID := e.calendarIDFor(appointment)
	event, err := e.cal.GetEvent(ctx, calendarID, appointment.CalendarEventID)
	if err != nil {
		e.log.Warn().Err(err).Str("appointment_id", appointment.ID).Msg("failed to fetch calendar event for time update")
		return fmt.Sprintf("store updated but calendar event fetch failed: %v", err)
	}

	event.Start = appointment.StartTime
	event.End = appointment.EndTime
	if err := e.cal.UpdateEvent(ctx, calendarID, appointment.CalendarEventID, *event); err != nil {
		e.log.Warn().Err(err).Str("appointment_id", appointment.ID).Msg("failed to update calendar event times")
		return fmt.Sprintf("store updated but calendar event update failed: %v", err)
	}
	return ""
}

// annotateEvent rewrites the mirrored event's title with the marker for
// the given status. Statuses without a marker are a no-op. Returns a
// warning string on failure.
func (e *Engine) annotateEvent(ctx context.Context, appointment *models.Appointment, status models.AppointmentStatus) string {
	if !calendar.HasMarker(status) {
		return ""
	}

	calendarID := e.calendarIDFor(appointment)
	event, err := e.cal.GetEvent(ctx, calendarID, appointment.CalendarEventID)
	if err != nil {
		e.log.Warn().Err(err).Str("appointment_id", appointment.ID).Str("status", string(status)).
			Msg("failed to fetch calendar event for annotation")
		return fmt.Sprintf("store updated but calendar annotation failed: %v", err)
	}

	event.Title = calendar.AnnotateTitle(event.Title, status)
	if err := e.cal.UpdateEvent(ctx, calendarID, appointment.CalendarEventID, *event); err != nil {
		e.log.Warn().Err(err).Str("appointment_id", appointment.ID).Str("status", string(status)).
			Msg("failed to annotate calendar event")
		return fmt.Sprintf("store updated but calendar annotation failed: %v", err)
	}
	return ""
}

func (e *Engine) calendarIDFor(appointment *models.Appointment) string {
	doctorName := ""
	if doctor, err := e.store.GetDoctor(appointment.DoctorID); err == nil {
		doctorName = doctor.Name
	}
	return e.resolver.CalendarIDForDoctor(doctorName)
}

func (e *Engine) lookupError(resource, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return &PersistenceError{Op: "get " + resource, Err: err}
}
