// Package syncer drives the calendar into agreement with the store. The
// store is ground truth: the sweep creates missing events, updates
// drifted ones, and deletes orphans that have no backing appointment. It
// is idempotent and safe to run alongside request traffic; it takes no
// locks against the engine.
package syncer

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"dental-clinic-server/internal/calendar"
	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/store"
)

// orphanWindow bounds the orphan pass to a future horizon.
const orphanWindow = 365 * 24 * time.Hour

// Storage is the persistence contract the sweep depends on.
type Storage interface {
	FindAppointmentsByStatuses(statuses []models.AppointmentStatus) ([]models.Appointment, error)
	FindAppointmentByEventID(eventID string) (*models.Appointment, error)
	GetPatient(id string) (*models.Patient, error)
	GetDoctor(id uint) (*models.Doctor, error)
	GetService(id uint) (*models.Service, error)
	ListDoctors(activeOnly bool) ([]models.Doctor, error)
	SetCalendarEvent(id, eventID string, status models.AppointmentStatus) error
}

// CalendarGateway is the provider contract the sweep depends on.
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

// Summary counts what one sweep did. No individual failure aborts the
// rest of the sweep.
type Summary struct {
	Appointments   int `json:"appointments"`
	Synced         int `json:"synced"`
	Created        int `json:"created"`
	Updated        int `json:"updated"`
	OrphansDeleted int `json:"orphansDeleted"`
	Skipped        int `json:"skipped"`
	Failures       int `json:"failures"`
}

// Sweep is the batch reconciliation job.
type Sweep struct {
	store    Storage
	cal      CalendarGateway
	resolver CalendarResolver
	log      zerolog.Logger
}

// New creates a Sweep.
func New(storage Storage, cal CalendarGateway, resolver CalendarResolver, log zerolog.Logger) *Sweep {
	return &Sweep{
		store:    storage,
		cal:      cal,
		resolver: resolver,
		log:      log.With().Str("component", "syncer").Logger(),
	}
}

type pendingCreate struct {
	appointment models.Appointment
	calendarID  string
	event       calendar.Event
}

// Run executes one full sweep and returns its summary. It only fails
// outright when the active appointments cannot be loaded at all.
func (s *Sweep) Run(ctx context.Context) (*Summary, error) {
	appointments, err := s.store.FindAppointmentsByStatuses(models.SyncStatuses())
	if err != nil {
		return nil, err
	}

	summary := &Summary{Appointments: len(appointments)}
	s.log.Info().Int("appointments", len(appointments)).Msg("sweep started")

	var toCreate []pendingCreate

	for _, appointment := range appointments {
		calendarID, event, ok := s.expectedEvent(appointment, summary)
		if !ok {
			continue
		}

		if appointment.CalendarEventID == "" {
			toCreate = append(toCreate, pendingCreate{appointment: appointment, calendarID: calendarID, event: event})
			continue
		}

		existing, err := s.cal.GetEvent(ctx, calendarID, appointment.CalendarEventID)
		if err != nil {
			if calendar.IsNotFound(err) {
				s.log.Info().Str("appointment_id", appointment.ID).Msg("calendar event missing, will recreate")
				toCreate = append(toCreate, pendingCreate{appointment: appointment, calendarID: calendarID, event: event})
				continue
			}
			summary.Failures++
			s.log.Error().Err(err).Str("appointment_id", appointment.ID).Msg("failed to fetch calendar event")
			continue
		}

		if s.drifted(existing, event) {
			if err := s.cal.UpdateEvent(ctx, calendarID, appointment.CalendarEventID, event); err != nil {
				summary.Failures++
				s.log.Error().Err(err).Str("appointment_id", appointment.ID).Msg("failed to update drifted calendar event")
				continue
			}
			summary.Updated++
			s.log.Info().Str("appointment_id", appointment.ID).Msg("calendar event updated")
		} else {
			summary.Synced++
		}
	}

	// Create missing events, committing the event ID per item so one
	// failure does not abort the batch.
	for _, pending := range toCreate {
		eventID, _, err := s.cal.InsertEvent(ctx, pending.calendarID, pending.event)
		if err != nil {
			summary.Failures++
			s.log.Error().Err(err).Str("appointment_id", pending.appointment.ID).Msg("failed to create calendar event")
			continue
		}
		if err := s.store.SetCalendarEvent(pending.appointment.ID, eventID, models.StatusScheduled); err != nil {
			summary.Failures++
			s.log.Error().Err(err).Str("appointment_id", pending.appointment.ID).Str("event_id", eventID).
				Msg("created calendar event but failed to record it")
			continue
		}
		summary.Created++
		s.log.Info().Str("appointment_id", pending.appointment.ID).Str("event_id", eventID).Msg("calendar event created")
	}

	s.deleteOrphans(ctx, summary)

	s.log.Info().
		Int("synced", summary.Synced).
		Int("created", summary.Created).
		Int("updated", summary.Updated).
		Int("orphans_deleted", summary.OrphansDeleted).
		Int("skipped", summary.Skipped).
		Int("failures", summary.Failures).
		Msg("sweep finished")
	return summary, nil
}

// expectedEvent builds the event an appointment should be mirrored as.
// Appointments referencing missing patients or doctors are skipped, not
// failed; the sweep cannot repair broken references.
func (s *Sweep) expectedEvent(appointment models.Appointment, summary *Summary) (string, calendar.Event, bool) {
	doctor, err := s.store.GetDoctor(appointment.DoctorID)
	if err != nil {
		summary.Skipped++
		s.log.Warn().Str("appointment_id", appointment.ID).Uint("doctor_id", appointment.DoctorID).
			Msg("appointment references missing doctor, skipping")
		return "", calendar.Event{}, false
	}
	patient, err := s.store.GetPatient(appointment.PatientID)
	if err != nil {
		summary.Skipped++
		s.log.Warn().Str("appointment_id", appointment.ID).Str("patient_id", appointment.PatientID).
			Msg("appointment references missing patient, skipping")
		return "", calendar.Event{}, false
	}

	serviceName := "Appointment"
	serviceID := "0"
	if appointment.ServiceID != nil {
		if service, err := s.store.GetService(*appointment.ServiceID); err == nil {
			serviceName = service.Name
			serviceID = strconv.Itoa(int(service.ID))
		}
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

	// An annotated status keeps its marker, otherwise re-running the
	// sweep would flip annotated titles back and forth.
	title := payload.Title
	if calendar.HasMarker(appointment.Status) {
		title = calendar.AnnotateTitle(title, appointment.Status)
	}

	event := calendar.Event{
		Title:       title,
		Description: payload.Description,
		Start:       appointment.StartTime,
		End:         appointment.EndTime,
	}
	return s.resolver.CalendarIDForDoctor(doctor.Name), event, true
}

func (s *Sweep) drifted(existing *calendar.Event, expected calendar.Event) bool {
	return !existing.Start.Equal(expected.Start) ||
		!existing.End.Equal(expected.End) ||
		existing.Title != expected.Title
}

// deleteOrphans removes calendar events in the future window that no
// store appointment references. Provider-cancelled events are left alone.
func (s *Sweep) deleteOrphans(ctx context.Context, summary *Summary) {
	doctors, err := s.store.ListDoctors(true)
	if err != nil {
		summary.Failures++
		s.log.Error().Err(err).Msg("orphan pass: failed to list doctors")
		return
	}

	now := time.Now()
	seen := make(map[string]bool)

	for _, doctor := range doctors {
		calendarID := s.resolver.CalendarIDForDoctor(doctor.Name)
		if seen[calendarID] {
			continue
		}
		seen[calendarID] = true

		events, err := s.cal.ListEvents(ctx, calendarID, now, now.Add(orphanWindow), false)
		if err != nil {
			summary.Failures++
			s.log.Error().Err(err).Str("calendar_id", calendarID).Str("doctor", doctor.Name).
				Msg("orphan pass: failed to list events")
			continue
		}

		for _, event := range events {
			if event.Cancelled {
				continue
			}
			_, err := s.store.FindAppointmentByEventID(event.ID)
			if err == nil {
				continue
			}
			if !errors.Is(err, store.ErrNotFound) {
				summary.Failures++
				s.log.Error().Err(err).Str("event_id", event.ID).Msg("orphan pass: appointment lookup failed")
				continue
			}

			if err := s.cal.DeleteEvent(ctx, calendarID, event.ID); err != nil && !calendar.IsNotFound(err) {
				summary.Failures++
				s.log.Error().Err(err).Str("event_id", event.ID).Msg("orphan pass: failed to delete orphaned event")
				continue
			}
			summary.OrphansDeleted++
			s.log.Info().Str("event_id", event.ID).Str("calendar_id", calendarID).Msg("orphaned calendar event deleted")
		}
	}
}
