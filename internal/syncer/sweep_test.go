package syncer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dental-clinic-server/internal/calendar"
	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/store"
)

type fakeStore struct {
	patients     map[string]*models.Patient
	doctors      map[uint]*models.Doctor
	services     map[uint]*models.Service
	appointments map[string]*models.Appointment

	failSetEvent bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		patients:     map[string]*models.Patient{},
		doctors:      map[uint]*models.Doctor{},
		services:     map[uint]*models.Service{},
		appointments: map[string]*models.Appointment{},
	}
}

func (f *fakeStore) FindAppointmentsByStatuses(statuses []models.AppointmentStatus) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range f.appointments {
		for _, s := range statuses {
			if a.Status == s {
				out = append(out, *a)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) FindAppointmentByEventID(eventID string) (*models.Appointment, error) {
	for _, a := range f.appointments {
		if a.CalendarEventID == eventID {
			clone := *a
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) GetPatient(id string) (*models.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) GetDoctor(id uint) (*models.Doctor, error) {
	d, ok := f.doctors[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return d, nil
}

func (f *fakeStore) GetService(id uint) (*models.Service, error) {
	s, ok := f.services[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) ListDoctors(activeOnly bool) ([]models.Doctor, error) {
	var out []models.Doctor
	for _, d := range f.doctors {
		if activeOnly && !d.IsActive {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeStore) SetCalendarEvent(id, eventID string, status models.AppointmentStatus) error {
	if f.failSetEvent {
		return errors.New("update failed")
	}
	a, ok := f.appointments[id]
	if !ok {
		return store.ErrNotFound
	}
	a.CalendarEventID = eventID
	a.Status = status
	return nil
}

type fakeCalendar struct {
	events map[string]*calendar.Event

	nextID    int
	insertErr error
	getErr    error
	updateErr error
	deleteErr error
	listErr   error
	inserted  int
	updated   int
	deleted   int
}

func newFakeCalendar() *fakeCalendar {
	return &fakeCalendar{events: map[string]*calendar.Event{}}
}

func (f *fakeCalendar) InsertEvent(ctx context.Context, calendarID string, event calendar.Event) (string, string, error) {
	if f.insertErr != nil {
		return "", "", f.insertErr
	}
	f.nextID++
	f.inserted++
	id := fmt.Sprintf("evt-%d", f.nextID)
	event.ID = id
	f.events[id] = &event
	return id, "https://calendar.example/" + id, nil
}

func (f *fakeCalendar) GetEvent(ctx context.Context, calendarID, eventID string) (*calendar.Event, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	e, ok := f.events[eventID]
	if !ok {
		return nil, calendar.ErrEventNotFound
	}
	clone := *e
	return &clone, nil
}

func (f *fakeCalendar) UpdateEvent(ctx context.Context, calendarID, eventID string, event calendar.Event) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.events[eventID]; !ok {
		return calendar.ErrEventNotFound
	}
	f.updated++
	event.ID = eventID
	clone := event
	f.events[eventID] = &clone
	return nil
}

func (f *fakeCalendar) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.events[eventID]; !ok {
		return calendar.ErrEventNotFound
	}
	f.deleted++
	delete(f.events, eventID)
	return nil
}

func (f *fakeCalendar) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time, includeCancelled bool) ([]calendar.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []calendar.Event
	for _, e := range f.events {
		if e.Start.Before(timeMin) || e.Start.After(timeMax) {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

type fakeResolver struct{}

func (fakeResolver) CalendarIDForDoctor(string) string { return "clinic@group.calendar.google.com" }

func newTestSweep(t *testing.T) (*Sweep, *fakeStore, *fakeCalendar) {
	t.Helper()
	st := newFakeStore()
	cal := newFakeCalendar()
	st.patients["pat-1"] = &models.Patient{BaseModel: models.BaseModel{ID: "pat-1"}, FirstName: "Jane", LastName: "Doe"}
	st.doctors[1] = &models.Doctor{ID: 1, Name: "Dr. Smith", IsActive: true}
	st.services[3] = &models.Service{ID: 3, Name: "Routine Cleaning"}
	return New(st, cal, fakeResolver{}, zerolog.Nop()), st, cal
}

// futureAt returns a time tomorrow at the given hour, inside the orphan
// pass window.
func futureAt(hour int) time.Time {
	day := time.Now().Add(24 * time.Hour)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.UTC)
}

func addAppointment(st *fakeStore, id string, status models.AppointmentStatus, eventID string, hour int) *models.Appointment {
	sid := uint(3)
	a := &models.Appointment{
		BaseModel:       models.BaseModel{ID: id},
		PatientID:       "pat-1",
		DoctorID:        1,
		ServiceID:       &sid,
		StartTime:       futureAt(hour),
		EndTime:         futureAt(hour + 1),
		Status:          status,
		CalendarEventID: eventID,
	}
	st.appointments[id] = a
	return a
}

func TestSweepCreatesMissingEvents(t *testing.T) {
	sweep, st, cal := newTestSweep(t)
	addAppointment(st, "apt-1", models.StatusPendingSync, "", 9)

	summary, err := sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Appointments)
	assert.Equal(t, 1, summary.Created)
	assert.Zero(t, summary.Failures)

	saved := st.appointments["apt-1"]
	assert.Equal(t, models.StatusScheduled, saved.Status)
	require.NotEmpty(t, saved.CalendarEventID)

	event := cal.events[saved.CalendarEventID]
	require.NotNil(t, event)
	assert.Equal(t, "APT_Jane-Doe_Routine-Cleaning", event.Title)
	fields := calendar.Decode(event.Description)
	assert.Equal(t, "apt-1", fields.AppointmentID)
}

func TestSweepRecreatesDeletedEvents(t *testing.T) {
	sweep, st, _ := newTestSweep(t)
	// Row references an event the provider no longer has.
	addAppointment(st, "apt-1", models.StatusScheduled, "evt-gone", 9)

	summary, err := sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Zero(t, summary.Failures)
	assert.NotEqual(t, "evt-gone", st.appointments["apt-1"].CalendarEventID)
}

func TestSweepUpdatesDriftedEvents(t *testing.T) {
	sweep, st, cal := newTestSweep(t)
	a := addAppointment(st, "apt-1", models.StatusScheduled, "evt-1", 9)
	cal.events["evt-1"] = &calendar.Event{
		ID:          "evt-1",
		Title:       "APT_Jane-Doe_Routine-Cleaning",
		Description: "APPOINTMENT_ID:apt-1\nPATIENT_ID:pat-1\nDOCTOR_ID:1\nSERVICE_ID:3\nREASON:",
		Start:       a.StartTime.Add(time.Hour), // drifted
		End:         a.EndTime.Add(time.Hour),
	}

	summary, err := sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	assert.Zero(t, summary.Created)

	event := cal.events["evt-1"]
	assert.True(t, event.Start.Equal(a.StartTime))
	assert.True(t, event.End.Equal(a.EndTime))
}

func TestSweepSecondRunIsIdempotent(t *testing.T) {
	sweep, st, _ := newTestSweep(t)
	addAppointment(st, "apt-1", models.StatusPendingSync, "", 9)
	addAppointment(st, "apt-2", models.StatusPendingSync, "", 11)

	first, err := sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)

	second, err := sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.Created)
	assert.Zero(t, second.Updated)
	assert.Zero(t, second.OrphansDeleted)
	assert.Equal(t, 2, second.Synced)
}

func TestSweepPreservesStatusMarkers(t *testing.T) {
	sweep, st, cal := newTestSweep(t)
	a := addAppointment(st, "apt-1", models.StatusConfirmed, "evt-1", 9)
	cal.events["evt-1"] = &calendar.Event{
		ID:    "evt-1",
		Title: "[CONFIRMED] APT_Jane-Doe_Routine-Cleaning",
		Start: a.StartTime,
		End:   a.EndTime,
	}

	summary, err := sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Updated)
	assert.Equal(t, 1, summary.Synced)
	assert.Equal(t, "[CONFIRMED] APT_Jane-Doe_Routine-Cleaning", cal.events["evt-1"].Title)
}

func TestSweepSkipsBrokenReferences(t *testing.T) {
	sweep, st, _ := newTestSweep(t)
	a := addAppointment(st, "apt-1", models.StatusPendingSync, "", 9)
	a.PatientID = "pat-missing"
	b := addAppointment(st, "apt-2", models.StatusPendingSync, "", 11)
	b.DoctorID = 99

	summary, err := sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Skipped)
	assert.Zero(t, summary.Created)
	assert.Zero(t, summary.Failures)
}

func TestSweepDeletesOrphans(t *testing.T) {
	sweep, st, cal := newTestSweep(t)
	a := addAppointment(st, "apt-1", models.StatusScheduled, "evt-1", 9)
	cal.events["evt-1"] = &calendar.Event{
		ID: "evt-1", Title: "APT_Jane-Doe_Routine-Cleaning",
		Description: "APPOINTMENT_ID:apt-1\nPATIENT_ID:pat-1\nDOCTOR_ID:1\nSERVICE_ID:3\nREASON:",
		Start:       a.StartTime, End: a.EndTime,
	}
	// No appointment references this event.
	cal.events["evt-orphan"] = &calendar.Event{
		ID: "evt-orphan", Title: "APT_Ghost_Checkup",
		Start: futureAt(14), End: futureAt(15),
	}

	summary, err := sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.OrphansDeleted)
	assert.NotContains(t, cal.events, "evt-orphan")
	assert.Contains(t, cal.events, "evt-1")
}

func TestSweepFailureIsolation(t *testing.T) {
	sweep, st, cal := newTestSweep(t)
	addAppointment(st, "apt-1", models.StatusScheduled, "evt-1", 9)
	addAppointment(st, "apt-2", models.StatusPendingSync, "", 11)
	cal.getErr = errors.New("provider flaking")

	summary, err := sweep.Run(context.Background())
	require.NoError(t, err)
	// The fetch failed but the create still went through.
	assert.Equal(t, 1, summary.Failures)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, models.StatusScheduled, st.appointments["apt-2"].Status)
}

func TestSweepInsertFailureCountsPerItem(t *testing.T) {
	sweep, st, cal := newTestSweep(t)
	addAppointment(st, "apt-1", models.StatusPendingSync, "", 9)
	addAppointment(st, "apt-2", models.StatusPendingSync, "", 11)
	cal.insertErr = errors.New("provider down")

	summary, err := sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Failures)
	assert.Zero(t, summary.Created)
	assert.Equal(t, models.StatusPendingSync, st.appointments["apt-1"].Status)
	assert.Equal(t, models.StatusPendingSync, st.appointments["apt-2"].Status)
}
