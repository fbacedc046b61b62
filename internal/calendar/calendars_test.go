package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dental-clinic-server/internal/config"
)

func newTestResolver() *Resolver {
	return NewResolver(config.CalendarConfig{
		DefaultCalendarID: "primary",
		DoctorCalendars: map[string]string{
			"Dr. Smith": "smith@group.calendar.google.com",
			"Dr. Patel": "patel@group.calendar.google.com",
		},
	})
}

func TestCalendarIDForDoctor(t *testing.T) {
	r := newTestResolver()

	assert.Equal(t, "smith@group.calendar.google.com", r.CalendarIDForDoctor("Dr. Smith"))
	assert.Equal(t, "patel@group.calendar.google.com", r.CalendarIDForDoctor("dr. patel"))
	assert.Equal(t, "primary", r.CalendarIDForDoctor("Dr. Nobody"))
	assert.Equal(t, "primary", r.CalendarIDForDoctor(""))
	assert.Equal(t, "primary", r.CalendarIDForDoctor("   "))
}

func TestCalendarIDForDoctorEnvOverride(t *testing.T) {
	r := newTestResolver()

	t.Setenv("DOCTOR_DR_SMITH_CALENDAR_ID", "override@group.calendar.google.com")
	assert.Equal(t, "override@group.calendar.google.com", r.CalendarIDForDoctor("Dr. Smith"))

	// Override also works for doctors absent from the configured mapping.
	t.Setenv("DOCTOR_DR_GARCIA_LOPEZ_CALENDAR_ID", "garcia@group.calendar.google.com")
	assert.Equal(t, "garcia@group.calendar.google.com", r.CalendarIDForDoctor("Dr. Garcia-Lopez"))
}
