package calendar

import (
	"os"
	"strings"

	"dental-clinic-server/internal/config"
)

// Resolver maps doctor names to calendar IDs. An environment override of
// the form DOCTOR_<NAME>_CALENDAR_ID wins over the configured mapping;
// unknown or empty doctor names fall back to the default calendar.
type Resolver struct {
	calendars map[string]string
	defaultID string
}

// NewResolver creates a Resolver from configuration.
func NewResolver(cfg config.CalendarConfig) *Resolver {
	return &Resolver{
		calendars: cfg.DoctorCalendars,
		defaultID: cfg.DefaultCalendarID,
	}
}

// CalendarIDForDoctor returns the calendar ID for a doctor name.
// Lookup in the configured mapping is case-insensitive.
func (r *Resolver) CalendarIDForDoctor(doctorName string) string {
	doctorName = strings.TrimSpace(doctorName)
	if doctorName == "" {
		return r.defaultID
	}

	// Environment override wins, e.g. DOCTOR_DR_SMITH_CALENDAR_ID.
	if id := os.Getenv("DOCTOR_" + envKey(doctorName) + "_CALENDAR_ID"); id != "" {
		return id
	}

	for name, id := range r.calendars {
		if strings.EqualFold(name, doctorName) {
			return id
		}
	}

	return r.defaultID
}

func envKey(doctorName string) string {
	key := strings.ToUpper(doctorName)
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, ".", "")
	key = strings.ReplaceAll(key, "-", "_")
	return key
}
