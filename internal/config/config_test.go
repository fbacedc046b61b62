package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "America/Edmonton", cfg.ClinicTimezone)
	assert.Equal(t, 30*time.Second, cfg.Calendar.CallTimeout)
	assert.Equal(t, 300*time.Second, cfg.Calendar.SessionTTL)
	assert.Equal(t, "primary", cfg.Calendar.DefaultCalendarID)
	assert.Contains(t, cfg.Database.DSN, "dental_clinic")
	// Matched-rows counting: without it a no-op update reports zero
	// affected rows and the store would misread an existing row as gone.
	assert.Contains(t, cfg.Database.DSN, "clientFoundRows=true")
	assert.Equal(t, "America/Edmonton", cfg.Location().String())
}

func TestLoadConfigRejectsBadTimezone(t *testing.T) {
	t.Setenv("CLINIC_TIMEZONE", "Mars/Olympus_Mons")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRejectsBadTimeout(t *testing.T) {
	t.Setenv("CALENDAR_TIMEOUT_SECONDS", "soon")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadDoctorCalendars(t *testing.T) {
	t.Setenv("DOCTOR_CALENDARS", "Dr. Smith=smith@group.calendar.google.com, Dr. Patel = patel@group.calendar.google.com,malformed,=noname")

	mapping := loadDoctorCalendars()
	assert.Equal(t, map[string]string{
		"Dr. Smith": "smith@group.calendar.google.com",
		"Dr. Patel": "patel@group.calendar.google.com",
	}, mapping)
}
