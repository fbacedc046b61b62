package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	Port        string
	Origin      string
	Environment string
	Database    DatabaseConfig
	Calendar    CalendarConfig
	// ClinicTimezone is the fixed timezone all calendar mirroring is
	// normalized to (e.g. "America/Edmonton").
	ClinicTimezone string
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// CalendarConfig holds Google Calendar credential and mapping configuration
type CalendarConfig struct {
	// ServiceAccountJSON is a pre-provisioned service credential
	// (highest priority, never needs refresh).
	ServiceAccountJSON string
	// TokenJSON is a user-delegated OAuth token that is refreshed with
	// ClientID/ClientSecret when it expires.
	TokenJSON    string
	ClientID     string
	ClientSecret string
	// TokenFile is the fallback token location for local development.
	TokenFile string

	CallTimeout       time.Duration
	SessionTTL        time.Duration
	DefaultCalendarID string
	// DoctorCalendars maps doctor names to their calendar IDs. Entries can
	// be overridden per doctor with DOCTOR_<NAME>_CALENDAR_ID.
	DoctorCalendars map[string]string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load database configuration
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "dental_clinic"),
	}

	// Build DSN (Data Source Name) for MySQL connection.
	// clientFoundRows makes affected-rows counts report matched rows, not
	// changed rows; the store relies on that to tell "row missing" apart
	// from "update was a no-op".
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	callTimeoutSec, err := strconv.Atoi(getEnv("CALENDAR_TIMEOUT_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid CALENDAR_TIMEOUT_SECONDS: %w", err)
	}

	sessionTTLSec, err := strconv.Atoi(getEnv("CALENDAR_SESSION_TTL_SECONDS", "300"))
	if err != nil {
		return nil, fmt.Errorf("invalid CALENDAR_SESSION_TTL_SECONDS: %w", err)
	}

	calendarConfig := CalendarConfig{
		ServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		TokenJSON:          getEnv("GOOGLE_TOKEN_JSON", ""),
		ClientID:           getEnv("GOOGLE_CLIENT_ID", ""),
		ClientSecret:       getEnv("GOOGLE_CLIENT_SECRET", ""),
		TokenFile:          getEnv("GOOGLE_TOKEN_FILE", "token.json"),
		CallTimeout:        time.Duration(callTimeoutSec) * time.Second,
		SessionTTL:         time.Duration(sessionTTLSec) * time.Second,
		DefaultCalendarID:  getEnv("DEFAULT_CALENDAR_ID", "primary"),
		DoctorCalendars:    loadDoctorCalendars(),
	}

	tz := getEnv("CLINIC_TIMEZONE", "America/Edmonton")
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid CLINIC_TIMEZONE %q: %w", tz, err)
	}

	return &Config{
		Port:           getEnv("PORT", "3001"),
		Origin:         getEnv("ORIGIN", "http://localhost:4200"),
		Environment:    getEnv("APP_ENV", "development"),
		Database:       dbConfig,
		Calendar:       calendarConfig,
		ClinicTimezone: tz,
	}, nil
}

// Location returns the clinic timezone as a *time.Location. LoadConfig
// already validated the zone name.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ClinicTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// loadDoctorCalendars reads the static doctor calendar mapping from
// DOCTOR_CALENDARS ("Dr. Smith=<calendar id>,Dr. Ahmed=<calendar id>").
// Per-doctor env overrides are applied at resolution time, not here.
func loadDoctorCalendars() map[string]string {
	mapping := make(map[string]string)
	raw := getEnv("DOCTOR_CALENDARS", "")
	if raw == "" {
		return mapping
	}
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		id := strings.TrimSpace(parts[1])
		if name != "" && id != "" {
			mapping[name] = id
		}
	}
	return mapping
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
