package calendar

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dental-clinic-server/internal/models"
)

func TestEncodeTitle(t *testing.T) {
	tests := []struct {
		name        string
		patientName string
		serviceName string
		want        string
	}{
		{"first and last", "Jane Doe", "Routine Cleaning", "APT_Jane-Doe_Routine-Cleaning"},
		{"single name", "Cher", "Checkup", "APT_Cher_Checkup"},
		{"empty name", "", "Checkup", "APT_Unknown_Checkup"},
		{"punctuation stripped", "Mary-Jane O'Brien", "Checkup", "APT_MaryJane-OBrien_Checkup"},
		{"service separators", "Jane Doe", "Exam & X-Ray (Full)", "APT_Jane-Doe_Exam-X-Ray-Full"},
		{"three part name", "Ana de Armas", "Whitening", "APT_Ana-de Armas_Whitening"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := Encode("a1", tt.patientName, tt.serviceName, "p1", "2", "3", "reason")
			assert.Equal(t, tt.want, payload.Title)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload := Encode("apt-123", "Jane Doe", "Routine Cleaning", "pat-456", "7", "9", "tooth pain, upper left")

	fields := Decode(payload.Description)
	assert.Equal(t, "apt-123", fields.AppointmentID)
	assert.Equal(t, "pat-456", fields.PatientID)
	assert.Equal(t, "7", fields.DoctorID)
	assert.Equal(t, "9", fields.ServiceID)
	assert.Equal(t, "tooth pain, upper left", fields.Reason)
}

func TestEncodeDescriptionLayout(t *testing.T) {
	payload := Encode("a1", "Jane Doe", "Checkup", "p1", "2", "3", "hurts")

	lines := strings.Split(payload.Description, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "APPOINTMENT_ID:a1", lines[0])
	assert.Equal(t, "PATIENT_ID:p1", lines[1])
	assert.Equal(t, "DOCTOR_ID:2", lines[2])
	assert.Equal(t, "SERVICE_ID:3", lines[3])
	assert.Equal(t, "REASON:hurts", lines[4])
}

func TestEncodeFlattensReasonNewlines(t *testing.T) {
	payload := Encode("a1", "Jane Doe", "Checkup", "p1", "2", "3", "line one\nline two")

	lines := strings.Split(payload.Description, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "REASON:line one line two", lines[4])
}

func TestDecodeReasonWithColons(t *testing.T) {
	desc := "APPOINTMENT_ID:a1\nREASON:follow up: crown at 14:30"

	fields := Decode(desc)
	assert.Equal(t, "a1", fields.AppointmentID)
	assert.Equal(t, "follow up: crown at 14:30", fields.Reason)
}

func TestDecodeToleratesMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want EventFields
	}{
		{"empty", "", EventFields{}},
		{"free text", "call the patient back\nno keys here at all", EventFields{}},
		{"unknown keys ignored", "FOO:bar\nPATIENT_ID:p1", EventFields{PatientID: "p1"}},
		{"lowercase keys accepted", "patient_id: p1", EventFields{PatientID: "p1"}},
		{"values trimmed", "DOCTOR_ID:  7  ", EventFields{DoctorID: "7"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decode(tt.desc))
		})
	}
}

func TestAnnotateTitle(t *testing.T) {
	title := "APT_Jane-Doe_Checkup"

	annotated := AnnotateTitle(title, models.StatusConfirmed)
	assert.Equal(t, "[CONFIRMED] APT_Jane-Doe_Checkup", annotated)

	// Annotating again with the same status is a no-op.
	assert.Equal(t, annotated, AnnotateTitle(annotated, models.StatusConfirmed))

	// A different status replaces the existing marker.
	assert.Equal(t, "[CANCELLED] APT_Jane-Doe_Checkup", AnnotateTitle(annotated, models.StatusCancelled))

	// Statuses without a marker strip any existing one.
	assert.Equal(t, title, AnnotateTitle(annotated, models.StatusScheduled))
}

func TestStripStatusPrefix(t *testing.T) {
	assert.Equal(t, "APT_Jane-Doe_Checkup", StripStatusPrefix("[RESCHEDULED] APT_Jane-Doe_Checkup"))
	assert.Equal(t, "APT_Jane-Doe_Checkup", StripStatusPrefix("APT_Jane-Doe_Checkup"))
}

func TestHasStatusPrefix(t *testing.T) {
	assert.True(t, HasStatusPrefix("[CANCELLED] APT_Jane-Doe_Checkup", models.StatusCancelled))
	assert.False(t, HasStatusPrefix("[CANCELLED] APT_Jane-Doe_Checkup", models.StatusConfirmed))
	assert.False(t, HasStatusPrefix("APT_Jane-Doe_Checkup", models.StatusCancelled))
}
