package calendar

import (
	"fmt"
	"regexp"
	"strings"

	"dental-clinic-server/internal/models"
)

// The event description is a fixed wire contract: five KEY:VALUE lines in
// this order. Previously created events depend on this exact key set, so
// the format must not change.
const (
	keyAppointmentID = "APPOINTMENT_ID"
	keyPatientID     = "PATIENT_ID"
	keyDoctorID      = "DOCTOR_ID"
	keyServiceID     = "SERVICE_ID"
	keyReason        = "REASON"
)

// statusPrefixes maps appointment statuses to the title markers shown in
// the calendar UI. The title is write-only signaling; parsing always goes
// through the description.
var statusPrefixes = map[models.AppointmentStatus]string{
	models.StatusCancelled:    "[CANCELLED]",
	models.StatusConfirmed:    "[CONFIRMED]",
	models.StatusReminderSent: "[REMINDER SENT]",
	models.StatusRescheduled:  "[RESCHEDULED]",
}

var (
	nonAlnumSpace  = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	serviceSeps    = regexp.MustCompile(`[\s_&()]+`)
	nonAlnumHyphen = regexp.MustCompile(`[^a-zA-Z0-9\-]`)
	multiHyphen    = regexp.MustCompile(`-+`)
	descLine       = regexp.MustCompile(`^(\w+):(.*)$`)
)

// EventPayload is the encoded title and description for a calendar event.
type EventPayload struct {
	Title       string
	Description string
}

// EventFields are the identifying fields recovered from an event
// description. Absent keys decode as empty strings.
type EventFields struct {
	AppointmentID string
	PatientID     string
	DoctorID      string
	ServiceID     string
	Reason        string
}

// Encode builds the event title and description for an appointment.
// Title format: APT_{First}-{Last}_{Service}, with the -Last segment
// omitted when the patient has no last name.
func Encode(appointmentID, patientName, serviceName, patientID, doctorID, serviceID, reason string) EventPayload {
	first, last := splitName(patientName)

	firstClean := cleanName(first)
	lastClean := cleanName(last)
	serviceClean := cleanService(serviceName)

	var title string
	if lastClean != "" {
		title = fmt.Sprintf("APT_%s-%s_%s", firstClean, lastClean, serviceClean)
	} else {
		title = fmt.Sprintf("APT_%s_%s", firstClean, serviceClean)
	}

	// The parser is line oriented, so a newline inside the reason would
	// corrupt every key after it. Flatten to spaces before writing.
	reason = strings.Join(strings.Fields(reason), " ")

	description := keyAppointmentID + ":" + appointmentID + "\n" +
		keyPatientID + ":" + patientID + "\n" +
		keyDoctorID + ":" + doctorID + "\n" +
		keyServiceID + ":" + serviceID + "\n" +
		keyReason + ":" + reason

	return EventPayload{Title: title, Description: description}
}

// Decode recovers identifying fields from an event description. It never
// fails: unknown keys are ignored and missing keys stay empty. REASON is
// the last key and may contain colons, so its value runs to the end of
// the line it starts on.
func Decode(description string) EventFields {
	var fields EventFields
	if description == "" {
		return fields
	}

	for _, line := range strings.Split(description, "\n") {
		m := descLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[2])
		switch strings.ToUpper(m[1]) {
		case keyAppointmentID:
			fields.AppointmentID = value
		case keyPatientID:
			fields.PatientID = value
		case keyDoctorID:
			fields.DoctorID = value
		case keyServiceID:
			fields.ServiceID = value
		case keyReason:
			fields.Reason = value
		}
	}

	return fields
}

// AnnotateTitle strips any known status prefix from the title and prepends
// the marker for the given status. Statuses without a marker return the
// stripped title unchanged. Applying the same status twice is a no-op.
func AnnotateTitle(title string, status models.AppointmentStatus) string {
	stripped := StripStatusPrefix(title)
	prefix, ok := statusPrefixes[status]
	if !ok {
		return stripped
	}
	return prefix + " " + stripped
}

// StripStatusPrefix removes a leading known status marker, if present.
func StripStatusPrefix(title string) string {
	for _, prefix := range statusPrefixes {
		if strings.HasPrefix(title, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(title, prefix))
		}
	}
	return strings.TrimSpace(title)
}

// HasMarker reports whether a status has a title marker at all.
func HasMarker(status models.AppointmentStatus) bool {
	_, ok := statusPrefixes[status]
	return ok
}

// HasStatusPrefix reports whether the title carries the marker for the
// given status.
func HasStatusPrefix(title string, status models.AppointmentStatus) bool {
	prefix, ok := statusPrefixes[status]
	return ok && strings.HasPrefix(title, prefix)
}

func splitName(name string) (first, last string) {
	parts := strings.Fields(strings.TrimSpace(name))
	if len(parts) == 0 {
		return "Unknown", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// cleanName keeps only alphanumerics and collapses whitespace.
func cleanName(text string) string {
	cleaned := nonAlnumSpace.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(cleaned), " ")
}

// cleanService collapses separators to single hyphens and strips anything
// that is not alphanumeric or a hyphen.
func cleanService(text string) string {
	cleaned := serviceSeps.ReplaceAllString(text, "-")
	cleaned = nonAlnumHyphen.ReplaceAllString(cleaned, "")
	cleaned = multiHyphen.ReplaceAllString(cleaned, "-")
	return strings.Trim(cleaned, "-")
}
