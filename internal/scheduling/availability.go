package scheduling

import (
	"context"
	"fmt"
	"time"

	"dental-clinic-server/internal/calendar"
	"dental-clinic-server/internal/models"
)

// SlotDuration is the fixed size of bookable slots.
const SlotDuration = time.Hour

// Slot is one bookable interval, clinic timezone.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Availability enumerates the free fixed-size slots for a doctor's
// calendar in [start, end). Events that are provider-cancelled or whose
// title carries a [CANCELLED] or [RESCHEDULED] marker do not block a
// slot. When the calendar cannot be reached the error wraps
// ErrCalendarUnavailable; an unreachable calendar is not "fully booked".
func (e *Engine) Availability(ctx context.Context, doctorName string, start, end time.Time) ([]Slot, error) {
	if !end.After(start) {
		return nil, &ValidationError{Msg: "end must be after start"}
	}

	start = start.In(e.loc)
	end = end.In(e.loc)

	calendarID := e.resolver.CalendarIDForDoctor(doctorName)
	events, err := e.cal.ListEvents(ctx, calendarID, start, end, false)
	if err != nil {
		e.log.Warn().Err(err).Str("calendar_id", calendarID).Msg("availability query could not reach the calendar")
		return nil, fmt.Errorf("%w: %v", ErrCalendarUnavailable, err)
	}

	// Busy intervals, minus cancellation markers the provider does not
	// know about.
	var busy []calendar.Event
	for _, event := range events {
		if event.Cancelled {
			continue
		}
		if calendar.HasStatusPrefix(event.Title, models.StatusCancelled) ||
			calendar.HasStatusPrefix(event.Title, models.StatusRescheduled) {
			continue
		}
		busy = append(busy, event)
	}

	var available []Slot
	for slotStart := start; slotStart.Before(end); slotStart = slotStart.Add(SlotDuration) {
		slotEnd := slotStart.Add(SlotDuration)
		if slotEnd.After(end) {
			slotEnd = end
		}

		blocked := false
		for _, event := range busy {
			// Half-open interval overlap.
			if slotStart.Before(event.End) && slotEnd.After(event.Start) {
				blocked = true
				break
			}
		}
		if !blocked {
			available = append(available, Slot{Start: slotStart, End: slotEnd})
		}
	}

	return available, nil
}
