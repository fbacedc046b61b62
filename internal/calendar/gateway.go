package calendar

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	gcal "google.golang.org/api/calendar/v3"

	"dental-clinic-server/internal/config"
)

// Event is the gateway's view of a provider event.
type Event struct {
	ID          string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Cancelled   bool
	Link        string
}

// Gateway performs event CRUD against the provider, scoped per calendar.
// Calls are blocking I/O bounded by the configured timeout; callers must
// not hold locks across them.
type Gateway struct {
	sessions *SessionCache
	timeout  time.Duration
	loc      *time.Location
	log      zerolog.Logger
}

// NewGateway creates a Gateway. All event times sent to the provider are
// normalized to the clinic timezone.
func NewGateway(sessions *SessionCache, cfg config.CalendarConfig, loc *time.Location, log zerolog.Logger) *Gateway {
	return &Gateway{
		sessions: sessions,
		timeout:  cfg.CallTimeout,
		loc:      loc,
		log:      log.With().Str("component", "calendar-gateway").Logger(),
	}
}

// InsertEvent creates an event and returns its provider ID and link.
func (g *Gateway) InsertEvent(ctx context.Context, calendarID string, event Event) (string, string, error) {
	service, err := g.sessions.Service(ctx)
	if err != nil {
		return "", "", err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	created, err := service.Events.Insert(calendarID, g.toProvider(event)).Context(ctx).Do()
	if err != nil {
		return "", "", wrapProviderError("insert", err)
	}
	return created.Id, created.HtmlLink, nil
}

// GetEvent fetches one event. A missing event returns ErrEventNotFound.
func (g *Gateway) GetEvent(ctx context.Context, calendarID, eventID string) (*Event, error) {
	service, err := g.sessions.Service(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	item, err := service.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, wrapProviderError("get", err)
	}
	event := g.fromProvider(item)
	return &event, nil
}

// UpdateEvent overwrites an event with the given payload.
func (g *Gateway) UpdateEvent(ctx context.Context, calendarID, eventID string, event Event) error {
	service, err := g.sessions.Service(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	_, err = service.Events.Update(calendarID, eventID, g.toProvider(event)).Context(ctx).Do()
	return wrapProviderError("update", err)
}

// DeleteEvent removes an event. A missing event returns ErrEventNotFound;
// callers that just want the event gone treat that as success.
func (g *Gateway) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	service, err := g.sessions.Service(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	err = service.Events.Delete(calendarID, eventID).Context(ctx).Do()
	return wrapProviderError("delete", err)
}

// ListEvents returns the events in [timeMin, timeMax), expanded to single
// instances and ordered by start time. Provider-cancelled events are only
// included when includeCancelled is set (orphan detection wants them
// visible, availability does not).
func (g *Gateway) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time, includeCancelled bool) ([]Event, error) {
	service, err := g.sessions.Service(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var events []Event
	pageToken := ""
	for {
		call := service.Events.List(calendarID).
			TimeMin(timeMin.In(g.loc).Format(time.RFC3339)).
			TimeMax(timeMax.In(g.loc).Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			MaxResults(2500).
			PageToken(pageToken).
			Context(ctx)
		if includeCancelled {
			call = call.ShowDeleted(true)
		}

		result, err := call.Do()
		if err != nil {
			return nil, wrapProviderError("list", err)
		}

		for _, item := range result.Items {
			event := g.fromProvider(item)
			if event.Cancelled && !includeCancelled {
				continue
			}
			events = append(events, event)
		}

		pageToken = result.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return events, nil
}

func (g *Gateway) toProvider(event Event) *gcal.Event {
	return &gcal.Event{
		Summary:     event.Title,
		Description: event.Description,
		Start: &gcal.EventDateTime{
			DateTime: event.Start.In(g.loc).Format(time.RFC3339),
			TimeZone: g.loc.String(),
		},
		End: &gcal.EventDateTime{
			DateTime: event.End.In(g.loc).Format(time.RFC3339),
			TimeZone: g.loc.String(),
		},
	}
}

func (g *Gateway) fromProvider(item *gcal.Event) Event {
	event := Event{
		ID:          item.Id,
		Title:       item.Summary,
		Description: item.Description,
		Cancelled:   item.Status == "cancelled",
		Link:        item.HtmlLink,
	}
	if item.Start != nil {
		// All-day events carry a date instead of a dateTime.
		if t, err := time.Parse(time.RFC3339, item.Start.DateTime); err == nil {
			event.Start = t.In(g.loc)
		} else if t, err := time.ParseInLocation("2006-01-02", item.Start.Date, g.loc); err == nil {
			event.Start = t
		}
	}
	if item.End != nil {
		if t, err := time.Parse(time.RFC3339, item.End.DateTime); err == nil {
			event.End = t.In(g.loc)
		} else if t, err := time.ParseInLocation("2006-01-02", item.End.Date, g.loc); err == nil {
			event.End = t
		}
	}
	return event
}
