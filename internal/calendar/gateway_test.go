package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"dental-clinic-server/internal/config"
)

// newTestGateway builds a Gateway backed by a local HTTP stub standing in
// for the provider.
func newTestGateway(t *testing.T, handler http.Handler) *Gateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	service, err := gcal.NewService(context.Background(),
		option.WithoutAuthentication(),
		option.WithEndpoint(server.URL))
	require.NoError(t, err)

	cfg := config.CalendarConfig{CallTimeout: 5 * time.Second, SessionTTL: time.Hour}
	sessions := NewSessionCache(cfg, zerolog.Nop())
	sessions.service = service
	sessions.fetchedAt = time.Now()
	return NewGateway(sessions, cfg, time.UTC, zerolog.Nop())
}

func stubEvent(id, title, start, end string) *gcal.Event {
	return &gcal.Event{
		Id:      id,
		Summary: title,
		Status:  "confirmed",
		Start:   &gcal.EventDateTime{DateTime: start},
		End:     &gcal.EventDateTime{DateTime: end},
	}
}

func TestListEventsFollowsPagination(t *testing.T) {
	var tokens []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("pageToken")
		tokens = append(tokens, token)

		page := &gcal.Events{}
		switch token {
		case "":
			page.Items = []*gcal.Event{
				stubEvent("evt-1", "APT_Jane-Doe_Checkup", "2026-09-14T09:00:00Z", "2026-09-14T10:00:00Z"),
			}
			page.NextPageToken = "page-2"
		case "page-2":
			page.Items = []*gcal.Event{
				stubEvent("evt-2", "APT_Jane-Doe_Whitening", "2026-09-14T11:00:00Z", "2026-09-14T12:00:00Z"),
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(page)
	})

	gateway := newTestGateway(t, handler)
	events, err := gateway.ListEvents(context.Background(), "cal-1",
		time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		false)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "evt-1", events[0].ID)
	assert.Equal(t, "evt-2", events[1].ID)
	assert.Equal(t, []string{"", "page-2"}, tokens)
}

func TestListEventsFiltersCancelledAcrossPages(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := &gcal.Events{}
		if r.URL.Query().Get("pageToken") == "" {
			cancelled := stubEvent("evt-1", "APT_Jane-Doe_Checkup", "2026-09-14T09:00:00Z", "2026-09-14T10:00:00Z")
			cancelled.Status = "cancelled"
			page.Items = []*gcal.Event{cancelled}
			page.NextPageToken = "page-2"
		} else {
			page.Items = []*gcal.Event{
				stubEvent("evt-2", "APT_Jane-Doe_Whitening", "2026-09-14T11:00:00Z", "2026-09-14T12:00:00Z"),
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(page)
	})

	gateway := newTestGateway(t, handler)
	events, err := gateway.ListEvents(context.Background(), "cal-1",
		time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		false)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "evt-2", events[0].ID)
}
