package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pershin-daniil/SchoolAdmin/pkg/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

type fakeGoogle struct {
	mu     sync.Mutex
	events map[string]gcal.Event
	calls  []string
}

func (f *fakeGoogle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method)
	const prefix = "/calendar/v3/calendars/school/events"
	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, prefix), "/")
	switch r.Method {
	case http.MethodPut:
		if _, ok := f.events[id]; !ok {
			http.Error(w, `{"error":{"code":404,"message":"Not Found"}}`, http.StatusNotFound)
			return
		}
		fallthrough
	case http.MethodPost:
		var ev gcal.Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.events[ev.Id] = ev
		_ = json.NewEncoder(w).Encode(ev)
	case http.MethodDelete:
		if _, ok := f.events[id]; !ok {
			http.Error(w, `{"error":{"code":410,"message":"Gone"}}`, http.StatusGone)
			return
		}
		delete(f.events, id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func TestCalendarMirror(t *testing.T) {
	google := &fakeGoogle{events: make(map[string]gcal.Event)}
	srv := httptest.NewServer(google)
	defer srv.Close()

	ctx := context.Background()
	c, err := New(ctx, logrus.New(), "school",
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/calendar/v3/"))
	require.NoError(t, err)

	className := "7C"
	event := models.Event{
		ID:          5,
		Title:       "Museum trip",
		Description: "Bus leaves at nine",
		StartTime:   time.Date(2024, 10, 2, 9, 0, 0, 0, time.UTC),
		EndTime:     time.Date(2024, 10, 2, 15, 0, 0, 0, time.UTC),
		ClassName:   &className,
	}

	require.NoError(t, c.PublishEvent(ctx, event))
	require.Equal(t, []string{http.MethodPut, http.MethodPost}, google.calls)
	stored := google.events[GoogleID(5)]
	require.Equal(t, "Museum trip", stored.Summary)
	require.Contains(t, stored.Description, "Class: 7C")
	require.Equal(t, "2024-10-02T09:00:00Z", stored.Start.DateTime)

	event.Title = "Museum trip (rescheduled)"
	require.NoError(t, c.PublishEvent(ctx, event))
	require.Equal(t, "Museum trip (rescheduled)", google.events[GoogleID(5)].Summary)

	require.NoError(t, c.RemoveEvent(ctx, 5))
	require.Empty(t, google.events)
	require.NoError(t, c.RemoveEvent(ctx, 5))
}

func TestGoogleID(t *testing.T) {
	id := GoogleID(12)
	require.Equal(t, "schooladmin12", id)
	for _, r := range id {
		require.True(t, (r >= 'a' && r <= 'v') || (r >= '0' && r <= '9'), string(r))
	}
}
