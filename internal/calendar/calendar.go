package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pershin-daniil/SchoolAdmin/pkg/models"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Calendar mirrors dashboard events into one Google calendar. Each event is
// stored under a deterministic id so updates and deletes find their copy.
type Calendar struct {
	log        *logrus.Entry
	srv        *calendar.Service
	calendarID string
}

// New connects to the Calendar API. Pass option.WithCredentialsFile with a
// service account key that has write access to calendarID.
func New(ctx context.Context, log *logrus.Logger, calendarID string, opts ...option.ClientOption) (*Calendar, error) {
	opts = append([]option.ClientOption{option.WithScopes(calendar.CalendarEventsScope)}, opts...)
	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create calendar client: %w", err)
	}
	return &Calendar{
		log:        log.WithField("module", "calendar"),
		srv:        srv,
		calendarID: calendarID,
	}, nil
}

// GoogleID is the calendar event id for a dashboard event. Google accepts
// lowercase letters a-v and digits, 5 to 1024 characters.
func GoogleID(eventID int) string {
	return fmt.Sprintf("schooladmin%d", eventID)
}

func toGoogle(event models.Event) *calendar.Event {
	description := event.Description
	if event.ClassName != nil {
		description = fmt.Sprintf("%s\n\nClass: %s", description, *event.ClassName)
	}
	return &calendar.Event{
		Id:          GoogleID(event.ID),
		Summary:     event.Title,
		Description: description,
		Start:       &calendar.EventDateTime{DateTime: event.StartTime.UTC().Format(time.RFC3339), TimeZone: "UTC"},
		End:         &calendar.EventDateTime{DateTime: event.EndTime.UTC().Format(time.RFC3339), TimeZone: "UTC"},
	}
}

func (c *Calendar) PublishEvent(ctx context.Context, event models.Event) error {
	ge := toGoogle(event)
	_, err := c.srv.Events.Update(c.calendarID, ge.Id, ge).Context(ctx).Do()
	if isNotFound(err) {
		_, err = c.srv.Events.Insert(c.calendarID, ge).Context(ctx).Do()
	}
	if err != nil {
		return fmt.Errorf("err publishing event %d: %w", event.ID, err)
	}
	c.log.Debugf("event %d published as %s", event.ID, ge.Id)
	return nil
}

func (c *Calendar) RemoveEvent(ctx context.Context, eventID int) error {
	err := c.srv.Events.Delete(c.calendarID, GoogleID(eventID)).Context(ctx).Do()
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("err removing event %d: %w", eventID, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && (gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone)
}
