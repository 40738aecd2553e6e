package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pershin-daniil/SchoolAdmin/pkg/models"
	"github.com/sirupsen/logrus"
)

type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Mirror copies events to an external calendar.
type Mirror interface {
	PublishEvent(ctx context.Context, event models.Event) error
	RemoveEvent(ctx context.Context, eventID int) error
}

type Store interface {
	GetClasses(ctx context.Context) ([]models.Class, error)
	GetEvents(ctx context.Context) ([]models.Event, error)
	GetEvent(ctx context.Context, id int) (models.Event, error)
	CreateEvent(ctx context.Context, in models.EventInput) (models.Event, error)
	UpdateEvent(ctx context.Context, id int, in models.EventInput) (models.Event, error)
	DeleteEvent(ctx context.Context, id int) (models.Event, error)
}

type ScheduleService struct {
	log      *logrus.Entry
	store    Store
	notifier Notifier
	mirror   Mirror
}

// NewScheduleService builds the service. mirror may be nil.
func NewScheduleService(log *logrus.Logger, store Store, notifier Notifier, mirror Mirror) *ScheduleService {
	s := ScheduleService{
		log:      log.WithField("component", "service"),
		store:    store,
		notifier: notifier,
		mirror:   mirror,
	}
	return &s
}

func (s *ScheduleService) GetClasses(ctx context.Context) ([]models.Class, error) {
	classes, err := s.store.GetClasses(ctx)
	if err != nil {
		return nil, fmt.Errorf("err getting classes from store: %w", err)
	}
	return classes, nil
}

func (s *ScheduleService) GetEvents(ctx context.Context) ([]models.Event, error) {
	events, err := s.store.GetEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("err getting events from store: %w", err)
	}
	return events, nil
}

func (s *ScheduleService) GetEvent(ctx context.Context, id int) (models.Event, error) {
	event, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return models.Event{}, fmt.Errorf("err getting event (id %d) from store: %w", id, err)
	}
	return event, nil
}

func (s *ScheduleService) CreateEvent(ctx context.Context, in models.EventInput) (models.Event, error) {
	event, err := s.store.CreateEvent(ctx, in)
	if err != nil {
		return models.Event{}, fmt.Errorf("err creating event: %w", err)
	}
	s.publish(ctx, event)
	s.notify(ctx, fmt.Sprintf("Event %q has been created: %s", event.Title, describe(event)))
	return event, nil
}

func (s *ScheduleService) UpdateEvent(ctx context.Context, id int, in models.EventInput) (models.Event, error) {
	event, err := s.store.UpdateEvent(ctx, id, in)
	if err != nil {
		return models.Event{}, fmt.Errorf("err updating event (id %d) in store: %w", id, err)
	}
	s.publish(ctx, event)
	s.notify(ctx, fmt.Sprintf("Event %q has been updated: %s", event.Title, describe(event)))
	return event, nil
}

func (s *ScheduleService) DeleteEvent(ctx context.Context, id int) (models.Event, error) {
	event, err := s.store.DeleteEvent(ctx, id)
	if err != nil {
		return models.Event{}, fmt.Errorf("err deleting event (id %d) from store: %w", id, err)
	}
	if s.mirror != nil {
		if err = s.mirror.RemoveEvent(ctx, event.ID); err != nil {
			s.log.Errorf("err removing event %d from calendar: %v", event.ID, err)
		}
	}
	s.notify(ctx, fmt.Sprintf("Event %q has been cancelled", event.Title))
	return event, nil
}

func (s *ScheduleService) publish(ctx context.Context, event models.Event) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.PublishEvent(ctx, event); err != nil {
		s.log.Errorf("err publishing event %d to calendar: %v", event.ID, err)
	}
}

func (s *ScheduleService) notify(ctx context.Context, message string) {
	if err := s.notifier.Notify(ctx, message); err != nil {
		s.log.Errorf("err notifying: %v", err)
	}
}

func describe(event models.Event) string {
	msg := fmt.Sprintf("%s - %s UTC", event.StartTime.UTC().Format(time.DateTime), event.EndTime.UTC().Format(time.DateTime))
	if event.ClassName != nil {
		msg += ", class " + *event.ClassName
	}
	return msg
}
