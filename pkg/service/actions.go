package service

import (
	"context"

	"github.com/pershin-daniil/SchoolAdmin/pkg/models"
	"github.com/sirupsen/logrus"
)

// Actions exposes the service to the event form: every call reports a
// two-flag result instead of an error.
type Actions struct {
	log     *logrus.Entry
	service *ScheduleService
}

func NewActions(log *logrus.Logger, service *ScheduleService) *Actions {
	return &Actions{
		log:     log.WithField("component", "actions"),
		service: service,
	}
}

func (a *Actions) CreateEvent(ctx context.Context, in models.EventInput) models.Result {
	if _, err := a.service.CreateEvent(ctx, in); err != nil {
		a.log.Warnf("err during creating event: %v", err)
		return models.Result{Error: true}
	}
	return models.Result{Success: true}
}

func (a *Actions) UpdateEvent(ctx context.Context, in models.EventInput) models.Result {
	if in.ID == nil {
		a.log.Warn("update requested without event id")
		return models.Result{Error: true}
	}
	if _, err := a.service.UpdateEvent(ctx, *in.ID, in); err != nil {
		a.log.Warnf("err during updating event %d: %v", *in.ID, err)
		return models.Result{Error: true}
	}
	return models.Result{Success: true}
}

func (a *Actions) DeleteEvent(ctx context.Context, id int) models.Result {
	if _, err := a.service.DeleteEvent(ctx, id); err != nil {
		a.log.Warnf("err during deleting event %d: %v", id, err)
		return models.Result{Error: true}
	}
	return models.Result{Success: true}
}
