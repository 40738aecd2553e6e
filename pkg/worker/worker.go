package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/pershin-daniil/SchoolAdmin/pkg/metrics"
	"github.com/pershin-daniil/SchoolAdmin/pkg/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type Store interface {
	EventsToAnnounce(ctx context.Context, from, to time.Time) ([]models.Announcement, error)
	MarkAnnounced(ctx context.Context, eventID int) error
}

type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Announcer notifies about events shortly before they start. Every event is
// announced once; moving its start time makes it eligible again.
type Announcer struct {
	log      *logrus.Entry
	store    Store
	notifier Notifier
	lead     time.Duration
	now      func() time.Time
}

func New(log *logrus.Logger, store Store, notifier Notifier, lead time.Duration) *Announcer {
	return &Announcer{
		log:      log.WithField("component", "worker"),
		store:    store,
		notifier: notifier,
		lead:     lead,
		now:      time.Now,
	}
}

// AnnounceUpcoming sends one notification per event starting within the lead time.
func (a *Announcer) AnnounceUpcoming(ctx context.Context) error {
	now := a.now()
	events, err := a.store.EventsToAnnounce(ctx, now, now.Add(a.lead))
	if err != nil {
		return fmt.Errorf("worker announce faild: %w", err)
	}
	for _, event := range events {
		msg := fmt.Sprintf("Event %q starts at %s UTC", event.Title, event.StartTime.UTC().Format(time.DateTime))
		if event.ClassName != nil {
			msg += fmt.Sprintf(" (class %s)", *event.ClassName)
		}
		if err = a.notifier.Notify(ctx, msg); err != nil {
			return fmt.Errorf("worker announce faild: %w", err)
		}
		if err = a.store.MarkAnnounced(ctx, event.EventID); err != nil {
			return fmt.Errorf("worker announce faild: %w", err)
		}
		metrics.Announcements.Inc()
	}
	return nil
}

// schedule registers AnnounceUpcoming on a cron spec. A run that is still
// going when the next tick fires makes that tick a no-op.
func (a *Announcer) schedule(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(spec, func() {
		if err := a.AnnounceUpcoming(ctx); err != nil {
			a.log.Warn(err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid announce schedule %q: %w", spec, err)
	}
	return c, nil
}

// Run schedules AnnounceUpcoming with a cron spec until ctx is done.
func (a *Announcer) Run(ctx context.Context, spec string) error {
	c, err := a.schedule(ctx, spec)
	if err != nil {
		return err
	}
	a.log.Infof("announcing events %s ahead on %q", a.lead, spec)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
