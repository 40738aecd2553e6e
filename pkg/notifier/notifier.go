package notifier

import (
	"context"

	"github.com/sirupsen/logrus"
)

// DummyNotifier writes notifications to the log. It is used when no chat is configured.
type DummyNotifier struct {
	log *logrus.Entry
}

func NewDummyNotifier(log *logrus.Logger) *DummyNotifier {
	return &DummyNotifier{
		log: log.WithField("component", "notifier"),
	}
}

func (n *DummyNotifier) Notify(_ context.Context, message string) error {
	n.log.Infof("notification: %s", message)
	return nil
}
