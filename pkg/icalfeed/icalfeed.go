// Package icalfeed renders dashboard events as an iCalendar document.
package icalfeed

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/pershin-daniil/SchoolAdmin/pkg/models"
)

const productID = "-//SchoolAdmin//Events//EN"

// UID is the stable VEVENT identifier of an event.
func UID(eventID int, domain string) string {
	return fmt.Sprintf("event-%d@%s", eventID, domain)
}

func Encode(events []models.Event, domain string, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetName("School events")
	for _, event := range events {
		vevent := cal.AddEvent(UID(event.ID, domain))
		vevent.SetDtStampTime(now.UTC())
		vevent.SetCreatedTime(event.CreatedAt.UTC())
		vevent.SetModifiedAt(event.UpdatedAt.UTC())
		vevent.SetStartAt(event.StartTime.UTC())
		vevent.SetEndAt(event.EndTime.UTC())
		vevent.SetSummary(event.Title)
		vevent.SetDescription(event.Description)
		if event.ClassName != nil {
			vevent.SetLocation(*event.ClassName)
		}
	}
	return cal.Serialize()
}
