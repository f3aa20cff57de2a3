// Package icsexport writes schedule events as an iCalendar feed.
package icsexport

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/Kawamoto24e1058/momoyama-tech-hp/internal/schedule"
)

const (
	productID = "-//momoyama-tech-hp//schedule//JA"
	uidDomain = "momoyama-schedule"
)

// Build converts events into a calendar. Events without a parseable date are
// left out; date-only events become all-day entries.
func Build(events []schedule.Event, name string, stamp time.Time) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	if strings.TrimSpace(name) != "" {
		cal.SetXWRCalName(name)
	}

	for _, event := range events {
		start, ok := schedule.ParseDate(event.Date)
		if !ok {
			continue
		}

		vevent := cal.AddEvent(fmt.Sprintf("%s@%s", event.ID, uidDomain))
		vevent.SetDtStampTime(stamp.UTC())
		vevent.SetSummary(fallback(event.Title, "Untitled"))
		if strings.TrimSpace(event.Description) != "" {
			vevent.SetDescription(event.Description)
		}
		if strings.TrimSpace(event.Location) != "" {
			vevent.SetLocation(event.Location)
		}

		end, hasEnd := schedule.ParseDate(event.EndDate)
		if isDateOnly(event.Date) {
			vevent.SetAllDayStartAt(start)
			// DTEND is exclusive for all-day entries.
			if hasEnd {
				vevent.SetAllDayEndAt(end.AddDate(0, 0, 1))
			} else {
				vevent.SetAllDayEndAt(start.AddDate(0, 0, 1))
			}
			continue
		}

		vevent.SetStartAt(start)
		if hasEnd && end.After(start) {
			vevent.SetEndAt(end)
		}
	}

	return cal
}

func Write(w io.Writer, events []schedule.Event, name string, stamp time.Time) error {
	payload := Build(events, name, stamp).Serialize()
	if _, err := io.WriteString(w, payload); err != nil {
		return fmt.Errorf("write ics: %w", err)
	}
	return nil
}

func isDateOnly(value string) bool {
	return len(strings.TrimSpace(value)) == len("2006-01-02")
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}
