package schedule

import (
	"strings"
	"time"

	"github.com/Kawamoto24e1058/momoyama-tech-hp/internal/notion"
)

// Date strings without an offset are read as UTC.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	notion.DateLayout,
}

// MapRecord converts a record into an Event relative to now. It never fails:
// absent fields become empty strings and an unparseable date clears both
// IsUpcoming and IsPast.
func MapRecord(record Record, now time.Time) Event {
	date := ""
	endDate := ""
	if record.Date.Present {
		date = record.Date.Value.Start
		endDate = record.Date.Value.End.Or("")
	}

	event := Event{
		ID:          record.ID,
		Title:       record.Title.Or(""),
		Date:        date,
		EndDate:     endDate,
		Description: record.Category.Or(""),
		Location:    "",
	}

	if at, ok := ParseDate(date); ok {
		event.IsUpcoming = !at.Before(now)
		event.IsPast = at.Before(now)
	}
	return event
}

// ParseDate parses a date or date-time string as returned by the record store.
func ParseDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// Today is the date-only form of now in UTC, the boundary used by date filters.
func Today(now time.Time) string {
	return now.UTC().Format(notion.DateLayout)
}
