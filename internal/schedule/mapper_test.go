package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Kawamoto24e1058/momoyama-tech-hp/internal/notion"
)

func pageWith(id, title, start string, end *string, category string) notion.Page {
	props := map[string]notion.Property{}
	if title != "" {
		props["名前"] = notion.Property{Type: "title", Title: []notion.RichText{{PlainText: title}}}
	}
	if start != "" {
		props["日付"] = notion.Property{Type: "date", Date: &notion.DateValue{Start: start, End: end}}
	}
	if category != "" {
		props["種類"] = notion.Property{Type: "select", Select: &notion.SelectOption{Name: category}}
	}
	return notion.Page{ID: id, Properties: props}
}

func TestMapRecord_PassesFieldsThrough(t *testing.T) {
	t.Parallel()

	end := "2026-02-16"
	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	page := pageWith("page-1", "定期演奏会", "2026-02-15", &end, "公演")

	event := MapRecord(RecordFromPage(page, DefaultPropertyNames()), now)

	assert.Equal(t, Event{
		ID:          "page-1",
		Title:       "定期演奏会",
		Date:        "2026-02-15",
		EndDate:     "2026-02-16",
		Description: "公演",
		Location:    "",
		IsUpcoming:  true,
		IsPast:      false,
	}, event)
}

func TestMapRecord_TitleJoinsSegments(t *testing.T) {
	t.Parallel()

	page := notion.Page{ID: "p", Properties: map[string]notion.Property{
		"名前": {Type: "title", Title: []notion.RichText{{PlainText: "Spring "}, {PlainText: "Live"}}},
	}}

	event := MapRecord(RecordFromPage(page, DefaultPropertyNames()), time.Now())
	assert.Equal(t, "Spring Live", event.Title)
}

func TestMapRecord_MissingFieldsDefaultToEmpty(t *testing.T) {
	t.Parallel()

	event := MapRecord(RecordFromPage(notion.Page{ID: "bare"}, DefaultPropertyNames()), time.Now())

	assert.Equal(t, Event{ID: "bare"}, event)
}

func TestMapRecord_WrongPropertyKindsAreAbsent(t *testing.T) {
	t.Parallel()

	page := notion.Page{ID: "p", Properties: map[string]notion.Property{
		"名前": {Type: "rich_text"},
		"日付": {Type: "date"},
		"種類": {Type: "select"},
	}}

	record := RecordFromPage(page, DefaultPropertyNames())
	assert.False(t, record.Title.Present)
	assert.False(t, record.Date.Present)
	assert.False(t, record.Category.Present)
}

func TestMapRecord_UpcomingPastFlags(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		date     string
		upcoming bool
		past     bool
	}{
		{name: "future_date", date: "2026-02-15", upcoming: true},
		{name: "past_date", date: "2026-01-05", past: true},
		{name: "today_midnight_is_past", date: "2026-02-10", past: true},
		{name: "same_instant_is_upcoming", date: "2026-02-10T09:00:00Z", upcoming: true},
		{name: "offset_datetime_future", date: "2026-02-10T19:00:00.000+09:00", upcoming: true},
		{name: "offset_datetime_past", date: "2026-02-10T17:59:00+09:00", past: true},
		{name: "unparseable", date: "next week"},
		{name: "empty", date: ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			record := Record{ID: "x", Date: Present(DateRange{Start: tc.date})}
			event := MapRecord(record, now)
			assert.Equal(t, tc.upcoming, event.IsUpcoming, "isUpcoming")
			assert.Equal(t, tc.past, event.IsPast, "isPast")
			if event.Date != "" && (tc.upcoming || tc.past) {
				assert.NotEqual(t, event.IsUpcoming, event.IsPast)
			}
		})
	}
}

func TestToday_UsesUTCDate(t *testing.T) {
	t.Parallel()

	tokyo := time.FixedZone("JST", 9*60*60)
	now := time.Date(2026, 2, 11, 8, 0, 0, 0, tokyo)

	assert.Equal(t, "2026-02-10", Today(now))
}
