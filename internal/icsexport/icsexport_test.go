package icsexport

import (
	"bytes"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kawamoto24e1058/momoyama-tech-hp/internal/schedule"
)

func TestWrite_RoundTripsThroughParser(t *testing.T) {
	t.Parallel()

	events := []schedule.Event{
		{ID: "page-1", Title: "早春コンサート", Date: "2026-02-15", EndDate: "2026-02-16", Description: "公演"},
		{ID: "page-2", Title: "合同練習", Date: "2026-02-20T18:00:00.000+09:00"},
		{ID: "page-3", Title: "日程未定"},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, events, "Schedule", time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)))

	parsed, err := ics.ParseCalendar(&buf)
	require.NoError(t, err)

	vevents := parsed.Events()
	require.Len(t, vevents, 2)

	first := vevents[0]
	assert.Equal(t, "page-1@momoyama-schedule", first.Id())
	assert.Equal(t, "早春コンサート", first.GetProperty(ics.ComponentPropertySummary).Value)
	assert.Equal(t, "公演", first.GetProperty(ics.ComponentPropertyDescription).Value)
	assert.Equal(t, "20260215", first.GetProperty(ics.ComponentPropertyDtStart).Value)
	assert.Equal(t, "20260217", first.GetProperty(ics.ComponentPropertyDtEnd).Value)

	second := vevents[1]
	assert.Equal(t, "page-2@momoyama-schedule", second.Id())
	start, err := second.GetStartAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)))
	assert.Nil(t, second.GetProperty(ics.ComponentPropertyDtEnd))
}
