package waybar

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Kawamoto24e1058/momoyama-tech-hp/internal/schedule"
)

const maxTooltipEvents = 6

type Output struct {
	Text    string `json:"text"`
	Tooltip string `json:"tooltip"`
	Class   string `json:"class"`
}

// Render summarises the future schedule: the text counts days until the next
// event and the tooltip lists what follows.
func Render(result schedule.FutureSchedule, now time.Time) Output {
	if result.NextUp == nil {
		return Output{
			Text:    "—",
			Tooltip: "No upcoming events",
			Class:   "clear",
		}
	}

	next := *result.NextUp
	text, class := countdown(next.Date, now)

	return Output{
		Text:    text,
		Tooltip: tooltip(next, result.MonthlyEvents),
		Class:   class,
	}
}

func RenderUnknown(message string) Output {
	return Output{Text: "?", Tooltip: strings.TrimSpace(message), Class: "unknown"}
}

func RenderError(message string) Output {
	return Output{Text: "!", Tooltip: strings.TrimSpace(message), Class: "error"}
}

func Encode(output Output) ([]byte, error) {
	payload, err := json.Marshal(output)
	if err != nil {
		return nil, fmt.Errorf("marshal waybar output: %w", err)
	}
	return payload, nil
}

func countdown(date string, now time.Time) (string, string) {
	at, ok := schedule.ParseDate(date)
	if !ok {
		return "•", "normal"
	}

	days := daysBetween(now, at)
	switch {
	case days <= 0:
		return "today", "today"
	case days == 1:
		return "tomorrow", "soon"
	default:
		return fmt.Sprintf("%dd", days), "normal"
	}
}

// daysBetween counts calendar days in UTC, matching the date boundary of the
// schedule queries.
func daysBetween(from, to time.Time) int {
	a := time.Date(from.UTC().Year(), from.UTC().Month(), from.UTC().Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.UTC().Year(), to.UTC().Month(), to.UTC().Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func tooltip(next schedule.Event, groups []schedule.MonthGroup) string {
	var b strings.Builder

	_, _ = fmt.Fprintf(&b, "Next: %s\n", fallback(next.Title, "Untitled"))
	if next.Date != "" {
		_, _ = fmt.Fprintf(&b, "Date: %s\n", dateRange(next))
	}
	if strings.TrimSpace(next.Description) != "" {
		_, _ = fmt.Fprintf(&b, "Type: %s\n", next.Description)
	}

	listed := 0
	for _, group := range groups {
		if listed >= maxTooltipEvents {
			break
		}
		_, _ = fmt.Fprintf(&b, "\n%s\n", group.Label)
		for _, event := range group.Events {
			if listed >= maxTooltipEvents {
				break
			}
			_, _ = fmt.Fprintf(&b, "%s — %s\n", shortDate(event.Date), fallback(event.Title, "Untitled"))
			listed++
		}
	}

	return strings.TrimSpace(b.String())
}

func dateRange(event schedule.Event) string {
	if event.EndDate == "" {
		return event.Date
	}
	return event.Date + " – " + event.EndDate
}

// shortDate trims "2026-02-20T18:00:00.000+09:00" to "02-20".
func shortDate(date string) string {
	if len(date) >= 10 {
		return date[5:10]
	}
	return date
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}
