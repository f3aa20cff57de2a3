package schedule

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

type LabelStyle int

const (
	// LabelShort renders "2026.02".
	LabelShort LabelStyle = iota
	// LabelLong renders the localized month name, "2026年2月" or "February 2026".
	LabelLong
)

var (
	supportedLocales = []language.Tag{language.Japanese, language.English}
	localeMatcher    = language.NewMatcher(supportedLocales)
)

// ResolveLocale maps a BCP 47 tag onto a supported label locale, falling back
// to Japanese.
func ResolveLocale(tag string) language.Tag {
	parsed, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return language.Japanese
	}
	_, index, confidence := localeMatcher.Match(parsed)
	if confidence == language.No {
		return language.Japanese
	}
	return supportedLocales[index]
}

// GroupByMonth groups events by the first seven characters of their date,
// keeping the first-seen order of months and the input order within a month.
// Events without a date are skipped.
func GroupByMonth(events []Event, style LabelStyle, locale language.Tag) []MonthGroup {
	groups := make([]MonthGroup, 0)
	index := make(map[string]int)

	for _, event := range events {
		if event.Date == "" {
			continue
		}

		key := monthKey(event.Date)
		pos, ok := index[key]
		if !ok {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, MonthGroup{
				Month:  key,
				Label:  monthLabel(event.Date, key, style, locale),
				Events: make([]Event, 0, 1),
			})
		}
		groups[pos].Events = append(groups[pos].Events, event)
	}

	return groups
}

// monthKey assumes ISO 8601 input, as the record store emits.
func monthKey(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

func monthLabel(date, key string, style LabelStyle, locale language.Tag) string {
	at, ok := ParseDate(date)
	if !ok {
		parsedKey, err := time.Parse("2006-01", key)
		if err != nil {
			return key
		}
		at = parsedKey
	}
	return FormatMonth(at, style, locale)
}

func FormatMonth(at time.Time, style LabelStyle, locale language.Tag) string {
	if style == LabelShort {
		return fmt.Sprintf("%04d.%02d", at.Year(), int(at.Month()))
	}
	if locale == language.English {
		return at.Format("January 2006")
	}
	return fmt.Sprintf("%d年%d月", at.Year(), int(at.Month()))
}
