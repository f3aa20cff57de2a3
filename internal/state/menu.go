package state

import (
	"fmt"
	"html"
	"strings"

	"github.com/Kawamoto24e1058/momoyama-tech-hp/internal/schedule"
)

const maxMenuEvents = 12

type MenuData struct {
	StatusLine string
	Next       *schedule.Event
	Groups     []schedule.MonthGroup
}

// WriteMenu renders the GTK menu waybar shows on click.
func WriteMenu(path string, data MenuData) error {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<interface>\n")
	b.WriteString("  <object class=\"GtkMenu\" id=\"menu\">\n")

	if data.Next != nil {
		writeMenuItem(&b, "next", fmt.Sprintf("Next: %s — %s", fallback(data.Next.Date, "TBA"), fallback(data.Next.Title, "Untitled")))
		writeSeparator(&b, "separator_next")
	}

	listed := 0
	for groupIdx, group := range data.Groups {
		if listed >= maxMenuEvents {
			break
		}
		writeMenuItem(&b, fmt.Sprintf("month_%d", groupIdx+1), group.Label)
		for _, event := range group.Events {
			if listed >= maxMenuEvents {
				break
			}
			listed++
			writeMenuItem(&b, fmt.Sprintf("event_%d", listed), fmt.Sprintf("  %s — %s", shortDate(event.Date), fallback(event.Title, "Untitled")))
		}
	}

	if data.Next == nil && listed == 0 {
		writeMenuItem(&b, "noop", fallback(data.StatusLine, "No upcoming events"))
	}

	writeSeparator(&b, "separator_actions")
	writeMenuItem(&b, "refresh", "Refresh")

	b.WriteString("  </object>\n")
	b.WriteString("</interface>\n")

	return WriteFileAtomically(path, []byte(b.String()))
}

func writeMenuItem(b *strings.Builder, id, label string) {
	b.WriteString("    <child>\n")
	_, _ = fmt.Fprintf(b, "      <object class=\"GtkMenuItem\" id=\"%s\">\n", html.EscapeString(id))
	_, _ = fmt.Fprintf(b, "        <property name=\"label\">%s</property>\n", html.EscapeString(label))
	b.WriteString("      </object>\n")
	b.WriteString("    </child>\n")
}

func writeSeparator(b *strings.Builder, id string) {
	b.WriteString("    <child>\n")
	_, _ = fmt.Fprintf(b, "      <object class=\"GtkSeparatorMenuItem\" id=\"%s\" />\n", html.EscapeString(id))
	b.WriteString("    </child>\n")
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func shortDate(date string) string {
	if len(date) >= 10 {
		return date[5:10]
	}
	return date
}
