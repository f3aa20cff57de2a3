package notion

import "strings"

// Page is one database row as returned by the query endpoint. Only the
// property kinds the schedule reads are decoded; other kinds keep their Type
// and nothing else.
type Page struct {
	ID         string              `json:"id"`
	Properties map[string]Property `json:"properties"`
}

type Property struct {
	ID     string        `json:"id"`
	Type   string        `json:"type"`
	Title  []RichText    `json:"title,omitempty"`
	Date   *DateValue    `json:"date,omitempty"`
	Select *SelectOption `json:"select,omitempty"`
}

type RichText struct {
	PlainText string `json:"plain_text"`
}

// DateValue holds Notion's ISO 8601 strings; End is nil unless the date is a range.
type DateValue struct {
	Start    string  `json:"start"`
	End      *string `json:"end"`
	TimeZone *string `json:"time_zone"`
}

type SelectOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type QueryResult struct {
	Results    []Page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// PlainText concatenates the plain_text of every rich text segment.
func PlainText(segments []RichText) string {
	if len(segments) == 0 {
		return ""
	}

	var b strings.Builder
	for _, segment := range segments {
		b.WriteString(segment.PlainText)
	}
	return b.String()
}
