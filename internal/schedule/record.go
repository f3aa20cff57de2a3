package schedule

import "github.com/Kawamoto24e1058/momoyama-tech-hp/internal/notion"

// Field is a value that may be missing from the remote row.
type Field[T any] struct {
	Value   T
	Present bool
}

func Present[T any](value T) Field[T] {
	return Field[T]{Value: value, Present: true}
}

func Absent[T any]() Field[T] {
	return Field[T]{}
}

// Or returns the value when present and def otherwise.
func (f Field[T]) Or(def T) T {
	if !f.Present {
		return def
	}
	return f.Value
}

type DateRange struct {
	Start string
	End   Field[string]
}

// Record is the subset of a database row the schedule reads.
type Record struct {
	ID       string
	Title    Field[string]
	Date     Field[DateRange]
	Category Field[string]
}

// RecordFromPage extracts the schedule fields from a page. A property that is
// missing, has another type, or holds null is reported as absent.
func RecordFromPage(page notion.Page, names PropertyNames) Record {
	record := Record{
		ID:       page.ID,
		Title:    Absent[string](),
		Date:     Absent[DateRange](),
		Category: Absent[string](),
	}

	if prop, ok := page.Properties[names.Title]; ok && (prop.Type == "title" || prop.Title != nil) {
		record.Title = Present(notion.PlainText(prop.Title))
	}

	if prop, ok := page.Properties[names.Date]; ok && prop.Date != nil {
		dateRange := DateRange{Start: prop.Date.Start, End: Absent[string]()}
		if prop.Date.End != nil {
			dateRange.End = Present(*prop.Date.End)
		}
		record.Date = Present(dateRange)
	}

	if prop, ok := page.Properties[names.Category]; ok && prop.Select != nil {
		record.Category = Present(prop.Select.Name)
	}

	return record
}
