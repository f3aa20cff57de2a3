package notion

// DateLayout is the date-only format Notion accepts in date filters.
const DateLayout = "2006-01-02"

// MaxPageSize is the largest page_size the database query endpoint accepts.
const MaxPageSize = 100

type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// Filter is one node of a database query filter. Leaf nodes set Property and
// exactly one condition; compound nodes set And.
type Filter struct {
	Property string        `json:"property,omitempty"`
	Select   *SelectFilter `json:"select,omitempty"`
	Date     *DateFilter   `json:"date,omitempty"`
	And      []Filter      `json:"and,omitempty"`
}

type SelectFilter struct {
	Equals string `json:"equals"`
}

type DateFilter struct {
	Before    string `json:"before,omitempty"`
	OnOrAfter string `json:"on_or_after,omitempty"`
}

type Sort struct {
	Property  string    `json:"property"`
	Direction Direction `json:"direction"`
}

// Query is the request body of POST /databases/{id}/query. A zero PageSize
// leaves the page size to the API default.
type Query struct {
	Filter   *Filter `json:"filter,omitempty"`
	Sorts    []Sort  `json:"sorts,omitempty"`
	PageSize int     `json:"page_size,omitempty"`
}

func SelectEquals(property, value string) Filter {
	return Filter{Property: property, Select: &SelectFilter{Equals: value}}
}

func DateOnOrAfter(property, date string) Filter {
	return Filter{Property: property, Date: &DateFilter{OnOrAfter: date}}
}

func DateBefore(property, date string) Filter {
	return Filter{Property: property, Date: &DateFilter{Before: date}}
}

// And combines filters. A single filter is returned unwrapped.
func And(filters ...Filter) Filter {
	if len(filters) == 1 {
		return filters[0]
	}
	return Filter{And: filters}
}

func SortBy(property string, direction Direction) Sort {
	return Sort{Property: property, Direction: direction}
}
