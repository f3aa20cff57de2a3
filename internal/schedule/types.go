package schedule

// Event is one schedule row normalised for display. IsUpcoming and IsPast are
// computed once against the fetch instant and are not revalidated.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
	Location    string `json:"location"`
	IsUpcoming  bool   `json:"isUpcoming"`
	IsPast      bool   `json:"isPast"`
}

// MonthGroup holds the events sharing one "YYYY-MM" date prefix, in the
// order the remote query returned them.
type MonthGroup struct {
	Month  string  `json:"month"`
	Label  string  `json:"label"`
	Events []Event `json:"events"`
}

type FutureSchedule struct {
	NextUp        *Event       `json:"nextUp"`
	MonthlyEvents []MonthGroup `json:"monthlyEvents"`
}

// PropertyNames maps the schedule fields onto database property names.
type PropertyNames struct {
	Title          string
	Date           string
	Category       string
	Visibility     string
	PublishedValue string
}

func DefaultPropertyNames() PropertyNames {
	return PropertyNames{
		Title:          "名前",
		Date:           "日付",
		Category:       "種類",
		Visibility:     "Web公開",
		PublishedValue: "公開",
	}
}

func emptyFuture() FutureSchedule {
	return FutureSchedule{MonthlyEvents: []MonthGroup{}}
}

// Events returns next up followed by the grouped events, in display order.
func (f FutureSchedule) Events() []Event {
	events := make([]Event, 0, 1)
	if f.NextUp != nil {
		events = append(events, *f.NextUp)
	}
	return append(events, Flatten(f.MonthlyEvents)...)
}

// Flatten concatenates the events of every group in order.
func Flatten(groups []MonthGroup) []Event {
	events := make([]Event, 0)
	for _, group := range groups {
		events = append(events, group.Events...)
	}
	return events
}
