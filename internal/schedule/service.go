package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/Kawamoto24e1058/momoyama-tech-hp/internal/notion"
)

// FuturePageSize caps the future query. Rows beyond the first page are not
// fetched.
const FuturePageSize = notion.MaxPageSize

// Querier is the record store the service reads from.
type Querier interface {
	QueryDatabase(ctx context.Context, databaseID string, q notion.Query) (notion.QueryResult, error)
}

type Options struct {
	DatabaseID string
	Properties PropertyNames
	// FuturePageSize defaults to FuturePageSize when zero.
	FuturePageSize int
	Locale         language.Tag
	// ShouldFallback defaults to notion.IsSchemaMismatch.
	ShouldFallback FallbackPredicate
	Logger         zerolog.Logger
	Now            func() time.Time
}

// Service fetches the schedule and derives the display groupings. It holds no
// mutable state, so future and past fetches may run concurrently.
type Service struct {
	querier        Querier
	databaseID     string
	names          PropertyNames
	pageSize       int
	locale         language.Tag
	shouldFallback FallbackPredicate
	logger         zerolog.Logger
	now            func() time.Time
}

func NewService(querier Querier, opts Options) *Service {
	names := opts.Properties
	defaults := DefaultPropertyNames()
	names.Title = fallback(names.Title, defaults.Title)
	names.Date = fallback(names.Date, defaults.Date)
	names.Category = fallback(names.Category, defaults.Category)
	names.Visibility = fallback(names.Visibility, defaults.Visibility)
	names.PublishedValue = fallback(names.PublishedValue, defaults.PublishedValue)

	pageSize := opts.FuturePageSize
	if pageSize <= 0 || pageSize > notion.MaxPageSize {
		pageSize = FuturePageSize
	}

	locale := opts.Locale
	if locale == language.Und {
		locale = language.Japanese
	}

	shouldFallback := opts.ShouldFallback
	if shouldFallback == nil {
		shouldFallback = notion.IsSchemaMismatch
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		querier:        querier,
		databaseID:     opts.DatabaseID,
		names:          names,
		pageSize:       pageSize,
		locale:         locale,
		shouldFallback: shouldFallback,
		logger:         opts.Logger.With().Str("component", "schedule").Logger(),
		now:            now,
	}
}

// FutureSchedule returns the next event and the remaining upcoming events
// grouped by month. Failures are logged and yield an empty schedule.
func (s *Service) FutureSchedule(ctx context.Context) FutureSchedule {
	return s.FutureScheduleAt(ctx, s.now())
}

func (s *Service) FutureScheduleAt(ctx context.Context, now time.Time) FutureSchedule {
	result, err := s.FetchFuture(ctx, now)
	if err != nil {
		s.logger.Error().Err(err).Msg("fetch future schedule failed")
		return emptyFuture()
	}
	return result
}

// PastEventsByMonth returns past events grouped by month, most recent first.
// Failures are logged and yield an empty list.
func (s *Service) PastEventsByMonth(ctx context.Context) []MonthGroup {
	return s.PastEventsByMonthAt(ctx, s.now())
}

func (s *Service) PastEventsByMonthAt(ctx context.Context, now time.Time) []MonthGroup {
	groups, err := s.FetchPast(ctx, now)
	if err != nil {
		s.logger.Error().Err(err).Msg("fetch past events failed")
		return []MonthGroup{}
	}
	return groups
}

// FetchFuture is FutureScheduleAt with the remote failure returned instead of
// absorbed.
func (s *Service) FetchFuture(ctx context.Context, now time.Time) (FutureSchedule, error) {
	primary, reduced := scheduleQueries(
		s.names,
		notion.DateOnOrAfter(s.names.Date, Today(now)),
		notion.Ascending,
		s.pageSize,
	)

	pages, err := s.query(ctx, "future", primary, reduced)
	if err != nil {
		return FutureSchedule{}, err
	}
	return SplitFuture(s.mapPages(pages, now), s.locale), nil
}

// FetchPast is PastEventsByMonthAt with the remote failure returned instead of
// absorbed. The page size is left to the record store default.
func (s *Service) FetchPast(ctx context.Context, now time.Time) ([]MonthGroup, error) {
	primary, reduced := scheduleQueries(
		s.names,
		notion.DateBefore(s.names.Date, Today(now)),
		notion.Descending,
		0,
	)

	pages, err := s.query(ctx, "past", primary, reduced)
	if err != nil {
		return nil, err
	}
	return GroupByMonth(s.mapPages(pages, now), LabelLong, s.locale), nil
}

// SplitFuture takes the first event as next up and groups the rest by month.
// A first event without a date still becomes next up.
func SplitFuture(events []Event, locale language.Tag) FutureSchedule {
	if len(events) == 0 {
		return emptyFuture()
	}

	next := events[0]
	return FutureSchedule{
		NextUp:        &next,
		MonthlyEvents: GroupByMonth(events[1:], LabelShort, locale),
	}
}

func (s *Service) query(ctx context.Context, window string, primary, reduced notion.Query) ([]notion.Page, error) {
	if strings.TrimSpace(s.databaseID) == "" {
		return nil, fmt.Errorf("schedule database id is not configured")
	}

	run := func(ctx context.Context, q notion.Query) (notion.QueryResult, error) {
		return s.querier.QueryDatabase(ctx, s.databaseID, q)
	}

	result, usedFallback, err := QueryWithFallback(ctx, run, primary, reduced, s.shouldFallback)
	if err != nil {
		return nil, fmt.Errorf("query %s schedule: %w", window, err)
	}

	if usedFallback {
		s.logger.Warn().
			Str("window", window).
			Str("property", s.names.Visibility).
			Msg("visibility filter rejected, queried by date only")
	}
	if result.HasMore {
		s.logger.Debug().
			Str("window", window).
			Int("returned", len(result.Results)).
			Msg("more rows available than the first page")
	}
	return result.Results, nil
}

func (s *Service) mapPages(pages []notion.Page, now time.Time) []Event {
	events := make([]Event, 0, len(pages))
	for _, page := range pages {
		events = append(events, MapRecord(RecordFromPage(page, s.names), now))
	}
	return events
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}
