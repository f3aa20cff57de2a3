package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/Kawamoto24e1058/momoyama-tech-hp/internal/notion"
)

const testDatabaseID = "01234567-89ab-cdef-0123-456789abcdef"

// fakeStore answers queries from canned rows. The primary (compound) filter
// can be made to fail to simulate a database without the visibility property.
type fakeStore struct {
	mu sync.Mutex

	rows          []notion.Page
	rejectPrimary error
	rejectReduced error
	queries       []notion.Query
}

func (f *fakeStore) QueryDatabase(_ context.Context, databaseID string, q notion.Query) (notion.QueryResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if databaseID != testDatabaseID {
		return notion.QueryResult{}, errors.New("unexpected database id")
	}
	f.queries = append(f.queries, q)

	if q.Filter != nil && len(q.Filter.And) > 0 {
		if f.rejectPrimary != nil {
			return notion.QueryResult{}, f.rejectPrimary
		}
	} else if f.rejectReduced != nil {
		return notion.QueryResult{}, f.rejectReduced
	}
	return notion.QueryResult{Results: f.rows}, nil
}

func newTestService(store *fakeStore, locale language.Tag) *Service {
	return NewService(store, Options{
		DatabaseID: testDatabaseID,
		Locale:     locale,
		Logger:     zerolog.Nop(),
	})
}

var testNow = time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)

func futureRows() []notion.Page {
	return []notion.Page{
		pageWith("next", "早春コンサート", "2026-02-15", nil, "公演"),
		pageWith("feb", "合同練習", "2026-02-20T18:00:00.000+09:00", nil, "練習"),
		pageWith("mar-1", "卒業演奏", "2026-03-01", nil, "公演"),
		pageWith("undated", "日程未定", "", nil, "告知"),
		pageWith("mar-2", "新歓", "2026-03-05", nil, ""),
	}
}

func pastRows() []notion.Page {
	return []notion.Page{
		pageWith("jan-20", "新年会", "2026-01-20", nil, "行事"),
		pageWith("jan-05", "初練習", "2026-01-05", nil, "練習"),
		pageWith("dec-24", "クリスマス公演", "2025-12-24", nil, "公演"),
	}
}

func TestFutureSchedule_NextUpAndAscendingGroups(t *testing.T) {
	t.Parallel()

	store := &fakeStore{rows: futureRows()}
	result := newTestService(store, language.Japanese).FutureScheduleAt(context.Background(), testNow)

	require.NotNil(t, result.NextUp)
	assert.Equal(t, "next", result.NextUp.ID)
	assert.Equal(t, "2026-02-15", result.NextUp.Date)
	assert.True(t, result.NextUp.IsUpcoming)

	require.Len(t, result.MonthlyEvents, 2)
	assert.Equal(t, "2026-02", result.MonthlyEvents[0].Month)
	assert.Equal(t, "2026.02", result.MonthlyEvents[0].Label)
	assert.Equal(t, []string{"feb"}, ids(result.MonthlyEvents[0].Events))
	assert.Equal(t, "2026-03", result.MonthlyEvents[1].Month)
	assert.Equal(t, "2026.03", result.MonthlyEvents[1].Label)
	assert.Equal(t, []string{"mar-1", "mar-2"}, ids(result.MonthlyEvents[1].Events))

	require.Len(t, store.queries, 1)
	q := store.queries[0]
	assert.Equal(t, 100, q.PageSize)
	require.Len(t, q.Filter.And, 2)
	assert.Equal(t, notion.SelectEquals("Web公開", "公開"), q.Filter.And[0])
	assert.Equal(t, notion.DateOnOrAfter("日付", "2026-02-10"), q.Filter.And[1])
	assert.Equal(t, []notion.Sort{{Property: "日付", Direction: notion.Ascending}}, q.Sorts)
}

func TestPastEventsByMonth_DescendingGroups(t *testing.T) {
	t.Parallel()

	store := &fakeStore{rows: pastRows()}
	groups := newTestService(store, language.Japanese).PastEventsByMonthAt(context.Background(), testNow)

	require.Len(t, groups, 2)
	assert.Equal(t, "2026-01", groups[0].Month)
	assert.Equal(t, "2026年1月", groups[0].Label)
	assert.Equal(t, []string{"jan-20", "jan-05"}, ids(groups[0].Events))
	assert.Equal(t, "2025-12", groups[1].Month)
	assert.Equal(t, "2025年12月", groups[1].Label)
	for _, group := range groups {
		for _, event := range group.Events {
			assert.True(t, event.IsPast)
			assert.False(t, event.IsUpcoming)
		}
	}

	require.Len(t, store.queries, 1)
	q := store.queries[0]
	assert.Zero(t, q.PageSize)
	assert.Equal(t, notion.DateBefore("日付", "2026-02-10"), q.Filter.And[1])
	assert.Equal(t, []notion.Sort{{Property: "日付", Direction: notion.Descending}}, q.Sorts)
}

func TestPastEventsByMonth_EnglishLabels(t *testing.T) {
	t.Parallel()

	store := &fakeStore{rows: pastRows()}
	groups := newTestService(store, language.English).PastEventsByMonthAt(context.Background(), testNow)

	require.Len(t, groups, 2)
	assert.Equal(t, "January 2026", groups[0].Label)
	assert.Equal(t, "December 2025", groups[1].Label)
}

func TestFutureSchedule_SchemaMismatchMatchesDateOnlyResult(t *testing.T) {
	t.Parallel()

	expected := newTestService(&fakeStore{rows: futureRows()}, language.Japanese).
		FutureScheduleAt(context.Background(), testNow)

	store := &fakeStore{rows: futureRows(), rejectPrimary: errSchemaMismatch}
	got := newTestService(store, language.Japanese).FutureScheduleAt(context.Background(), testNow)

	assert.Equal(t, expected, got)
	require.Len(t, store.queries, 2)
	assert.Equal(t, notion.DateOnOrAfter("日付", "2026-02-10"), *store.queries[1].Filter)
	assert.Equal(t, 100, store.queries[1].PageSize)
	assert.Equal(t, store.queries[0].Sorts, store.queries[1].Sorts)
}

func TestPastEventsByMonth_SchemaMismatchMatchesDateOnlyResult(t *testing.T) {
	t.Parallel()

	expected := newTestService(&fakeStore{rows: pastRows()}, language.Japanese).
		PastEventsByMonthAt(context.Background(), testNow)

	store := &fakeStore{rows: pastRows(), rejectPrimary: errSchemaMismatch}
	got := newTestService(store, language.Japanese).PastEventsByMonthAt(context.Background(), testNow)

	assert.Equal(t, expected, got)
	require.Len(t, store.queries, 2)
	assert.Equal(t, notion.DateBefore("日付", "2026-02-10"), *store.queries[1].Filter)
}

func TestTotalFailure_ReturnsEmptyResults(t *testing.T) {
	t.Parallel()

	store := &fakeStore{rejectPrimary: errSchemaMismatch, rejectReduced: errors.New("boom")}
	svc := newTestService(store, language.Japanese)

	future := svc.FutureScheduleAt(context.Background(), testNow)
	assert.Nil(t, future.NextUp)
	require.NotNil(t, future.MonthlyEvents)
	assert.Empty(t, future.MonthlyEvents)

	past := svc.PastEventsByMonthAt(context.Background(), testNow)
	require.NotNil(t, past)
	assert.Empty(t, past)
}

func TestFetchFuture_ReturnsRemoteFailure(t *testing.T) {
	t.Parallel()

	authErr := &notion.APIError{Status: 401, Code: "unauthorized"}
	store := &fakeStore{rejectPrimary: authErr}

	_, err := newTestService(store, language.Japanese).FetchFuture(context.Background(), testNow)
	require.Error(t, err)

	var apiErr *notion.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 401, apiErr.Status)
	assert.Len(t, store.queries, 1)
}

func TestFetch_RequiresDatabaseID(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeStore{}, Options{Logger: zerolog.Nop()})
	_, err := svc.FetchPast(context.Background(), testNow)
	require.Error(t, err)
}

func TestFutureSchedule_EmptyStore(t *testing.T) {
	t.Parallel()

	result := newTestService(&fakeStore{}, language.Japanese).FutureScheduleAt(context.Background(), testNow)
	assert.Nil(t, result.NextUp)
	assert.NotNil(t, result.MonthlyEvents)
	assert.Empty(t, result.MonthlyEvents)
}

func TestSplitFuture_UndatedFirstEventBecomesNextUp(t *testing.T) {
	t.Parallel()

	events := []Event{
		{ID: "announcement"},
		{ID: "a", Date: "2026-04-01"},
	}

	result := SplitFuture(events, language.Japanese)
	require.NotNil(t, result.NextUp)
	assert.Equal(t, "announcement", result.NextUp.ID)
	require.Len(t, result.MonthlyEvents, 1)
	assert.Equal(t, []string{"a"}, ids(result.MonthlyEvents[0].Events))
}

func TestService_ImplicitClock(t *testing.T) {
	t.Parallel()

	store := &fakeStore{rows: pastRows()}
	svc := NewService(store, Options{
		DatabaseID: testDatabaseID,
		Logger:     zerolog.Nop(),
		Now:        func() time.Time { return testNow },
	})

	groups := svc.PastEventsByMonth(context.Background())
	require.Len(t, groups, 2)
	assert.Equal(t, notion.DateBefore("日付", "2026-02-10"), store.queries[0].Filter.And[1])
}

func TestService_ConcurrentFetches(t *testing.T) {
	t.Parallel()

	store := &fakeStore{rows: pastRows()}
	svc := newTestService(store, language.Japanese)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = svc.FutureScheduleAt(context.Background(), testNow)
		}()
		go func() {
			defer wg.Done()
			_ = svc.PastEventsByMonthAt(context.Background(), testNow)
		}()
	}
	wg.Wait()

	assert.Len(t, store.queries, 16)
}
