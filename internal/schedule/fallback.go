package schedule

import (
	"context"
	"fmt"

	"github.com/Kawamoto24e1058/momoyama-tech-hp/internal/notion"
)

// QueryFunc runs one database query.
type QueryFunc func(ctx context.Context, q notion.Query) (notion.QueryResult, error)

// FallbackPredicate decides whether a failed primary query is retried with
// the reduced query.
type FallbackPredicate func(error) bool

// QueryWithFallback runs primary and, when it fails with an error accepted by
// shouldFallback, runs reduced once. The boolean reports whether reduced ran.
// A nil predicate falls back on every error.
func QueryWithFallback(
	ctx context.Context,
	query QueryFunc,
	primary notion.Query,
	reduced notion.Query,
	shouldFallback FallbackPredicate,
) (notion.QueryResult, bool, error) {
	result, err := query(ctx, primary)
	if err == nil {
		return result, false, nil
	}
	if shouldFallback != nil && !shouldFallback(err) {
		return notion.QueryResult{}, false, err
	}

	result, fallbackErr := query(ctx, reduced)
	if fallbackErr != nil {
		return notion.QueryResult{}, true, fmt.Errorf("fallback query after %v: %w", err, fallbackErr)
	}
	return result, true, nil
}

// scheduleQueries builds the published-only query and the date-only query
// used when the visibility property is missing from the database.
func scheduleQueries(names PropertyNames, dateFilter notion.Filter, direction notion.Direction, pageSize int) (notion.Query, notion.Query) {
	sorts := []notion.Sort{notion.SortBy(names.Date, direction)}

	primaryFilter := notion.And(
		notion.SelectEquals(names.Visibility, names.PublishedValue),
		dateFilter,
	)
	reducedFilter := dateFilter

	primary := notion.Query{Filter: &primaryFilter, Sorts: sorts, PageSize: pageSize}
	reduced := notion.Query{Filter: &reducedFilter, Sorts: sorts, PageSize: pageSize}
	return primary, reduced
}
