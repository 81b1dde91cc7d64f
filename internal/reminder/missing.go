// Package reminder detects days without journal data and composes the
// reminder messages sent about them.
package reminder

import (
	"context"
	"fmt"

	"daybook/internal/logicalday"

	"github.com/google/uuid"
)

// DateSource answers range queries over date-stamped rows of one user.
// Both bounds are inclusive YYYY-MM-DD dates.
type DateSource interface {
	ListDailyLogDates(ctx context.Context, userID uuid.UUID, from, to string) ([]string, error)
	ListCompletionDates(ctx context.Context, userID uuid.UUID, from, to string) ([]string, error)
}

// FindMissingDays returns the days in [anchor-lookback, anchor-1] that have
// neither a daily log nor a habit completion, newest first.
func FindMissingDays(ctx context.Context, src DateSource, userID uuid.UUID, lookbackDays int, anchor string) ([]string, error) {
	if lookbackDays < 1 {
		return nil, nil
	}
	if !logicalday.Valid(anchor) {
		return nil, fmt.Errorf("invalid anchor date %q", anchor)
	}

	from := logicalday.AddDays(anchor, -lookbackDays)
	to := logicalday.AddDays(anchor, -1)

	present, err := presentDates(ctx, src, userID, from, to)
	if err != nil {
		return nil, err
	}

	missing := make([]string, 0, lookbackDays)
	for i := 1; i <= lookbackDays; i++ {
		d := logicalday.AddDays(anchor, -i)
		if _, ok := present[d]; !ok {
			missing = append(missing, d)
		}
	}
	return missing, nil
}

// HasData reports whether date has a daily log or at least one completion.
func HasData(ctx context.Context, src DateSource, userID uuid.UUID, date string) (bool, error) {
	present, err := presentDates(ctx, src, userID, date, date)
	if err != nil {
		return false, err
	}
	_, ok := present[date]
	return ok, nil
}

func presentDates(ctx context.Context, src DateSource, userID uuid.UUID, from, to string) (map[string]struct{}, error) {
	logs, err := src.ListDailyLogDates(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list daily log dates: %w", err)
	}
	done, err := src.ListCompletionDates(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list completion dates: %w", err)
	}

	set := make(map[string]struct{}, len(logs)+len(done))
	for _, d := range logs {
		set[d] = struct{}{}
	}
	for _, d := range done {
		set[d] = struct{}{}
	}
	return set, nil
}
