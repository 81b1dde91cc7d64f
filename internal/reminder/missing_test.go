package reminder

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rangeCall struct {
	kind     string
	from, to string
}

type fakeSource struct {
	logs   []string
	done   []string
	logErr error
	calls  []rangeCall
}

func inRange(dates []string, from, to string) []string {
	var out []string
	for _, d := range dates {
		if d >= from && d <= to {
			out = append(out, d)
		}
	}
	return out
}

func (f *fakeSource) ListDailyLogDates(_ context.Context, _ uuid.UUID, from, to string) ([]string, error) {
	f.calls = append(f.calls, rangeCall{"logs", from, to})
	if f.logErr != nil {
		return nil, f.logErr
	}
	return inRange(f.logs, from, to), nil
}

func (f *fakeSource) ListCompletionDates(_ context.Context, _ uuid.UUID, from, to string) ([]string, error) {
	f.calls = append(f.calls, rangeCall{"completions", from, to})
	return inRange(f.done, from, to), nil
}

func TestFindMissingDays_OnlyDayThreeFilled(t *testing.T) {
	src := &fakeSource{done: []string{"2024-01-07"}}

	got, err := FindMissingDays(context.Background(), src, uuid.New(), 7, "2024-01-10")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"2024-01-09",
		"2024-01-08",
		"2024-01-06",
		"2024-01-05",
		"2024-01-04",
		"2024-01-03",
	}, got)
}

func TestFindMissingDays_TwoRangeQueries(t *testing.T) {
	src := &fakeSource{logs: []string{"2024-03-01"}}

	_, err := FindMissingDays(context.Background(), src, uuid.New(), 30, "2024-03-02")
	require.NoError(t, err)

	assert.Equal(t, []rangeCall{
		{"logs", "2024-02-01", "2024-03-01"},
		{"completions", "2024-02-01", "2024-03-01"},
	}, src.calls)
}

func TestFindMissingDays_LogOrCompletionCounts(t *testing.T) {
	src := &fakeSource{
		logs: []string{"2024-05-02"},
		done: []string{"2024-05-01"},
	}
	got, err := FindMissingDays(context.Background(), src, uuid.New(), 3, "2024-05-04")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-05-03"}, got)
}

func TestFindMissingDays_NonPositiveLookback(t *testing.T) {
	src := &fakeSource{}
	got, err := FindMissingDays(context.Background(), src, uuid.New(), 0, "2024-05-04")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, src.calls)
}

func TestFindMissingDays_SourceError(t *testing.T) {
	boom := errors.New("db down")
	src := &fakeSource{logErr: boom}
	_, err := FindMissingDays(context.Background(), src, uuid.New(), 7, "2024-05-04")
	assert.ErrorIs(t, err, boom)
}

func TestFindMissingDays_InvalidAnchor(t *testing.T) {
	_, err := FindMissingDays(context.Background(), &fakeSource{}, uuid.New(), 7, "05/04/2024")
	assert.Error(t, err)
}

func TestHasData(t *testing.T) {
	src := &fakeSource{done: []string{"2024-05-01"}}

	ok, err := HasData(context.Background(), src, uuid.New(), "2024-05-01")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = HasData(context.Background(), src, uuid.New(), "2024-05-02")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMissingDaysText(t *testing.T) {
	txt := MissingDaysText([]string{"2024-05-03", "2024-05-01"})
	assert.Contains(t, txt, "• 2024-05-03\n• 2024-05-01")
}
