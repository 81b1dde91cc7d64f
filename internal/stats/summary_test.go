package stats

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ip(v int) *int         { return &v }
func fp(v float64) *float64 { return &v }

func TestSummarize(t *testing.T) {
	run := HabitRef{ID: uuid.New(), Title: "Run"}
	read := HabitRef{ID: uuid.New(), Title: "Read"}

	ratings := []Rating{
		{Date: "2024-01-01", Efficiency: ip(4), Social: ip(2)},
		{Date: "2024-01-02", Efficiency: ip(5)},
		{Date: "2024-01-03"},
	}
	completions := []Completion{
		{HabitID: run.ID, Date: "2024-01-03"},
		{HabitID: run.ID, Date: "2024-01-04"},
		{HabitID: run.ID, Date: "2024-01-05"},
		{HabitID: run.ID, Date: "2024-01-01"},
		{HabitID: read.ID, Date: "2024-01-03"},
	}

	got := Summarize("2024-01-01", "2024-01-05", ratings, []HabitRef{run, read}, completions)

	want := Summary{
		FromDate:              "2024-01-01",
		ToDate:                "2024-01-05",
		AvgEfficiency:         fp(4.5),
		AvgSocial:             fp(2),
		AvgOverall:            fp(4),
		DaysWithRatings:       2,
		DaysWithAnyCompletion: 4,
		Streaks: []HabitStreak{
			{HabitID: run.ID, Title: "Run", CurrentStreak: 3, BestStreak: 3, TotalCompletions: 4},
			{HabitID: read.ID, Title: "Read", CurrentStreak: 0, BestStreak: 1, TotalCompletions: 1},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Summarize mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize("2024-01-01", "2024-01-31", nil, nil, nil)
	assert.Nil(t, got.AvgEfficiency)
	assert.Nil(t, got.AvgOverall)
	assert.Zero(t, got.DaysWithRatings)
	assert.NotNil(t, got.Streaks)
	assert.Empty(t, got.Streaks)
}

func TestRatingPoints(t *testing.T) {
	ratings := []Rating{
		{Date: "2024-02-02", Efficiency: ip(3), Social: ip(4)},
		{Date: "2024-02-01", Social: ip(2)},
	}

	avg := RatingPoints(MetricAvg, ratings)
	require.Len(t, avg, 2)
	assert.Equal(t, Point{Date: "2024-02-01", Value: 2}, avg[0])
	assert.Equal(t, Point{Date: "2024-02-02", Value: 4}, avg[1])

	eff := RatingPoints(MetricEfficiency, ratings)
	assert.Equal(t, []Point{{"2024-02-01", 0}, {"2024-02-02", 3}}, eff)
}

func TestHabitsPoints(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	completions := []Completion{
		{HabitID: a, Date: "2024-02-01"},
		{HabitID: b, Date: "2024-02-01"},
		{HabitID: a, Date: "2024-02-02"},
	}
	got := HabitsPoints(4, completions)
	assert.Equal(t, []Point{{"2024-02-01", 3}, {"2024-02-02", 1}}, got)
	assert.Empty(t, HabitsPoints(0, completions))
}

func TestHabitPoints(t *testing.T) {
	id := uuid.New()
	got := HabitPoints([]Completion{{id, "2024-02-03"}, {id, "2024-02-01"}, {id, "2024-02-03"}})
	assert.Equal(t, []Point{{"2024-02-01", 5}, {"2024-02-03", 5}}, got)
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("")
	require.NoError(t, err)
	assert.Equal(t, MetricAvg, m)

	m, err = ParseMetric("habit")
	require.NoError(t, err)
	assert.Equal(t, MetricHabit, m)

	_, err = ParseMetric("mood")
	assert.ErrorIs(t, err, ErrUnknownMetric)
}
