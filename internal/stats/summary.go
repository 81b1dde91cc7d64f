package stats

import (
	"sort"

	"github.com/google/uuid"
)

// Rating is the rated part of one daily log.
type Rating struct {
	Date       string
	Efficiency *int
	Social     *int
}

// Completion marks one habit as done on one date.
type Completion struct {
	HabitID uuid.UUID
	Date    string
}

// HabitRef identifies a habit in summaries.
type HabitRef struct {
	ID    uuid.UUID
	Title string
}

type HabitStreak struct {
	HabitID          uuid.UUID `json:"habitId"`
	Title            string    `json:"title"`
	CurrentStreak    int       `json:"currentStreak"`
	BestStreak       int       `json:"bestStreak"`
	TotalCompletions int       `json:"totalCompletions"`
}

type Summary struct {
	FromDate              string        `json:"fromDate"`
	ToDate                string        `json:"toDate"`
	AvgEfficiency         *float64      `json:"avgEfficiency"`
	AvgSocial             *float64      `json:"avgSocial"`
	AvgOverall            *float64      `json:"avgOverall"`
	DaysWithRatings       int           `json:"daysWithRatings"`
	DaysWithAnyCompletion int           `json:"daysWithAnyCompletion"`
	Streaks               []HabitStreak `json:"streaks"`
}

// Summarize aggregates ratings and completions in [from, to]. Current streaks
// are anchored at to.
func Summarize(from, to string, ratings []Rating, habits []HabitRef, completions []Completion) Summary {
	s := Summary{
		FromDate: from,
		ToDate:   to,
		Streaks:  make([]HabitStreak, 0, len(habits)),
	}

	var eff, soc, overall []float64
	for _, r := range ratings {
		if r.Efficiency != nil {
			eff = append(eff, float64(*r.Efficiency))
		}
		if r.Social != nil {
			soc = append(soc, float64(*r.Social))
		}
		if v, ok := dayAverage(r); ok {
			overall = append(overall, v)
			s.DaysWithRatings++
		}
	}
	s.AvgEfficiency = mean(eff)
	s.AvgSocial = mean(soc)
	s.AvgOverall = mean(overall)

	byHabit := make(map[uuid.UUID]map[string]struct{}, len(habits))
	days := make(map[string]struct{})
	for _, c := range completions {
		set, ok := byHabit[c.HabitID]
		if !ok {
			set = make(map[string]struct{})
			byHabit[c.HabitID] = set
		}
		set[c.Date] = struct{}{}
		days[c.Date] = struct{}{}
	}
	s.DaysWithAnyCompletion = len(days)

	for _, h := range habits {
		set := byHabit[h.ID]
		s.Streaks = append(s.Streaks, HabitStreak{
			HabitID:          h.ID,
			Title:            h.Title,
			CurrentStreak:    CurrentStreak(set, to),
			BestStreak:       BestStreak(sortedKeys(set)),
			TotalCompletions: len(set),
		})
	}

	return s
}

// dayAverage is the mean of whichever ratings a day has.
func dayAverage(r Rating) (float64, bool) {
	switch {
	case r.Efficiency != nil && r.Social != nil:
		return float64(*r.Efficiency+*r.Social) / 2, true
	case r.Efficiency != nil:
		return float64(*r.Efficiency), true
	case r.Social != nil:
		return float64(*r.Social), true
	}
	return 0, false
}

func mean(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	m := sum / float64(len(vals))
	return &m
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
