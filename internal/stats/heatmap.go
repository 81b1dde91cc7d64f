package stats

import (
	"errors"
	"math"
	"sort"
)

// Metric selects what a heatmap point measures.
type Metric string

const (
	MetricAvg        Metric = "avg"
	MetricEfficiency Metric = "efficiency"
	MetricSocial     Metric = "social"
	MetricHabits     Metric = "habits"
	MetricHabit      Metric = "habit"
)

var ErrUnknownMetric = errors.New("unknown metric")

// ParseMetric maps an empty value to MetricAvg.
func ParseMetric(raw string) (Metric, error) {
	switch m := Metric(raw); m {
	case "":
		return MetricAvg, nil
	case MetricAvg, MetricEfficiency, MetricSocial, MetricHabits, MetricHabit:
		return m, nil
	}
	return "", ErrUnknownMetric
}

// Point is one heatmap cell, valued 0..5.
type Point struct {
	Date  string `json:"date"`
	Value int    `json:"value"`
}

// RatingPoints renders one point per rated day for avg, efficiency or social.
// Missing ratings count as 0.
func RatingPoints(metric Metric, ratings []Rating) []Point {
	out := make([]Point, 0, len(ratings))
	for _, r := range ratings {
		var v int
		switch metric {
		case MetricEfficiency:
			v = deref(r.Efficiency)
		case MetricSocial:
			v = deref(r.Social)
		default:
			if avg, ok := dayAverage(r); ok {
				v = int(math.Round(avg))
			}
		}
		out = append(out, Point{Date: r.Date, Value: v})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// HabitsPoints scales the share of active habits done per day to 1..5.
func HabitsPoints(activeHabits int, completions []Completion) []Point {
	if activeHabits <= 0 {
		return []Point{}
	}
	counts := make(map[string]int)
	for _, c := range completions {
		counts[c.Date]++
	}
	out := make([]Point, 0, len(counts))
	for date, n := range counts {
		ratio := math.Min(1, float64(n)/float64(activeHabits))
		v := int(math.Round(ratio * 5))
		if v < 1 {
			v = 1
		}
		out = append(out, Point{Date: date, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// HabitPoints marks every completed day of a single habit with 5.
func HabitPoints(completions []Completion) []Point {
	seen := make(map[string]struct{}, len(completions))
	for _, c := range completions {
		seen[c.Date] = struct{}{}
	}
	out := make([]Point, 0, len(seen))
	for _, d := range sortedKeys(seen) {
		out = append(out, Point{Date: d, Value: 5})
	}
	return out
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
