package handler

import (
	"context"
	"fmt"
	"net/http"

	"daybook/internal/logicalday"
	"daybook/internal/stats"
	"daybook/internal/store"

	"github.com/google/uuid"
)

type StatsHandler struct {
	*Base
}

func ratings(logs []store.DailyLog) []stats.Rating {
	out := make([]stats.Rating, 0, len(logs))
	for _, d := range logs {
		out = append(out, stats.Rating{Date: d.Date, Efficiency: d.RatingEfficiency, Social: d.RatingSocial})
	}
	return out
}

func completions(rows []store.HabitCompletion) []stats.Completion {
	out := make([]stats.Completion, 0, len(rows))
	for _, c := range rows {
		out = append(out, stats.Completion{HabitID: c.HabitID, Date: c.Date})
	}
	return out
}

// activeCompletions loads the active habits and their completions in [from, to].
func (h *StatsHandler) activeCompletions(ctx context.Context, userID uuid.UUID, from, to string) ([]store.Habit, []store.HabitCompletion, error) {
	habits, err := h.Store.ListHabits(ctx, userID, false)
	if err != nil {
		return nil, nil, fmt.Errorf("list habits: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(habits))
	for _, hb := range habits {
		ids = append(ids, hb.ID)
	}
	rows, err := h.Store.ListCompletions(ctx, userID, ids, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("list completions: %w", err)
	}
	return habits, rows, nil
}

// Summary reports averages and per-habit streaks over [fromDate, toDate].
// The range defaults to January 1st of the logical year through the logical
// today; current streaks are anchored at toDate.
func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	u, err := h.user(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	today := h.today(u)
	q := r.URL.Query()
	from, err := optionalDate(q.Get("fromDate"), fmt.Sprintf("%04d-01-01", logicalday.Year(today)))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	to, err := optionalDate(q.Get("toDate"), today)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx := r.Context()
	logs, err := h.Store.ListDailyLogs(ctx, u.ID, from, to)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	habits, rows, err := h.activeCompletions(ctx, u.ID, from, to)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	refs := make([]stats.HabitRef, 0, len(habits))
	for _, hb := range habits {
		refs = append(refs, stats.HabitRef{ID: hb.ID, Title: hb.Title})
	}
	writeJSON(w, http.StatusOK, stats.Summarize(from, to, ratings(logs), refs, completions(rows)))
}

type heatmapResponse struct {
	Year     int           `json:"year"`
	FromDate string        `json:"fromDate"`
	ToDate   string        `json:"toDate"`
	Metric   stats.Metric  `json:"metric"`
	HabitID  *uuid.UUID    `json:"habitId,omitempty"`
	Points   []stats.Point `json:"points"`
}

// Heatmap returns one point per day of the logical current year for the
// requested metric.
func (h *StatsHandler) Heatmap(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	metric, err := stats.ParseMetric(q.Get("metric"))
	if err != nil {
		h.fail(w, r, badRequest("metric must be one of avg, efficiency, social, habits, habit"))
		return
	}
	var habitID *uuid.UUID
	if metric == stats.MetricHabit {
		raw := q.Get("habitId")
		if raw == "" {
			h.fail(w, r, badRequest("Missing habitId"))
			return
		}
		id, err := parseID(raw)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		habitID = &id
	}

	u, err := h.user(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	year := logicalday.Year(h.today(u))
	if err := checkYear(year); err != nil {
		h.fail(w, r, err)
		return
	}
	resp := heatmapResponse{
		Year:     year,
		FromDate: fmt.Sprintf("%04d-01-01", year),
		ToDate:   fmt.Sprintf("%04d-12-31", year),
		Metric:   metric,
		HabitID:  habitID,
	}

	ctx := r.Context()
	switch metric {
	case stats.MetricHabit:
		rows, err := h.Store.ListCompletions(ctx, u.ID, []uuid.UUID{*habitID}, resp.FromDate, resp.ToDate)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		resp.Points = stats.HabitPoints(completions(rows))
	case stats.MetricHabits:
		habits, rows, err := h.activeCompletions(ctx, u.ID, resp.FromDate, resp.ToDate)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		resp.Points = stats.HabitsPoints(len(habits), completions(rows))
	default:
		logs, err := h.Store.ListDailyLogs(ctx, u.ID, resp.FromDate, resp.ToDate)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		resp.Points = stats.RatingPoints(metric, ratings(logs))
	}
	writeJSON(w, http.StatusOK, resp)
}
