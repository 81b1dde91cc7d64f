package handler

import (
	"context"
	"net/http"
	"time"

	"daybook/internal/cron"

	"github.com/rs/zerolog"
)

// Jobs runs the cron ticks.
type Jobs interface {
	Hourly(ctx context.Context, now time.Time) ([]cron.UserResult, error)
	RemindYesterday(ctx context.Context, now time.Time) (cron.YesterdaySummary, error)
	RemindMissing(ctx context.Context, now time.Time) (cron.MissingSummary, error)
	Birthdays(ctx context.Context, now time.Time) (cron.BirthdaySummary, error)
}

// CronHandler exposes the jobs to an external scheduler. Authorization is
// enforced by auth.RequireCron in front of it.
type CronHandler struct {
	Jobs Jobs
	Log  zerolog.Logger
	Now  func() time.Time
}

func (h *CronHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

type hourlyResponse struct {
	OK      bool              `json:"ok"`
	Summary []cron.UserResult `json:"summary"`
}

type remindResponse struct {
	OK bool `json:"ok"`
	cron.YesterdaySummary
}

type remindMissingResponse struct {
	OK bool `json:"ok"`
	cron.MissingSummary
}

func (h *CronHandler) failed(w http.ResponseWriter, job string, err error) {
	h.Log.Error().Err(err).Str("job", job).Msg("cron job failed")
	writeError(w, http.StatusInternalServerError, err.Error())
}

func (h *CronHandler) Hourly(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Jobs.Hourly(r.Context(), h.now())
	if err != nil {
		h.failed(w, cron.JobHourly, err)
		return
	}
	writeJSON(w, http.StatusOK, hourlyResponse{OK: true, Summary: summary})
}

func (h *CronHandler) Remind(w http.ResponseWriter, r *http.Request) {
	s, err := h.Jobs.RemindYesterday(r.Context(), h.now())
	if err != nil {
		h.failed(w, cron.JobRemind, err)
		return
	}
	writeJSON(w, http.StatusOK, remindResponse{OK: true, YesterdaySummary: s})
}

func (h *CronHandler) RemindMissing(w http.ResponseWriter, r *http.Request) {
	s, err := h.Jobs.RemindMissing(r.Context(), h.now())
	if err != nil {
		h.failed(w, cron.JobRemindMissing, err)
		return
	}
	writeJSON(w, http.StatusOK, remindMissingResponse{OK: true, MissingSummary: s})
}

func (h *CronHandler) Birthdays(w http.ResponseWriter, r *http.Request) {
	s, err := h.Jobs.Birthdays(r.Context(), h.now())
	if err != nil {
		h.failed(w, cron.JobBirthdays, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
