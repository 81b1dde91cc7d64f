package handler

import (
	"errors"
	"net/http"
	"strings"

	"daybook/internal/digest"
	"daybook/internal/logicalday"
	"daybook/internal/store"

	"github.com/google/uuid"
)

type UserHandler struct {
	*Base
}

type goalRef struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Position int       `json:"position"`
}

type dayLogDTO struct {
	RatingEfficiency *int    `json:"rating_efficiency"`
	RatingSocial     *int    `json:"rating_social"`
	JournalText      *string `json:"journal_text"`
}

type statusResponse struct {
	FirstName         *string     `json:"firstName"`
	Date              string      `json:"date"`
	YearGoals         []goalRef   `json:"yearGoals"`
	Habits            []habitDTO  `json:"habits"`
	CompletedHabitIDs []uuid.UUID `json:"completedHabitIds"`
	DayLog            *dayLogDTO  `json:"dayLog"`
}

// Status returns the snapshot the Mini App renders for one day: active
// habits, which of them are done, the day's log and the year's goals.
func (h *UserHandler) Status(w http.ResponseWriter, r *http.Request) {
	u, err := h.user(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	date, err := optionalDate(r.URL.Query().Get("date"), h.today(u))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	year := logicalday.Year(date)
	if year < minYear || year > maxYear {
		h.fail(w, r, badRequest("Invalid year"))
		return
	}

	ctx := r.Context()
	habits, err := h.Store.ListHabits(ctx, u.ID, false)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	done, err := h.Store.CompletedHabitIDs(ctx, u.ID, date)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	goals, err := h.Store.ListGoals(ctx, u.ID, year, false)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var day *dayLogDTO
	dl, err := h.Store.GetDailyLog(ctx, u.ID, date)
	switch {
	case err == nil:
		day = &dayLogDTO{
			RatingEfficiency: dl.RatingEfficiency,
			RatingSocial:     dl.RatingSocial,
			JournalText:      dl.JournalText,
		}
	case !errors.Is(err, store.ErrNotFound):
		h.fail(w, r, err)
		return
	}

	resp := statusResponse{
		FirstName:         u.FirstName,
		Date:              date,
		YearGoals:         make([]goalRef, 0, len(goals)),
		Habits:            habitDTOs(habits),
		CompletedHabitIDs: done,
		DayLog:            day,
	}
	if resp.CompletedHabitIDs == nil {
		resp.CompletedHabitIDs = []uuid.UUID{}
	}
	for _, g := range goals {
		resp.YearGoals = append(resp.YearGoals, goalRef{ID: g.ID, Title: g.Title, Position: g.Position})
	}
	writeJSON(w, http.StatusOK, resp)
}

type settingsRequest struct {
	DigestTime string `json:"digestTime"`
}

type settingsResponse struct {
	Success    bool   `json:"success"`
	DigestTime string `json:"digestTime"`
}

// Settings stores the user's preferred digest time.
func (h *UserHandler) Settings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	req.DigestTime = strings.TrimSpace(req.DigestTime)
	if !digest.ValidTime(req.DigestTime) {
		h.fail(w, r, badRequest("digestTime must be HH:mm"))
		return
	}

	u, err := h.user(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Store.SetDigestTime(r.Context(), u.ID, req.DigestTime); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Success: true, DigestTime: req.DigestTime})
}
