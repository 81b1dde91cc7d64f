package handler

import (
	"net/http"
	"strconv"
	"unicode/utf8"

	"daybook/internal/patch"
	"daybook/internal/store"
)

const maxJournalRunes = 10000

type DayHandler struct {
	*Base
	NotesDefaultPageSize int
	NotesMaxPageSize     int
}

type rateRequest struct {
	Date        string              `json:"date"`
	Efficiency  patch.Field[int]    `json:"efficiency"`
	Social      patch.Field[int]    `json:"social"`
	JournalText patch.Field[string] `json:"journalText"`
}

func (req rateRequest) check() error {
	if v, ok := req.Efficiency.Get(); ok && (v < 1 || v > 5) {
		return badRequest("efficiency must be between 1 and 5")
	}
	if v, ok := req.Social.Get(); ok && (v < 1 || v > 5) {
		return badRequest("social must be between 1 and 5")
	}
	if v, ok := req.JournalText.Get(); ok && utf8.RuneCountInString(v) > maxJournalRunes {
		return badRequest("journalText must be at most %d characters", maxJournalRunes)
	}
	return nil
}

type rateResponse struct {
	OK   bool   `json:"ok"`
	Date string `json:"date"`
}

// Rate merges the given ratings and journal text into the day's log. Only
// fields present in the body are touched; null clears a field.
func (h *DayHandler) Rate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := req.check(); err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.user(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	date, err := optionalDate(req.Date, h.today(u))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	p := store.DailyLogPatch{
		JournalText:      req.JournalText,
		RatingEfficiency: req.Efficiency,
		RatingSocial:     req.Social,
	}
	if _, err := h.Store.UpsertDailyLog(r.Context(), u.ID, date, p); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rateResponse{OK: true, Date: date})
}

type noteDTO struct {
	Date             string `json:"date"`
	JournalText      string `json:"journalText"`
	RatingEfficiency *int   `json:"ratingEfficiency"`
	RatingSocial     *int   `json:"ratingSocial"`
}

type notesResponse struct {
	Items      []noteDTO `json:"items"`
	NextCursor *string   `json:"nextCursor"`
}

func (h *DayHandler) pageSize(raw string) (int, error) {
	if raw == "" {
		return h.NotesDefaultPageSize, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > h.NotesMaxPageSize {
		return 0, badRequest("limit must be between 1 and %d", h.NotesMaxPageSize)
	}
	return n, nil
}

// Notes pages journal entries written before the logical today, newest
// first. nextCursor is the date of the last item when more remain.
func (h *DayHandler) Notes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := h.pageSize(q.Get("limit"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cursor, err := optionalDate(q.Get("cursor"), "")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.user(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rows, err := h.Store.ListNotes(r.Context(), u.ID, h.today(u), cursor, limit+1)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	more := len(rows) > limit
	if more {
		rows = rows[:limit]
	}
	resp := notesResponse{Items: make([]noteDTO, 0, len(rows))}
	for _, d := range rows {
		n := noteDTO{Date: d.Date, RatingEfficiency: d.RatingEfficiency, RatingSocial: d.RatingSocial}
		if d.JournalText != nil {
			n.JournalText = *d.JournalText
		}
		resp.Items = append(resp.Items, n)
	}
	if more && len(resp.Items) > 0 {
		last := resp.Items[len(resp.Items)-1].Date
		resp.NextCursor = &last
	}
	writeJSON(w, http.StatusOK, resp)
}
