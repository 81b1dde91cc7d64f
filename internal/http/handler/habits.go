package handler

import (
	"net/http"
	"strings"

	"daybook/internal/patch"
	"daybook/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	maxHabitTitle = 80
	maxReorderIDs = 200
)

type HabitHandler struct {
	*Base
}

type habitDTO struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	IsActive bool      `json:"is_active"`
	Position int       `json:"position"`
}

func habitDTOs(hs []store.Habit) []habitDTO {
	out := make([]habitDTO, 0, len(hs))
	for _, h := range hs {
		out = append(out, habitDTO{ID: h.ID, Title: h.Title, IsActive: h.IsActive, Position: h.Position})
	}
	return out
}

type habitsResponse struct {
	Habits []habitDTO `json:"habits"`
}

type habitResponse struct {
	OK    bool     `json:"ok"`
	Habit habitDTO `json:"habit"`
}

func (h *HabitHandler) List(w http.ResponseWriter, r *http.Request) {
	u, err := h.user(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	includeInactive := r.URL.Query().Get("includeInactive") == "true"
	habits, err := h.Store.ListHabits(r.Context(), u.ID, includeInactive)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, habitsResponse{Habits: habitDTOs(habits)})
}

type createHabitRequest struct {
	Title string `json:"title" validate:"required|maxLen:80"`
}

func (h *HabitHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createHabitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := checkStruct(&req); err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.user(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	habit, err := h.Store.CreateHabit(r.Context(), u.ID, req.Title)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, habitResponse{OK: true, Habit: habitDTOs([]store.Habit{*habit})[0]})
}

// itemPatchRequest is the PATCH body shared by habits and goals.
type itemPatchRequest struct {
	Title    patch.Field[string] `json:"title"`
	IsActive patch.Field[bool]   `json:"isActive"`
	Position patch.Field[int]    `json:"position"`
}

// toPatch validates the body. Null is treated like an absent field because
// none of these columns is nullable.
func (req itemPatchRequest) toPatch(maxTitle int) (store.ItemPatch, error) {
	var p store.ItemPatch
	if v, ok := req.Title.Get(); ok {
		v = strings.TrimSpace(v)
		if v == "" || len([]rune(v)) > maxTitle {
			return p, badRequest("title must be 1..%d characters", maxTitle)
		}
		p.Title = patch.Value(v)
	}
	if v, ok := req.IsActive.Get(); ok {
		p.IsActive = patch.Value(v)
	}
	if v, ok := req.Position.Get(); ok {
		if v < 0 {
			return p, badRequest("position must be non-negative")
		}
		p.Position = patch.Value(v)
	}
	return p, nil
}

func (h *HabitHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req itemPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := req.toPatch(maxHabitTitle)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.user(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	habit, err := h.Store.UpdateHabit(r.Context(), u.ID, id, p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, habitResponse{OK: true, Habit: habitDTOs([]store.Habit{*habit})[0]})
}

type reorderRequest struct {
	OrderedIDs []string `json:"orderedIds"`
}

// Reorder assigns positions in the given order. Unknown or foreign ids
// reject the whole request.
func (h *HabitHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if len(req.OrderedIDs) == 0 || len(req.OrderedIDs) > maxReorderIDs {
		h.fail(w, r, badRequest("orderedIds must hold 1..%d ids", maxReorderIDs))
		return
	}
	ids := make([]uuid.UUID, 0, len(req.OrderedIDs))
	for _, raw := range req.OrderedIDs {
		id, err := parseID(raw)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		ids = append(ids, id)
	}

	u, err := h.user(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Store.ReorderHabits(r.Context(), u.ID, ids); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

type toggleRequest struct {
	HabitID string `json:"habitId" validate:"required"`
	Date    string `json:"date"`
}

type toggleResponse struct {
	OK        bool   `json:"ok"`
	Completed bool   `json:"completed"`
	Date      string `json:"date"`
}

// Toggle flips the completion of a habit on a date, the logical today by
// default.
func (h *HabitHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := checkStruct(&req); err != nil {
		h.fail(w, r, err)
		return
	}
	habitID, err := parseID(req.HabitID)
	if err != nil {
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
	completed, err := h.Store.ToggleCompletion(r.Context(), u.ID, habitID, date)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{OK: true, Completed: completed, Date: date})
}
