package handler

import (
	"net/http"
	"strconv"
	"strings"

	"daybook/internal/logicalday"
	"daybook/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	maxGoalTitle = 200
	minYear      = 1970
	maxYear      = 2500
)

type GoalHandler struct {
	*Base
}

type goalDTO struct {
	ID       uuid.UUID `json:"id"`
	Year     int       `json:"year"`
	Title    string    `json:"title"`
	IsActive bool      `json:"is_active"`
	Position int       `json:"position"`
}

func toGoalDTO(g store.YearGoal) goalDTO {
	return goalDTO{ID: g.ID, Year: g.Year, Title: g.Title, IsActive: g.IsActive, Position: g.Position}
}

type goalsResponse struct {
	Year  int       `json:"year"`
	Goals []goalDTO `json:"goals"`
}

type goalResponse struct {
	OK   bool    `json:"ok"`
	Goal goalDTO `json:"goal"`
}

func checkYear(year int) error {
	if year < minYear || year > maxYear {
		return badRequest("year must be between %d and %d", minYear, maxYear)
	}
	return nil
}

// List returns the goals of ?year=, the logical current year by default.
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	u, err := h.user(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	year := logicalday.Year(h.today(u))
	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil {
			h.fail(w, r, badRequest("invalid year"))
			return
		}
	}
	if err := checkYear(year); err != nil {
		h.fail(w, r, err)
		return
	}

	includeInactive := r.URL.Query().Get("includeInactive") == "true"
	goals, err := h.Store.ListGoals(r.Context(), u.ID, year, includeInactive)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := goalsResponse{Year: year, Goals: make([]goalDTO, 0, len(goals))}
	for _, g := range goals {
		resp.Goals = append(resp.Goals, toGoalDTO(g))
	}
	writeJSON(w, http.StatusOK, resp)
}

type createGoalRequest struct {
	Title string `json:"title" validate:"required|maxLen:200"`
	Year  *int   `json:"year"`
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
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
	year := logicalday.Year(h.today(u))
	if req.Year != nil {
		year = *req.Year
	}
	if err := checkYear(year); err != nil {
		h.fail(w, r, err)
		return
	}

	g, err := h.Store.CreateGoal(r.Context(), u.ID, year, req.Title)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goalResponse{OK: true, Goal: toGoalDTO(*g)})
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	p, err := req.toPatch(maxGoalTitle)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.user(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	g, err := h.Store.UpdateGoal(r.Context(), u.ID, id, p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goalResponse{OK: true, Goal: toGoalDTO(*g)})
}

// Delete deactivates the goal; rows are never removed.
func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.user(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Store.DeactivateGoal(r.Context(), u.ID, id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}
