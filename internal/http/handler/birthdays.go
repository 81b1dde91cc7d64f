package handler

import (
	"net/http"
	"strings"

	"daybook/internal/logicalday"
	"daybook/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type BirthdayHandler struct {
	*Base
}

type birthdayDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Date string    `json:"date"`
}

func toBirthdayDTO(b store.Birthday) birthdayDTO {
	return birthdayDTO{ID: b.ID, Name: b.Name, Date: b.Date}
}

type birthdaysResponse struct {
	Birthdays []birthdayDTO `json:"birthdays"`
}

type birthdayResponse struct {
	Birthday birthdayDTO `json:"birthday"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type birthdayRequest struct {
	Name string `json:"name" validate:"required|maxLen:120"`
	Date string `json:"date" validate:"required"`
}

func (h *BirthdayHandler) decode(w http.ResponseWriter, r *http.Request) (birthdayRequest, error) {
	var req birthdayRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return req, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := checkStruct(&req); err != nil {
		return req, err
	}
	if !logicalday.Valid(req.Date) {
		return req, badRequest("date must be YYYY-MM-DD")
	}
	return req, nil
}

func (h *BirthdayHandler) List(w http.ResponseWriter, r *http.Request) {
	u, err := h.user(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rows, err := h.Store.ListBirthdays(r.Context(), u.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := birthdaysResponse{Birthdays: make([]birthdayDTO, 0, len(rows))}
	for _, b := range rows {
		resp.Birthdays = append(resp.Birthdays, toBirthdayDTO(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BirthdayHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := h.decode(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.user(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	b, err := h.Store.CreateBirthday(r.Context(), u.ID, req.Name, req.Date)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, birthdayResponse{Birthday: toBirthdayDTO(*b)})
}

// Update replaces name and date. Someone else's birthday yields 403.
func (h *BirthdayHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req, err := h.decode(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.user(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	b, err := h.Store.UpdateBirthday(r.Context(), u.ID, id, req.Name, req.Date)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, birthdayResponse{Birthday: toBirthdayDTO(*b)})
}

func (h *BirthdayHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.Store.DeleteBirthday(r.Context(), u.ID, id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
