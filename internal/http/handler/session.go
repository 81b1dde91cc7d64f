package handler

import (
	"net/http"
	"time"

	"daybook/internal/auth"
)

type SessionHandler struct {
	Sessions *auth.Sessions
	Now      func() time.Time
}

type sessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Create issues a bearer token for the authenticated Telegram user so the
// Mini App can stop sending initData on every call.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
		return
	}
	if h.Sessions == nil || !h.Sessions.Enabled() {
		writeError(w, http.StatusNotFound, auth.ErrSessionsDisabled.Error())
		return
	}
	token, err := h.Sessions.Sign(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, ExpiresAt: now().Add(auth.SessionTTL).UTC()})
}
