package handler

import (
	"context"
	"io"
	"net/http"

	"daybook/internal/telegram"

	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
)

type UpdateHandler interface {
	HandleUpdate(ctx context.Context, u *models.Update) error
}

type WebhookHandler struct {
	Bot    UpdateHandler
	Secret string
	Log    zerolog.Logger
}

// Serve accepts one Telegram update. Processing errors are logged and still
// acknowledged so Telegram does not redeliver the update.
func (h *WebhookHandler) Serve(w http.ResponseWriter, r *http.Request) {
	if !telegram.WebhookAuthorized(r, h.Secret) {
		writeError(w, http.StatusUnauthorized, "Invalid Telegram webhook secret")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}
	u, err := telegram.DecodeUpdate(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid update")
		return
	}

	if err := h.Bot.HandleUpdate(r.Context(), u); err != nil {
		h.Log.Error().Err(err).Int64("updateId", u.ID).Msg("webhook update failed")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
