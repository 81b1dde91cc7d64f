package telegram

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-telegram/bot/models"
	"github.com/goccy/go-json"
)

// SecretHeader carries the secret configured with setWebhook.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// DecodeUpdate parses a webhook body.
func DecodeUpdate(body []byte) (*models.Update, error) {
	var u models.Update
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// WebhookAuthorized checks the secret header. An empty expected secret
// disables the check.
func WebhookAuthorized(r *http.Request, expected string) bool {
	if expected == "" {
		return true
	}
	got := r.Header.Get(SecretHeader)
	return got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}
