package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"daybook/internal/logicalday"

	"github.com/goccy/go-json"
)

var ErrUnauthorized = errors.New("unauthorized")

const (
	InitDataHeader   = "X-Telegram-Init-Data"
	MockIDHeader     = "X-Mock-Telegram-Id"
	TZOffsetHeader   = "X-Tz-Offset-Minutes"
	CronSecretHeader = "X-Cron-Secret"
)

// Identity is the authenticated Telegram user of a request.
type Identity struct {
	TelegramID int64
	FirstName  string
}

type ctxKey string

const identityKey ctxKey = "identity"

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// Authenticator resolves the Telegram user of a Mini App request.
type Authenticator struct {
	BotToken   string
	BypassAuth bool
	Sessions   *Sessions
	Now        func() time.Time
}

func parseTelegramID(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Authenticate tries, in order: the dev bypass query parameter, signed
// initData, the dev bypass header, and a bearer session token.
func (a *Authenticator) Authenticate(r *http.Request) (Identity, error) {
	if a.BypassAuth {
		if id, ok := parseTelegramID(r.URL.Query().Get("mockTelegramId")); ok {
			return Identity{TelegramID: id}, nil
		}
	}

	if initData := r.Header.Get(InitDataHeader); initData != "" {
		now := time.Now
		if a.Now != nil {
			now = a.Now
		}
		return ValidateInitData(initData, a.BotToken, now())
	}

	if a.BypassAuth {
		if id, ok := parseTelegramID(r.Header.Get(MockIDHeader)); ok {
			return Identity{TelegramID: id}, nil
		}
	}

	if token, ok := bearer(r); ok && a.Sessions != nil && a.Sessions.Enabled() {
		return a.Sessions.Verify(token)
	}
	return Identity{}, fmt.Errorf("%w: missing x-telegram-init-data header", ErrUnauthorized)
}

// RequireUser rejects requests without a valid Telegram identity.
func RequireUser(a *Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := a.Authenticate(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// CronAuthorized accepts "Authorization: Bearer <secret>" or the legacy
// x-cron-secret header. An empty secret authorizes nothing.
func CronAuthorized(r *http.Request, secret string) bool {
	if secret == "" {
		return false
	}
	if token, ok := bearer(r); ok && equal(token, secret) {
		return true
	}
	legacy := r.Header.Get(CronSecretHeader)
	return legacy != "" && equal(legacy, secret)
}

func RequireCron(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !CronAuthorized(r, secret) {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TZOffset reads the client offset from the query or header, clamped to limit.
func TZOffset(r *http.Request, limit int) int {
	raw := r.URL.Query().Get("tzOffsetMinutes")
	if raw == "" {
		raw = r.Header.Get(TZOffsetHeader)
	}
	return logicalday.ClampOffset(raw, limit)
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" || !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(h, "Bearer "), true
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{msg})
}
