package auth

import (
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const botToken = "123456:TEST-token"

func signedInitData(t *testing.T, authDate time.Time, user string) string {
	t.Helper()
	v := url.Values{}
	v.Set("query_id", "AAE")
	v.Set("auth_date", strconv.FormatInt(authDate.Unix(), 10))
	v.Set("user", user)
	v.Set("hash", hex.EncodeToString(sign(v, botToken)))
	return v.Encode()
}

func TestValidateInitData(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	raw := signedInitData(t, now.Add(-time.Hour), `{"id":42,"first_name":"Ann"}`)

	id, err := ValidateInitData(raw, botToken, now)
	require.NoError(t, err)
	assert.Equal(t, Identity{TelegramID: 42, FirstName: "Ann"}, id)
}

func TestValidateInitData_Rejects(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	good := signedInitData(t, now.Add(-time.Hour), `{"id":42,"first_name":"Ann"}`)

	tampered, _ := url.ParseQuery(good)
	tampered.Set("user", `{"id":43,"first_name":"Ann"}`)

	noHash, _ := url.ParseQuery(good)
	noHash.Del("hash")

	tests := []struct {
		name  string
		raw   string
		token string
		want  error
	}{
		{"tampered", tampered.Encode(), botToken, ErrInvalidHash},
		{"wrong token", good, "other", ErrInvalidHash},
		{"no hash", noHash.Encode(), botToken, ErrMissingHash},
		{"no bot token", good, "", ErrMissingBotKey},
		{"expired", signedInitData(t, now.Add(-25*time.Hour), `{"id":42}`), botToken, ErrExpired},
		{"bad user", signedInitData(t, now, `{"id":0}`), botToken, ErrInvalidUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateInitData(tt.raw, tt.token, now)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSessions(t *testing.T) {
	s := NewSessions("secret")
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	token, err := s.Sign(Identity{TelegramID: 7, FirstName: "Bo"})
	require.NoError(t, err)

	id, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, Identity{TelegramID: 7, FirstName: "Bo"}, id)

	_, err = NewSessions("other").Verify(token)
	assert.Error(t, err)

	s.now = func() time.Time { return now.Add(SessionTTL + time.Minute) }
	_, err = s.Verify(token)
	assert.Error(t, err)

	_, err = NewSessions("").Sign(Identity{TelegramID: 1})
	assert.ErrorIs(t, err, ErrSessionsDisabled)
}

func TestAuthenticate(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	sessions := NewSessions("secret")
	token, err := sessions.Sign(Identity{TelegramID: 9})
	require.NoError(t, err)

	a := &Authenticator{BotToken: botToken, Sessions: sessions, Now: func() time.Time { return now }}

	r := httptest.NewRequest(http.MethodGet, "/api/habits", nil)
	r.Header.Set(InitDataHeader, signedInitData(t, now, `{"id":42,"first_name":"Ann"}`))
	id, err := a.Authenticate(r)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id.TelegramID)

	r = httptest.NewRequest(http.MethodGet, "/api/habits?mockTelegramId=5", nil)
	_, err = a.Authenticate(r)
	assert.ErrorIs(t, err, ErrUnauthorized)

	a.BypassAuth = true
	id, err = a.Authenticate(r)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id.TelegramID)

	r = httptest.NewRequest(http.MethodGet, "/api/habits", nil)
	r.Header.Set(MockIDHeader, "6")
	id, err = a.Authenticate(r)
	require.NoError(t, err)
	assert.Equal(t, int64(6), id.TelegramID)

	r = httptest.NewRequest(http.MethodGet, "/api/habits", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	id, err = a.Authenticate(r)
	require.NoError(t, err)
	assert.Equal(t, int64(9), id.TelegramID)
}

func TestRequireUser(t *testing.T) {
	a := &Authenticator{BypassAuth: true}
	var got Identity
	h := RequireUser(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x?mockTelegramId=11", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(11), got.TelegramID)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestCronAuthorized(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		header string
		value  string
		want   bool
	}{
		{"bearer", "s", "Authorization", "Bearer s", true},
		{"legacy", "s", CronSecretHeader, "s", true},
		{"wrong bearer", "s", "Authorization", "Bearer x", false},
		{"missing", "s", "", "", false},
		{"empty secret", "", "Authorization", "Bearer ", false},
		{"empty secret legacy", "", CronSecretHeader, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/cron/hourly", nil)
			if tt.header != "" {
				r.Header.Set(tt.header, tt.value)
			}
			assert.Equal(t, tt.want, CronAuthorized(r, tt.secret))
		})
	}
}

func TestRequireCron_NoSideEffects(t *testing.T) {
	called := false
	h := RequireCron("s")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cron/hourly", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
	assert.False(t, called)
}

func TestTZOffset(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?tzOffsetMinutes=180", nil)
	assert.Equal(t, 180, TZOffset(r, 840))

	r = httptest.NewRequest(http.MethodGet, "/x", nil)
	r.Header.Set(TZOffsetHeader, "-330")
	assert.Equal(t, -330, TZOffset(r, 840))

	r = httptest.NewRequest(http.MethodGet, "/x?tzOffsetMinutes=9999", nil)
	assert.Equal(t, 0, TZOffset(r, 840))
}
