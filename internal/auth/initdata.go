package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// InitDataMaxAge bounds how old a signed initData payload may be.
const InitDataMaxAge = 24 * time.Hour

var (
	ErrMissingHash   = errors.New("missing initData hash")
	ErrInvalidHash   = errors.New("invalid initData hash")
	ErrExpired       = errors.New("initData is expired")
	ErrMissingUser   = errors.New("missing initData user")
	ErrInvalidUser   = errors.New("invalid initData user payload")
	ErrMissingBotKey = errors.New("missing TELEGRAM_BOT_TOKEN")
)

type initDataUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
}

// ValidateInitData checks the Mini App signature of raw against botToken and
// returns the user it carries.
func ValidateInitData(raw, botToken string, now time.Time) (Identity, error) {
	if botToken == "" {
		return Identity{}, ErrMissingBotKey
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return Identity{}, ErrInvalidHash
	}
	received := values.Get("hash")
	if received == "" {
		return Identity{}, ErrMissingHash
	}

	want := sign(values, botToken)
	got, err := hex.DecodeString(received)
	if err != nil || !hmac.Equal(got, want) {
		return Identity{}, ErrInvalidHash
	}

	if ts := values.Get("auth_date"); ts != "" {
		sec, err := strconv.ParseInt(ts, 10, 64)
		if err != nil || now.Sub(time.Unix(sec, 0)) > InitDataMaxAge {
			return Identity{}, ErrExpired
		}
	}

	rawUser := values.Get("user")
	if rawUser == "" {
		return Identity{}, ErrMissingUser
	}
	var u initDataUser
	if err := json.Unmarshal([]byte(rawUser), &u); err != nil || u.ID <= 0 {
		return Identity{}, ErrInvalidUser
	}
	return Identity{TelegramID: u.ID, FirstName: u.FirstName}, nil
}

// sign computes the WebApp data hash: HMAC-SHA256 of the sorted key=value
// lines (hash excluded) keyed by HMAC-SHA256("WebAppData", botToken).
func sign(values url.Values, botToken string) []byte {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k != "hash" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+values.Get(k))
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(lines, "\n")))
	return mac.Sum(nil)
}
