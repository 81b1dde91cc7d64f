package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is how long a Mini App session token stays valid.
const SessionTTL = 7 * 24 * time.Hour

var ErrSessionsDisabled = errors.New("sessions are not configured")

type Sessions struct {
	secret []byte
	now    func() time.Time
}

func NewSessions(secret string) *Sessions {
	return &Sessions{secret: []byte(secret), now: time.Now}
}

func (s *Sessions) Enabled() bool { return len(s.secret) > 0 }

// Sign issues a token whose subject is the Telegram user id.
func (s *Sessions) Sign(id Identity) (string, error) {
	if !s.Enabled() {
		return "", ErrSessionsDisabled
	}
	now := s.now()
	claims := jwt.MapClaims{
		"sub": id.TelegramID,
		"iat": now.Unix(),
		"exp": now.Add(SessionTTL).Unix(),
	}
	if id.FirstName != "" {
		claims["name"] = id.FirstName
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

func (s *Sessions) Verify(tokenStr string) (Identity, error) {
	if !s.Enabled() {
		return Identity{}, ErrSessionsDisabled
	}
	t, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !t.Valid {
		return Identity{}, errors.New("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errors.New("invalid claims")
	}

	// jwt MapClaims numbers are float64
	idf, ok := claims["sub"].(float64)
	if !ok || idf <= 0 {
		return Identity{}, errors.New("invalid sub")
	}
	id := Identity{TelegramID: int64(idf)}
	if name, ok := claims["name"].(string); ok {
		id.FirstName = name
	}
	return id, nil
}
