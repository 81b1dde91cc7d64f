// Package handler serves the Mini App REST API, the bot webhook and the cron
// endpoints.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"daybook/internal/auth"
	"daybook/internal/logicalday"
	"daybook/internal/store"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gookit/validate"
	"github.com/rs/zerolog"
)

const maxRequestBodySize = 1 << 20

// Store is everything the REST handlers read or write.
type Store interface {
	EnsureUser(ctx context.Context, in store.EnsureUserInput) (*store.User, error)
	SetDigestTime(ctx context.Context, userID uuid.UUID, hhmm string) error

	GetDailyLog(ctx context.Context, userID uuid.UUID, date string) (*store.DailyLog, error)
	UpsertDailyLog(ctx context.Context, userID uuid.UUID, date string, p store.DailyLogPatch) (*store.DailyLog, error)
	ListDailyLogs(ctx context.Context, userID uuid.UUID, from, to string) ([]store.DailyLog, error)
	ListNotes(ctx context.Context, userID uuid.UUID, before, cursor string, limit int) ([]store.DailyLog, error)

	ListHabits(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]store.Habit, error)
	CreateHabit(ctx context.Context, userID uuid.UUID, title string) (*store.Habit, error)
	UpdateHabit(ctx context.Context, userID, id uuid.UUID, p store.ItemPatch) (*store.Habit, error)
	ReorderHabits(ctx context.Context, userID uuid.UUID, orderedIDs []uuid.UUID) error
	CompletedHabitIDs(ctx context.Context, userID uuid.UUID, date string) ([]uuid.UUID, error)
	ListCompletions(ctx context.Context, userID uuid.UUID, habitIDs []uuid.UUID, from, to string) ([]store.HabitCompletion, error)
	ToggleCompletion(ctx context.Context, userID, habitID uuid.UUID, date string) (bool, error)

	ListGoals(ctx context.Context, userID uuid.UUID, year int, includeInactive bool) ([]store.YearGoal, error)
	CreateGoal(ctx context.Context, userID uuid.UUID, year int, title string) (*store.YearGoal, error)
	UpdateGoal(ctx context.Context, userID, id uuid.UUID, p store.ItemPatch) (*store.YearGoal, error)
	DeactivateGoal(ctx context.Context, userID, id uuid.UUID) error

	ListBirthdays(ctx context.Context, userID uuid.UUID) ([]store.Birthday, error)
	CreateBirthday(ctx context.Context, userID uuid.UUID, name, date string) (*store.Birthday, error)
	UpdateBirthday(ctx context.Context, userID, id uuid.UUID, name, date string) (*store.Birthday, error)
	DeleteBirthday(ctx context.Context, userID, id uuid.UUID) error
}

// Base is shared by the REST handlers. It turns the authenticated identity
// into a stored user.
type Base struct {
	Store         Store
	Log           zerolog.Logger
	TZOffsetLimit int
	Now           func() time.Time
}

func (b *Base) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

// requestError is a client mistake reported verbatim with a 400.
type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

// user ensures the caller exists and returns it with its effective offset.
// The offset is only stored when the client sent one.
func (b *Base) user(r *http.Request) (*store.User, error) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return nil, auth.ErrUnauthorized
	}

	in := store.EnsureUserInput{TelegramID: id.TelegramID}
	if id.FirstName != "" {
		name := id.FirstName
		in.FirstName = &name
	}
	if r.URL.Query().Get("tzOffsetMinutes") != "" || r.Header.Get(auth.TZOffsetHeader) != "" {
		off := auth.TZOffset(r, b.TZOffsetLimit)
		in.TZOffsetMinutes = &off
	}
	return b.Store.EnsureUser(r.Context(), in)
}

func (b *Base) today(u *store.User) string {
	return logicalday.Date(b.now(), u.TZOffsetMinutes)
}

// fail maps err onto a status code and writes it as {"error": msg}.
func (b *Base) fail(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		writeError(w, http.StatusBadRequest, reqErr.msg)
	case errors.Is(err, store.ErrNoFields):
		writeError(w, http.StatusBadRequest, "No fields to update")
	case errors.Is(err, auth.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, store.ErrForbidden):
		writeError(w, http.StatusForbidden, "Forbidden")
	default:
		b.Log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "Internal error")
	}
}

// checkStruct runs the validate tags of a request body.
func checkStruct(v any) error {
	vd := validate.Struct(v)
	if !vd.Validate() {
		return &requestError{msg: vd.Errors.One()}
	}
	return nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequest("invalid JSON body")
	}
	return nil
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, badRequest("invalid id")
	}
	return id, nil
}

// optionalDate returns raw when it is a valid date, def when raw is empty.
func optionalDate(raw, def string) (string, error) {
	if raw == "" {
		return def, nil
	}
	if !logicalday.Valid(raw) {
		return "", badRequest("invalid date %q, want YYYY-MM-DD", raw)
	}
	return raw, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
