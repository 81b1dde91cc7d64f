package http

import (
	"net/http"

	"daybook/internal/auth"
	"daybook/internal/config"
	"daybook/internal/http/handler"
	mw "daybook/internal/http/middleware"
	"daybook/internal/metrics"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Deps are the collaborators the routes are served by.
type Deps struct {
	Store    handler.Store
	Auth     *auth.Authenticator
	Sessions *auth.Sessions
	Bot      handler.UpdateHandler
	Jobs     handler.Jobs
	Metrics  metrics.Provider
	Log      zerolog.Logger
}

func NewRouter(cfg *config.Config, d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLog(d.Log))
	r.Use(chimw.Recoverer)
	r.Use(mw.Metrics(d.Metrics))

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.MetricsEnabled {
		r.Handle("/metrics", d.Metrics.Handler())
	}

	base := &handler.Base{Store: d.Store, Log: d.Log, TZOffsetLimit: cfg.TZOffsetLimitMinutes}
	user := &handler.UserHandler{Base: base}
	day := &handler.DayHandler{
		Base:                 base,
		NotesDefaultPageSize: cfg.Notes.DefaultPageSize,
		NotesMaxPageSize:     cfg.Notes.MaxPageSize,
	}
	habits := &handler.HabitHandler{Base: base}
	goals := &handler.GoalHandler{Base: base}
	statsH := &handler.StatsHandler{Base: base}
	birthdays := &handler.BirthdayHandler{Base: base}
	session := &handler.SessionHandler{Sessions: d.Sessions}
	webhook := &handler.WebhookHandler{Bot: d.Bot, Secret: cfg.Telegram.WebhookSecret, Log: d.Log}
	cronH := &handler.CronHandler{Jobs: d.Jobs, Log: d.Log}

	r.Route("/api", func(r chi.Router) {
		r.Post("/webhook", webhook.Serve)

		r.Route("/cron", func(r chi.Router) {
			r.Use(auth.RequireCron(cfg.Cron.Secret))

			r.Get("/hourly", cronH.Hourly)
			r.Post("/hourly", cronH.Hourly)
			r.Get("/remind", cronH.Remind)
			r.Post("/remind", cronH.Remind)
			r.Get("/remind-missing", cronH.RemindMissing)
			r.Post("/remind-missing", cronH.RemindMissing)
			r.Get("/check-birthdays", cronH.Birthdays)
			r.Post("/check-birthdays", cronH.Birthdays)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser(d.Auth))
			r.Use(mw.Compress)

			r.Post("/session", session.Create)

			r.Get("/user/status", user.Status)
			r.Post("/user/settings", user.Settings)

			r.Post("/day/rate", day.Rate)
			r.Get("/day/notes", day.Notes)

			r.Route("/habits", func(r chi.Router) {
				r.Get("/", habits.List)
				r.Get("/list", habits.List)
				r.Post("/", habits.Create)
				r.Post("/create", habits.Create)
				r.Post("/reorder", habits.Reorder)
				r.Post("/toggle", habits.Toggle)
				r.Patch("/{id}", habits.Update)
			})

			r.Route("/goals", func(r chi.Router) {
				r.Get("/", goals.List)
				r.Post("/", goals.Create)
				r.Patch("/{id}", goals.Update)
				r.Delete("/{id}", goals.Delete)
			})

			r.Get("/stats/summary", statsH.Summary)
			r.Get("/stats/heatmap", statsH.Heatmap)

			r.Route("/birthdays", func(r chi.Router) {
				r.Get("/", birthdays.List)
				r.Post("/", birthdays.Create)
				r.Put("/{id}", birthdays.Update)
				r.Delete("/{id}", birthdays.Delete)
			})
		})
	})

	return r
}
