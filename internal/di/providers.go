package di

import (
	"context"
	"fmt"
	"net/http"

	"daybook/internal/agent"
	"daybook/internal/auth"
	"daybook/internal/bot"
	"daybook/internal/calendar"
	"daybook/internal/config"
	"daybook/internal/cron"
	"daybook/internal/db"
	"daybook/internal/digest"
	httpx "daybook/internal/http"
	"daybook/internal/logging"
	"daybook/internal/metrics"
	"daybook/internal/store"
	"daybook/internal/telegram"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func provideLogger(cfg *config.Config) (zerolog.Logger, error) {
	return logging.New(cfg)
}

func provideDB(cfg *config.Config) (*gorm.DB, error) {
	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return gdb, nil
}

func provideMetrics(cfg *config.Config) metrics.Provider {
	return metrics.New(cfg)
}

// provideCalendar falls back to a disabled client when no service account is
// configured, so the bot and digest keep working without calendar features.
func provideCalendar(cfg *config.Config, m metrics.Provider, log zerolog.Logger) (calendar.Client, error) {
	if !cfg.Calendar.Enabled() {
		log.Warn().Msg("calendar disabled: GOOGLE_SERVICE_ACCOUNT_JSON not set")
		return calendar.Disabled{}, nil
	}
	g, err := calendar.NewGoogle(context.Background(), cfg.Calendar.ServiceAccountJSON, cfg.Calendar.ID, cfg.Calendar.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("calendar client: %w", err)
	}
	return calendar.NewCached(g, cfg.Calendar.CacheMB, m, log), nil
}

func provideMessenger(cfg *config.Config, log zerolog.Logger) telegram.Messenger {
	return telegram.NewClient(cfg.Telegram.BotToken, log)
}

func provideDigest(cfg *config.Config, cal calendar.Client) *digest.Builder {
	return &digest.Builder{
		Calendar:   cal,
		TextLimit:  cfg.Telegram.ButtonTextLimit,
		TruncateTo: cfg.Telegram.ButtonTextTruncateTo,
	}
}

func provideOrchestrator(cfg *config.Config, st *store.Store, msg telegram.Messenger, dg *digest.Builder, m metrics.Provider, log zerolog.Logger) *cron.Orchestrator {
	return &cron.Orchestrator{
		Store:     st,
		Messenger: msg,
		Digest:    dg,
		Metrics:   m,
		Log:       log.With().Str("component", "cron").Logger(),
		Cron:      cfg.Cron,
		WebAppURL: cfg.Telegram.WebAppURL,
		Location:  cfg.Calendar.Location(),
	}
}

func provideBot(cfg *config.Config, st *store.Store, msg telegram.Messenger, cal calendar.Client, cls agent.Classifier, log zerolog.Logger) *bot.Handler {
	return &bot.Handler{
		Store:      st,
		Messenger:  msg,
		Calendar:   cal,
		Classifier: cls,
		WebAppURL:  cfg.Telegram.WebAppURL,
		Location:   cfg.Calendar.Location(),
		Log:        log.With().Str("component", "bot").Logger(),
	}
}

func provideSessions(cfg *config.Config) *auth.Sessions {
	return auth.NewSessions(cfg.SessionSecret)
}

func provideAuthenticator(cfg *config.Config, s *auth.Sessions) *auth.Authenticator {
	return &auth.Authenticator{
		BotToken:   cfg.Telegram.BotToken,
		BypassAuth: cfg.Telegram.BypassAuth,
		Sessions:   s,
	}
}

func provideRouter(cfg *config.Config, st *store.Store, a *auth.Authenticator, s *auth.Sessions, b *bot.Handler, jobs *cron.Orchestrator, m metrics.Provider, log zerolog.Logger) http.Handler {
	return httpx.NewRouter(cfg, httpx.Deps{
		Store:    st,
		Auth:     a,
		Sessions: s,
		Bot:      b,
		Jobs:     jobs,
		Metrics:  m,
		Log:      log,
	})
}
