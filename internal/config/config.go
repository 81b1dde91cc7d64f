package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/joho/godotenv"
)

type Telegram struct {
	BotToken      string
	WebhookSecret string
	BypassAuth    bool
	WebAppURL     string

	ButtonTextLimit      int `validate:"int|min:10|max:128"`
	ButtonTextTruncateTo int `validate:"int|min:5|max:127"`
}

type Cron struct {
	Secret              string
	DefaultDigestTime   string `validate:"required"`
	UsersBatchLimit     int    `validate:"int|min:1|max:20000"`
	MinuteTolerance     int    `validate:"int|min:0|max:30"`
	ProcessBatchSize    int    `validate:"int|min:1|max:500"`
	MissingLookbackDays int    `validate:"int|min:1|max:30"`
}

type Calendar struct {
	ID                 string
	ServiceAccountJSON string
	TimeZone           string `validate:"required"`
	DefaultOffset      int    `validate:"int|min:-840|max:840"`
	CacheMB            int    `validate:"int|min:0|max:256"`
}

// Enabled reports whether calendar credentials are configured.
func (c Calendar) Enabled() bool { return c.ServiceAccountJSON != "" }

// Location resolves TimeZone, falling back to a fixed zone at DefaultOffset
// when the zone database does not know the name.
func (c Calendar) Location() *time.Location {
	if loc, err := time.LoadLocation(c.TimeZone); err == nil {
		return loc
	}
	return time.FixedZone(c.TimeZone, c.DefaultOffset*60)
}

type LLM struct {
	APIKey                string
	BaseURL               string
	Model                 string
	ClassifierMaxTokens   int     `validate:"int|min:128|max:4096"`
	AgentMaxTokens        int     `validate:"int|min:128|max:4096"`
	ClassifierTemperature float64 `validate:"min:0|max:1"`
	AgentTemperature      float64 `validate:"min:0|max:1"`
}

// Enabled reports whether an LLM endpoint is configured.
func (l LLM) Enabled() bool { return l.APIKey != "" && l.Model != "" }

type Log struct {
	Level string `validate:"required|in:trace,debug,info,warn,error"`
	File  string
}

type Notes struct {
	DefaultPageSize int `validate:"int|min:1|max:50"`
	MaxPageSize     int `validate:"int|min:1|max:200"`
}

type Config struct {
	HTTPAddr             string `validate:"required"`
	DatabaseURL          string `validate:"required"`
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	SessionSecret        string
	TZOffsetLimitMinutes int `validate:"int|min:0|max:1440"`
	MetricsEnabled       bool

	Telegram Telegram
	Cron     Cron
	Calendar Calendar
	LLM      LLM
	Log      Log
	Notes    Notes
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:          getenv("DATABASE_URL", ""),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",
		SessionSecret:        getenv("SESSION_SECRET", ""),
		TZOffsetLimitMinutes: envInt("TZ_OFFSET_LIMIT_MINUTES", 14*60, 0, 24*60),
		MetricsEnabled:       getenv("METRICS_ENABLED", "true") == "true",

		Telegram: Telegram{
			BotToken:             getenv("TELEGRAM_BOT_TOKEN", ""),
			WebhookSecret:        getenv("TELEGRAM_WEBHOOK_SECRET", ""),
			BypassAuth:           getenv("TELEGRAM_BYPASS_AUTH", "false") == "true",
			WebAppURL:            getenv("WEBAPP_URL", ""),
			ButtonTextLimit:      envInt("TELEGRAM_BUTTON_TEXT_LIMIT", 40, 10, 128),
			ButtonTextTruncateTo: envInt("TELEGRAM_BUTTON_TEXT_TRUNCATE_TO", 37, 5, 127),
		},
		Cron: Cron{
			Secret:              getenv("CRON_SECRET", ""),
			DefaultDigestTime:   getenv("DEFAULT_DIGEST_TIME", "09:00"),
			UsersBatchLimit:     envInt("CRON_USERS_BATCH_LIMIT", 5000, 1, 20000),
			MinuteTolerance:     envInt("CRON_MINUTE_TOLERANCE", 5, 0, 30),
			ProcessBatchSize:    envInt("CRON_PROCESS_BATCH_SIZE", 25, 1, 500),
			MissingLookbackDays: envInt("REMIND_MISSING_LOOKBACK_DAYS", 7, 1, 30),
		},
		Calendar: Calendar{
			ID:                 getenv("CALENDAR_ID", "primary"),
			ServiceAccountJSON: getenv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
			TimeZone:           getenv("CALENDAR_TIMEZONE", "Europe/Moscow"),
			DefaultOffset:      envInt("CALENDAR_DEFAULT_OFFSET_MINUTES", 180, -14*60, 14*60),
			CacheMB:            envInt("CALENDAR_CACHE_MB", 8, 0, 256),
		},
		LLM: LLM{
			APIKey:                getenv("LLM_API_KEY", ""),
			BaseURL:               getenv("LLM_BASE_URL", ""),
			Model:                 getenv("LLM_MODEL", ""),
			ClassifierMaxTokens:   envInt("LLM_CLASSIFIER_MAX_TOKENS", 1024, 128, 4096),
			AgentMaxTokens:        envInt("LLM_AGENT_MAX_TOKENS", 512, 128, 4096),
			ClassifierTemperature: envFloat("LLM_CLASSIFIER_TEMPERATURE", 0.1, 0, 1),
			AgentTemperature:      envFloat("LLM_AGENT_TEMPERATURE", 0, 0, 1),
		},
		Log: Log{
			Level: strings.ToLower(getenv("LOG_LEVEL", "info")),
			File:  getenv("LOG_FILE", ""),
		},
		Notes: Notes{
			DefaultPageSize: envInt("NOTES_DEFAULT_PAGE_SIZE", 10, 1, 50),
			MaxPageSize:     envInt("NOTES_MAX_PAGE_SIZE", 50, 1, 200),
		},
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required values and ranges.
func (c *Config) Validate() error {
	v := validate.Struct(c)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %w", v.Errors)
	}
	if c.Telegram.ButtonTextTruncateTo >= c.Telegram.ButtonTextLimit {
		return fmt.Errorf("invalid config: TELEGRAM_BUTTON_TEXT_TRUNCATE_TO must be below TELEGRAM_BUTTON_TEXT_LIMIT")
	}
	return nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

// envInt reads an integer knob. Unparsable, non-finite or out-of-range
// values fall back to def.
func envInt(key string, def, min, max int) int {
	f, ok := envNumber(key)
	if !ok || f < float64(min) || f > float64(max) {
		return def
	}
	return int(math.Trunc(f))
}

func envFloat(key string, def, min, max float64) float64 {
	f, ok := envNumber(key)
	if !ok || f < min || f > max {
		return def
	}
	return f
}

func envNumber(key string) (float64, bool) {
	raw := getenv(key, "")
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
