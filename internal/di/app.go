package di

import (
	"net/http"

	"daybook/internal/config"
	"daybook/internal/cron"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// App is the fully wired process: the HTTP surface plus direct access to the
// pieces the CLI commands drive.
type App struct {
	Config  *config.Config
	Log     zerolog.Logger
	DB      *gorm.DB
	Handler http.Handler
	Jobs    *cron.Orchestrator
}

func NewApp(cfg *config.Config, log zerolog.Logger, gdb *gorm.DB, h http.Handler, jobs *cron.Orchestrator) *App {
	return &App{Config: cfg, Log: log, DB: gdb, Handler: h, Jobs: jobs}
}
