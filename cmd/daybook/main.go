package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"daybook/internal/config"
	"daybook/internal/cron"
	"daybook/internal/db"
	"daybook/internal/di"

	"github.com/alecthomas/kong"
	json "github.com/goccy/go-json"
)

type runContext struct {
	App *di.App
}

type ServeCmd struct {
	ShutdownTimeout time.Duration `help:"Graceful shutdown timeout." default:"10s"`
	SkipMigrate     bool          `help:"Do not migrate the schema on start."`
}

func (c *ServeCmd) Run(rc *runContext) error {
	app := rc.App
	if !c.SkipMigrate {
		if err := db.AutoMigrateAndIndexes(app.DB, app.Log); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	srv := &http.Server{
		Addr:              app.Config.HTTPAddr,
		Handler:           app.Handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.Log.Info().Str("addr", app.Config.HTTPAddr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-ch:
		app.Log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(rc *runContext) error {
	return db.AutoMigrateAndIndexes(rc.App.DB, rc.App.Log)
}

// CronCmd runs one tick in-process, for system cron or manual runs.
type CronCmd struct {
	Job string `arg:"" enum:"hourly,remind,remind-missing,birthdays" help:"Job to run: hourly, remind, remind-missing or birthdays."`
}

func (c *CronCmd) Run(rc *runContext) error {
	ctx := context.Background()
	jobs, now := rc.App.Jobs, time.Now()

	var (
		out any
		err error
	)
	switch c.Job {
	case cron.JobHourly:
		out, err = jobs.Hourly(ctx, now)
	case cron.JobRemind:
		out, err = jobs.RemindYesterday(ctx, now)
	case cron.JobRemindMissing:
		out, err = jobs.RemindMissing(ctx, now)
	case cron.JobBirthdays:
		out, err = jobs.Birthdays(ctx, now)
	}
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(b))
	return err
}

var CLI struct {
	Serve   ServeCmd   `cmd:"" help:"Serve the API, webhook and cron endpoints." default:"1"`
	Migrate MigrateCmd `cmd:"" help:"Create or update the database schema."`
	Cron    CronCmd    `cmd:"" help:"Run one cron job and print its summary."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("daybook"),
		kong.Description("Telegram Mini App habit and journal tracker"),
		kong.UsageOnError(),
	)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	app, err := di.InitApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := kctx.Run(&runContext{App: app}); err != nil {
		app.Log.Error().Err(err).Str("command", kctx.Command()).Msg("command failed")
		os.Exit(1)
	}
}
