package db

import (
	"fmt"

	"daybook/internal/store"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB, log zerolog.Logger) error {
	// Tables
	if err := gdb.AutoMigrate(store.Models()...); err != nil {
		return err
	}

	// Read paths: per-user date ranges and ordered lists
	stmts := []string{
		`create index if not exists idx_completions_user_date on habit_completions(user_id, date);`,
		`create index if not exists idx_habits_user_position on habits(user_id, position);`,
		`create index if not exists idx_goals_user_year_position on year_goals(user_id, year, position);`,
		`create index if not exists idx_daily_logs_notes on daily_logs(user_id, date desc) where journal_text is not null;`,
		`create index if not exists idx_birthdays_month_day on birthdays(substr(date, 6, 5));`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	log.Info().Int("tables", len(store.Models())).Int("indexes", len(stmts)).Msg("schema migrated")
	return nil
}
