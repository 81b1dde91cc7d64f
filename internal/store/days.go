package store

import (
	"context"
	"fmt"

	"daybook/internal/patch"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DailyLogPatch merges only the fields that are set. A null field clears the
// column.
type DailyLogPatch struct {
	JournalText      patch.Field[string]
	RatingEfficiency patch.Field[int]
	RatingSocial     patch.Field[int]
}

// Empty reports whether no field is set at all.
func (p DailyLogPatch) Empty() bool {
	return !p.JournalText.Set() && !p.RatingEfficiency.Set() && !p.RatingSocial.Set()
}

func (p DailyLogPatch) columns() []string {
	var cols []string
	if p.JournalText.Set() {
		cols = append(cols, "journal_text")
	}
	if p.RatingEfficiency.Set() {
		cols = append(cols, "rating_efficiency")
	}
	if p.RatingSocial.Set() {
		cols = append(cols, "rating_social")
	}
	return cols
}

func (s *Store) GetDailyLog(ctx context.Context, userID uuid.UUID, date string) (*DailyLog, error) {
	var d DailyLog
	err := s.DB.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).First(&d).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

// UpsertDailyLog creates the (user, date) row or merges the set fields into it.
func (s *Store) UpsertDailyLog(ctx context.Context, userID uuid.UUID, date string, p DailyLogPatch) (*DailyLog, error) {
	if p.Empty() {
		return nil, ErrNoFields
	}

	row := DailyLog{
		UserID:           userID,
		Date:             date,
		JournalText:      p.JournalText.Ptr(),
		RatingEfficiency: p.RatingEfficiency.Ptr(),
		RatingSocial:     p.RatingSocial.Ptr(),
	}
	cols := append(p.columns(), "updated_at")

	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns(cols),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("upsert daily log %s: %w", date, err)
	}
	return s.GetDailyLog(ctx, userID, date)
}

// ListDailyLogDates returns dates in [from, to] that have a daily log.
func (s *Store) ListDailyLogDates(ctx context.Context, userID uuid.UUID, from, to string) ([]string, error) {
	var dates []string
	err := s.DB.WithContext(ctx).Model(&DailyLog{}).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date asc").
		Pluck("date", &dates).Error
	return dates, err
}

// ListDailyLogs returns logs in [from, to], oldest first.
func (s *Store) ListDailyLogs(ctx context.Context, userID uuid.UUID, from, to string) ([]DailyLog, error) {
	var logs []DailyLog
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date asc").
		Find(&logs).Error
	return logs, err
}

// ListNotes pages non-blank journal entries strictly before `before`, newest
// first. An empty cursor starts at the top.
func (s *Store) ListNotes(ctx context.Context, userID uuid.UUID, before, cursor string, limit int) ([]DailyLog, error) {
	q := s.DB.WithContext(ctx).
		Where("user_id = ? AND date < ?", userID, before).
		Where("journal_text IS NOT NULL AND btrim(journal_text) <> ''")
	if cursor != "" {
		q = q.Where("date < ?", cursor)
	}

	var logs []DailyLog
	err := q.Order("date desc").Limit(limit).Find(&logs).Error
	return logs, err
}

// ListCompletionDates returns the distinct dates in [from, to] with at least
// one completion.
func (s *Store) ListCompletionDates(ctx context.Context, userID uuid.UUID, from, to string) ([]string, error) {
	var dates []string
	err := s.DB.WithContext(ctx).Model(&HabitCompletion{}).
		Distinct("date").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date asc").
		Pluck("date", &dates).Error
	return dates, err
}

// ListCompletions returns completions in [from, to]. A nil habitIDs slice
// means every habit.
func (s *Store) ListCompletions(ctx context.Context, userID uuid.UUID, habitIDs []uuid.UUID, from, to string) ([]HabitCompletion, error) {
	q := s.DB.WithContext(ctx).Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to)
	if habitIDs != nil {
		if len(habitIDs) == 0 {
			return nil, nil
		}
		q = q.Where("habit_id IN ?", habitIDs)
	}

	var rows []HabitCompletion
	err := q.Order("date asc").Find(&rows).Error
	return rows, err
}

func (s *Store) CompletedHabitIDs(ctx context.Context, userID uuid.UUID, date string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.DB.WithContext(ctx).Model(&HabitCompletion{}).
		Where("user_id = ? AND date = ?", userID, date).
		Pluck("habit_id", &ids).Error
	return ids, err
}

// ToggleCompletion deletes the completion if present, otherwise inserts it.
// It reports whether the habit is completed afterwards.
func (s *Store) ToggleCompletion(ctx context.Context, userID, habitID uuid.UUID, date string) (bool, error) {
	var completed bool
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var h Habit
		if err := tx.Select("id").Where("id = ? AND user_id = ?", habitID, userID).First(&h).Error; err != nil {
			return notFound(err)
		}

		res := tx.Where("user_id = ? AND habit_id = ? AND date = ?", userID, habitID, date).
			Delete(&HabitCompletion{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			completed = false
			return nil
		}

		c := HabitCompletion{UserID: userID, HabitID: habitID, Date: date}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&c).Error; err != nil {
			return err
		}
		completed = true
		return nil
	})
	return completed, err
}
