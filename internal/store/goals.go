package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *Store) ListGoals(ctx context.Context, userID uuid.UUID, year int, includeInactive bool) ([]YearGoal, error) {
	q := s.DB.WithContext(ctx).Where("user_id = ? AND year = ?", userID, year)
	if !includeInactive {
		q = q.Where("is_active = true")
	}
	var goals []YearGoal
	err := q.Order("position asc").Order("created_at asc").Find(&goals).Error
	return goals, err
}

// CreateGoal appends a goal after the last position of that year.
func (s *Store) CreateGoal(ctx context.Context, userID uuid.UUID, year int, title string) (*YearGoal, error) {
	g := YearGoal{UserID: userID, Year: year, Title: title, IsActive: true}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPos *int
		if err := tx.Model(&YearGoal{}).Where("user_id = ? AND year = ?", userID, year).
			Select("max(position)").Scan(&maxPos).Error; err != nil {
			return err
		}
		if maxPos != nil {
			g.Position = *maxPos + 1
		}
		return tx.Create(&g).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	return &g, nil
}

func (s *Store) UpdateGoal(ctx context.Context, userID, id uuid.UUID, p ItemPatch) (*YearGoal, error) {
	updates := p.updates()
	if len(updates) == 0 {
		return nil, ErrNoFields
	}

	var g YearGoal
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&g).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Model(&g).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&g).Error
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// DeactivateGoal soft-deletes a goal.
func (s *Store) DeactivateGoal(ctx context.Context, userID, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).Model(&YearGoal{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
