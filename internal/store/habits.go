package store

import (
	"context"
	"fmt"

	"daybook/internal/patch"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ItemPatch updates a habit or a goal.
type ItemPatch struct {
	Title    patch.Field[string]
	IsActive patch.Field[bool]
	Position patch.Field[int]
}

func (p ItemPatch) updates() map[string]any {
	m := map[string]any{}
	if v, ok := p.Title.Get(); ok {
		m["title"] = v
	}
	if v, ok := p.IsActive.Get(); ok {
		m["is_active"] = v
	}
	if v, ok := p.Position.Get(); ok {
		m["position"] = v
	}
	return m
}

// ListHabits returns habits ordered by position.
func (s *Store) ListHabits(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]Habit, error) {
	q := s.DB.WithContext(ctx).Where("user_id = ?", userID)
	if !includeInactive {
		q = q.Where("is_active = true")
	}
	var habits []Habit
	err := q.Order("position asc").Order("created_at asc").Find(&habits).Error
	return habits, err
}

// CreateHabit appends an active habit after the current last position.
func (s *Store) CreateHabit(ctx context.Context, userID uuid.UUID, title string) (*Habit, error) {
	h := Habit{UserID: userID, Title: title, IsActive: true}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPos *int
		if err := tx.Model(&Habit{}).Where("user_id = ?", userID).
			Select("max(position)").Scan(&maxPos).Error; err != nil {
			return err
		}
		if maxPos != nil {
			h.Position = *maxPos + 1
		}
		return tx.Create(&h).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	return &h, nil
}

func (s *Store) UpdateHabit(ctx context.Context, userID, id uuid.UUID, p ItemPatch) (*Habit, error) {
	updates := p.updates()
	if len(updates) == 0 {
		return nil, ErrNoFields
	}

	var h Habit
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&h).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Model(&h).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&h).Error
	})
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// ReorderHabits sets position i on orderedIDs[i]. Every id must belong to the
// user; otherwise nothing changes and ErrNotFound is returned.
func (s *Store) ReorderHabits(ctx context.Context, userID uuid.UUID, orderedIDs []uuid.UUID) error {
	ids := make([]string, len(orderedIDs))
	for i, id := range orderedIDs {
		ids[i] = id.String()
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&Habit{}).
			Where("user_id = ? AND id = ANY(?::uuid[])", userID, pq.Array(ids)).
			Count(&owned).Error; err != nil {
			return err
		}
		if int(owned) != len(ids) {
			return ErrNotFound
		}

		return tx.Exec(`
update habits h
set position = o.ord - 1
from unnest(?::uuid[]) with ordinality as o(id, ord)
where h.id = o.id and h.user_id = ?
`, pq.Array(ids), userID).Error
	})
}
