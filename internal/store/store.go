// Package store persists users and their day data in Postgres through gorm.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrNoFields  = errors.New("no fields to update")
)

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Store) GetUserByTelegramID(ctx context.Context, telegramID int64) (*User, error) {
	var u User
	if err := s.DB.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// EnsureUserInput carries identity facts seen on a request. Nil fields keep
// the stored value.
type EnsureUserInput struct {
	TelegramID      int64
	FirstName       *string
	TZOffsetMinutes *int
}

// EnsureUser returns the user for a telegram id, creating it on first contact
// and refreshing first name and offset when they changed.
func (s *Store) EnsureUser(ctx context.Context, in EnsureUserInput) (*User, error) {
	var out User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("telegram_id = ?", in.TelegramID).First(&out).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			out = User{TelegramID: in.TelegramID, FirstName: in.FirstName}
			if in.TZOffsetMinutes != nil {
				out.TZOffsetMinutes = *in.TZOffsetMinutes
			}
			// concurrent first contact: the loser re-reads the winner's row
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "telegram_id"}},
				DoNothing: true,
			}).Create(&out)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return tx.Where("telegram_id = ?", in.TelegramID).First(&out).Error
			}
			return nil
		}
		if err != nil {
			return err
		}

		updates := map[string]any{}
		if in.FirstName != nil && (out.FirstName == nil || *out.FirstName != *in.FirstName) {
			updates["first_name"] = *in.FirstName
			out.FirstName = in.FirstName
		}
		if in.TZOffsetMinutes != nil && out.TZOffsetMinutes != *in.TZOffsetMinutes {
			updates["tz_offset_minutes"] = *in.TZOffsetMinutes
			out.TZOffsetMinutes = *in.TZOffsetMinutes
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&User{}).Where("id = ?", out.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, fmt.Errorf("ensure user %d: %w", in.TelegramID, err)
	}
	return &out, nil
}

// ListUsers returns at most limit users in creation order.
func (s *Store) ListUsers(ctx context.Context, limit int) ([]User, error) {
	var users []User
	err := s.DB.WithContext(ctx).Order("created_at asc").Limit(limit).Find(&users).Error
	return users, err
}

func (s *Store) SetDigestTime(ctx context.Context, userID uuid.UUID, hhmm string) error {
	res := s.DB.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Update("digest_time", hhmm)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
