package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BirthdayOwner is a birthday joined with the telegram id of its owner.
type BirthdayOwner struct {
	Birthday
	TelegramID int64
}

func (s *Store) ListBirthdays(ctx context.Context, userID uuid.UUID) ([]Birthday, error) {
	var out []Birthday
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("date asc").Find(&out).Error
	return out, err
}

// ListAllBirthdays loads every birthday with its owner's chat id.
func (s *Store) ListAllBirthdays(ctx context.Context) ([]BirthdayOwner, error) {
	var out []BirthdayOwner
	err := s.DB.WithContext(ctx).
		Table("birthdays").
		Select("birthdays.*, users.telegram_id").
		Joins("join users on users.id = birthdays.user_id").
		Order("birthdays.date asc").
		Scan(&out).Error
	return out, err
}

func (s *Store) CreateBirthday(ctx context.Context, userID uuid.UUID, name, date string) (*Birthday, error) {
	b := Birthday{UserID: userID, Name: name, Date: date}
	if err := s.DB.WithContext(ctx).Create(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// ownedBirthday distinguishes a missing row from someone else's row.
func ownedBirthday(tx *gorm.DB, userID, id uuid.UUID) (*Birthday, error) {
	var b Birthday
	if err := tx.Where("id = ?", id).First(&b).Error; err != nil {
		return nil, notFound(err)
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}
	return &b, nil
}

func (s *Store) UpdateBirthday(ctx context.Context, userID, id uuid.UUID, name, date string) (*Birthday, error) {
	var out *Birthday
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := ownedBirthday(tx, userID, id)
		if err != nil {
			return err
		}
		b.Name, b.Date = name, date
		if err := tx.Model(b).Updates(map[string]any{"name": name, "date": date}).Error; err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}

func (s *Store) DeleteBirthday(ctx context.Context, userID, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := ownedBirthday(tx, userID, id)
		if err != nil {
			return err
		}
		return tx.Delete(b).Error
	})
}
