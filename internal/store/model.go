package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	TelegramID      int64     `gorm:"uniqueIndex;not null"`
	FirstName       *string   `gorm:"type:text"`
	TZOffsetMinutes int       `gorm:"not null;default:0"`
	DigestTime      *string   `gorm:"type:varchar(5)"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

// DailyLog holds the journal and ratings of one logical day.
type DailyLog struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_daily_logs_user_date,priority:1"`
	Date             string    `gorm:"type:char(10);not null;uniqueIndex:uq_daily_logs_user_date,priority:2"`
	JournalText      *string   `gorm:"type:text"`
	RatingEfficiency *int
	RatingSocial     *int

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

type Habit struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Title    string    `gorm:"type:text;not null"`
	IsActive bool      `gorm:"not null;default:true"`
	Position int       `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

// HabitCompletion exists iff the habit was done on Date.
type HabitCompletion struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_completions_user_habit_date,priority:1"`
	HabitID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_completions_user_habit_date,priority:2"`
	Date    string    `gorm:"type:char(10);not null;uniqueIndex:uq_completions_user_habit_date,priority:3"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

type YearGoal struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Year     int       `gorm:"not null"`
	Title    string    `gorm:"type:text;not null"`
	IsActive bool      `gorm:"not null;default:true"`
	Position int       `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

// Birthday only carries meaning in month and day; the year is a placeholder.
type Birthday struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`
	Name   string    `gorm:"type:text;not null"`
	Date   string    `gorm:"type:char(10);not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error            { newID(&u.ID); return nil }
func (d *DailyLog) BeforeCreate(*gorm.DB) error        { newID(&d.ID); return nil }
func (h *Habit) BeforeCreate(*gorm.DB) error           { newID(&h.ID); return nil }
func (c *HabitCompletion) BeforeCreate(*gorm.DB) error { newID(&c.ID); return nil }
func (g *YearGoal) BeforeCreate(*gorm.DB) error        { newID(&g.ID); return nil }
func (b *Birthday) BeforeCreate(*gorm.DB) error        { newID(&b.ID); return nil }

// Models lists every table the service owns, in migration order.
func Models() []any {
	return []any{
		&User{},
		&DailyLog{},
		&Habit{},
		&HabitCompletion{},
		&YearGoal{},
		&Birthday{},
	}
}
