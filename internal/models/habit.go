package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Habit struct {
	ID                  uuid.UUID                `json:"id" gorm:"type:uuid;primaryKey"`
	UserID              uuid.UUID                `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_habit_user_title"`
	Title               string                   `json:"title" gorm:"not null;uniqueIndex:idx_habit_user_title"`
	Description         *string                  `json:"description"`
	Type                EntityType               `json:"type" gorm:"not null"`
	ProgressImpactValue *float64                 `json:"progressImpactValue"`
	WeekDays            datatypes.JSONSlice[int] `json:"weekDays" gorm:"not null"` // 0 = Sunday
	CreatedAt           time.Time                `json:"createdAt"`
	UpdatedAt           time.Time                `json:"updatedAt"`
}

func (h *Habit) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// HabitStats is derived from the progress log on every read.
type HabitStats struct {
	Streak           int  `json:"streak"`
	BestStreak       int  `json:"bestStreak"`
	IsCompletedToday bool `json:"isCompletedToday"`
}

type HabitWithStats struct {
	Habit
	HabitStats
}

// Habit DTOs
type CreateHabitRequest struct {
	Title               string     `json:"title" validate:"required,max=120"`
	Description         *string    `json:"description" validate:"omitempty,max=1000"`
	Type                EntityType `json:"type" validate:"required,oneof=qualitative quantitative"`
	ProgressImpactValue *float64   `json:"progressImpactValue"`
	WeekDays            []int      `json:"weekDays" validate:"required,min=1,max=7,dive,min=0,max=6"`
}

// UpdateHabitRequest has no Type: a habit's type is fixed once created.
type UpdateHabitRequest struct {
	Title               *string  `json:"title" validate:"omitempty,min=1,max=120"`
	Description         *string  `json:"description" validate:"omitempty,max=1000"`
	ProgressImpactValue *float64 `json:"progressImpactValue"`
	WeekDays            []int    `json:"weekDays" validate:"omitempty,min=1,max=7,dive,min=0,max=6"`
}
