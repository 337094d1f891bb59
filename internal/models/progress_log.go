package models

import (
	"time"

	"github.com/arnold/habits-api/internal/calendar"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgressLog is an immutable dated fact: a habit completion, a goal progress
// entry, or both when a habit check credits its linked goal.
//
// HabitDayKey is set on every habit check and GoalDayKey on every entry of a
// qualitative goal, so a check that credits such a goal claims both days.
// NULLs never collide, so each unique index turns "insert if none exists"
// into a single atomic statement.
type ProgressLog struct {
	ID          uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID    `json:"userId" gorm:"type:uuid;not null;index:idx_progress_user_date"`
	HabitID     *uuid.UUID   `json:"habitId" gorm:"type:uuid;index"`
	GoalID      *uuid.UUID   `json:"goalId" gorm:"type:uuid;index"`
	Value       float64      `json:"value" gorm:"not null"`
	Date        calendar.Day `json:"date" gorm:"column:log_date;type:varchar(10);not null;index:idx_progress_user_date"`
	HabitDayKey *string      `json:"-" gorm:"uniqueIndex"`
	GoalDayKey  *string      `json:"-" gorm:"uniqueIndex"`
	CreatedAt   time.Time    `json:"createdAt"`
}

func (p *ProgressLog) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// HistoryEntry is a progress log row joined with the titles it refers to.
type HistoryEntry struct {
	ID         uuid.UUID    `json:"id"`
	HabitID    *uuid.UUID   `json:"habitId"`
	HabitTitle *string      `json:"habitTitle"`
	GoalID     *uuid.UUID   `json:"goalId"`
	GoalTitle  *string      `json:"goalTitle"`
	Value      float64      `json:"value"`
	Date       calendar.Day `json:"date" gorm:"column:log_date"`
	CreatedAt  time.Time    `json:"createdAt"`
}

type CheckHabitRequest struct {
	Date calendar.Day `json:"date"`
}
