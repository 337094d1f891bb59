package models

import (
	"time"

	"github.com/arnold/habits-api/internal/calendar"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Goal struct {
	ID          uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID     `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_goal_user_title"`
	CategoryID  uuid.UUID     `json:"categoryId" gorm:"type:uuid;index;not null"`
	Title       string        `json:"title" gorm:"not null;uniqueIndex:idx_goal_user_title"`
	Description *string       `json:"description"`
	Type        EntityType    `json:"type" gorm:"not null"`
	TargetValue float64       `json:"targetValue" gorm:"not null"`
	HabitID     *uuid.UUID    `json:"habitId" gorm:"type:uuid;index"`
	Deadline    *calendar.Day `json:"deadline" gorm:"type:varchar(10)"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

func (g *Goal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// GoalStats is derived from the progress log on every read, never stored.
type GoalStats struct {
	CurrentValue float64 `json:"currentValue"`
	IsCompleted  bool    `json:"isCompleted"`
}

type GoalWithStats struct {
	Goal
	GoalStats
}

// Goal DTOs
type CreateGoalRequest struct {
	Title       string        `json:"title" validate:"required,max=120"`
	Description *string       `json:"description" validate:"omitempty,max=1000"`
	CategoryID  uuid.UUID     `json:"categoryId" validate:"required"`
	Type        EntityType    `json:"type" validate:"required,oneof=qualitative quantitative"`
	TargetValue *float64      `json:"targetValue"`
	HabitID     *uuid.UUID    `json:"habitId"`
	Deadline    *calendar.Day `json:"deadline"`
}

// UpdateGoalRequest leaves Type out; ClearHabit/ClearDeadline drop the link or deadline.
type UpdateGoalRequest struct {
	Title         *string       `json:"title" validate:"omitempty,min=1,max=120"`
	Description   *string       `json:"description" validate:"omitempty,max=1000"`
	CategoryID    *uuid.UUID    `json:"categoryId"`
	TargetValue   *float64      `json:"targetValue"`
	HabitID       *uuid.UUID    `json:"habitId"`
	ClearHabit    bool          `json:"clearHabit"`
	Deadline      *calendar.Day `json:"deadline"`
	ClearDeadline bool          `json:"clearDeadline"`
}

type AddGoalProgressRequest struct {
	Date  calendar.Day `json:"date"`
	Value float64      `json:"value" validate:"required"`
}
