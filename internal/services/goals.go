package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arnold/habits-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GoalService struct {
	db    *gorm.DB
	logs  *ProgressLogStore
	stats *StatsService
}

func NewGoalService(gdb *gorm.DB, logs *ProgressLogStore, stats *StatsService) *GoalService {
	return &GoalService{db: gdb, logs: logs, stats: stats}
}

// List returns the user's goals, optionally narrowed to one category.
func (s *GoalService) List(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID) ([]models.GoalWithStats, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	var goals []models.Goal
	if err := query.Order("created_at ASC").Find(&goals).Error; err != nil {
		return nil, storageError("list goals", err)
	}

	stats, err := s.stats.ComputeGoalStatsFor(ctx, userID, goals)
	if err != nil {
		return nil, err
	}

	result := make([]models.GoalWithStats, len(goals))
	for i, g := range goals {
		result[i] = models.GoalWithStats{Goal: g, GoalStats: stats[g.ID]}
	}
	return result, nil
}

func (s *GoalService) Get(ctx context.Context, userID, goalID uuid.UUID) (*models.GoalWithStats, error) {
	goal, err := findGoal(ctx, s.db, userID, goalID)
	if err != nil {
		return nil, err
	}
	stats, err := s.stats.goalStats(ctx, goal)
	if err != nil {
		return nil, err
	}
	return &models.GoalWithStats{Goal: *goal, GoalStats: stats}, nil
}

func (s *GoalService) Create(ctx context.Context, userID uuid.UUID, req models.CreateGoalRequest) (*models.Goal, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	rule, err := ruleFor(req.Type)
	if err != nil {
		return nil, err
	}
	target, err := rule.goalTarget(req.Type, req.TargetValue)
	if err != nil {
		return nil, err
	}

	if err := s.checkCategory(ctx, userID, req.CategoryID); err != nil {
		return nil, err
	}
	if req.HabitID != nil {
		if err := s.checkHabitLink(ctx, userID, *req.HabitID, uuid.Nil, req.Type); err != nil {
			return nil, err
		}
	}
	if err := s.checkTitleFree(ctx, userID, title, uuid.Nil); err != nil {
		return nil, err
	}

	goal := models.Goal{
		UserID:      userID,
		CategoryID:  req.CategoryID,
		Title:       title,
		Description: req.Description,
		Type:        req.Type,
		TargetValue: target,
		HabitID:     req.HabitID,
		Deadline:    req.Deadline,
	}
	if err := s.db.WithContext(ctx).Create(&goal).Error; err != nil {
		return nil, storageError("create goal", err)
	}
	return &goal, nil
}

func (s *GoalService) Update(ctx context.Context, userID, goalID uuid.UUID, req models.UpdateGoalRequest) (*models.Goal, error) {
	goal, err := findGoal(ctx, s.db, userID, goalID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		if title != goal.Title {
			if err := s.checkTitleFree(ctx, userID, title, goal.ID); err != nil {
				return nil, err
			}
		}
		goal.Title = title
	}
	if req.Description != nil {
		goal.Description = req.Description
	}
	if req.CategoryID != nil {
		if err := s.checkCategory(ctx, userID, *req.CategoryID); err != nil {
			return nil, err
		}
		goal.CategoryID = *req.CategoryID
	}
	if req.TargetValue != nil {
		rule, err := ruleFor(goal.Type)
		if err != nil {
			return nil, err
		}
		if goal.TargetValue, err = rule.goalTarget(goal.Type, req.TargetValue); err != nil {
			return nil, err
		}
	}

	switch {
	case req.ClearHabit:
		goal.HabitID = nil
	case req.HabitID != nil:
		if err := s.checkHabitLink(ctx, userID, *req.HabitID, goal.ID, goal.Type); err != nil {
			return nil, err
		}
		goal.HabitID = req.HabitID
	}

	switch {
	case req.ClearDeadline:
		goal.Deadline = nil
	case req.Deadline != nil:
		goal.Deadline = req.Deadline
	}

	if err := s.db.WithContext(ctx).Save(goal).Error; err != nil {
		return nil, storageError("update goal", err)
	}
	return goal, nil
}

// Delete removes a goal with its own entries. Entries written by a habit
// check stay as plain habit checks so the habit's streak is untouched.
func (s *GoalService) Delete(ctx context.Context, userID, goalID uuid.UUID) error {
	goal, err := findGoal(ctx, s.db, userID, goalID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("goal_id = ? AND habit_id IS NULL", goal.ID).
			Delete(&models.ProgressLog{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ProgressLog{}).
			Where("goal_id = ?", goal.ID).
			Updates(map[string]any{"goal_id": nil, "goal_day_key": nil}).Error; err != nil {
			return err
		}
		return tx.Delete(goal).Error
	})
	if err != nil {
		return storageError("delete goal", err)
	}
	return nil
}

// ListProgress returns a goal's entries newest first.
func (s *GoalService) ListProgress(ctx context.Context, userID, goalID uuid.UUID) ([]models.ProgressLog, error) {
	if _, err := findGoal(ctx, s.db, userID, goalID); err != nil {
		return nil, err
	}
	return s.logs.ListForGoal(ctx, userID, goalID)
}

func (s *GoalService) checkCategory(ctx context.Context, userID, categoryID uuid.UUID) error {
	if _, err := findCategory(ctx, s.db, userID, categoryID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: category %s does not exist", ErrUnprocessable, categoryID)
		}
		return err
	}
	return nil
}

// checkHabitLink allows a habit to feed at most one goal, and only a goal
// whose fixed entry value its checks can honour.
func (s *GoalService) checkHabitLink(ctx context.Context, userID, habitID, goalID uuid.UUID, goalType models.EntityType) error {
	habit, err := findHabit(ctx, s.db, userID, habitID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: habit %s does not exist", ErrUnprocessable, habitID)
		}
		return err
	}

	goalRule, err := ruleFor(goalType)
	if err != nil {
		return err
	}
	habitRule, err := ruleFor(habit.Type)
	if err != nil {
		return err
	}
	if goalRule.fixedValue != 0 && habitRule.fixedValue != goalRule.fixedValue {
		return fmt.Errorf("%w: %s habits cannot feed %s goals", ErrUnprocessable, habit.Type, goalType)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Goal{}).
		Where("user_id = ? AND habit_id = ? AND id <> ?", userID, habitID, goalID).
		Count(&count).Error; err != nil {
		return storageError("check habit link", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: habit is already linked to another goal", ErrConflict)
	}
	return nil
}

func (s *GoalService) checkTitleFree(ctx context.Context, userID uuid.UUID, title string, except uuid.UUID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Goal{}).
		Where("user_id = ? AND title = ? AND id <> ?", userID, title, except).
		Count(&count).Error; err != nil {
		return storageError("check goal title", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: a goal titled %q already exists", ErrConflict, title)
	}
	return nil
}
