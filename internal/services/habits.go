package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/arnold/habits-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type HabitService struct {
	db    *gorm.DB
	stats *StatsService
}

func NewHabitService(gdb *gorm.DB, stats *StatsService) *HabitService {
	return &HabitService{db: gdb, stats: stats}
}

func (s *HabitService) List(ctx context.Context, userID uuid.UUID) ([]models.HabitWithStats, error) {
	var habits []models.Habit
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&habits).Error; err != nil {
		return nil, storageError("list habits", err)
	}

	stats, err := s.stats.ComputeHabitStats(ctx, userID, nil)
	if err != nil {
		return nil, err
	}

	result := make([]models.HabitWithStats, len(habits))
	for i, h := range habits {
		result[i] = models.HabitWithStats{Habit: h, HabitStats: stats[h.ID]}
	}
	return result, nil
}

func (s *HabitService) Get(ctx context.Context, userID, habitID uuid.UUID) (*models.HabitWithStats, error) {
	habit, err := findHabit(ctx, s.db, userID, habitID)
	if err != nil {
		return nil, err
	}
	stats, err := s.stats.ComputeHabitStats(ctx, userID, &habit.ID)
	if err != nil {
		return nil, err
	}
	return &models.HabitWithStats{Habit: *habit, HabitStats: stats[habit.ID]}, nil
}

func (s *HabitService) Create(ctx context.Context, userID uuid.UUID, req models.CreateHabitRequest) (*models.Habit, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	rule, err := ruleFor(req.Type)
	if err != nil {
		return nil, err
	}
	impact, err := rule.habitValue(req.Type, req.ProgressImpactValue)
	if err != nil {
		return nil, err
	}
	weekDays, err := normalizeWeekDays(req.WeekDays)
	if err != nil {
		return nil, err
	}

	if err := s.checkTitleFree(ctx, userID, title, uuid.Nil); err != nil {
		return nil, err
	}

	habit := models.Habit{
		UserID:              userID,
		Title:               title,
		Description:         req.Description,
		Type:                req.Type,
		ProgressImpactValue: impact,
		WeekDays:            weekDays,
	}
	if err := s.db.WithContext(ctx).Create(&habit).Error; err != nil {
		return nil, storageError("create habit", err)
	}
	return &habit, nil
}

func (s *HabitService) Update(ctx context.Context, userID, habitID uuid.UUID, req models.UpdateHabitRequest) (*models.Habit, error) {
	habit, err := findHabit(ctx, s.db, userID, habitID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		if title != habit.Title {
			if err := s.checkTitleFree(ctx, userID, title, habit.ID); err != nil {
				return nil, err
			}
		}
		habit.Title = title
	}
	if req.Description != nil {
		habit.Description = req.Description
	}
	if req.ProgressImpactValue != nil {
		rule, err := ruleFor(habit.Type)
		if err != nil {
			return nil, err
		}
		if habit.ProgressImpactValue, err = rule.habitValue(habit.Type, req.ProgressImpactValue); err != nil {
			return nil, err
		}
	}
	if req.WeekDays != nil {
		if habit.WeekDays, err = normalizeWeekDays(req.WeekDays); err != nil {
			return nil, err
		}
	}

	if err := s.db.WithContext(ctx).Save(habit).Error; err != nil {
		return nil, storageError("update habit", err)
	}
	return habit, nil
}

// Delete removes a habit with its own entries. Entries it shares with a goal
// stay and keep crediting that goal; goals linked to it are unlinked.
func (s *HabitService) Delete(ctx context.Context, userID, habitID uuid.UUID) error {
	habit, err := findHabit(ctx, s.db, userID, habitID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("habit_id = ? AND goal_id IS NULL", habit.ID).
			Delete(&models.ProgressLog{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ProgressLog{}).
			Where("habit_id = ?", habit.ID).
			Updates(map[string]any{"habit_id": nil, "habit_day_key": nil}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Goal{}).
			Where("habit_id = ?", habit.ID).
			Update("habit_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(habit).Error
	})
	if err != nil {
		return storageError("delete habit", err)
	}
	return nil
}

func (s *HabitService) checkTitleFree(ctx context.Context, userID uuid.UUID, title string, except uuid.UUID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Habit{}).
		Where("user_id = ? AND title = ? AND id <> ?", userID, title, except).
		Count(&count).Error; err != nil {
		return storageError("check habit title", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: a habit titled %q already exists", ErrConflict, title)
	}
	return nil
}

// normalizeWeekDays dedupes and sorts a schedule; 0 is Sunday.
func normalizeWeekDays(days []int) (datatypes.JSONSlice[int], error) {
	if len(days) == 0 {
		return nil, fmt.Errorf("%w: weekDays needs at least one day", ErrValidation)
	}
	seen := make(map[int]bool, len(days))
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d < 0 || d > 6 {
			return nil, fmt.Errorf("%w: weekday %d out of range 0-6", ErrValidation, d)
		}
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Ints(out)
	return datatypes.JSONSlice[int](out), nil
}

func findHabit(ctx context.Context, gdb *gorm.DB, userID, habitID uuid.UUID) (*models.Habit, error) {
	var habit models.Habit
	err := gdb.WithContext(ctx).Where("id = ? AND user_id = ?", habitID, userID).First(&habit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("habit")
	}
	if err != nil {
		return nil, storageError("get habit", err)
	}
	return &habit, nil
}
