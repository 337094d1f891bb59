package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/arnold/habits-api/internal/calendar"
	"github.com/arnold/habits-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HabitCompletionService checks and unchecks habits. A check writes exactly
// one log entry; when the habit feeds a goal the same entry carries the goal
// id, so reverting the check reverts the goal credit with it.
type HabitCompletionService struct {
	db       *gorm.DB
	logs     *ProgressLogStore
	stats    *StatsService
	cal      Calendar
	events   Publisher
	reporter goalProgressReporter
}

func NewHabitCompletionService(gdb *gorm.DB, logs *ProgressLogStore, stats *StatsService, cal Calendar, events Publisher, notifier GoalNotifier) *HabitCompletionService {
	return &HabitCompletionService{
		db:       gdb,
		logs:     logs,
		stats:    stats,
		cal:      cal,
		events:   events,
		reporter: goalProgressReporter{stats: stats, events: events, notifier: notifier},
	}
}

// CheckHabit marks habitID done on day (today when day is zero).
func (s *HabitCompletionService) CheckHabit(ctx context.Context, userID, habitID uuid.UUID, day calendar.Day) (*models.HabitWithStats, error) {
	if day.IsZero() {
		day = s.cal.Today(ctx)
	}

	habit, err := findHabit(ctx, s.db, userID, habitID)
	if err != nil {
		return nil, err
	}

	value, err := checkValue(habit)
	if err != nil {
		return nil, err
	}

	if _, err := s.logs.FindForDay(ctx, userID, HabitEntity, habit.ID, day); err == nil {
		return nil, fmt.Errorf("%w: habit already checked on %s", ErrConflict, day)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	entry := &models.ProgressLog{
		UserID:      userID,
		HabitID:     &habit.ID,
		Value:       value,
		Date:        day,
		HabitDayKey: dailyKey(HabitEntity, habit.ID, day),
	}

	goal, goalRule, err := s.creditableGoal(ctx, userID, habit.ID, day)
	if err != nil {
		return nil, err
	}

	var before models.GoalStats
	if goal != nil {
		entry.GoalID = &goal.ID
		if goalRule.oncePerDay {
			entry.GoalDayKey = dailyKey(GoalEntity, goal.ID, day)
		}
		if before, err = s.stats.goalStats(ctx, goal); err != nil {
			return nil, err
		}
	}

	err = s.logs.Append(ctx, entry)
	if errors.Is(err, ErrConflict) && entry.GoalDayKey != nil {
		// The goal was logged for the day after creditableGoal looked; keep
		// the check and leave the goal alone.
		goal = nil
		entry.GoalID, entry.GoalDayKey = nil, nil
		err = s.logs.Append(ctx, entry)
	}
	if err != nil {
		return nil, err
	}

	stats, err := s.stats.ComputeHabitStats(ctx, userID, &habit.ID)
	if err != nil {
		return nil, err
	}
	result := &models.HabitWithStats{Habit: *habit, HabitStats: stats[habit.ID]}
	s.events.Publish(userID, Event{Type: EventHabitChecked, EntityID: habit.ID, Data: result})

	if goal != nil {
		if _, err := s.reporter.report(ctx, goal, before, EventGoalProgressAdded); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// creditableGoal finds the goal linked to habitID that a check on day should
// credit, with its type rule. A qualitative goal already logged that day is
// left alone.
func (s *HabitCompletionService) creditableGoal(ctx context.Context, userID, habitID uuid.UUID, day calendar.Day) (*models.Goal, typeRule, error) {
	var goal models.Goal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND habit_id = ?", userID, habitID).
		Order("created_at ASC").
		First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, typeRule{}, nil
	}
	if err != nil {
		return nil, typeRule{}, storageError("find linked goal", err)
	}

	rule, err := ruleFor(goal.Type)
	if err != nil {
		return nil, typeRule{}, err
	}
	if rule.oncePerDay {
		_, err := s.logs.FindForDay(ctx, userID, GoalEntity, goal.ID, day)
		if err == nil {
			return nil, typeRule{}, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, typeRule{}, err
		}
	}
	return &goal, rule, nil
}

// UncheckHabit removes the check of habitID on day (today when day is zero).
func (s *HabitCompletionService) UncheckHabit(ctx context.Context, userID, habitID uuid.UUID, day calendar.Day) error {
	if day.IsZero() {
		day = s.cal.Today(ctx)
	}

	habit, err := findHabit(ctx, s.db, userID, habitID)
	if err != nil {
		return err
	}

	entry, err := s.logs.FindForDay(ctx, userID, HabitEntity, habit.ID, day)
	if err != nil {
		return err
	}

	var goal *models.Goal
	var before models.GoalStats
	if entry.GoalID != nil {
		goal, err = findGoal(ctx, s.db, userID, *entry.GoalID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if goal != nil {
			if before, err = s.stats.goalStats(ctx, goal); err != nil {
				return err
			}
		}
	}

	if _, err := s.logs.Remove(ctx, entry.ID, userID); err != nil {
		return err
	}

	stats, err := s.stats.ComputeHabitStats(ctx, userID, &habit.ID)
	if err != nil {
		return err
	}
	s.events.Publish(userID, Event{
		Type:     EventHabitUnchecked,
		EntityID: habit.ID,
		Data:     models.HabitWithStats{Habit: *habit, HabitStats: stats[habit.ID]},
	})

	if goal != nil {
		if _, err := s.reporter.report(ctx, goal, before, EventGoalProgressRemoved); err != nil {
			return err
		}
	}
	return nil
}
