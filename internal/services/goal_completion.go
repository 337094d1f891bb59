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

// GoalCompletionService logs and removes explicit goal progress.
type GoalCompletionService struct {
	db       *gorm.DB
	logs     *ProgressLogStore
	stats    *StatsService
	cal      Calendar
	reporter goalProgressReporter
}

func NewGoalCompletionService(gdb *gorm.DB, logs *ProgressLogStore, stats *StatsService, cal Calendar, events Publisher, notifier GoalNotifier) *GoalCompletionService {
	return &GoalCompletionService{
		db:       gdb,
		logs:     logs,
		stats:    stats,
		cal:      cal,
		reporter: goalProgressReporter{stats: stats, events: events, notifier: notifier},
	}
}

// AddGoalProgress logs value against goalID on day (today when day is zero).
func (s *GoalCompletionService) AddGoalProgress(ctx context.Context, userID, goalID uuid.UUID, day calendar.Day, value float64) (*models.GoalWithStats, error) {
	if day.IsZero() {
		day = s.cal.Today(ctx)
	}

	goal, err := findGoal(ctx, s.db, userID, goalID)
	if err != nil {
		return nil, err
	}

	rule, err := ruleFor(goal.Type)
	if err != nil {
		return nil, err
	}
	if err := rule.checkEntryValue(goal.Type, value); err != nil {
		return nil, err
	}

	entry := &models.ProgressLog{
		UserID: userID,
		GoalID: &goal.ID,
		Value:  value,
		Date:   day,
	}

	if rule.oncePerDay {
		if _, err := s.logs.FindForDay(ctx, userID, GoalEntity, goal.ID, day); err == nil {
			return nil, fmt.Errorf("%w: goal already has progress on %s", ErrConflict, day)
		} else if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		entry.GoalDayKey = dailyKey(GoalEntity, goal.ID, day)
	}

	before, err := s.stats.goalStats(ctx, goal)
	if err != nil {
		return nil, err
	}

	if err := s.logs.Append(ctx, entry); err != nil {
		return nil, err
	}

	after, err := s.reporter.report(ctx, goal, before, EventGoalProgressAdded)
	if err != nil {
		return nil, err
	}
	return &models.GoalWithStats{Goal: *goal, GoalStats: after}, nil
}

// RemoveGoalProgress deletes one entry of goalID. Removing an entry written
// by a habit check also unchecks that habit for the day, since it is the same
// entry.
func (s *GoalCompletionService) RemoveGoalProgress(ctx context.Context, userID, goalID, logID uuid.UUID) (models.GoalStats, error) {
	goal, err := findGoal(ctx, s.db, userID, goalID)
	if err != nil {
		return models.GoalStats{}, err
	}

	entry, err := s.logs.Get(ctx, logID, userID)
	if err != nil {
		return models.GoalStats{}, err
	}
	if entry.GoalID == nil || *entry.GoalID != goal.ID {
		return models.GoalStats{}, notFound("progress log entry for this goal")
	}

	before, err := s.stats.goalStats(ctx, goal)
	if err != nil {
		return models.GoalStats{}, err
	}

	if _, err := s.logs.Remove(ctx, entry.ID, userID); err != nil {
		return models.GoalStats{}, err
	}

	return s.reporter.report(ctx, goal, before, EventGoalProgressRemoved)
}

func findGoal(ctx context.Context, gdb *gorm.DB, userID, goalID uuid.UUID) (*models.Goal, error) {
	var goal models.Goal
	err := gdb.WithContext(ctx).Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("goal")
	}
	if err != nil {
		return nil, storageError("get goal", err)
	}
	return &goal, nil
}
