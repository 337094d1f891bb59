package services

import (
	"context"

	"github.com/arnold/habits-api/internal/calendar"
	"github.com/arnold/habits-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatsService derives habit and goal stats from the progress log. Nothing it
// returns is stored: every call reads the log as it is now.
type StatsService struct {
	db   *gorm.DB
	logs *ProgressLogStore
	cal  Calendar
}

func NewStatsService(gdb *gorm.DB, logs *ProgressLogStore, cal Calendar) *StatsService {
	return &StatsService{db: gdb, logs: logs, cal: cal}
}

// ComputeHabitStats returns stats for one habit, or for every habit of the
// user when habitID is nil. Habits without entries map to the zero value.
func (s *StatsService) ComputeHabitStats(ctx context.Context, userID uuid.UUID, habitID *uuid.UUID) (map[uuid.UUID]models.HabitStats, error) {
	dates, err := s.logs.ListDatesForEntities(ctx, userID, HabitEntity, habitID)
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	if habitID != nil {
		ids = []uuid.UUID{*habitID}
	} else if err := s.db.WithContext(ctx).Model(&models.Habit{}).
		Where("user_id = ?", userID).
		Pluck("id", &ids).Error; err != nil {
		return nil, storageError("list habit ids", err)
	}

	today := s.cal.Today(ctx)
	stats := make(map[uuid.UUID]models.HabitStats, len(ids))
	for _, id := range ids {
		stats[id] = computeStreaks(dates[id], today)
	}
	return stats, nil
}

// computeStreaks expects distinct days, most recent first.
//
// The current streak survives one missed day: activity yesterday keeps it
// alive until today is over. The best streak is the longest run anywhere and
// never falls below the current one.
func computeStreaks(dates []calendar.Day, today calendar.Day) models.HabitStats {
	if len(dates) == 0 {
		return models.HabitStats{}
	}

	var stats models.HabitStats
	sinceLast := calendar.DaysBetween(dates[0], today)
	stats.IsCompletedToday = sinceLast == 0

	if sinceLast == 0 || sinceLast == 1 {
		stats.Streak = 1
		for i := 0; i+1 < len(dates); i++ {
			if calendar.DaysBetween(dates[i+1], dates[i]) != 1 {
				break
			}
			stats.Streak++
		}
	}

	run := 1
	stats.BestStreak = 1
	for i := 0; i+1 < len(dates); i++ {
		if calendar.DaysBetween(dates[i+1], dates[i]) == 1 {
			run++
		} else {
			run = 1
		}
		if run > stats.BestStreak {
			stats.BestStreak = run
		}
	}

	if stats.Streak > stats.BestStreak {
		stats.BestStreak = stats.Streak
	}
	return stats
}
