package services

import (
	"context"

	"github.com/arnold/habits-api/internal/models"
	"github.com/google/uuid"
)

// ComputeGoalStats sums a goal's entries and compares against its target.
func (s *StatsService) ComputeGoalStats(ctx context.Context, userID, goalID uuid.UUID) (models.GoalStats, error) {
	goal, err := findGoal(ctx, s.db, userID, goalID)
	if err != nil {
		return models.GoalStats{}, err
	}
	return s.goalStats(ctx, goal)
}

func (s *StatsService) goalStats(ctx context.Context, goal *models.Goal) (models.GoalStats, error) {
	total, err := s.logs.SumValues(ctx, goal.UserID, goal.ID)
	if err != nil {
		return models.GoalStats{}, err
	}
	return goalStatsFrom(total, goal.TargetValue), nil
}

// ComputeGoalStatsFor is the batch form used by listings.
func (s *StatsService) ComputeGoalStatsFor(ctx context.Context, userID uuid.UUID, goals []models.Goal) (map[uuid.UUID]models.GoalStats, error) {
	ids := make([]uuid.UUID, len(goals))
	for i := range goals {
		ids[i] = goals[i].ID
	}

	totals, err := s.logs.SumValuesByGoal(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	stats := make(map[uuid.UUID]models.GoalStats, len(goals))
	for _, g := range goals {
		stats[g.ID] = goalStatsFrom(totals[g.ID], g.TargetValue)
	}
	return stats, nil
}

func goalStatsFrom(total, target float64) models.GoalStats {
	return models.GoalStats{
		CurrentValue: total,
		IsCompleted:  total >= target,
	}
}
