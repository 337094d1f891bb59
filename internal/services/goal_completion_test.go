package services

import (
	"context"
	"testing"

	"github.com/arnold/habits-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualitativeGoalOncePerDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	goal := f.goal(t, models.Qualitative, nil, nil)

	got, err := f.svc.GoalCompletion.AddGoalProgress(ctx, f.user.ID, goal.ID, testToday(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.GoalStats{CurrentValue: 1, IsCompleted: true}, got.GoalStats)

	_, err = f.svc.GoalCompletion.AddGoalProgress(ctx, f.user.ID, goal.ID, testToday(), 1)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.GoalCompletion.AddGoalProgress(ctx, f.user.ID, goal.ID, testToday().AddDays(-1), 2)
	assert.ErrorIs(t, err, ErrUnprocessable)

	_, err = f.svc.GoalCompletion.AddGoalProgress(ctx, f.user.ID, goal.ID, testToday().AddDays(-1), 1)
	assert.NoError(t, err)
}

func TestHabitCheckHoldsQualitativeGoalDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	habit := f.habit(t, models.Qualitative, nil)
	goal := f.goal(t, models.Qualitative, nil, &habit.ID)

	_, err := f.svc.HabitCompletion.CheckHabit(ctx, f.user.ID, habit.ID, testToday())
	require.NoError(t, err)

	// A goal entry that slipped past the day lookup still hits the index.
	racing := models.ProgressLog{
		UserID: f.user.ID, GoalID: &goal.ID, Value: 1, Date: testToday(),
		GoalDayKey: dailyKey(GoalEntity, goal.ID, testToday()),
	}
	assert.ErrorIs(t, f.svc.Logs.Append(ctx, &racing), ErrConflict)

	_, err = f.svc.GoalCompletion.AddGoalProgress(ctx, f.user.ID, goal.ID, testToday(), 1)
	assert.ErrorIs(t, err, ErrConflict)

	stats, err := f.svc.Stats.ComputeGoalStats(ctx, f.user.ID, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GoalStats{CurrentValue: 1, IsCompleted: true}, stats)
}

func TestCheckHabitFallsBackWhenGoalDayIsTaken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	habit := f.habit(t, models.Qualitative, nil)
	goal := f.goal(t, models.Qualitative, nil, &habit.ID)

	// Written behind the day lookup's back: it holds the goal key but has no
	// goal id, so creditableGoal still offers the goal.
	squatter := models.ProgressLog{
		UserID: f.user.ID, HabitID: &habit.ID, Value: 1, Date: testToday().AddDays(-1),
		GoalDayKey: dailyKey(GoalEntity, goal.ID, testToday()),
	}
	require.NoError(t, f.svc.Logs.Append(ctx, &squatter))

	checked, err := f.svc.HabitCompletion.CheckHabit(ctx, f.user.ID, habit.ID, testToday())
	require.NoError(t, err)
	assert.True(t, checked.IsCompletedToday)

	entry, err := f.svc.Logs.FindForDay(ctx, f.user.ID, HabitEntity, habit.ID, testToday())
	require.NoError(t, err)
	assert.Nil(t, entry.GoalID)
	assert.Nil(t, entry.GoalDayKey)

	stats, err := f.svc.Stats.ComputeGoalStats(ctx, f.user.ID, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GoalStats{CurrentValue: 0, IsCompleted: false}, stats)
}

func TestQuantitativeGoalAccumulates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	goal := f.goal(t, models.Quantitative, ptr(10.0), nil)

	_, err := f.svc.GoalCompletion.AddGoalProgress(ctx, f.user.ID, goal.ID, testToday(), 3)
	require.NoError(t, err)
	got, err := f.svc.GoalCompletion.AddGoalProgress(ctx, f.user.ID, goal.ID, testToday(), 4)
	require.NoError(t, err)
	assert.Equal(t, models.GoalStats{CurrentValue: 7, IsCompleted: false}, got.GoalStats)

	got, err = f.svc.GoalCompletion.AddGoalProgress(ctx, f.user.ID, goal.ID, testToday(), 3)
	require.NoError(t, err)
	assert.Equal(t, models.GoalStats{CurrentValue: 10, IsCompleted: true}, got.GoalStats)

	_, err = f.svc.GoalCompletion.AddGoalProgress(ctx, f.user.ID, goal.ID, testToday(), 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRemoveGoalProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	goal := f.goal(t, models.Quantitative, ptr(5.0), nil)
	other := f.goal(t, models.Quantitative, ptr(5.0), nil)

	_, err := f.svc.GoalCompletion.AddGoalProgress(ctx, f.user.ID, goal.ID, testToday(), 5)
	require.NoError(t, err)
	entries, err := f.svc.Goals.ListProgress(ctx, f.user.ID, goal.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	_, err = f.svc.GoalCompletion.RemoveGoalProgress(ctx, f.user.ID, other.ID, entries[0].ID)
	assert.ErrorIs(t, err, ErrNotFound, "entry belongs to a different goal")

	_, err = f.svc.GoalCompletion.RemoveGoalProgress(ctx, f.user.ID, goal.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	stats, err := f.svc.GoalCompletion.RemoveGoalProgress(ctx, f.user.ID, goal.ID, entries[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.GoalStats{CurrentValue: 0, IsCompleted: false}, stats)
}

func TestGoalCompletionNotifiesOnlyOnTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	goal := f.goal(t, models.Quantitative, ptr(2.0), nil)

	for i := 0; i < 3; i++ {
		_, err := f.svc.GoalCompletion.AddGoalProgress(ctx, f.user.ID, goal.ID, testToday(), 1)
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, f.db.Model(&models.Notification{}).Where("user_id = ?", f.user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
