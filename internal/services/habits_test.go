package services

import (
	"context"
	"testing"

	"github.com/arnold/habits-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateHabitTypeRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     models.CreateHabitRequest
		wantErr error
	}{
		{
			name: "qualitative without impact",
			req:  models.CreateHabitRequest{Title: "Meditate", Type: models.Qualitative, WeekDays: []int{1}},
		},
		{
			name:    "qualitative with impact",
			req:     models.CreateHabitRequest{Title: "Stretch", Type: models.Qualitative, ProgressImpactValue: ptr(3.0), WeekDays: []int{1}},
			wantErr: ErrUnprocessable,
		},
		{
			name:    "quantitative without impact",
			req:     models.CreateHabitRequest{Title: "Run", Type: models.Quantitative, WeekDays: []int{1}},
			wantErr: ErrUnprocessable,
		},
		{
			name:    "quantitative impact below one",
			req:     models.CreateHabitRequest{Title: "Swim", Type: models.Quantitative, ProgressImpactValue: ptr(0.0), WeekDays: []int{1}},
			wantErr: ErrUnprocessable,
		},
		{
			name:    "unknown type",
			req:     models.CreateHabitRequest{Title: "Nap", Type: "sometimes", WeekDays: []int{1}},
			wantErr: ErrUnprocessable,
		},
		{
			name:    "weekday out of range",
			req:     models.CreateHabitRequest{Title: "Read", Type: models.Qualitative, WeekDays: []int{7}},
			wantErr: ErrValidation,
		},
		{
			name:    "no weekdays",
			req:     models.CreateHabitRequest{Title: "Write", Type: models.Qualitative},
			wantErr: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Habits.Create(ctx, f.user.ID, tt.req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateHabitNormalizesWeekDaysAndRejectsDuplicateTitle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	habit, err := f.svc.Habits.Create(ctx, f.user.ID, models.CreateHabitRequest{
		Title:    "  Walk  ",
		Type:     models.Qualitative,
		WeekDays: []int{5, 1, 5, 0},
	})
	require.NoError(t, err)
	assert.Equal(t, "Walk", habit.Title)
	assert.Equal(t, []int{0, 1, 5}, []int(habit.WeekDays))

	_, err = f.svc.Habits.Create(ctx, f.user.ID, models.CreateHabitRequest{Title: "Walk", Type: models.Qualitative, WeekDays: []int{1}})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateHabit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	run := f.habit(t, models.Quantitative, ptr(2.0))
	walk := f.habit(t, models.Qualitative, nil)

	updated, err := f.svc.Habits.Update(ctx, f.user.ID, run.ID, models.UpdateHabitRequest{
		ProgressImpactValue: ptr(4.0),
		WeekDays:            []int{6},
	})
	require.NoError(t, err)
	assert.Equal(t, 4.0, *updated.ProgressImpactValue)
	assert.Equal(t, []int{6}, []int(updated.WeekDays))

	_, err = f.svc.Habits.Update(ctx, f.user.ID, run.ID, models.UpdateHabitRequest{Title: ptr(walk.Title)})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.Habits.Update(ctx, f.user.ID, walk.ID, models.UpdateHabitRequest{ProgressImpactValue: ptr(2.0)})
	assert.ErrorIs(t, err, ErrUnprocessable)
}

func TestDeleteHabitKeepsGoalCredit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	habit := f.habit(t, models.Quantitative, ptr(5.0))
	goal := f.goal(t, models.Quantitative, ptr(20.0), &habit.ID)

	for _, offset := range []int{1, 0} {
		_, err := f.svc.HabitCompletion.CheckHabit(ctx, f.user.ID, habit.ID, testToday().AddDays(-offset))
		require.NoError(t, err)
	}

	require.NoError(t, f.svc.Habits.Delete(ctx, f.user.ID, habit.ID))

	_, err := f.svc.Habits.Get(ctx, f.user.ID, habit.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := f.svc.Goals.Get(ctx, f.user.ID, goal.ID)
	require.NoError(t, err)
	assert.Nil(t, got.HabitID)
	assert.Equal(t, 10.0, got.CurrentValue)

	var orphans int64
	require.NoError(t, f.db.Model(&models.ProgressLog{}).Where("habit_id = ?", habit.ID).Count(&orphans).Error)
	assert.Zero(t, orphans)
}

func TestListHabitsMergesStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	habit := f.habit(t, models.Qualitative, nil)
	f.habit(t, models.Qualitative, nil)

	_, err := f.svc.HabitCompletion.CheckHabit(ctx, f.user.ID, habit.ID, testToday().AddDays(-1))
	require.NoError(t, err)

	habits, err := f.svc.Habits.List(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, habits, 2)
	for _, h := range habits {
		if h.ID == habit.ID {
			assert.Equal(t, models.HabitStats{Streak: 1, BestStreak: 1}, h.HabitStats)
		} else {
			assert.Equal(t, models.HabitStats{}, h.HabitStats)
		}
	}
}
