package services

import (
	"context"
	"testing"

	"github.com/arnold/habits-api/internal/calendar"
	"github.com/arnold/habits-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func days(today calendar.Day, offsets ...int) []calendar.Day {
	out := make([]calendar.Day, len(offsets))
	for i, o := range offsets {
		out[i] = today.AddDays(-o)
	}
	return out
}

func TestComputeStreaks(t *testing.T) {
	today := calendar.Date(2024, 5, 10)

	tests := []struct {
		name  string
		today calendar.Day // defaults to 2024-05-10
		dates []calendar.Day
		want  models.HabitStats
	}{
		{
			name: "no entries",
			want: models.HabitStats{},
		},
		{
			name:  "only today",
			dates: days(today, 0),
			want:  models.HabitStats{Streak: 1, BestStreak: 1, IsCompletedToday: true},
		},
		{
			name:  "run ending yesterday is still current",
			dates: days(today, 1, 2, 3),
			want:  models.HabitStats{Streak: 3, BestStreak: 3},
		},
		{
			name:  "run ending two days ago is broken",
			dates: days(today, 2, 3, 4),
			want:  models.HabitStats{Streak: 0, BestStreak: 3},
		},
		{
			name:  "single day yesterday",
			dates: days(today, 1),
			want:  models.HabitStats{Streak: 1, BestStreak: 1},
		},
		{
			name:  "single day two days ago",
			dates: days(today, 2),
			want:  models.HabitStats{Streak: 0, BestStreak: 1},
		},
		{
			name:  "older run beats a run broken before yesterday",
			dates: days(today, 5, 6, 7, 10, 11, 12, 13),
			want:  models.HabitStats{Streak: 0, BestStreak: 4},
		},
		{
			name:  "gap splits current from best",
			dates: days(today, 0, 1, 5, 6, 7, 8),
			want:  models.HabitStats{Streak: 2, BestStreak: 4, IsCompletedToday: true},
		},
		{
			name:  "current run is the best",
			dates: days(today, 0, 1, 2, 3, 10),
			want:  models.HabitStats{Streak: 4, BestStreak: 4, IsCompletedToday: true},
		},
		{
			name:  "month boundary",
			today: calendar.Date(2024, 3, 2),
			dates: []calendar.Day{calendar.Date(2024, 3, 1), calendar.Date(2024, 2, 29), calendar.Date(2024, 2, 28)},
			want:  models.HabitStats{Streak: 3, BestStreak: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			today := today
			if !tt.today.IsZero() {
				today = tt.today
			}
			got := computeStreaks(tt.dates, today)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got.BestStreak, got.Streak)
			assert.Equal(t, len(tt.dates) > 0 && tt.dates[0].Equal(today), got.IsCompletedToday)
		})
	}
}

func TestComputeHabitStatsCoversHabitsWithoutEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	checked := f.habit(t, models.Qualitative, nil)
	idle := f.habit(t, models.Qualitative, nil)

	for _, offset := range []int{0, 1, 2} {
		_, err := f.svc.HabitCompletion.CheckHabit(ctx, f.user.ID, checked.ID, testToday().AddDays(-offset))
		require.NoError(t, err)
	}

	stats, err := f.svc.Stats.ComputeHabitStats(ctx, f.user.ID, nil)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, models.HabitStats{Streak: 3, BestStreak: 3, IsCompletedToday: true}, stats[checked.ID])
	assert.Equal(t, models.HabitStats{}, stats[idle.ID])
}
