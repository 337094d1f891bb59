package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/arnold/habits-api/internal/calendar"
	"github.com/arnold/habits-api/internal/database"
	"github.com/arnold/habits-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testNow is mid-afternoon UTC on 2024-05-10.
var testNow = time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)

func testToday() calendar.Day { return calendar.Of(testNow) }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := database.Open(sqlite.Open(dsn), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(_ uuid.UUID, event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	db     *gorm.DB
	svc    *Services
	events *recordingPublisher
	user   models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	events := &recordingPublisher{}
	svc := New(db, Options{Clock: FixedClock(testNow), Events: events})

	user := models.User{Email: uuid.NewString() + "@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)

	return &fixture{db: db, svc: svc, events: events, user: user}
}

func (f *fixture) category(t *testing.T) models.Category {
	t.Helper()
	c, err := f.svc.Categories.Create(context.Background(), f.user.ID, models.CreateCategoryRequest{Name: "Health " + uuid.NewString()[:8]})
	require.NoError(t, err)
	return *c
}

func (f *fixture) habit(t *testing.T, typ models.EntityType, impact *float64) models.Habit {
	t.Helper()
	h, err := f.svc.Habits.Create(context.Background(), f.user.ID, models.CreateHabitRequest{
		Title:               "Habit " + uuid.NewString()[:8],
		Type:                typ,
		ProgressImpactValue: impact,
		WeekDays:            []int{0, 1, 2, 3, 4, 5, 6},
	})
	require.NoError(t, err)
	return *h
}

func (f *fixture) goal(t *testing.T, typ models.EntityType, target *float64, habitID *uuid.UUID) models.Goal {
	t.Helper()
	g, err := f.svc.Goals.Create(context.Background(), f.user.ID, models.CreateGoalRequest{
		Title:       "Goal " + uuid.NewString()[:8],
		CategoryID:  f.category(t).ID,
		Type:        typ,
		TargetValue: target,
		HabitID:     habitID,
	})
	require.NoError(t, err)
	return *g
}

func ptr[T any](v T) *T { return &v }
