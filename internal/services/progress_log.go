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

// EntityKind selects which reference column of the log a query works on.
type EntityKind int

const (
	HabitEntity EntityKind = iota
	GoalEntity
)

func (k EntityKind) column() string {
	if k == GoalEntity {
		return "goal_id"
	}
	return "habit_id"
}

func (k EntityKind) String() string {
	if k == GoalEntity {
		return "goal"
	}
	return "habit"
}

// dailyKey is the day key of an entity that allows one entry per day.
func dailyKey(kind EntityKind, id uuid.UUID, day calendar.Day) *string {
	key := fmt.Sprintf("%s:%s:%s", kind, id, day)
	return &key
}

// ProgressLogStore is the append/remove-only store of dated log entries.
type ProgressLogStore struct {
	db  *gorm.DB
	cal Calendar
}

func NewProgressLogStore(gdb *gorm.DB, cal Calendar) *ProgressLogStore {
	return &ProgressLogStore{db: gdb, cal: cal}
}

// Append validates and stores entry. A day key collision becomes ErrConflict.
func (s *ProgressLogStore) Append(ctx context.Context, entry *models.ProgressLog) error {
	if entry.HabitID == nil && entry.GoalID == nil {
		return fmt.Errorf("%w: entry must reference a habit or a goal", ErrValidation)
	}
	if entry.Value < 1 {
		return fmt.Errorf("%w: value must be at least 1", ErrValidation)
	}
	if entry.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	if today := s.cal.Today(ctx); entry.Date.After(today) {
		return fmt.Errorf("%w: date %s is in the future", ErrValidation, entry.Date)
	}

	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return storageError("append progress log", err)
	}
	return nil
}

type entityDateRow struct {
	EntityID uuid.UUID
	LogDate  calendar.Day
}

// ListDatesForEntities returns, per entity, its distinct log days most recent first.
// A nil entityID covers every entity of that kind owned by the user.
func (s *ProgressLogStore) ListDatesForEntities(ctx context.Context, userID uuid.UUID, kind EntityKind, entityID *uuid.UUID) (map[uuid.UUID][]calendar.Day, error) {
	col := kind.column()

	query := s.db.WithContext(ctx).Model(&models.ProgressLog{}).
		Select(col+" AS entity_id, log_date").
		Where("user_id = ? AND "+col+" IS NOT NULL", userID)
	if entityID != nil {
		query = query.Where(col+" = ?", *entityID)
	}

	var rows []entityDateRow
	if err := query.Group(col + ", log_date").Order("log_date DESC").Scan(&rows).Error; err != nil {
		return nil, storageError("list log dates", err)
	}

	dates := make(map[uuid.UUID][]calendar.Day)
	for _, row := range rows {
		dates[row.EntityID] = append(dates[row.EntityID], row.LogDate)
	}
	return dates, nil
}

// SumValues is the total logged against a goal, 0 without entries.
func (s *ProgressLogStore) SumValues(ctx context.Context, userID, goalID uuid.UUID) (float64, error) {
	var total float64
	if err := s.db.WithContext(ctx).Model(&models.ProgressLog{}).
		Select("COALESCE(SUM(value), 0)").
		Where("user_id = ? AND goal_id = ?", userID, goalID).
		Scan(&total).Error; err != nil {
		return 0, storageError("sum progress", err)
	}
	return total, nil
}

type goalSumRow struct {
	GoalID uuid.UUID
	Total  float64
}

// SumValuesByGoal is the batch form of SumValues; goals without entries are absent.
func (s *ProgressLogStore) SumValuesByGoal(ctx context.Context, userID uuid.UUID, goalIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	totals := make(map[uuid.UUID]float64, len(goalIDs))
	if len(goalIDs) == 0 {
		return totals, nil
	}

	var rows []goalSumRow
	if err := s.db.WithContext(ctx).Model(&models.ProgressLog{}).
		Select("goal_id, SUM(value) AS total").
		Where("user_id = ? AND goal_id IN ?", userID, goalIDs).
		Group("goal_id").
		Scan(&rows).Error; err != nil {
		return nil, storageError("sum progress by goal", err)
	}

	for _, row := range rows {
		totals[row.GoalID] = row.Total
	}
	return totals, nil
}

// FindForDay returns the earliest entry of an entity on day, or ErrNotFound.
func (s *ProgressLogStore) FindForDay(ctx context.Context, userID uuid.UUID, kind EntityKind, entityID uuid.UUID, day calendar.Day) (*models.ProgressLog, error) {
	var entry models.ProgressLog
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND "+kind.column()+" = ? AND log_date = ?", userID, entityID, day).
		Order("created_at ASC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(fmt.Sprintf("no %s entry on %s", kind, day))
	}
	if err != nil {
		return nil, storageError("find progress log", err)
	}
	return &entry, nil
}

func (s *ProgressLogStore) Get(ctx context.Context, logID, userID uuid.UUID) (*models.ProgressLog, error) {
	var entry models.ProgressLog
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", logID, userID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("progress log entry")
	}
	if err != nil {
		return nil, storageError("get progress log", err)
	}
	return &entry, nil
}

// Remove deletes an entry owned by userID and returns what was removed.
func (s *ProgressLogStore) Remove(ctx context.Context, logID, userID uuid.UUID) (*models.ProgressLog, error) {
	entry, err := s.Get(ctx, logID, userID)
	if err != nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", logID, userID).Delete(&models.ProgressLog{})
	if result.Error != nil {
		return nil, storageError("remove progress log", result.Error)
	}
	// Lost a race with a concurrent removal.
	if result.RowsAffected == 0 {
		return nil, notFound("progress log entry")
	}
	return entry, nil
}

// ListForGoal returns a goal's entries newest first.
func (s *ProgressLogStore) ListForGoal(ctx context.Context, userID, goalID uuid.UUID) ([]models.ProgressLog, error) {
	var entries []models.ProgressLog
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND goal_id = ?", userID, goalID).
		Order("log_date DESC, created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, storageError("list goal progress", err)
	}
	return entries, nil
}

// ListBetween returns the user's entries in [from, to] with entity titles, newest first.
func (s *ProgressLogStore) ListBetween(ctx context.Context, userID uuid.UUID, from, to calendar.Day) ([]models.HistoryEntry, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end %s is before start %s", ErrValidation, to, from)
	}

	rows := []models.HistoryEntry{}
	if err := s.db.WithContext(ctx).Table("progress_logs").
		Select("progress_logs.id, progress_logs.habit_id, habits.title AS habit_title, " +
			"progress_logs.goal_id, goals.title AS goal_title, progress_logs.value, " +
			"progress_logs.log_date, progress_logs.created_at").
		Joins("LEFT JOIN habits ON habits.id = progress_logs.habit_id").
		Joins("LEFT JOIN goals ON goals.id = progress_logs.goal_id").
		Where("progress_logs.user_id = ? AND progress_logs.log_date BETWEEN ? AND ?", userID, from, to).
		Order("progress_logs.log_date DESC, progress_logs.created_at DESC").
		Scan(&rows).Error; err != nil {
		return nil, storageError("list history", err)
	}
	return rows, nil
}
