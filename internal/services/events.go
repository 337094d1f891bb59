package services

import (
	"context"
	"log"

	"github.com/arnold/habits-api/internal/models"
	"github.com/google/uuid"
)

// Event types pushed to a user's live connections
const (
	EventHabitChecked        = "habit_checked"
	EventHabitUnchecked      = "habit_unchecked"
	EventGoalProgressAdded   = "goal_progress_added"
	EventGoalProgressRemoved = "goal_progress_removed"
	EventGoalCompleted       = "goal_completed"
)

type Event struct {
	Type     string    `json:"type"`
	EntityID uuid.UUID `json:"entityId"`
	Data     any       `json:"data,omitempty"`
}

// Publisher fans events out to a user's open connections. Delivery is best effort.
type Publisher interface {
	Publish(userID uuid.UUID, event Event)
}

// GoalNotifier is told when a goal crosses its target.
type GoalNotifier interface {
	GoalCompleted(ctx context.Context, goal *models.Goal, stats models.GoalStats)
}

type nopPublisher struct{}

func (nopPublisher) Publish(uuid.UUID, Event) {}

// goalProgressReporter recomputes a goal after a log write and announces it.
type goalProgressReporter struct {
	stats    *StatsService
	events   Publisher
	notifier GoalNotifier
}

// report must run after the write that changed the goal has completed.
func (r goalProgressReporter) report(ctx context.Context, goal *models.Goal, before models.GoalStats, eventType string) (models.GoalStats, error) {
	after, err := r.stats.goalStats(ctx, goal)
	if err != nil {
		return models.GoalStats{}, err
	}

	r.events.Publish(goal.UserID, Event{
		Type:     eventType,
		EntityID: goal.ID,
		Data:     models.GoalWithStats{Goal: *goal, GoalStats: after},
	})

	if after.IsCompleted && !before.IsCompleted {
		log.Printf("Goal %s completed by user %s (%g/%g)", goal.ID, goal.UserID, after.CurrentValue, goal.TargetValue)
		r.notifier.GoalCompleted(ctx, goal, after)
		r.events.Publish(goal.UserID, Event{Type: EventGoalCompleted, EntityID: goal.ID})
	}
	return after, nil
}
