package services

import (
	"time"

	"gorm.io/gorm"
)

type Options struct {
	Clock    Clock
	Location *time.Location // fallback when a request carries no timezone
	Events   Publisher
	Push     *PushService
}

// Services wires every service over one database handle.
type Services struct {
	Calendar        Calendar
	Logs            *ProgressLogStore
	Stats           *StatsService
	Users           *UserService
	Categories      *CategoryService
	Habits          *HabitService
	Goals           *GoalService
	HabitCompletion *HabitCompletionService
	GoalCompletion  *GoalCompletionService
	Notifications   *NotificationService
}

func New(gdb *gorm.DB, opts Options) *Services {
	cal := NewCalendar(opts.Clock, opts.Location)

	var events Publisher = nopPublisher{}
	if opts.Events != nil {
		events = opts.Events
	}

	logs := NewProgressLogStore(gdb, cal)
	stats := NewStatsService(gdb, logs, cal)
	notifications := NewNotificationService(gdb, opts.Push)

	return &Services{
		Calendar:        cal,
		Logs:            logs,
		Stats:           stats,
		Users:           NewUserService(gdb),
		Categories:      NewCategoryService(gdb),
		Habits:          NewHabitService(gdb, stats),
		Goals:           NewGoalService(gdb, logs, stats),
		HabitCompletion: NewHabitCompletionService(gdb, logs, stats, cal, events, notifications),
		GoalCompletion:  NewGoalCompletionService(gdb, logs, stats, cal, events, notifications),
		Notifications:   notifications,
	}
}
