package services

import (
	"context"
	"time"

	"github.com/arnold/habits-api/internal/calendar"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant. Used by tests.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

type locationKey struct{}

// WithLocation attaches the caller's timezone so "today" is the caller's today.
func WithLocation(ctx context.Context, loc *time.Location) context.Context {
	if loc == nil {
		return ctx
	}
	return context.WithValue(ctx, locationKey{}, loc)
}

// Calendar resolves the caller's current day from a clock and a fallback location.
type Calendar struct {
	clock    Clock
	location *time.Location
}

func NewCalendar(clock Clock, location *time.Location) Calendar {
	if clock == nil {
		clock = SystemClock{}
	}
	if location == nil {
		location = time.UTC
	}
	return Calendar{clock: clock, location: location}
}

func (c Calendar) Today(ctx context.Context) calendar.Day {
	loc := c.location
	if fromCtx, ok := ctx.Value(locationKey{}).(*time.Location); ok {
		loc = fromCtx
	}
	return calendar.Today(c.clock.Now(), loc)
}
