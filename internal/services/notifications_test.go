package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/arnold/habits-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []*messaging.Message
}

func (s *fakeSender) Send(_ context.Context, msg *messaging.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return "projects/test/messages/1", nil
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func TestGoalCompletedStoresAndPushes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sender := &fakeSender{}
	notifications := NewNotificationService(f.db, &PushService{db: f.db, sender: sender})

	require.NoError(t, notifications.RegisterDeviceToken(ctx, f.user.ID, "device-1"))

	goal := f.goal(t, models.Quantitative, ptr(3.0), nil)
	notifications.GoalCompleted(ctx, &goal, models.GoalStats{CurrentValue: 3, IsCompleted: true})

	page, err := notifications.List(ctx, f.user.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Notifications, 1)
	assert.EqualValues(t, 1, page.Unread)
	assert.Contains(t, string(page.Notifications[0].Metadata), goal.ID.String())

	assert.Eventually(t, func() bool { return sender.count() == 1 }, time.Second, 10*time.Millisecond)
	sender.mu.Lock()
	assert.Equal(t, "device-1", sender.sent[0].Token)
	assert.Equal(t, NotificationGoalCompleted, sender.sent[0].Data["type"])
	sender.mu.Unlock()
}

func TestMarkNotificationsRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	notifications := NewNotificationService(f.db, nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, notifications.Create(ctx, f.user.ID, NotificationGoalCompleted, "Goal completed", "", nil))
	}

	page, err := notifications.List(ctx, f.user.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Notifications, 3)

	require.NoError(t, notifications.MarkRead(ctx, f.user.ID, page.Notifications[0].ID))
	assert.ErrorIs(t, notifications.MarkRead(ctx, f.user.ID, uuid.New()), ErrNotFound)

	page, err = notifications.List(ctx, f.user.ID, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Unread)

	require.NoError(t, notifications.MarkAllRead(ctx, f.user.ID))
	page, err = notifications.List(ctx, f.user.ID, 1, 2)
	require.NoError(t, err)
	assert.Zero(t, page.Unread)
	assert.EqualValues(t, 3, page.Total)
	assert.Len(t, page.Notifications, 2)
}

func TestPushWithoutTokenSendsNothing(t *testing.T) {
	f := newFixture(t)
	sender := &fakeSender{}
	push := &PushService{db: f.db, sender: sender}

	push.SendToUser(context.Background(), f.user.ID, "title", "body", nil)
	assert.Zero(t, sender.count())

	var disabled *PushService
	assert.False(t, disabled.Enabled())
}
