package handlers

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/arnold/habits-api/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSocket struct {
	mu       sync.Mutex
	messages [][]byte
	fail     bool
}

func (s *fakeSocket) WriteMessage(_ int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("broken pipe")
	}
	s.messages = append(s.messages, data)
	return nil
}

func TestHubPublishesOnlyToTheUser(t *testing.T) {
	hub := NewHub()
	alice, bob := uuid.New(), uuid.New()

	aliceSocket, bobSocket := &fakeSocket{}, &fakeSocket{}
	aliceConn := &connection{conn: aliceSocket}
	hub.register(alice, aliceConn)
	hub.register(bob, &connection{conn: bobSocket})

	habitID := uuid.New()
	hub.Publish(alice, services.Event{Type: services.EventHabitChecked, EntityID: habitID})

	require.Len(t, aliceSocket.messages, 1)
	assert.Empty(t, bobSocket.messages)

	var got services.Event
	require.NoError(t, json.Unmarshal(aliceSocket.messages[0], &got))
	assert.Equal(t, services.EventHabitChecked, got.Type)
	assert.Equal(t, habitID, got.EntityID)

	hub.unregister(alice, aliceConn)
	assert.Zero(t, hub.Connections(alice))
	assert.Equal(t, 1, hub.Connections(bob))
}

func TestHubSurvivesFailedWrites(t *testing.T) {
	hub := NewHub()
	user := uuid.New()
	broken, healthy := &fakeSocket{fail: true}, &fakeSocket{}
	hub.register(user, &connection{conn: broken})
	hub.register(user, &connection{conn: healthy})

	hub.Publish(user, services.Event{Type: services.EventGoalCompleted, EntityID: uuid.New()})
	assert.Len(t, healthy.messages, 1)

	// Nobody connected is a no-op.
	hub.Publish(uuid.New(), services.Event{Type: services.EventGoalCompleted})
}
