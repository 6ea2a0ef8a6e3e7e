package realtime

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealtrack/backend/internal/logging"
	"github.com/pageza/mealtrack/backend/internal/store"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if messageType == websocket.TextMessage {
		f.messages = append(f.messages, data)
	}
	return nil
}

func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) events(t *testing.T) []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Event
	for _, m := range f.messages {
		var e Event
		require.NoError(t, json.Unmarshal(m, &e))
		out = append(out, e)
	}
	return out
}

func TestHubBroadcastsToUserOnly(t *testing.T) {
	hub := NewHub(logging.Discard())
	alice, bob := uuid.New(), uuid.New()

	aConn, bConn := &fakeConn{}, &fakeConn{}
	a := NewClient(alice, uuid.New(), aConn)
	b := NewClient(bob, uuid.New(), bConn)
	hub.Register(a)
	hub.Register(b)
	assert.Equal(t, 1, hub.Connected(alice))

	done := make(chan struct{}, 2)
	go func() { a.WritePump(); done <- struct{}{} }()
	go func() { b.WritePump(); done <- struct{}{} }()

	hub.Notify(store.Notification{Level: store.LevelSuccess, Message: "Food added.", UserID: alice})

	hub.Unregister(a)
	hub.Unregister(b)
	<-done
	<-done

	events := aConn.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, EventNotification, events[0].Type)
	assert.Empty(t, bConn.events(t))
	assert.True(t, aConn.closed)
	assert.Zero(t, hub.Connected(alice))
}

func TestHubPublishesToWorkspaceOnly(t *testing.T) {
	hub := NewHub(logging.Discard())
	user := uuid.New()
	laptop, phone := uuid.New(), uuid.New()

	lConn, pConn := &fakeConn{}, &fakeConn{}
	l := NewClient(user, laptop, lConn)
	p := NewClient(user, phone, pConn)
	hub.Register(l)
	hub.Register(p)
	assert.Equal(t, 2, hub.Connected(user))

	done := make(chan struct{}, 2)
	go func() { l.WritePump(); done <- struct{}{} }()
	go func() { p.WritePump(); done <- struct{}{} }()

	hub.Publish(user, phone, Event{Type: EventSnapshot})
	hub.Notify(store.Notification{Level: store.LevelSuccess, Message: "Meals refreshed.", UserID: user})

	hub.Unregister(l)
	hub.Unregister(p)
	<-done
	<-done

	phoneEvents := pConn.events(t)
	require.Len(t, phoneEvents, 2)
	assert.Equal(t, EventSnapshot, phoneEvents[0].Type)
	assert.Equal(t, EventNotification, phoneEvents[1].Type)

	laptopEvents := lConn.events(t)
	require.Len(t, laptopEvents, 1)
	assert.Equal(t, EventNotification, laptopEvents[0].Type)
}

func TestClientSendDropsWhenFull(t *testing.T) {
	c := NewClient(uuid.New(), uuid.New(), &fakeConn{})
	for i := 0; i < sendBuffer; i++ {
		require.True(t, c.Send(Event{Type: EventSnapshot}))
	}
	assert.False(t, c.Send(Event{Type: EventSnapshot}))
}
