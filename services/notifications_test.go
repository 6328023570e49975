package services

import (
	"testing"
	"time"

	"cabinet-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextEvent(t *testing.T, events <-chan NotificationEvent) NotificationEvent {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("no notification event")
		return NotificationEvent{}
	}
}

func TestNotificationExpires(t *testing.T) {
	hub := NewNotificationHub(20 * time.Millisecond)
	defer hub.Close()

	n := hub.Publish("Patient ajouté", models.NotifySuccess)
	require.Len(t, hub.List(), 1)
	assert.Equal(t, n, hub.List()[0])

	assert.Eventually(t, func() bool { return len(hub.List()) == 0 }, time.Second, 5*time.Millisecond)
}

func TestNotificationDismiss(t *testing.T) {
	hub := NewNotificationHub(50 * time.Millisecond)
	defer hub.Close()
	events, cancel := hub.Subscribe(8)
	defer cancel()

	n := hub.Publish("Facture créée", models.NotifySuccess)
	added := nextEvent(t, events)
	assert.Equal(t, NotificationAdded, added.Kind)
	assert.Equal(t, n.ID, added.Notification.ID)

	assert.True(t, hub.Dismiss(n.ID))
	removed := nextEvent(t, events)
	assert.Equal(t, NotificationRemoved, removed.Kind)
	assert.False(t, hub.Dismiss(n.ID))

	// the stopped timer must not fire a second removal
	select {
	case ev := <-events:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
	assert.Empty(t, hub.List())
}

func TestNotificationsKeepPublishOrder(t *testing.T) {
	hub := NewNotificationHub(time.Minute)
	defer hub.Close()

	hub.Publish("un", models.NotifyInfo)
	hub.Publish("deux", models.NotifyWarning)
	hub.Publish("trois", models.NotifyError)

	var messages []string
	for _, n := range hub.List() {
		messages = append(messages, n.Message)
	}
	assert.Equal(t, []string{"un", "deux", "trois"}, messages)
}

func TestNotificationHubClose(t *testing.T) {
	hub := NewNotificationHub(time.Minute)
	events, cancel := hub.Subscribe(1)
	hub.Publish("avant", models.NotifyInfo)
	hub.Close()
	cancel()

	_, ok := <-events
	assert.True(t, ok, "buffered event still readable")
	_, ok = <-events
	assert.False(t, ok)

	hub.Publish("après", models.NotifyInfo)
	assert.Empty(t, hub.List())

	late, _ := hub.Subscribe(1)
	_, ok = <-late
	assert.False(t, ok)
}
