package services

import (
	"sync"
	"time"

	"cabinet-backend/models"

	"github.com/google/uuid"
)

// DefaultNotificationTTL is how long a notification stays listed.
const DefaultNotificationTTL = 4 * time.Second

type NotificationEventKind string

const (
	NotificationAdded   NotificationEventKind = "added"
	NotificationRemoved NotificationEventKind = "removed"
)

type NotificationEvent struct {
	Kind         NotificationEventKind `json:"kind"`
	Notification models.Notification  `json:"notification"`
}

// NotificationHub holds transient notifications. Each one expires after the
// TTL unless dismissed first; subscribers are told about additions and
// removals.
type NotificationHub struct {
	mu     sync.Mutex
	ttl    time.Duration
	items  []models.Notification
	timers map[string]*time.Timer
	subs   map[int]chan NotificationEvent
	nextID int
	closed bool
}

// NewNotificationHub returns a hub; ttl <= 0 selects DefaultNotificationTTL.
func NewNotificationHub(ttl time.Duration) *NotificationHub {
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	return &NotificationHub{
		ttl:    ttl,
		timers: make(map[string]*time.Timer),
		subs:   make(map[int]chan NotificationEvent),
	}
}

func (h *NotificationHub) Publish(message string, typ models.NotificationType) models.Notification {
	n := models.Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Type:      typ,
		CreatedAt: time.Now(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return n
	}
	h.items = append(h.items, n)
	var timer *time.Timer
	timer = time.AfterFunc(h.ttl, func() { h.expire(n.ID, &timer) })
	h.timers[n.ID] = timer
	h.broadcastLocked(NotificationEvent{Kind: NotificationAdded, Notification: n})
	return n
}

// expire only removes the notification if *t is still its timer, so a
// callback racing with Dismiss does nothing. *t is read under the lock
// Publish holds while assigning it.
func (h *NotificationHub) expire(id string, t **time.Timer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.timers[id] != *t {
		return
	}
	h.removeLocked(id)
}

// Dismiss removes a notification before it expires and reports whether it
// was still listed.
func (h *NotificationHub) Dismiss(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if t, ok := h.timers[id]; ok {
		t.Stop()
	}
	return h.removeLocked(id)
}

func (h *NotificationHub) removeLocked(id string) bool {
	delete(h.timers, id)
	for i, n := range h.items {
		if n.ID == id {
			h.items = append(h.items[:i], h.items[i+1:]...)
			h.broadcastLocked(NotificationEvent{Kind: NotificationRemoved, Notification: n})
			return true
		}
	}
	return false
}

func (h *NotificationHub) List() []models.Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]models.Notification(nil), h.items...)
}

// Subscribe returns a channel of events and a cancel func. Events are
// dropped for a subscriber whose buffer is full.
func (h *NotificationHub) Subscribe(buffer int) (<-chan NotificationEvent, func()) {
	ch := make(chan NotificationEvent, buffer)
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

func (h *NotificationHub) broadcastLocked(ev NotificationEvent) {
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close stops every pending timer and closes all subscriber channels.
func (h *NotificationHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, t := range h.timers {
		t.Stop()
		delete(h.timers, id)
	}
	h.items = nil
	for id, ch := range h.subs {
		close(ch)
		delete(h.subs, id)
	}
}
