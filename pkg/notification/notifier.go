package notification

import (
	"fmt"
	"sync"
	"time"

	"github.com/moveplan/moveplan/internal/event_bus"
	"github.com/moveplan/moveplan/internal/utils"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTTL      = 3 * time.Second
	DefaultCapacity = 50
)

// Notifier keeps the most recent notifications in a bounded buffer. A nil
// *Notifier accepts every call and records nothing.
type Notifier struct {
	mu       sync.Mutex
	clock    utils.Clock
	ttl      time.Duration
	capacity int
	nextID   uint64
	items    []Notification
}

func NewNotifier(clock utils.Clock, ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Notifier{clock: clock, ttl: ttl, capacity: DefaultCapacity}
}

// Notify records a message and returns it. Unknown kinds are stored as Info.
func (n *Notifier) Notify(kind Kind, message string) Notification {
	if n == nil {
		return Notification{Kind: kind, Message: message}
	}
	switch kind {
	case Info, Success, Error:
	default:
		kind = Info
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.clock.Now()
	n.nextID++
	item := Notification{
		ID:        n.nextID,
		Kind:      kind,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(n.ttl),
	}
	n.items = append(n.items, item)
	if len(n.items) > n.capacity {
		n.items = n.items[len(n.items)-n.capacity:]
	}
	log.Debugf("notification %s: %s", kind, message)
	return item
}

func (n *Notifier) Notifyf(kind Kind, format string, args ...any) Notification {
	return n.Notify(kind, fmt.Sprintf(format, args...))
}

// Live returns notifications that have not expired yet, newest first.
func (n *Notifier) Live() []Notification {
	if n == nil {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.clock.Now()
	live := make([]Notification, 0, len(n.items))
	for i := len(n.items) - 1; i >= 0; i-- {
		if n.items[i].Live(now) {
			live = append(live, n.items[i])
		}
	}
	return live
}

// Dismiss removes a notification before it expires. Unknown ids are ignored.
func (n *Notifier) Dismiss(id uint64) {
	if n == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, item := range n.items {
		if item.ID == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			return
		}
	}
}

// Subscribe turns storage failures published on bus into error notifications.
func (n *Notifier) Subscribe(bus *event_bus.EventBus) (unsubscribe func()) {
	return event_bus.SubscribeTyped(bus, event_bus.StorageFailedType, func(e event_bus.EventT[event_bus.StorageFailed]) error {
		n.Notifyf(Error, "Could not save %s: %v", e.Data.Key, e.Data.Err)
		return nil
	})
}
