package console

import (
	"fmt"
	"sync"
	"time"
)

// EventBus delivers engine events to subscribers. Handlers run
// synchronously on the goroutine that published the event, outside of
// any engine lock.
type EventBus struct {
	mu            sync.RWMutex
	subscriptions map[string][]eventSubscription
	idCounter     int
}

// eventSubscription holds handler info
type eventSubscription struct {
	id        string
	eventType string
	handler   EventHandler
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscriptions: make(map[string][]eventSubscription),
	}
}

// Subscribe subscribes to events by type. "*" receives every event.
func (eb *EventBus) Subscribe(eventType string, handler EventHandler) string {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.idCounter++
	id := fmt.Sprintf("sub_%d", eb.idCounter)

	eb.subscriptions[eventType] = append(eb.subscriptions[eventType], eventSubscription{
		id:        id,
		eventType: eventType,
		handler:   handler,
	})

	return id
}

// On is Subscribe for handlers that cannot fail
func (eb *EventBus) On(eventType string, handler func(data interface{})) string {
	return eb.Subscribe(eventType, func(event Event) error {
		handler(event.Data)
		return nil
	})
}

// Unsubscribe removes a subscription
func (eb *EventBus) Unsubscribe(subscriptionID string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for key, subs := range eb.subscriptions {
		for i, sub := range subs {
			if sub.id == subscriptionID {
				eb.subscriptions[key] = append(subs[:i], subs[i+1:]...)

				// Clean up empty lists
				if len(eb.subscriptions[key]) == 0 {
					delete(eb.subscriptions, key)
				}
				return
			}
		}
	}
}

// Publish delivers an event to its subscribers and returns the first
// handler error. Every handler runs even when an earlier one fails.
func (eb *EventBus) Publish(event Event) error {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixNano()
	}

	eb.mu.RLock()
	var handlers []EventHandler
	for _, sub := range eb.subscriptions[event.Type] {
		handlers = append(handlers, sub.handler)
	}
	for _, sub := range eb.subscriptions["*"] {
		handlers = append(handlers, sub.handler)
	}
	eb.mu.RUnlock()

	// Call handlers outside of lock
	var firstErr error
	for _, handler := range handlers {
		if err := handler(event); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
