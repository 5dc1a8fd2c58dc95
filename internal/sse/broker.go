// Package sse fans vault change events out to connected clients over
// server-sent events.
package sse

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Event names published by the API layer and the filesystem watcher.
const (
	EventPageCreated     = "page.created"
	EventPageUpdated     = "page.updated"
	EventPageDeleted     = "page.deleted"
	EventPageMoved       = "page.moved"
	EventCategoryCreated = "category.created"
	EventCategoryUpdated = "category.updated"
	EventCategoryDeleted = "category.deleted"
	EventCategoryMoved   = "category.moved"
	EventVaultImported   = "vault.imported"
	EventVaultChanged    = "vault.changed"
)

// Event is one message delivered to subscribers.
type Event struct {
	Name string
	Data any
}

// Encode renders the event payload as JSON for the wire.
func (e Event) Encode() []byte {
	if e.Data == nil {
		return []byte("{}")
	}
	b, err := json.Marshal(e.Data)
	if err != nil {
		return []byte("{}")
	}
	return b
}

type subscriber chan Event

// Broker owns all subscriber channels. All state lives inside the run
// loop goroutine; the exported methods communicate over channels only.
type Broker struct {
	log       *slog.Logger
	publish   chan Event
	subscribe chan subscriber
	cancel    chan subscriber
	done      chan struct{}
}

// NewBroker creates a broker. Call Run before publishing.
func NewBroker(log *slog.Logger) *Broker {
	if log == nil {
		log = slog.Default()
	}
	return &Broker{
		log:       log.With("logger", "sse"),
		publish:   make(chan Event, 16),
		subscribe: make(chan subscriber),
		cancel:    make(chan subscriber),
		done:      make(chan struct{}),
	}
}

// Run processes subscriptions and publishes until ctx is done. Slow
// subscribers are skipped rather than blocking the loop.
func (b *Broker) Run(ctx context.Context) error {
	defer close(b.done)
	subs := map[subscriber]struct{}{}
	for {
		select {
		case <-ctx.Done():
			for sub := range subs {
				close(sub)
			}
			return ctx.Err()
		case sub := <-b.subscribe:
			subs[sub] = struct{}{}
		case sub := <-b.cancel:
			if _, ok := subs[sub]; ok {
				delete(subs, sub)
				close(sub)
			}
		case ev := <-b.publish:
			for sub := range subs {
				select {
				case sub <- ev:
				default:
					b.log.Warn("dropping event for slow subscriber", "event", ev.Name)
				}
			}
		}
	}
}

// Subscribe registers a new client. The returned cancel function must be
// called when the client disconnects. Both directions are safe to call
// after the run loop has stopped.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	sub := make(subscriber, 8)
	select {
	case b.subscribe <- sub:
	case <-b.done:
		close(sub)
	}
	return sub, func() {
		select {
		case b.cancel <- sub:
		case <-b.done:
		}
	}
}

// Publish enqueues an event for delivery. Never blocks the caller; if the
// run loop has fallen behind the event is dropped.
func (b *Broker) Publish(name string, data any) {
	select {
	case b.publish <- Event{Name: name, Data: data}:
	default:
		b.log.Warn("dropping event, broker backlog full", "event", name)
	}
}
