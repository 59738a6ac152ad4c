// Package bridge is a namespaced publish/subscribe bus shared by the page
// world and the isolated world.
//
// Payloads are opaque bytes. Delivery is synchronous: Publish returns after
// every current subscriber has run, in the order they subscribed. A handler
// may subscribe, unsubscribe or publish from inside a delivery.
package bridge

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Handler receives one event payload
type Handler func(payload []byte)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus delivers named events to subscribers
type Bus struct {
	namespace string
	logger    *zap.Logger

	mu     sync.RWMutex
	subs   map[string][]subscription
	nextID uint64
}

// New creates a bus whose event names are prefixed with namespace
func New(namespace string, logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		namespace: namespace,
		logger:    logger,
		subs:      make(map[string][]subscription),
	}
}

// Namespace returns the bus namespace
func (b *Bus) Namespace() string {
	return b.namespace
}

// Event returns the fully qualified event name
func (b *Bus) Event(name string) string {
	if b.namespace == "" {
		return name
	}
	return b.namespace + ":" + name
}

// Subscribe registers h for the named event. The returned function removes
// the subscription and is safe to call more than once.
func (b *Bus) Subscribe(name string, h Handler) (unsubscribe func()) {
	event := b.Event(name)

	b.mu.Lock()
	b.nextID++
	subID := b.nextID
	b.subs[event] = append(b.subs[event], subscription{id: subID, handler: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(event, subID) })
	}
}

func (b *Bus) remove(event string, subID uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[event]
	for i, s := range list {
		if s.id != subID {
			continue
		}
		next := make([]subscription, 0, len(list)-1)
		next = append(next, list[:i]...)
		next = append(next, list[i+1:]...)
		if len(next) == 0 {
			delete(b.subs, event)
		} else {
			b.subs[event] = next
		}
		return
	}
}

// Publish delivers payload to every subscriber of the named event and
// returns how many handlers ran. A panicking handler is logged and skipped.
func (b *Bus) Publish(name string, payload []byte) int {
	event := b.Event(name)

	b.mu.RLock()
	list := b.subs[event]
	b.mu.RUnlock()

	for _, s := range list {
		b.deliver(event, s.handler, payload)
	}
	return len(list)
}

// Subscribers returns the number of handlers registered for the named event
func (b *Bus) Subscribers(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[b.Event(name)])
}

func (b *Bus) deliver(event string, h Handler, payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("bridge handler panicked",
				zap.String("event", event),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	h(payload)
}
