package kessoku

import "reflect"

// EventBus is a small, synchronous, type-keyed event bus. A World publishes
// its structural changes on it; applications may publish their own events as
// well. It is not safe for concurrent use.
type EventBus struct {
	handlers map[reflect.Type][]any
}

// ArchetypeCreated is published when a world allocates a new archetype.
type ArchetypeCreated struct {
	ID        ArchetypeID
	Signature Signature
}

// EntitySpawned is published after an entity has been stored.
type EntitySpawned struct {
	Entity    Entity
	Archetype ArchetypeID
}

// EntityDespawned is published after an entity has been removed.
type EntityDespawned struct {
	Entity Entity
}

// Subscribe registers a handler for events of type T.
//
// Handlers run in the order they were subscribed.
//
// Parameters:
//   - bus: The EventBus instance to subscribe to.
//   - handler: A function that takes a single argument of type `T`.
func Subscribe[T any](bus *EventBus, handler func(T)) {
	t := reflect.TypeFor[T]()
	if bus.handlers == nil {
		bus.handlers = make(map[reflect.Type][]any)
	}
	bus.handlers[t] = append(bus.handlers[t], handler)
}

// Publish calls every handler subscribed to T with event, synchronously.
//
// Parameters:
//   - bus: The EventBus to publish on. A nil bus drops the event.
//   - event: The event value passed to each handler.
func Publish[T any](bus *EventBus, event T) {
	if bus == nil || len(bus.handlers) == 0 {
		return
	}
	for _, h := range bus.handlers[reflect.TypeFor[T]()] {
		h.(func(T))(event)
	}
}

// HasSubscribers reports whether any handler listens for T.
func HasSubscribers[T any](bus *EventBus) bool {
	return bus != nil && len(bus.handlers[reflect.TypeFor[T]()]) > 0
}
