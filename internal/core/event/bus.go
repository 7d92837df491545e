// Package event carries change notifications from executed commands to
// whatever views observe the edited scene, so they can re-sync from pool
// state instead of tracking mutations themselves.
package event

import "reflect"

// Bus is a synchronous typed event bus. The editor loop is single-threaded,
// so events are delivered to subscribers immediately on Emit, in
// subscription order. Type keys come from reflect; handlers stay fully
// typed through the package-level generics.
type Bus struct {
	handlers map[reflect.Type][]any
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[reflect.Type][]any)}
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], fn)
}

// Emit delivers the event to every subscribed handler.
func Emit[T any](b *Bus, event T) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for _, h := range b.handlers[t] {
		// Safe: Subscribe and Emit key handlers by the same type.
		h.(func(T))(event)
	}
}
