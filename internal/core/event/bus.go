package event

import (
	"reflect"
	"sync"
)

//go:generate go run go.uber.org/mock/mockgen -destination=./mocks/listener_mock.go -package=mocks . Listener

// Listener receives every event regardless of type, after the typed handlers.
type Listener interface {
	HandleEvent(ev any)
}

type envelope struct {
	typ reflect.Type
	ev  any
}

// Bus is a collect-then-dispatch event bus. Emit only queues; Flush delivers the
// queue in FIFO order, including events emitted by handlers while it runs.
// Not safe for concurrent Emit/Flush: one owner drives it from its update loop.
type Bus struct {
	mu        sync.Mutex // only protects handler registration
	pending   []envelope
	handlers  map[reflect.Type][]any
	listeners []Listener
	flushing  bool
}

func NewBus() *Bus {
	return &Bus{
		pending:  make([]envelope, 0, 16),
		handlers: make(map[reflect.Type][]any),
	}
}

// Emit queues an event; it is delivered on the next Flush.
func Emit[T any](b *Bus, event T) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.pending = append(b.pending, envelope{typ: t, ev: event})
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], fn)
}

// Listen registers a catch-all listener.
func (b *Bus) Listen(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
}

// Pending returns the number of queued, undelivered events.
func (b *Bus) Pending() int { return len(b.pending) }

// Discard drops every queued event without delivering it.
func (b *Bus) Discard() { b.pending = b.pending[:0] }

// Flush delivers queued events in emission order. after, when non-nil, runs once
// per event once subscribers have seen it; events it emits join the same queue.
// A Flush issued from inside a handler returns immediately and the outer Flush
// picks up whatever was queued.
func (b *Bus) Flush(after func(ev any)) {
	if b.flushing {
		return
	}
	b.flushing = true
	defer func() { b.flushing = false }()

	for len(b.pending) > 0 {
		env := b.pending[0]
		b.pending[0] = envelope{}
		b.pending = b.pending[1:]

		for _, h := range b.snapshot(env.typ) {
			// Safe: Subscribe and Emit key on the same type.
			callHandler(h, env.ev)
		}
		for _, l := range b.listenersSnapshot() {
			l.HandleEvent(env.ev)
		}
		if after != nil {
			after(env.ev)
		}
	}
	b.pending = b.pending[:0]
}

func (b *Bus) snapshot(t reflect.Type) []any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handlers[t]
}

func (b *Bus) listenersSnapshot() []Listener {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listeners
}

func callHandler(handler any, event any) {
	reflect.ValueOf(handler).Call([]reflect.Value{reflect.ValueOf(event)})
}
