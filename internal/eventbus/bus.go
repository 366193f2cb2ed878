// Package eventbus provides an in-process publish/subscribe bus used to hand
// completed allocation runs to asynchronous consumers such as the MQTT plan
// publisher.
package eventbus

import (
	"sync"
	"sync/atomic"
)

const defaultBuffer = 8

// Publisher is the producer side of a bus.
type Publisher[T any] interface {
	Publish(T) int
}

// TypedBus is a type-safe publish/subscribe bus for events of type T.
type TypedBus[T any] struct {
	mu      sync.RWMutex
	subs    []chan T
	closed  bool
	dropped atomic.Uint64
}

// NewTyped creates a new TypedBus.
func NewTyped[T any]() *TypedBus[T] { return &TypedBus[T]{} }

// Publish sends e to every subscriber without blocking and returns the
// number of subscribers that received it. Full subscribers miss the event.
func (b *TypedBus[T]) Publish(e T) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return 0
	}
	n := 0
	for _, ch := range b.subs {
		select {
		case ch <- e:
			n++
		default:
			b.dropped.Add(1)
		}
	}
	return n
}

// Dropped counts deliveries skipped because a subscriber was full.
func (b *TypedBus[T]) Dropped() uint64 { return b.dropped.Load() }

// Subscribe registers a subscriber with the default buffer.
func (b *TypedBus[T]) Subscribe() <-chan T { return b.SubscribeBuffered(defaultBuffer) }

// SubscribeBuffered registers a subscriber whose channel holds up to size
// pending events. The channel is closed immediately if the bus is closed.
func (b *TypedBus[T]) SubscribeBuffered(size int) <-chan T {
	if size < 0 {
		size = 0
	}
	ch := make(chan T, size)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs = append(b.subs, ch)
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *TypedBus[T]) Unsubscribe(sub <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(ch)
			return
		}
	}
}

// Close closes the bus and all subscriber channels.
func (b *TypedBus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
