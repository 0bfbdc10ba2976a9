// Package state holds observable values published by the service layer.
// A value is replaced wholesale on every Set; subscribers always see the most
// recent value and never block the publisher.
package state

import (
	"context"
	"sync"
)

// Observable is a single value that can be read, replaced and watched.
// The zero value is not usable; construct with New.
type Observable[T any] struct {
	mu    sync.RWMutex
	value T
	subs  map[int]chan T
	next  int
}

// New returns an Observable holding initial.
func New[T any](initial T) *Observable[T] {
	return &Observable[T]{value: initial, subs: make(map[int]chan T)}
}

// Get returns the current value.
func (o *Observable[T]) Get() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.value
}

// Set replaces the value and notifies every subscriber. A subscriber that has
// not consumed the previous value gets it replaced by v.
func (o *Observable[T]) Set(v T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.value = v
	for _, ch := range o.subs {
		deliver(ch, v)
	}
}

// Subscribe returns a channel that receives the current value immediately and
// then every later value. The channel is closed once ctx is done.
func (o *Observable[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	o.mu.Lock()
	id := o.next
	o.next++
	o.subs[id] = ch
	ch <- o.value
	o.mu.Unlock()

	go func() {
		<-ctx.Done()
		o.mu.Lock()
		delete(o.subs, id)
		close(ch)
		o.mu.Unlock()
	}()
	return ch
}

// Subscribers returns the number of live subscriptions.
func (o *Observable[T]) Subscribers() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.subs)
}

// deliver performs a latest-wins send on a channel with capacity one.
// Callers hold the write lock, so no other publisher can refill ch between
// the drain and the send.
func deliver[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- v
}
