// Package events implements the cross-page notification bus. Publishers hand
// subscribers a snapshot of the new state, so no listener ever re-reads storage
// or shares the publisher's slices.
package events

import (
	"sync"

	"ayuta/internal/metrics"
	"ayuta/internal/models"
)

// Signal names a kind of state change.
type Signal string

const (
	// StateUpdated fires after cart, orders, results, goal or payment email change.
	StateUpdated Signal = "state-updated"
	// AuthUpdated fires after the session or profile change.
	AuthUpdated Signal = "auth-updated"
)

// Subscriber receives a signal together with the state it refers to.
type Subscriber func(signal Signal, state models.State)

type subscription struct {
	id     uint64
	signal Signal
	fn     Subscriber
}

// Bus delivers signals synchronously, in subscription order.
type Bus struct {
	subs    []subscription
	nextID  uint64
	metrics metrics.Recorder
	mu      sync.RWMutex
}

// NewBus creates an empty bus. A nil recorder disables metrics.
func NewBus(recorder metrics.Recorder) *Bus {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Bus{metrics: recorder}
}

// Subscribe registers fn for signal and returns a func that removes it.
func (b *Bus) Subscribe(signal Signal, fn Subscriber) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, signal: signal, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

// SubscribeAll registers fn for every signal.
func (b *Bus) SubscribeAll(fn Subscriber) (unsubscribe func()) {
	offState := b.Subscribe(StateUpdated, fn)
	offAuth := b.Subscribe(AuthUpdated, fn)
	return func() {
		offState()
		offAuth()
	}
}

// Publish delivers signal to every current subscriber. Each subscriber gets its
// own deep copy of state. Subscribers may subscribe or unsubscribe while a
// publish is in progress; changes apply from the next publish.
func (b *Bus) Publish(signal Signal, state models.State) {
	b.mu.RLock()
	targets := make([]Subscriber, 0, len(b.subs))
	for _, s := range b.subs {
		if s.signal == signal {
			targets = append(targets, s.fn)
		}
	}
	b.mu.RUnlock()

	b.metrics.RecordSignal(string(signal))
	for _, fn := range targets {
		fn(signal, state.Clone())
	}
}

// Len returns the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}
