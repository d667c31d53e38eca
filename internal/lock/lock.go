// Package lock serialises the read-inventory-then-write section of booking
// creation so concurrent requests cannot jointly overbook the hotel.
package lock

import (
	"context"
	"sync"
)

// InventoryKey is the lock key guarding the hotel's room inventory.
// Any two stays may overlap, so the whole inventory shares one key.
const InventoryKey = "bookings:inventory"

// Locker acquires a named mutual-exclusion lock. The returned func releases it.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Local is an in-process Locker. It only protects a single process.
type Local struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewLocal constructs a Local locker.
func NewLocal() *Local {
	return &Local{slots: make(map[string]chan struct{})}
}

func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Noop never blocks. It keeps the scan-then-write race of an unguarded store.
type Noop struct{}

func (Noop) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}
