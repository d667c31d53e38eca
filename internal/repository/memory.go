package repository

import (
	"context"
	"sync"

	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/model"
	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/pricing"
)

// MemoryRepository keeps bookings in a map. It backs local runs and tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	bookings map[string]*model.Booking
}

// NewMemoryRepository constructs an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{bookings: make(map[string]*model.Booking)}
}

func (r *MemoryRepository) Create(_ context.Context, b *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bookings[b.BookingID]; exists {
		return ErrDuplicateID
	}
	r.bookings[b.BookingID] = b.Clone()
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b.Clone(), nil
}

func (r *MemoryRepository) List(_ context.Context) ([]model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		out = append(out, *b.Clone())
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *MemoryRepository) ListOverlapping(_ context.Context, from, to model.Date) ([]model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Booking
	for _, b := range r.bookings {
		if pricing.Overlaps(b, from, to) {
			out = append(out, *b.Clone())
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, changes model.BookingChanges) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	changes.Apply(b)
	return b.Clone(), nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.bookings, id)
	return b, nil
}
