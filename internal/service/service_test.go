package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/lock"
	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/model"
	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/pricing"
	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/repository"
)

func fixedClock(day string) func() time.Time {
	t := model.MustDate(day).Add(9 * time.Hour)
	return func() time.Time { return t }
}

func datePtr(s string) *model.Date {
	d := model.MustDate(s)
	return &d
}

func newTestService(today string, opts ...Option) (*BookingService, *repository.MemoryRepository) {
	repo := repository.NewMemoryRepository()
	opts = append([]Option{WithClock(fixedClock(today))}, opts...)
	return NewBookingService(repo, opts...), repo
}

func kingJulien() model.CreateBookingRequest {
	return model.CreateBookingRequest{
		Guests:    10,
		RoomTypes: map[string]int{"suite": 2, "double": 1, "single": 2},
		CheckIn:   datePtr("2024-12-27"),
		CheckOut:  datePtr("2026-12-28"),
		GuestName: "King Julien",
		Email:     "king.julien@example.com",
	}
}

func TestCreateBookingDerivesTotals(t *testing.T) {
	svc, _ := newTestService("2024-12-01")

	b, err := svc.CreateBooking(context.Background(), kingJulien(), "")
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	if b.TotalRooms != 5 {
		t.Errorf("TotalRooms = %d, want 5", b.TotalRooms)
	}
	const nights = 731
	if b.TotalCost != 4500*nights {
		t.Errorf("TotalCost = %d, want %d", b.TotalCost, 4500*nights)
	}
	if b.TotalCapacity != 10 {
		t.Errorf("TotalCapacity = %d, want 10", b.TotalCapacity)
	}
	if b.Status != model.StatusConfirmed {
		t.Errorf("Status = %s", b.Status)
	}
	if b.BookingID == "" || b.CreatedAt.IsZero() || !b.CreatedAt.Equal(b.UpdatedAt) {
		t.Errorf("server-assigned fields not set: %+v", b)
	}
}

func TestCreateBookingWithoutDatesIsOneNight(t *testing.T) {
	svc, _ := newTestService("2026-10-17")
	req := kingJulien()
	req.CheckIn, req.CheckOut = nil, nil

	b, err := svc.CreateBooking(context.Background(), req, "")
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if b.TotalCost != 4500 {
		t.Fatalf("TotalCost = %d, want 4500", b.TotalCost)
	}
}

func TestCreateBookingNormalisesGuestIdentity(t *testing.T) {
	svc, _ := newTestService("2026-10-17")
	req := kingJulien()
	req.CheckIn, req.CheckOut = nil, nil
	req.GuestName = "  King Julien "
	req.Email = " King.Julien@Example.COM "

	b, err := svc.CreateBooking(context.Background(), req, "")
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if b.GuestName != "King Julien" || b.Email != "king.julien@example.com" {
		t.Fatalf("identity not normalised: %q %q", b.GuestName, b.Email)
	}
}

func TestCreateBookingRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name    string
		today   string
		mutate  func(*model.CreateBookingRequest)
		wantErr error
		wantMsg string
	}{
		{
			name:    "capacity too small",
			today:   "2024-12-01",
			mutate:  func(r *model.CreateBookingRequest) { r.Guests = 5; r.RoomTypes = map[string]int{"single": 1} },
			wantErr: pricing.ErrInsufficientCapacity,
		},
		{
			name:  "past check-in",
			today: "2024-12-01",
			mutate: func(r *model.CreateBookingRequest) {
				r.CheckIn, r.CheckOut = datePtr("2023-01-01"), datePtr("2024-01-03")
			},
			wantErr: pricing.ErrCheckInPast,
		},
		{
			name:  "check-out before check-in",
			today: "2024-01-01",
			mutate: func(r *model.CreateBookingRequest) {
				r.CheckIn, r.CheckOut = datePtr("2024-02-15"), datePtr("2024-02-10")
			},
			wantErr: pricing.ErrCheckOutNotAfter,
		},
		{
			name:    "only check-in",
			today:   "2024-12-01",
			mutate:  func(r *model.CreateBookingRequest) { r.CheckOut = nil },
			wantErr: pricing.ErrPartialDates,
		},
		{
			name:    "unknown room type",
			today:   "2024-12-01",
			mutate:  func(r *model.CreateBookingRequest) { r.RoomTypes = map[string]int{"penthouse": 4} },
			wantErr: pricing.ErrUnknownCategory,
		},
		{
			name:    "missing fields",
			today:   "2024-12-01",
			mutate:  func(r *model.CreateBookingRequest) { r.GuestName = " "; r.RoomTypes = nil },
			wantMsg: "missing required fields: roomTypes, guestName",
		},
		{
			name:    "bad email",
			today:   "2024-12-01",
			mutate:  func(r *model.CreateBookingRequest) { r.Email = "not-an-email" },
			wantMsg: "invalid email format",
		},
		{
			name:    "negative guests",
			today:   "2024-12-01",
			mutate:  func(r *model.CreateBookingRequest) { r.Guests = -2 },
			wantMsg: "guests must be greater than 0",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo := newTestService(tc.today)
			req := kingJulien()
			tc.mutate(&req)

			_, err := svc.CreateBooking(context.Background(), req, "")
			verr, ok := IsValidationError(err)
			if !ok {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("error = %v, want %v", err, tc.wantErr)
			}
			if tc.wantMsg != "" && !strings.Contains(verr.Message, tc.wantMsg) {
				t.Fatalf("message = %q, want it to contain %q", verr.Message, tc.wantMsg)
			}

			all, _ := repo.List(context.Background())
			if len(all) != 0 {
				t.Fatalf("rejected booking was stored: %+v", all)
			}
		})
	}
}

func TestCreateBookingRejectsWhenInventoryIsTaken(t *testing.T) {
	svc, _ := newTestService("2026-10-17")
	ctx := context.Background()

	full := model.CreateBookingRequest{
		Guests:    20,
		RoomTypes: map[string]int{"single": 20},
		CheckIn:   datePtr("2026-11-01"),
		CheckOut:  datePtr("2026-11-05"),
		GuestName: "Tour Group",
		Email:     "tours@example.com",
	}
	if _, err := svc.CreateBooking(ctx, full, ""); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	extra := full
	extra.Guests = 1
	extra.RoomTypes = map[string]int{"single": 1}
	extra.CheckIn, extra.CheckOut = datePtr("2026-11-05"), datePtr("2026-11-07")

	_, err := svc.CreateBooking(ctx, extra, "")
	if !errors.Is(err, ErrNotEnoughRooms) {
		t.Fatalf("expected ErrNotEnoughRooms, got %v", err)
	}
	if !strings.Contains(err.Error(), "not enough rooms available") {
		t.Fatalf("message = %q", err.Error())
	}

	extra.CheckIn, extra.CheckOut = datePtr("2026-11-06"), datePtr("2026-11-07")
	if _, err := svc.CreateBooking(ctx, extra, ""); err != nil {
		t.Fatalf("non-overlapping booking should pass: %v", err)
	}

	extra.CheckIn, extra.CheckOut = nil, nil
	if _, err := svc.CreateBooking(ctx, extra, ""); err != nil {
		t.Fatalf("undated booking skips availability: %v", err)
	}
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	svc, _ := newTestService("2024-12-01")
	ctx := context.Background()

	created, err := svc.CreateBooking(ctx, kingJulien(), "")
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	first, err := svc.GetBooking(ctx, created.BookingID)
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	second, err := svc.GetBooking(ctx, created.BookingID)
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}

	if !reflect.DeepEqual(created, first) {
		t.Fatalf("round trip mismatch:\ncreated %+v\nfetched %+v", created, first)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("repeated reads differ")
	}

	if _, err := svc.GetBooking(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateBooking(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	svc := NewBookingService(repository.NewMemoryRepository(), WithClock(func() time.Time { return clock }))

	created, err := svc.CreateBooking(ctx, model.CreateBookingRequest{
		Guests:    2,
		RoomTypes: map[string]int{"double": 1},
		CheckIn:   datePtr("2026-11-01"),
		CheckOut:  datePtr("2026-11-03"),
		GuestName: "Maurice",
		Email:     "maurice@example.com",
	}, "")
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	clock = clock.Add(time.Hour)
	name := "  Mort "
	updated, err := svc.UpdateBooking(ctx, created.BookingID, model.UpdateBookingRequest{GuestName: &name})
	if err != nil {
		t.Fatalf("UpdateBooking name: %v", err)
	}
	if updated.GuestName != "Mort" || updated.TotalCost != created.TotalCost {
		t.Fatalf("unexpected update: %+v", updated)
	}
	if !updated.UpdatedAt.Equal(clock) || !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("timestamps: created %v updated %v", updated.CreatedAt, updated.UpdatedAt)
	}

	guests := 5
	updated, err = svc.UpdateBooking(ctx, created.BookingID, model.UpdateBookingRequest{
		Guests:    &guests,
		RoomTypes: map[string]int{"double": 1, "suite": 1},
		CheckOut:  datePtr("2026-11-04"),
	})
	if err != nil {
		t.Fatalf("UpdateBooking rooms: %v", err)
	}
	if updated.TotalRooms != 2 || updated.TotalCapacity != 5 || updated.TotalCost != (1000+1500)*3 {
		t.Fatalf("totals not recomputed: %+v", updated)
	}

	guests = 6
	if _, err := svc.UpdateBooking(ctx, created.BookingID, model.UpdateBookingRequest{Guests: &guests}); !errors.Is(err, pricing.ErrInsufficientCapacity) {
		t.Fatalf("expected capacity error, got %v", err)
	}

	bad := model.Status("pending")
	_, err = svc.UpdateBooking(ctx, created.BookingID, model.UpdateBookingRequest{Status: &bad})
	if verr, ok := IsValidationError(err); !ok || !strings.Contains(verr.Message, "confirmed, cancelled, completed") {
		t.Fatalf("expected status validation error, got %v", err)
	}

	email := "nope"
	if _, err := svc.UpdateBooking(ctx, created.BookingID, model.UpdateBookingRequest{Email: &email}); err == nil {
		t.Fatal("expected invalid email to be rejected")
	}

	cancelled := model.StatusCancelled
	updated, err = svc.UpdateBooking(ctx, created.BookingID, model.UpdateBookingRequest{Status: &cancelled})
	if err != nil || updated.Status != model.StatusCancelled {
		t.Fatalf("status update: %+v, %v", updated, err)
	}

	if _, err := svc.UpdateBooking(ctx, "missing", model.UpdateBookingRequest{Status: &cancelled}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateBookingExcludesItselfFromAvailability(t *testing.T) {
	svc, _ := newTestService("2026-10-17")
	ctx := context.Background()

	whole, err := svc.CreateBooking(ctx, model.CreateBookingRequest{
		Guests:    20,
		RoomTypes: map[string]int{"single": 20},
		CheckIn:   datePtr("2026-11-01"),
		CheckOut:  datePtr("2026-11-05"),
		GuestName: "Tour Group",
		Email:     "tours@example.com",
	}, "")
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	if _, err := svc.UpdateBooking(ctx, whole.BookingID, model.UpdateBookingRequest{
		RoomTypes: map[string]int{"single": 10, "double": 10},
	}); err != nil {
		t.Fatalf("re-shaping the same 20 rooms should pass: %v", err)
	}

	later, err := svc.CreateBooking(ctx, model.CreateBookingRequest{
		Guests:    1,
		RoomTypes: map[string]int{"single": 1},
		CheckIn:   datePtr("2026-11-10"),
		CheckOut:  datePtr("2026-11-12"),
		GuestName: "Latecomer",
		Email:     "late@example.com",
	}, "")
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if _, err := svc.UpdateBooking(ctx, later.BookingID, model.UpdateBookingRequest{
		CheckIn:  datePtr("2026-11-03"),
		CheckOut: datePtr("2026-11-04"),
	}); !errors.Is(err, ErrNotEnoughRooms) {
		t.Fatalf("expected ErrNotEnoughRooms, got %v", err)
	}
}

func TestRoomQuantitiesAreBoundedByInventory(t *testing.T) {
	cases := []struct {
		name      string
		roomTypes map[string]int
		dated     bool
	}{
		{"undated huge quantity", map[string]int{"single": 1 << 55}, false},
		{"dated sum wraps negative", map[string]int{"single": 1<<63 - 1, "suite": 1 << 62}, true},
		{"one category over inventory", map[string]int{"double": 21}, true},
		{"total over inventory", map[string]int{"single": 10, "double": 6, "suite": 5}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo := newTestService("2026-10-17")
			req := model.CreateBookingRequest{
				Guests:    1,
				RoomTypes: tc.roomTypes,
				GuestName: "Mason",
				Email:     "mason@example.com",
			}
			if tc.dated {
				req.CheckIn, req.CheckOut = datePtr("2026-11-01"), datePtr("2026-11-05")
			}

			_, err := svc.CreateBooking(context.Background(), req, "")
			if _, ok := IsValidationError(err); !ok || !errors.Is(err, pricing.ErrTooManyRooms) {
				t.Fatalf("expected ErrTooManyRooms validation error, got %v", err)
			}
			if all, _ := repo.List(context.Background()); len(all) != 0 {
				t.Fatalf("oversized booking was stored: %+v", all)
			}
		})
	}
}

func TestOversizedRequestsLeaveInventoryIntact(t *testing.T) {
	svc, repo := newTestService("2026-10-17")
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, model.CreateBookingRequest{
		Guests:    1,
		RoomTypes: map[string]int{"single": 1<<63 - 1, "suite": 1 << 62},
		CheckIn:   datePtr("2026-11-01"),
		CheckOut:  datePtr("2026-11-05"),
		GuestName: "Mason",
		Email:     "mason@example.com",
	}, "")
	if err == nil {
		t.Fatal("expected the wrapping selection to be rejected")
	}

	accepted := 0
	for i := 0; i < 5; i++ {
		_, err := svc.CreateBooking(ctx, model.CreateBookingRequest{
			Guests:    20,
			RoomTypes: map[string]int{"single": 20},
			CheckIn:   datePtr("2026-11-02"),
			CheckOut:  datePtr("2026-11-03"),
			GuestName: "Tour Group",
			Email:     "tours@example.com",
		}, "")
		if err == nil {
			accepted++
		} else if !errors.Is(err, ErrNotEnoughRooms) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if accepted != 1 {
		t.Fatalf("accepted %d full-hotel bookings, want 1", accepted)
	}

	all, _ := repo.List(ctx)
	for _, b := range all {
		if b.TotalRooms < 0 || b.TotalCost < 0 {
			t.Fatalf("stored negative totals: %+v", b)
		}
	}
}

func TestUpdateRejectsOversizedRoomTypes(t *testing.T) {
	svc, _ := newTestService("2026-10-17")
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, model.CreateBookingRequest{
		Guests:    1,
		RoomTypes: map[string]int{"single": 1},
		GuestName: "Mason",
		Email:     "mason@example.com",
	}, "")
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	_, err = svc.UpdateBooking(ctx, b.BookingID, model.UpdateBookingRequest{
		RoomTypes: map[string]int{"single": 1 << 55},
	})
	if !errors.Is(err, pricing.ErrTooManyRooms) {
		t.Fatalf("expected ErrTooManyRooms, got %v", err)
	}

	got, _ := svc.GetBooking(ctx, b.BookingID)
	if got.TotalRooms != 1 || got.TotalCost != 500 {
		t.Fatalf("booking changed after rejected update: %+v", got)
	}
}

func TestDeleteBooking(t *testing.T) {
	svc, _ := newTestService("2024-12-01")
	ctx := context.Background()

	created, err := svc.CreateBooking(ctx, kingJulien(), "")
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	deleted, err := svc.DeleteBooking(ctx, created.BookingID)
	if err != nil {
		t.Fatalf("DeleteBooking: %v", err)
	}
	if deleted.BookingID != created.BookingID {
		t.Fatalf("deleted %s, want %s", deleted.BookingID, created.BookingID)
	}
	if _, err := svc.GetBooking(ctx, created.BookingID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := svc.DeleteBooking(ctx, "unknown-id"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

type mapKeys struct {
	mu   sync.Mutex
	keys map[string]string
}

func (m *mapKeys) Lookup(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.keys[key]
	return id, ok, nil
}

func (m *mapKeys) Remember(_ context.Context, key, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = id
	return nil
}

func TestCreateBookingReplaysIdempotencyKey(t *testing.T) {
	keys := &mapKeys{keys: map[string]string{}}
	svc, repo := newTestService("2024-12-01", WithIdempotency(keys))
	ctx := context.Background()

	first, err := svc.CreateBooking(ctx, kingJulien(), "req-1")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := svc.CreateBooking(ctx, kingJulien(), "req-1")
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if first.BookingID != second.BookingID {
		t.Fatalf("replay created a new booking: %s vs %s", first.BookingID, second.BookingID)
	}

	third, err := svc.CreateBooking(ctx, kingJulien(), "req-2")
	if err != nil {
		t.Fatalf("new key: %v", err)
	}
	if third.BookingID == first.BookingID {
		t.Fatal("a new key must create a new booking")
	}

	all, _ := repo.List(ctx)
	if len(all) != 2 {
		t.Fatalf("expected 2 stored bookings, got %d", len(all))
	}
}

func TestConcurrentCreatesNeverOverbook(t *testing.T) {
	svc, repo := newTestService("2026-10-17", WithLocker(lock.NewLocal()))
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateBooking(ctx, model.CreateBookingRequest{
				Guests:    1,
				RoomTypes: map[string]int{"single": 1},
				CheckIn:   datePtr("2026-12-24"),
				CheckOut:  datePtr("2026-12-26"),
				GuestName: "Private",
				Email:     "private@example.com",
			}, "")
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
				return
			}
			if !errors.Is(err, ErrNotEnoughRooms) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if accepted != pricing.Inventory {
		t.Fatalf("accepted %d bookings, want %d", accepted, pricing.Inventory)
	}
	overlapping, _ := repo.ListOverlapping(ctx, model.MustDate("2026-12-24"), model.MustDate("2026-12-26"))
	if got := pricing.BookedRooms(overlapping); got != pricing.Inventory {
		t.Fatalf("booked %d rooms, want %d", got, pricing.Inventory)
	}
}
