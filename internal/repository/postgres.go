package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingColumns = `booking_id, guest_name, email, guests, room_types, total_rooms, total_capacity,
	check_in, check_out, total_cost, special_requests, status, created_at, updated_at`

// PostgresRepository stores bookings in a single PostgreSQL table.
// It uses pgx directly (no ORM).
type PostgresRepository struct {
	db    *pgxpool.Pool
	table string
}

// NewPostgresRepository constructs a PostgresRepository for the named table.
func NewPostgresRepository(db *pgxpool.Pool, table string) *PostgresRepository {
	return &PostgresRepository{db: db, table: pgx.Identifier{table}.Sanitize()}
}

// Migrate creates the bookings table and its date index when missing.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	_, err := r.db.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			booking_id       TEXT PRIMARY KEY,
			guest_name       TEXT        NOT NULL,
			email            TEXT        NOT NULL,
			guests           INTEGER     NOT NULL CHECK (guests > 0),
			room_types       JSONB       NOT NULL,
			total_rooms      INTEGER     NOT NULL,
			total_capacity   INTEGER     NOT NULL,
			check_in         DATE,
			check_out        DATE,
			total_cost       INTEGER     NOT NULL CHECK (total_cost >= 0),
			special_requests TEXT        NOT NULL DEFAULT '',
			status           TEXT        NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL,
			updated_at       TIMESTAMPTZ NOT NULL
		)`, r.table))
	if err != nil {
		return fmt.Errorf("create bookings table: %w", err)
	}

	_, err = r.db.Exec(ctx, fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS %s ON %s (check_in, check_out)`,
		dateIndexName(r.table), r.table))
	if err != nil {
		return fmt.Errorf("create bookings date index: %w", err)
	}
	return nil
}

// dateIndexName derives the index name from the sanitized table identifier.
func dateIndexName(table string) string {
	name := strings.Trim(table, `"`)
	return pgx.Identifier{name + "_dates_idx"}.Sanitize()
}

// Create inserts a new booking.
func (r *PostgresRepository) Create(ctx context.Context, b *model.Booking) error {
	_, err := r.db.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (%s)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`, r.table, bookingColumns),
		b.BookingID, b.GuestName, b.Email, b.Guests, b.RoomTypes, b.TotalRooms, b.TotalCapacity,
		dateArg(b.CheckIn), dateArg(b.CheckOut), b.TotalCost, b.SpecialRequests, string(b.Status),
		b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// GetByID returns a single booking or ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	row := r.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE booking_id = $1`, bookingColumns, r.table),
		id,
	)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

// List returns all bookings ordered by creation time descending.
func (r *PostgresRepository) List(ctx context.Context) ([]model.Booking, error) {
	rows, err := r.db.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC, booking_id`, bookingColumns, r.table),
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return collectBookings(rows)
}

// ListOverlapping returns bookings whose stay touches [from, to], boundaries inclusive.
func (r *PostgresRepository) ListOverlapping(ctx context.Context, from, to model.Date) ([]model.Booking, error) {
	rows, err := r.db.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM %s
		 WHERE check_in <= $2 AND check_out >= $1
		 ORDER BY created_at DESC, booking_id`, bookingColumns, r.table),
		from.Time, to.Time,
	)
	if err != nil {
		return nil, fmt.Errorf("list overlapping bookings: %w", err)
	}
	return collectBookings(rows)
}

// Update overwrites the set fields of changes and returns the stored row.
func (r *PostgresRepository) Update(ctx context.Context, id string, changes model.BookingChanges) (*model.Booking, error) {
	query, args := buildUpdate(r.table, id, changes)
	b, err := scanBooking(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update booking: %w", err)
	}
	return b, nil
}

// Delete removes a booking and returns the removed row.
func (r *PostgresRepository) Delete(ctx context.Context, id string) (*model.Booking, error) {
	row := r.db.QueryRow(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE booking_id = $1 RETURNING %s`, r.table, bookingColumns),
		id,
	)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete booking: %w", err)
	}
	return b, nil
}

// buildUpdate renders an UPDATE … RETURNING statement touching only the
// columns set in changes. updated_at is always written.
func buildUpdate(table, id string, c model.BookingChanges) (string, []any) {
	var sets []string
	args := []any{id}

	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	set("updated_at", c.UpdatedAt)
	if c.GuestName != nil {
		set("guest_name", *c.GuestName)
	}
	if c.Email != nil {
		set("email", *c.Email)
	}
	if c.Guests != nil {
		set("guests", *c.Guests)
	}
	if c.RoomTypes != nil {
		set("room_types", c.RoomTypes)
	}
	if c.TotalRooms != nil {
		set("total_rooms", *c.TotalRooms)
	}
	if c.TotalCapacity != nil {
		set("total_capacity", *c.TotalCapacity)
	}
	if c.TotalCost != nil {
		set("total_cost", *c.TotalCost)
	}
	if c.CheckIn != nil {
		set("check_in", c.CheckIn.Time)
	}
	if c.CheckOut != nil {
		set("check_out", c.CheckOut.Time)
	}
	if c.SpecialRequests != nil {
		set("special_requests", *c.SpecialRequests)
	}
	if c.Status != nil {
		set("status", string(*c.Status))
	}

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE booking_id = $1 RETURNING %s`,
		table, strings.Join(sets, ", "), bookingColumns)
	return query, args
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var (
		b                 model.Booking
		status            string
		checkIn, checkOut *time.Time
	)
	err := row.Scan(
		&b.BookingID, &b.GuestName, &b.Email, &b.Guests, &b.RoomTypes, &b.TotalRooms, &b.TotalCapacity,
		&checkIn, &checkOut, &b.TotalCost, &b.SpecialRequests, &status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Status = model.Status(status)
	b.CheckIn = fromNullDate(checkIn)
	b.CheckOut = fromNullDate(checkOut)
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]model.Booking, error) {
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func dateArg(d *model.Date) any {
	if d == nil {
		return nil
	}
	return d.Time
}

func fromNullDate(t *time.Time) *model.Date {
	if t == nil {
		return nil
	}
	d := model.NewDate(*t)
	return &d
}
