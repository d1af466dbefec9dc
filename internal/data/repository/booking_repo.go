package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"agrly/internal/data/entity"
	"agrly/pkg/database"
)

var (
	// ErrOverlapConflict is returned when the exclusion constraint rejects an
	// insert because an active booking already covers part of the window.
	ErrOverlapConflict = errors.New("booking dates conflict with an existing reservation")

	// ErrDuplicateIdempotencyKey is returned when a booking with the same
	// client-supplied idempotency key already exists.
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")
)

const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
)

type BookingRepository interface {
	// CreateWithOutbox persists the booking and its outbox event in one
	// transaction. The insert is the authoritative accept/reject decision:
	// a concurrent overlapping insert loses with ErrOverlapConflict.
	CreateWithOutbox(ctx context.Context, booking *entity.Booking, event *entity.OutboxEvent) error

	// HasOverlapping reports whether any pending or confirmed booking on the
	// listing overlaps the half-open window [checkIn, checkOut).
	HasOverlapping(ctx context.Context, apartmentID uuid.UUID, checkIn, checkOut time.Time) (bool, error)

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*entity.Booking, error)
	FindByGuestID(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByGuestID(ctx context.Context, guestID uuid.UUID) (int64, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `
	id, booking_ref, apartment_id, guest_id, host_id,
	check_in_date, check_out_date, num_guests,
	base_price, cleaning_fee, service_fee, taxes, total_amount,
	status, special_requests, idempotency_key,
	cancelled_at, cancellation_reason, created_at, updated_at
`

func (r *bookingRepository) CreateWithOutbox(ctx context.Context, booking *entity.Booking, event *entity.OutboxEvent) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin booking tx: %w", err)
	}
	defer tx.Rollback(ctx)

	insertBooking := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err = tx.Exec(ctx, insertBooking,
		booking.ID,
		booking.BookingRef,
		booking.ApartmentID,
		booking.GuestID,
		booking.HostID,
		booking.CheckInDate,
		booking.CheckOutDate,
		booking.NumGuests,
		booking.BasePrice,
		booking.CleaningFee,
		booking.ServiceFee,
		booking.Taxes,
		booking.TotalAmount,
		booking.Status,
		booking.SpecialRequests,
		booking.IdempotencyKey,
		booking.CancelledAt,
		booking.CancellationReason,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		if translated := translateInsertError(err); translated != nil {
			r.log.Warn("Booking insert rejected by constraint",
				zap.Error(err),
				zap.String("booking_ref", booking.BookingRef),
				zap.String("apartment_id", booking.ApartmentID.String()),
			)
			return translated
		}
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_ref", booking.BookingRef),
			zap.String("guest_id", booking.GuestID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.BookingRef, err)
	}

	insertEvent := `
		INSERT INTO outbox_events (id, name, aggregate_id, payload, status, attempts, next_retry_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = tx.Exec(ctx, insertEvent,
		event.ID,
		event.Name,
		event.AggregateID,
		event.Payload,
		event.Status,
		event.Attempts,
		event.NextRetryAt,
		event.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to enqueue outbox event",
			zap.Error(err),
			zap.String("booking_ref", booking.BookingRef),
		)
		return fmt.Errorf("enqueue outbox event for %s: %w", booking.BookingRef, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit booking %s: %w", booking.BookingRef, err)
	}

	return nil
}

// translateInsertError maps constraint failures to domain-level sentinels so
// no raw pg error crosses the usecase boundary.
func translateInsertError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}

	switch pgErr.Code {
	case pgExclusionViolation:
		return ErrOverlapConflict
	case pgUniqueViolation:
		if pgErr.ConstraintName == "bookings_idempotency_key_uq" {
			return ErrDuplicateIdempotencyKey
		}
	}
	return nil
}

func (r *bookingRepository) HasOverlapping(ctx context.Context, apartmentID uuid.UUID, checkIn, checkOut time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE apartment_id = $1
			  AND status IN ('pending', 'confirmed')
			  AND check_in_date < $3
			  AND check_out_date > $2
		)
	`

	var exists bool
	err := r.db.QueryRow(ctx, query, apartmentID, checkIn, checkOut).Scan(&exists)
	if err != nil {
		r.log.Error("Failed to check overlapping bookings",
			zap.Error(err),
			zap.String("apartment_id", apartmentID.String()),
		)
		return false, fmt.Errorf("check overlapping bookings for %s: %w", apartmentID.String(), err)
	}

	return exists, nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := r.scanBooking(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByIdempotencyKey(ctx context.Context, key string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE idempotency_key = $1`

	booking, err := r.scanBooking(r.db.QueryRow(ctx, query, key))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by idempotency key", zap.Error(err))
		return nil, fmt.Errorf("find booking by idempotency key: %w", err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByGuestID(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE guest_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, guestID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by guest ID",
			zap.Error(err),
			zap.String("guest_id", guestID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find bookings by guest ID %s: %w", guestID.String(), err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

func (r *bookingRepository) CountByGuestID(ctx context.Context, guestID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE guest_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, guestID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by guest ID",
			zap.Error(err),
			zap.String("guest_id", guestID.String()),
		)
		return 0, fmt.Errorf("count bookings by guest ID %s: %w", guestID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.BookingRef,
		&booking.ApartmentID,
		&booking.GuestID,
		&booking.HostID,
		&booking.CheckInDate,
		&booking.CheckOutDate,
		&booking.NumGuests,
		&booking.BasePrice,
		&booking.CleaningFee,
		&booking.ServiceFee,
		&booking.Taxes,
		&booking.TotalAmount,
		&booking.Status,
		&booking.SpecialRequests,
		&booking.IdempotencyKey,
		&booking.CancelledAt,
		&booking.CancellationReason,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
