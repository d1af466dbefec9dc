package entity

import (
	"time"

	"github.com/google/uuid"

	"agrly/pkg/money"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is a reservation for an apartment over a half-open date window
// [CheckInDate, CheckOutDate). A checkout on the same day as another stay's
// check-in is not a conflict.
type Booking struct {
	BaseNoDelete
	BookingRef         string        `db:"booking_ref"`
	ApartmentID        uuid.UUID     `db:"apartment_id"`
	GuestID            uuid.UUID     `db:"guest_id"`
	HostID             uuid.UUID     `db:"host_id"`
	CheckInDate        time.Time     `db:"check_in_date"`
	CheckOutDate       time.Time     `db:"check_out_date"`
	NumGuests          int           `db:"num_guests"`
	BasePrice          money.Money   `db:"base_price"`
	CleaningFee        money.Money   `db:"cleaning_fee"`
	ServiceFee         money.Money   `db:"service_fee"`
	Taxes              money.Money   `db:"taxes"`
	TotalAmount        money.Money   `db:"total_amount"`
	Status             BookingStatus `db:"status"`
	SpecialRequests    *string       `db:"special_requests"`
	IdempotencyKey     *string       `db:"idempotency_key"`
	CancelledAt        *time.Time    `db:"cancelled_at"`
	CancellationReason *string       `db:"cancellation_reason"`
}

// IsActive reports whether the booking blocks its date range. Cancelled
// bookings never do.
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}
