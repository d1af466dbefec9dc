package entity

import (
	"time"

	"github.com/google/uuid"
)

// RentHistory is the denormalized record of a stay kept for the guest account.
// It mirrors the booking window but lives in its own table and is written
// asynchronously, so it can lag behind the ledger.
type RentHistory struct {
	BaseNoDelete
	UserID      uuid.UUID `db:"user_id"`
	ApartmentID uuid.UUID `db:"apartment_id"`
	StartDate   time.Time `db:"start_date"`
	EndDate     time.Time `db:"end_date"`
	Status      string    `db:"status"`
	BookingID   uuid.UUID `db:"booking_id"`
}
