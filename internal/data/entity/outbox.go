package entity

import "time"

type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "pending"
	OutboxStatusSent    OutboxStatus = "sent"
	OutboxStatusFailed  OutboxStatus = "failed"
)

const EventBookingCreated = "booking.created"

// BookingCreatedEvent is the outbox payload for EventBookingCreated. The
// worker unmarshals it to project rent history and to publish on Kafka, so it
// carries everything those consumers need without re-reading the ledger.
type BookingCreatedEvent struct {
	BookingID   string    `json:"booking_id"`
	BookingRef  string    `json:"booking_ref"`
	ApartmentID string    `json:"apartment_id"`
	GuestID     string    `json:"guest_id"`
	HostID      string    `json:"host_id"`
	CheckIn     time.Time `json:"check_in"`
	CheckOut    time.Time `json:"check_out"`
	Status      string    `json:"status"`
	TotalAmount string    `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
}

// OutboxEvent is committed in the same transaction as the booking insert and
// drained by the background worker, so secondary effects (rent history, Kafka)
// survive crashes without coupling them to the booking write path.
type OutboxEvent struct {
	BaseSimple
	Name        string       `db:"name"`
	AggregateID string       `db:"aggregate_id"`
	Payload     []byte       `db:"payload"`
	Status      OutboxStatus `db:"status"`
	Attempts    int          `db:"attempts"`
	NextRetryAt time.Time    `db:"next_retry_at"`
	LastError   *string      `db:"last_error"`
}
