package entity

import (
	"github.com/google/uuid"

	"agrly/pkg/money"
)

// Apartment is a rentable unit. The booking engine only ever reads it; writes
// belong to the host-facing catalog service.
type Apartment struct {
	Base
	OwnerID       uuid.UUID   `db:"owner_id"`
	Title         string      `db:"title"`
	Description   *string     `db:"description"`
	Location      *string     `db:"location"`
	PricePerNight money.Money `db:"price_per_night"`
	Rating        float64     `db:"rating"`
	IsActive      bool        `db:"is_active"`
}
