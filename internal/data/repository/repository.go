package repository

import (
	"go.uber.org/zap"

	"agrly/pkg/database"
	"agrly/pkg/utils"
)

type Repository struct {
	Apartment   ApartmentRepository
	Booking     BookingRepository
	RentHistory RentHistoryRepository
	Outbox      OutboxRepository
}

func NewRepository(db database.PgxIface, config *utils.Config, log *zap.Logger) *Repository {
	apartments := NewApartmentRepository(db, log)
	if config.Cache.ApartmentTTL > 0 {
		apartments = NewCachedApartmentRepository(apartments, config.Cache.MaxSize, config.Cache.ApartmentTTL, log)
	}

	return &Repository{
		Apartment:   apartments,
		Booking:     NewBookingRepository(db, log),
		RentHistory: NewRentHistoryRepository(db, log),
		Outbox:      NewOutboxRepository(db, log),
	}
}
