package usecase

import (
	"go.uber.org/zap"

	"agrly/internal/data/repository"
	"agrly/pkg/utils"
)

type Service struct {
	Apartment    ApartmentService
	Availability AvailabilityService
	Pricing      PricingService
	Booking      BookingService
	RentHistory  RentHistoryService
}

func NewService(repo *repository.Repository, config *utils.Config, log *zap.Logger) *Service {
	pricing := NewPricingService(config.Pricing, log)
	availability := NewAvailabilityService(repo, log)

	return &Service{
		Apartment:    NewApartmentService(repo, log),
		Availability: availability,
		Pricing:      pricing,
		Booking:      NewBookingService(repo, pricing, availability, log),
		RentHistory:  NewRentHistoryService(repo, log),
	}
}
