package adaptor

import (
	"go.uber.org/zap"

	"agrly/internal/usecase"
)

type Handler struct {
	Apartment   *ApartmentHandler
	Booking     *BookingHandler
	RentHistory *RentHistoryHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Apartment:   NewApartmentHandler(service.Apartment, log),
		Booking:     NewBookingHandler(service.Booking, log),
		RentHistory: NewRentHistoryHandler(service.RentHistory, log),
	}
}
