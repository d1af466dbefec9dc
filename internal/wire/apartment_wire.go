package wire

import (
	"github.com/go-chi/chi/v5"

	"agrly/internal/adaptor"
)

func wireApartment(
	r chi.Router,
	apartmentHandler *adaptor.ApartmentHandler,
	bookingHandler *adaptor.BookingHandler,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/apartments - Browse active listings by rating
	r.Get("/api/apartments", apartmentHandler.GetApartments)

	// GET /api/apartments/{id} - Listing detail
	r.Get("/api/apartments/{id}", apartmentHandler.GetApartmentByID)

	// POST /api/apartments/{id}/quote - Itemized price preview, no reservation
	r.Post("/api/apartments/{id}/quote", bookingHandler.GetQuote)
}
