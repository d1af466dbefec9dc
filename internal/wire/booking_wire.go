package wire

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"agrly/internal/adaptor"
	"agrly/pkg/middleware"
	"agrly/pkg/utils"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	historyHandler *adaptor.RentHistoryHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(config.Auth.JWTSecret, log))

		// POST /api/apartments/{id}/bookings - Reserve a stay window
		r.Post("/api/apartments/{id}/bookings", bookingHandler.CreateBooking)

		// GET /api/user/bookings - View own bookings, newest first
		r.Get("/api/user/bookings", bookingHandler.GetUserBookings)

		// GET /api/user/rent-history - View the async history log
		r.Get("/api/user/rent-history", historyHandler.GetUserHistory)
	})
}
