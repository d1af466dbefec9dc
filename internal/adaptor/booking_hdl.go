package adaptor

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"agrly/internal/dto/request"
	"agrly/internal/usecase"
	"agrly/pkg/utils"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// CreateBooking handles POST /api/apartments/{id}/bookings (protected).
// An optional Idempotency-Key header makes retries safe: replaying the same
// key returns the original booking.
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	apartmentID := chi.URLParam(r, "id")
	if apartmentID == "" {
		utils.ResponseBadRequest(w, "Apartment ID is required", nil)
		return
	}

	var req request.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")

	booking, err := h.service.CreateBooking(r.Context(), userID, apartmentID, idempotencyKey, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create booking")
		return
	}

	utils.ResponseCreated(w, "success", booking)
}

// GetQuote handles POST /api/apartments/{id}/quote (public). Prices a stay
// without reserving anything.
func (h *BookingHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	apartmentID := chi.URLParam(r, "id")
	if apartmentID == "" {
		utils.ResponseBadRequest(w, "Apartment ID is required", nil)
		return
	}

	var req request.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	quote, err := h.service.QuotePreview(r.Context(), apartmentID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "get quote")
		return
	}

	utils.ResponseSuccess(w, "success", quote)
}

// GetUserBookings handles GET /api/user/bookings (protected)
func (h *BookingHandler) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	bookings, err := h.service.GetUserBookings(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, h.log, err, "get user bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}
