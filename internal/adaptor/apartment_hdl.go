package adaptor

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"agrly/internal/dto/request"
	"agrly/internal/usecase"
	"agrly/pkg/utils"
)

type ApartmentHandler struct {
	service usecase.ApartmentService
	log     *zap.Logger
}

func NewApartmentHandler(service usecase.ApartmentService, log *zap.Logger) *ApartmentHandler {
	return &ApartmentHandler{
		service: service,
		log:     log.With(zap.String("handler", "apartment")),
	}
}

// GetApartments handles GET /api/apartments (public)
func (h *ApartmentHandler) GetApartments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	apartments, err := h.service.GetApartments(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "get apartments")
		return
	}

	utils.ResponseSuccess(w, "success", apartments)
}

// GetApartmentByID handles GET /api/apartments/{id} (public)
func (h *ApartmentHandler) GetApartmentByID(w http.ResponseWriter, r *http.Request) {
	apartmentID := chi.URLParam(r, "id")
	if apartmentID == "" {
		utils.ResponseBadRequest(w, "Apartment ID is required", nil)
		return
	}

	apartment, err := h.service.GetApartmentByID(r.Context(), apartmentID)
	if err != nil {
		handleServiceError(w, h.log, err, "get apartment by ID")
		return
	}

	utils.ResponseSuccess(w, "success", apartment)
}
