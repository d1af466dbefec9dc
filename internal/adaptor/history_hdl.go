package adaptor

import (
	"net/http"

	"go.uber.org/zap"

	"agrly/internal/dto/request"
	"agrly/internal/usecase"
	"agrly/pkg/utils"
)

type RentHistoryHandler struct {
	service usecase.RentHistoryService
	log     *zap.Logger
}

func NewRentHistoryHandler(service usecase.RentHistoryService, log *zap.Logger) *RentHistoryHandler {
	return &RentHistoryHandler{
		service: service,
		log:     log.With(zap.String("handler", "rent_history")),
	}
}

// GetUserHistory handles GET /api/user/rent-history (protected). The log is
// filled in asynchronously, so a just-created booking may not show up yet.
func (h *RentHistoryHandler) GetUserHistory(w http.ResponseWriter, r *http.Request) {
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

	history, err := h.service.GetUserHistory(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, h.log, err, "get rent history")
		return
	}

	utils.ResponseSuccess(w, "success", history)
}
