package adaptor

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"agrly/internal/usecase"
	"agrly/pkg/utils"
)

// handleServiceError maps the service error taxonomy onto HTTP statuses. Every
// handler funnels errors through here so the mapping lives in one place.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrValidation),
		errors.Is(err, usecase.ErrInvalidDateRange),
		errors.Is(err, usecase.ErrInvalidGuestCount):
		log.Warn("Invalid input for "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrListingNotFound):
		log.Warn(operation+" failed - not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrDateRangeUnavailable):
		log.Info(operation+" failed - dates unavailable",
			zap.String("operation", operation))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, usecase.ErrDependencyUnavailable):
		log.Error(operation+" failed - dependency unavailable",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseServiceUnavailable(w, err.Error())

	default:
		log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
