package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agrly/internal/data/repository"
)

// AvailabilityService answers whether a stay window is free on a listing.
// Its answer is advisory: the final decision is the ledger insert, which can
// still reject a window that looked free here.
type AvailabilityService interface {
	HasConflict(ctx context.Context, apartmentID uuid.UUID, checkIn, checkOut time.Time) (bool, error)
}

type availabilityService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewAvailabilityService(repo *repository.Repository, log *zap.Logger) AvailabilityService {
	return &availabilityService{
		repo: repo,
		log:  log.With(zap.String("service", "availability")),
	}
}

func (s *availabilityService) HasConflict(ctx context.Context, apartmentID uuid.UUID, checkIn, checkOut time.Time) (bool, error) {
	if !checkOut.After(checkIn) {
		return false, ErrInvalidDateRange
	}

	conflict, err := s.repo.Booking.HasOverlapping(ctx, apartmentID, checkIn, checkOut)
	if err != nil {
		s.log.Error("Availability check failed",
			zap.Error(err),
			zap.String("apartment_id", apartmentID.String()),
		)
		return false, ErrDependencyUnavailable
	}

	return conflict, nil
}
