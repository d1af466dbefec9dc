package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agrly/internal/data/repository"
	"agrly/internal/dto/request"
	"agrly/internal/dto/response"
)

type ApartmentService interface {
	GetApartments(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ApartmentResponse], error)
	GetApartmentByID(ctx context.Context, apartmentID string) (*response.ApartmentResponse, error)
}

type apartmentService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewApartmentService(repo *repository.Repository, log *zap.Logger) ApartmentService {
	return &apartmentService{
		repo: repo,
		log:  log.With(zap.String("service", "apartment")),
	}
}

func (s *apartmentService) GetApartments(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ApartmentResponse], error) {
	apartments, err := s.repo.Apartment.FindAvailable(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, ErrDependencyUnavailable
	}

	total, err := s.repo.Apartment.CountAvailable(ctx)
	if err != nil {
		return nil, ErrDependencyUnavailable
	}

	responses := make([]response.ApartmentResponse, 0, len(apartments))
	for _, apartment := range apartments {
		responses = append(responses, response.ApartmentToResponse(apartment))
	}

	return response.NewPaginatedResponse(responses, req.Page, req.Limit(), total), nil
}

func (s *apartmentService) GetApartmentByID(ctx context.Context, apartmentID string) (*response.ApartmentResponse, error) {
	id, err := uuid.Parse(apartmentID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid apartment ID %q", ErrListingNotFound, apartmentID)
	}

	apartment, err := s.repo.Apartment.FindByID(ctx, id)
	if err != nil {
		return nil, ErrDependencyUnavailable
	}
	if apartment == nil {
		return nil, ErrListingNotFound
	}

	resp := response.ApartmentToResponse(apartment)
	return &resp, nil
}
