package usecase

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agrly/internal/data/repository"
	"agrly/internal/dto/request"
	"agrly/internal/dto/response"
)

// RentHistoryService reads the eventually consistent history log. A booking
// created moments ago may not appear here yet; that lag is expected.
type RentHistoryService interface {
	GetUserHistory(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.RentHistoryResponse], error)
}

type rentHistoryService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewRentHistoryService(repo *repository.Repository, log *zap.Logger) RentHistoryService {
	return &rentHistoryService{
		repo: repo,
		log:  log.With(zap.String("service", "rent_history")),
	}
}

func (s *rentHistoryService) GetUserHistory(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.RentHistoryResponse], error) {
	entries, err := s.repo.RentHistory.FindByUserID(ctx, userID, req.Limit(), req.Offset())
	if err != nil {
		return nil, ErrDependencyUnavailable
	}

	total, err := s.repo.RentHistory.CountByUserID(ctx, userID)
	if err != nil {
		return nil, ErrDependencyUnavailable
	}

	responses := make([]response.RentHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, response.RentHistoryToResponse(entry))
	}

	return response.NewPaginatedResponse(responses, req.Page, req.Limit(), total), nil
}
