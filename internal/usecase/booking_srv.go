package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agrly/internal/data/entity"
	"agrly/internal/data/repository"
	"agrly/internal/dto/request"
	"agrly/internal/dto/response"
	"agrly/pkg/utils"
)

type BookingService interface {
	// CreateBooking validates the request, prices the stay and appends it to
	// the ledger. idempotencyKey may be empty; when set, replaying the same
	// key returns the original booking instead of creating a second one.
	CreateBooking(ctx context.Context, guestID uuid.UUID, apartmentID string, idempotencyKey string, req *request.CreateBookingRequest) (*response.BookingResponse, error)

	// QuotePreview prices a stay without writing anything.
	QuotePreview(ctx context.Context, apartmentID string, req *request.QuoteRequest) (*response.QuoteResponse, error)

	GetUserBookings(ctx context.Context, guestID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
}

type bookingService struct {
	repo         *repository.Repository
	pricing      PricingService
	availability AvailabilityService
	log          *zap.Logger
}

func NewBookingService(repo *repository.Repository, pricing PricingService, availability AvailabilityService, log *zap.Logger) BookingService {
	return &bookingService{
		repo:         repo,
		pricing:      pricing,
		availability: availability,
		log:          log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, guestID uuid.UUID, apartmentID string, idempotencyKey string, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	checkIn, checkOut, err := parseStayWindow(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	if req.NumGuests < 1 {
		return nil, ErrInvalidGuestCount
	}

	apartmentUUID, err := uuid.Parse(apartmentID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid apartment ID %q", ErrListingNotFound, apartmentID)
	}

	// Replay short-circuits before any other work so a retried request cannot
	// fail on a conflict created by its own first attempt.
	if idempotencyKey != "" {
		existing, err := s.repo.Booking.FindByIdempotencyKey(ctx, idempotencyKey)
		if err != nil {
			return nil, ErrDependencyUnavailable
		}
		if existing != nil {
			s.log.Info("Idempotent booking replay",
				zap.String("booking_ref", existing.BookingRef),
				zap.String("idempotency_key", idempotencyKey),
			)
			return s.toResponse(existing)
		}
	}

	apartment, err := s.repo.Apartment.FindByID(ctx, apartmentUUID)
	if err != nil {
		return nil, ErrDependencyUnavailable
	}
	if apartment == nil || !apartment.IsActive {
		return nil, ErrListingNotFound
	}

	// Advisory pre-check: rejects the common case early with a clean error.
	// The exclusion constraint still arbitrates races at insert time.
	conflict, err := s.availability.HasConflict(ctx, apartmentUUID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrDateRangeUnavailable
	}

	quote, err := s.pricing.Quote(apartment.PricePerNight, checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	booking := &entity.Booking{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingRef:      utils.GenerateBookingRef(),
		ApartmentID:     apartmentUUID,
		GuestID:         guestID,
		HostID:          apartment.OwnerID,
		CheckInDate:     checkIn,
		CheckOutDate:    checkOut,
		NumGuests:       req.NumGuests,
		BasePrice:       quote.BasePrice,
		CleaningFee:     quote.CleaningFee,
		ServiceFee:      quote.ServiceFee,
		Taxes:           quote.Taxes,
		TotalAmount:     quote.Total,
		Status:          entity.BookingStatusPending,
		SpecialRequests: req.SpecialRequests,
	}
	if idempotencyKey != "" {
		booking.IdempotencyKey = &idempotencyKey
	}

	event, err := buildBookingCreatedEvent(booking)
	if err != nil {
		s.log.Error("Failed to build booking created event", zap.Error(err))
		return nil, ErrDependencyUnavailable
	}

	err = s.repo.Booking.CreateWithOutbox(ctx, booking, event)
	switch {
	case err == nil:
		// fallthrough to response
	case errors.Is(err, repository.ErrOverlapConflict):
		s.log.Info("Booking lost overlap race",
			zap.String("apartment_id", apartmentUUID.String()),
			zap.String("booking_ref", booking.BookingRef),
		)
		return nil, ErrDateRangeUnavailable
	case errors.Is(err, repository.ErrDuplicateIdempotencyKey):
		// two concurrent requests with the same key; the loser serves the
		// winner's booking
		existing, findErr := s.repo.Booking.FindByIdempotencyKey(ctx, idempotencyKey)
		if findErr != nil || existing == nil {
			return nil, ErrDependencyUnavailable
		}
		return s.toResponse(existing)
	default:
		return nil, ErrDependencyUnavailable
	}

	s.log.Info("Booking created",
		zap.String("booking_ref", booking.BookingRef),
		zap.String("apartment_id", apartmentUUID.String()),
		zap.String("guest_id", guestID.String()),
		zap.Int("nights", quote.Nights),
		zap.String("total", quote.Total.String()),
	)

	resp := response.BookingToResponse(booking, apartment.PricePerNight, quote.Nights)
	return &resp, nil
}

func (s *bookingService) QuotePreview(ctx context.Context, apartmentID string, req *request.QuoteRequest) (*response.QuoteResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	checkIn, checkOut, err := parseStayWindow(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	apartmentUUID, err := uuid.Parse(apartmentID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid apartment ID %q", ErrListingNotFound, apartmentID)
	}

	apartment, err := s.repo.Apartment.FindByID(ctx, apartmentUUID)
	if err != nil {
		return nil, ErrDependencyUnavailable
	}
	if apartment == nil || !apartment.IsActive {
		return nil, ErrListingNotFound
	}

	quote, err := s.pricing.Quote(apartment.PricePerNight, checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	return &response.QuoteResponse{
		ApartmentID: apartment.ID.String(),
		CheckIn:     checkIn.Format("2006-01-02"),
		CheckOut:    checkOut.Format("2006-01-02"),
		Price: response.PriceBreakdown{
			Nights:      quote.Nights,
			NightlyRate: quote.NightlyRate,
			BasePrice:   quote.BasePrice,
			CleaningFee: quote.CleaningFee,
			ServiceFee:  quote.ServiceFee,
			Taxes:       quote.Taxes,
			Total:       quote.Total,
		},
	}, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, guestID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	bookings, err := s.repo.Booking.FindByGuestID(ctx, guestID, req.Limit(), req.Offset())
	if err != nil {
		return nil, ErrDependencyUnavailable
	}

	total, err := s.repo.Booking.CountByGuestID(ctx, guestID)
	if err != nil {
		return nil, ErrDependencyUnavailable
	}

	responses := make([]response.BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		resp, err := s.toResponse(booking)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}

	return response.NewPaginatedResponse(responses, req.Page, req.Limit(), total), nil
}

// toResponse rebuilds the nightly rate and night count from the stored
// breakdown, so replays and listings show the same itemization as the
// original create.
func (s *bookingService) toResponse(booking *entity.Booking) (*response.BookingResponse, error) {
	nights := wholeDaysBetween(booking.CheckInDate, booking.CheckOutDate)
	if nights < 1 {
		nights = 1
	}
	nightlyRate := booking.BasePrice.DivNights(nights)

	resp := response.BookingToResponse(booking, nightlyRate, nights)
	return &resp, nil
}

func buildBookingCreatedEvent(booking *entity.Booking) (*entity.OutboxEvent, error) {
	payload, err := json.Marshal(entity.BookingCreatedEvent{
		BookingID:   booking.ID.String(),
		BookingRef:  booking.BookingRef,
		ApartmentID: booking.ApartmentID.String(),
		GuestID:     booking.GuestID.String(),
		HostID:      booking.HostID.String(),
		CheckIn:     booking.CheckInDate,
		CheckOut:    booking.CheckOutDate,
		Status:      string(booking.Status),
		TotalAmount: booking.TotalAmount.String(),
		CreatedAt:   booking.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal booking created event: %w", err)
	}

	return &entity.OutboxEvent{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: booking.CreatedAt,
		},
		Name:        entity.EventBookingCreated,
		AggregateID: booking.ID.String(),
		Payload:     payload,
		Status:      entity.OutboxStatusPending,
		NextRetryAt: booking.CreatedAt,
	}, nil
}

// parseStayWindow accepts "2006-01-02" or RFC3339 timestamps, truncates both
// ends to whole days and enforces check-out strictly after check-in.
func parseStayWindow(checkInRaw, checkOutRaw string) (time.Time, time.Time, error) {
	checkIn, err := parseStayDate(checkInRaw)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	checkOut, err := parseStayDate(checkOutRaw)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	if !checkOut.After(checkIn) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return checkIn, checkOut, nil
}

func parseStayDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return truncateToDay(t), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return truncateToDay(t), nil
}
