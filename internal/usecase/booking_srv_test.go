package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agrly/internal/data/entity"
	"agrly/internal/data/repository"
	"agrly/internal/dto/request"
	"agrly/pkg/money"
)

// fakeBookingRepo arbitrates overlaps under a mutex the way the database
// exclusion constraint does: the check and the insert are one atomic step.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings []*entity.Booking
	events   []*entity.OutboxEvent
	failWith error
}

func (f *fakeBookingRepo) CreateWithOutbox(_ context.Context, booking *entity.Booking, event *entity.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return f.failWith
	}

	for _, existing := range f.bookings {
		if booking.IdempotencyKey != nil && existing.IdempotencyKey != nil &&
			*booking.IdempotencyKey == *existing.IdempotencyKey {
			return repository.ErrDuplicateIdempotencyKey
		}
	}
	for _, existing := range f.bookings {
		if existing.ApartmentID == booking.ApartmentID && existing.IsActive() &&
			existing.CheckInDate.Before(booking.CheckOutDate) &&
			existing.CheckOutDate.After(booking.CheckInDate) {
			return repository.ErrOverlapConflict
		}
	}

	f.bookings = append(f.bookings, booking)
	f.events = append(f.events, event)
	return nil
}

func (f *fakeBookingRepo) HasOverlapping(_ context.Context, apartmentID uuid.UUID, checkIn, checkOut time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.bookings {
		if existing.ApartmentID == apartmentID && existing.IsActive() &&
			existing.CheckInDate.Before(checkOut) &&
			existing.CheckOutDate.After(checkIn) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, b := range f.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeBookingRepo) FindByIdempotencyKey(_ context.Context, key string) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, b := range f.bookings {
		if b.IdempotencyKey != nil && *b.IdempotencyKey == key {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeBookingRepo) FindByGuestID(_ context.Context, guestID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*entity.Booking
	for _, b := range f.bookings {
		if b.GuestID == guestID {
			matched = append(matched, b)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (f *fakeBookingRepo) CountByGuestID(_ context.Context, guestID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, b := range f.bookings {
		if b.GuestID == guestID {
			count++
		}
	}
	return count, nil
}

type fakeApartmentRepo struct {
	apartments map[uuid.UUID]*entity.Apartment
}

func (f *fakeApartmentRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Apartment, error) {
	return f.apartments[id], nil
}

func (f *fakeApartmentRepo) FindAvailable(_ context.Context, limit, offset int) ([]*entity.Apartment, error) {
	var active []*entity.Apartment
	for _, a := range f.apartments {
		if a.IsActive {
			active = append(active, a)
		}
	}
	return active, nil
}

func (f *fakeApartmentRepo) CountAvailable(_ context.Context) (int64, error) {
	var count int64
	for _, a := range f.apartments {
		if a.IsActive {
			count++
		}
	}
	return count, nil
}

type bookingFixture struct {
	service     BookingService
	bookingRepo *fakeBookingRepo
	apartmentID uuid.UUID
	guestID     uuid.UUID
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	nightly, err := money.ParseAmount("100.00")
	if err != nil {
		t.Fatalf("parse nightly rate: %v", err)
	}

	apartmentID := uuid.New()
	apartments := &fakeApartmentRepo{
		apartments: map[uuid.UUID]*entity.Apartment{
			apartmentID: {
				Base:          entity.Base{ID: apartmentID},
				OwnerID:       uuid.New(),
				Title:         "Loft by the river",
				PricePerNight: nightly,
				IsActive:      true,
			},
		},
	}

	bookingRepo := &fakeBookingRepo{}
	repo := &repository.Repository{
		Apartment: apartments,
		Booking:   bookingRepo,
	}

	log := zap.NewNop()
	pricing := NewPricingService(testPricingConfig(t), log)
	availability := NewAvailabilityService(repo, log)

	return &bookingFixture{
		service:     NewBookingService(repo, pricing, availability, log),
		bookingRepo: bookingRepo,
		apartmentID: apartmentID,
		guestID:     uuid.New(),
	}
}

func (fx *bookingFixture) request(checkIn, checkOut string) *request.CreateBookingRequest {
	return &request.CreateBookingRequest{
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		NumGuests: 2,
	}
}

func TestCreateBookingSuccess(t *testing.T) {
	fx := newBookingFixture(t)

	booking, err := fx.service.CreateBooking(context.Background(), fx.guestID, fx.apartmentID.String(), "", fx.request("2026-06-01", "2026-06-04"))
	if err != nil {
		t.Fatalf("CreateBooking returned error: %v", err)
	}

	if booking.Price.Total.String() != "395.00" {
		t.Errorf("Total = %s, want 395.00", booking.Price.Total.String())
	}
	// the engine only ever appends pending bookings; confirmation is a later
	// lifecycle transition owned elsewhere
	if booking.Status != entity.BookingStatusPending {
		t.Errorf("Status = %s, want pending", booking.Status)
	}
	if got := fx.bookingRepo.bookings[0].Status; got != entity.BookingStatusPending {
		t.Errorf("persisted status = %s, want pending", got)
	}
	if booking.BookingRef == "" {
		t.Error("BookingRef is empty")
	}
	if len(fx.bookingRepo.events) != 1 {
		t.Fatalf("outbox events = %d, want 1", len(fx.bookingRepo.events))
	}
	if fx.bookingRepo.events[0].Name != entity.EventBookingCreated {
		t.Errorf("event name = %s, want %s", fx.bookingRepo.events[0].Name, entity.EventBookingCreated)
	}
}

func TestCreateBookingInvalidDates(t *testing.T) {
	fx := newBookingFixture(t)

	cases := []struct {
		name     string
		checkIn  string
		checkOut string
	}{
		{"checkout before checkin", "2026-06-04", "2026-06-01"},
		{"same day", "2026-06-01", "2026-06-01"},
		{"garbage checkin", "not-a-date", "2026-06-04"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := fx.service.CreateBooking(context.Background(), fx.guestID, fx.apartmentID.String(), "", fx.request(c.checkIn, c.checkOut))
			if !errors.Is(err, ErrInvalidDateRange) {
				t.Errorf("error = %v, want ErrInvalidDateRange", err)
			}
		})
	}
}

func TestCreateBookingOversizeSpecialRequests(t *testing.T) {
	fx := newBookingFixture(t)

	oversize := strings.Repeat("x", 1001)
	req := fx.request("2026-06-01", "2026-06-04")
	req.SpecialRequests = &oversize

	_, err := fx.service.CreateBooking(context.Background(), fx.guestID, fx.apartmentID.String(), "", req)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
	// a field-length failure is not a date problem
	if errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("error = %v, must not wrap ErrInvalidDateRange", err)
	}
}

func TestCreateBookingInvalidGuestCount(t *testing.T) {
	fx := newBookingFixture(t)

	req := fx.request("2026-06-01", "2026-06-04")
	req.NumGuests = 0

	_, err := fx.service.CreateBooking(context.Background(), fx.guestID, fx.apartmentID.String(), "", req)
	if !errors.Is(err, ErrInvalidGuestCount) {
		t.Errorf("error = %v, want ErrInvalidGuestCount", err)
	}
}

func TestCreateBookingUnknownListing(t *testing.T) {
	fx := newBookingFixture(t)

	_, err := fx.service.CreateBooking(context.Background(), fx.guestID, uuid.NewString(), "", fx.request("2026-06-01", "2026-06-04"))
	if !errors.Is(err, ErrListingNotFound) {
		t.Errorf("error = %v, want ErrListingNotFound", err)
	}
}

func TestCreateBookingConflict(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	if _, err := fx.service.CreateBooking(ctx, fx.guestID, fx.apartmentID.String(), "", fx.request("2026-06-01", "2026-06-05")); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	_, err := fx.service.CreateBooking(ctx, uuid.New(), fx.apartmentID.String(), "", fx.request("2026-06-03", "2026-06-07"))
	if !errors.Is(err, ErrDateRangeUnavailable) {
		t.Errorf("overlapping booking error = %v, want ErrDateRangeUnavailable", err)
	}
}

func TestCreateBookingBackToBackWindows(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	if _, err := fx.service.CreateBooking(ctx, fx.guestID, fx.apartmentID.String(), "", fx.request("2026-06-01", "2026-06-05")); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	// half-open windows: checkout day is free for the next check-in
	if _, err := fx.service.CreateBooking(ctx, uuid.New(), fx.apartmentID.String(), "", fx.request("2026-06-05", "2026-06-08")); err != nil {
		t.Errorf("back-to-back booking failed: %v", err)
	}
}

func TestCreateBookingIgnoresCancelled(t *testing.T) {
	fx := newBookingFixture(t)

	// a cancelled stay over the same window must not block the dates
	fx.bookingRepo.bookings = append(fx.bookingRepo.bookings, &entity.Booking{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
		ApartmentID:  fx.apartmentID,
		GuestID:      uuid.New(),
		CheckInDate:  day(t, "2026-06-01"),
		CheckOutDate: day(t, "2026-06-05"),
		Status:       entity.BookingStatusCancelled,
	})

	if _, err := fx.service.CreateBooking(context.Background(), fx.guestID, fx.apartmentID.String(), "", fx.request("2026-06-02", "2026-06-04")); err != nil {
		t.Errorf("booking over cancelled window failed: %v", err)
	}
}

func TestCreateBookingConcurrentSingleWinner(t *testing.T) {
	fx := newBookingFixture(t)

	const attempts = 16
	results := make(chan error, attempts)

	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < attempts; i++ {
		go func() {
			start.Wait()
			_, err := fx.service.CreateBooking(context.Background(), uuid.New(), fx.apartmentID.String(), "", fx.request("2026-06-01", "2026-06-04"))
			results <- err
		}()
	}
	start.Done()

	var wins, conflicts int
	for i := 0; i < attempts; i++ {
		switch err := <-results; {
		case err == nil:
			wins++
		case errors.Is(err, ErrDateRangeUnavailable):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if wins != 1 {
		t.Errorf("winners = %d, want exactly 1", wins)
	}
	if conflicts != attempts-1 {
		t.Errorf("conflicts = %d, want %d", conflicts, attempts-1)
	}
	if len(fx.bookingRepo.bookings) != 1 {
		t.Errorf("stored bookings = %d, want 1", len(fx.bookingRepo.bookings))
	}
}

func TestCreateBookingIdempotentReplay(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	first, err := fx.service.CreateBooking(ctx, fx.guestID, fx.apartmentID.String(), "key-1", fx.request("2026-06-01", "2026-06-04"))
	if err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	// same key replayed: no second booking, same reference back
	replay, err := fx.service.CreateBooking(ctx, fx.guestID, fx.apartmentID.String(), "key-1", fx.request("2026-06-01", "2026-06-04"))
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	if replay.BookingRef != first.BookingRef {
		t.Errorf("replay ref = %s, want %s", replay.BookingRef, first.BookingRef)
	}
	if replay.Price.Total.String() != first.Price.Total.String() {
		t.Errorf("replay total = %s, want %s", replay.Price.Total.String(), first.Price.Total.String())
	}
	if len(fx.bookingRepo.bookings) != 1 {
		t.Errorf("stored bookings = %d, want 1", len(fx.bookingRepo.bookings))
	}
}

func TestCreateBookingMapsStorageFailure(t *testing.T) {
	fx := newBookingFixture(t)
	fx.bookingRepo.failWith = errors.New("connection refused")

	_, err := fx.service.CreateBooking(context.Background(), fx.guestID, fx.apartmentID.String(), "", fx.request("2026-06-01", "2026-06-04"))
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Errorf("error = %v, want ErrDependencyUnavailable", err)
	}
}

func TestGetUserBookings(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	if _, err := fx.service.CreateBooking(ctx, fx.guestID, fx.apartmentID.String(), "", fx.request("2026-06-01", "2026-06-04")); err != nil {
		t.Fatalf("create booking failed: %v", err)
	}

	page, err := fx.service.GetUserBookings(ctx, fx.guestID, &request.PaginatedRequest{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("GetUserBookings returned error: %v", err)
	}

	if len(page.Data) != 1 {
		t.Fatalf("bookings = %d, want 1", len(page.Data))
	}
	if page.Pagination.Total != 1 {
		t.Errorf("total = %d, want 1", page.Pagination.Total)
	}
	if page.Data[0].Price.NightlyRate.String() != "100.00" {
		t.Errorf("nightly rate = %s, want 100.00", page.Data[0].Price.NightlyRate.String())
	}
}

func TestHasConflictRepeatable(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	repo := &repository.Repository{Booking: fx.bookingRepo}
	availability := NewAvailabilityService(repo, zap.NewNop())

	if _, err := fx.service.CreateBooking(ctx, fx.guestID, fx.apartmentID.String(), "", fx.request("2026-06-01", "2026-06-04")); err != nil {
		t.Fatalf("create booking failed: %v", err)
	}

	// read-only check: asking twice gives the same answer and changes nothing
	for i := 0; i < 2; i++ {
		conflict, err := availability.HasConflict(ctx, fx.apartmentID, day(t, "2026-06-02"), day(t, "2026-06-03"))
		if err != nil {
			t.Fatalf("HasConflict returned error: %v", err)
		}
		if !conflict {
			t.Errorf("HasConflict = false on pass %d, want true", i+1)
		}
	}
	if len(fx.bookingRepo.bookings) != 1 {
		t.Errorf("stored bookings = %d, want 1", len(fx.bookingRepo.bookings))
	}
}
