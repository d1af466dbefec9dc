package response

import (
	"time"

	"agrly/internal/data/entity"
	"agrly/pkg/money"
)

const dateLayout = "2006-01-02"

// PriceBreakdown is the itemized quote. Amounts serialize as fixed two-decimal
// strings so identical inputs produce byte-identical output.
type PriceBreakdown struct {
	Nights      int         `json:"nights"`
	NightlyRate money.Money `json:"nightly_rate"`
	BasePrice   money.Money `json:"base_price"`
	CleaningFee money.Money `json:"cleaning_fee"`
	ServiceFee  money.Money `json:"service_fee"`
	Taxes       money.Money `json:"taxes"`
	Total       money.Money `json:"total"`
}

type BookingResponse struct {
	ID              string               `json:"id"`
	BookingRef      string               `json:"booking_ref"`
	ApartmentID     string               `json:"apartment_id"`
	GuestID         string               `json:"guest_id"`
	HostID          string               `json:"host_id"`
	CheckIn         string               `json:"check_in"`
	CheckOut        string               `json:"check_out"`
	NumGuests       int                  `json:"num_guests"`
	Price           PriceBreakdown       `json:"price"`
	Status          entity.BookingStatus `json:"status"`
	SpecialRequests *string              `json:"special_requests,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
}

type QuoteResponse struct {
	ApartmentID string         `json:"apartment_id"`
	CheckIn     string         `json:"check_in"`
	CheckOut    string         `json:"check_out"`
	Price       PriceBreakdown `json:"price"`
}

func BookingToResponse(b *entity.Booking, nightlyRate money.Money, nights int) BookingResponse {
	return BookingResponse{
		ID:          b.ID.String(),
		BookingRef:  b.BookingRef,
		ApartmentID: b.ApartmentID.String(),
		GuestID:     b.GuestID.String(),
		HostID:      b.HostID.String(),
		CheckIn:     b.CheckInDate.Format(dateLayout),
		CheckOut:    b.CheckOutDate.Format(dateLayout),
		NumGuests:   b.NumGuests,
		Price: PriceBreakdown{
			Nights:      nights,
			NightlyRate: nightlyRate,
			BasePrice:   b.BasePrice,
			CleaningFee: b.CleaningFee,
			ServiceFee:  b.ServiceFee,
			Taxes:       b.Taxes,
			Total:       b.TotalAmount,
		},
		Status:          b.Status,
		SpecialRequests: b.SpecialRequests,
		CreatedAt:       b.CreatedAt,
	}
}
