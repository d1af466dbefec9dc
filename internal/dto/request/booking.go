package request

// CreateBookingRequest carries the stay window for one apartment. Dates are
// "2006-01-02" or RFC3339; the service truncates to whole days. Guest count is
// checked in the service so the caller gets a precise error class instead of a
// generic validation message.
type CreateBookingRequest struct {
	CheckIn         string  `json:"check_in" validate:"required"`
	CheckOut        string  `json:"check_out" validate:"required"`
	NumGuests       int     `json:"num_guests"`
	SpecialRequests *string `json:"special_requests,omitempty" validate:"omitempty,max=1000"`
}

// QuoteRequest previews the itemized price without creating anything.
type QuoteRequest struct {
	CheckIn  string `json:"check_in" validate:"required"`
	CheckOut string `json:"check_out" validate:"required"`
}
