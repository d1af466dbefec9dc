package usecase

import "errors"

// Failure taxonomy of the booking engine. Handlers map these to HTTP statuses;
// nothing below this package leaks raw storage errors past it.
var (
	// caller-fixable validation failures; no state is created
	ErrValidation        = errors.New("validation failed")
	ErrInvalidDateRange  = errors.New("invalid date range: check-out must be after check-in")
	ErrInvalidGuestCount = errors.New("invalid guest count: at least one guest is required")
	ErrListingNotFound   = errors.New("listing not found")

	// the request was well-formed but the dates cannot be satisfied right now;
	// distinct from validation so clients can offer alternative dates
	ErrDateRangeUnavailable = errors.New("requested dates are no longer available")

	// a downstream dependency failed; safe to retry later, details stay in logs
	ErrDependencyUnavailable = errors.New("service temporarily unavailable")
)
