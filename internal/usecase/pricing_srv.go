package usecase

import (
	"time"

	"go.uber.org/zap"

	"agrly/pkg/money"
	"agrly/pkg/utils"
)

// PriceQuote is the itemized result of one pricing run. Every component is
// rounded to cents before summing, so the same inputs always give the same
// bytes back.
type PriceQuote struct {
	Nights      int
	NightlyRate money.Money
	BasePrice   money.Money
	CleaningFee money.Money
	ServiceFee  money.Money
	Taxes       money.Money
	Total       money.Money
}

// PricingService computes quotes. Pure function of its inputs and the injected
// fee configuration: no I/O, no clock, usable for preview quotes on its own.
type PricingService interface {
	Quote(nightlyRate money.Money, checkIn, checkOut time.Time) (*PriceQuote, error)
}

type pricingService struct {
	cleaningFee    money.Money
	serviceFeeRate money.Rate
	taxRate        money.Rate
	log            *zap.Logger
}

func NewPricingService(config utils.PricingConfig, log *zap.Logger) PricingService {
	return &pricingService{
		cleaningFee:    config.CleaningFee,
		serviceFeeRate: config.ServiceFeeRate,
		taxRate:        config.TaxRate,
		log:            log.With(zap.String("service", "pricing")),
	}
}

func (s *pricingService) Quote(nightlyRate money.Money, checkIn, checkOut time.Time) (*PriceQuote, error) {
	nights := wholeDaysBetween(checkIn, checkOut)
	if nights < 1 {
		return nil, ErrInvalidDateRange
	}

	basePrice := nightlyRate.MulNights(nights)
	serviceFee := basePrice.ApplyRate(s.serviceFeeRate)
	taxes := basePrice.ApplyRate(s.taxRate)

	return &PriceQuote{
		Nights:      nights,
		NightlyRate: nightlyRate,
		BasePrice:   basePrice,
		CleaningFee: s.cleaningFee,
		ServiceFee:  serviceFee,
		Taxes:       taxes,
		Total:       basePrice.Add(s.cleaningFee, serviceFee, taxes),
	}, nil
}

// wholeDaysBetween counts nights in the half-open window [checkIn, checkOut),
// ignoring any time-of-day component on either end.
func wholeDaysBetween(checkIn, checkOut time.Time) int {
	in := truncateToDay(checkIn)
	out := truncateToDay(checkOut)
	return int(out.Sub(in).Hours() / 24)
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
