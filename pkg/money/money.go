package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidAmount = errors.New("money: invalid amount")
	ErrInvalidRate   = errors.New("money: invalid rate")
	ErrNegative      = errors.New("money: amount cannot be negative")
)

// Money is an amount in minor units (cents). All pricing arithmetic runs on
// integers so two identical quotes are byte-identical — no binary floats.
type Money int64

// Rate is a percentage expressed in basis points (10000 = 100%).
type Rate int64

const bpsScale = 10000

// ParseAmount parses a decimal string like "50.00" or "100" into cents.
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}

	whole, frac := s, ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		whole, frac = s[:idx], s[idx+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, ErrInvalidAmount
	}
	// pad "5" -> "50" so "99.5" means 99.50
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}

	return Money(units*100 + cents), nil
}

// ParseRate parses a decimal fraction like "0.10" (10%) into basis points.
func ParseRate(s string) (Rate, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidRate
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f > 1 {
		return 0, ErrInvalidRate
	}
	// rates come from config with at most 4 decimals, so this stays exact
	return Rate(f*bpsScale + 0.5), nil
}

// MulNights multiplies a nightly rate by a whole night count.
func (m Money) MulNights(nights int) Money {
	return m * Money(nights)
}

// DivNights recovers a nightly rate from a whole-stay amount. Only meaningful
// for amounts that were produced by MulNights with the same night count.
func (m Money) DivNights(nights int) Money {
	if nights < 1 {
		return m
	}
	return m / Money(nights)
}

// ApplyRate returns m scaled by the rate, rounded to the nearest cent using
// round-half-to-even so summed components never drift from repeated quoting.
func (m Money) ApplyRate(r Rate) Money {
	product := int64(m) * int64(r)
	quotient := product / bpsScale
	remainder := product % bpsScale

	switch {
	case remainder*2 > bpsScale:
		quotient++
	case remainder*2 == bpsScale && quotient%2 != 0:
		quotient++
	}

	return Money(quotient)
}

// Add sums two amounts.
func (m Money) Add(others ...Money) Money {
	total := m
	for _, o := range others {
		total += o
	}
	return total
}

// Cents returns the raw minor-unit value for persistence.
func (m Money) Cents() int64 {
	return int64(m)
}

// String formats the amount with two decimals, e.g. "395.00".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON renders the amount as a decimal string so clients never touch
// float parsing.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts "395.00" style strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
