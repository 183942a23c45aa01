package menu

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/cafe/internal/apperr"
)

var ErrZeroPriceUnconfirmed = fmt.Errorf("%w: a price of 0.00 must be confirmed", apperr.ErrValidation)

// PriceChoiceError is returned instead of silently rounding a price with
// more than two decimals. The caller resubmits one of the two candidates.
type PriceChoiceError struct {
	Original  decimal.Decimal
	Truncated decimal.Decimal
	Rounded   decimal.Decimal
}

func (e *PriceChoiceError) Error() string {
	return fmt.Sprintf("price %s has more than two decimals: truncate to %s or round to %s",
		e.Original.String(), e.Truncated.StringFixed(2), e.Rounded.StringFixed(2))
}

func (e *PriceChoiceError) Unwrap() error { return apperr.ErrValidation }

func ParsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, apperr.Validationf("price %q is not a number", s)
	}
	return d, nil
}

// NormalizePrice checks a price before it is written.
func NormalizePrice(p decimal.Decimal, confirmZero bool) (decimal.Decimal, error) {
	if p.IsNegative() {
		return decimal.Zero, apperr.Validationf("price cannot be negative")
	}
	if p.Exponent() < -2 && !p.Equal(p.Truncate(2)) {
		// prices are never negative here, so truncation is a floor and
		// Round is half-up
		return decimal.Zero, &PriceChoiceError{Original: p, Truncated: p.Truncate(2), Rounded: p.Round(2)}
	}
	if p.IsZero() && !confirmZero {
		return decimal.Zero, ErrZeroPriceUnconfirmed
	}
	if p.GreaterThanOrEqual(decimal.New(1, 8)) {
		return decimal.Zero, apperr.Validationf("price %s is too large", p.StringFixed(2))
	}
	return p.Round(2), nil
}
