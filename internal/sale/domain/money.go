package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a monetary value is derived from an empty
// item collection and no currency can be inferred.
const DefaultCurrency = "USD"

var oneHundred = decimal.NewFromInt(100)

// Money is an immutable amount in a single currency. Amounts are always
// non-negative and rounded to two fractional digits, half away from zero.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney validates and builds a Money value. The currency code is trimmed
// and uppercased.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if amount.IsNegative() {
		return Money{}, fmt.Errorf("%w: %s", ErrNegativeAmount, amount)
	}
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		return Money{}, ErrInvalidCurrency
	}
	return Money{amount: amount.Round(2), currency: code}, nil
}

// Zero returns a zero amount in the given currency. A blank currency falls
// back to DefaultCurrency.
func Zero(currency string) Money {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = DefaultCurrency
	}
	return Money{amount: decimal.Zero.Round(2), currency: code}
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the normalized currency code.
func (m Money) Currency() string { return m.currency }

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.amount.IsZero() }

// Equal reports value equality: same amount and same currency.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// Add returns m + other. Both operands must share a currency.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount).Round(2), currency: m.currency}, nil
}

// Sub returns m - other. Both operands must share a currency and the result
// must not be negative.
func (m Money) Sub(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	result := m.amount.Sub(other.amount)
	if result.IsNegative() {
		return Money{}, fmt.Errorf("%w: %s - %s", ErrNegativeAmount, m.amount, other.amount)
	}
	return Money{amount: result.Round(2), currency: m.currency}, nil
}

// Mul scales the amount by a non-negative factor.
func (m Money) Mul(factor decimal.Decimal) (Money, error) {
	if factor.IsNegative() {
		return Money{}, fmt.Errorf("%w: %s", ErrInvalidFactor, factor)
	}
	return Money{amount: m.amount.Mul(factor).Round(2), currency: m.currency}, nil
}

// MulInt scales the amount by a non-negative integer factor.
func (m Money) MulInt(factor int) (Money, error) {
	return m.Mul(decimal.NewFromInt(int64(factor)))
}

// ApplyDiscountPercent returns the amount remaining after discounting by pct
// percent (e.g. pct=10 keeps 90% of the amount). It does not return the
// discount itself; callers wanting that subtract the result from m.
func (m Money) ApplyDiscountPercent(pct decimal.Decimal) (Money, error) {
	if pct.IsNegative() || pct.GreaterThan(oneHundred) {
		return Money{}, fmt.Errorf("%w: %s", ErrInvalidPercentage, pct)
	}
	factor := decimal.NewFromInt(1).Sub(pct.Div(oneHundred))
	return Money{amount: m.amount.Mul(factor).Round(2), currency: m.currency}, nil
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}
