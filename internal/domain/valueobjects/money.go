// Package valueobjects - Money is a fixed-point monetary amount.
//
// Money wraps shopspring/decimal at scale 2 (precision 18). Binary floating
// point is never used for ledger amounts; aggregates for display may widen
// to float64 at the query layer.
package valueobjects

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyScale is the fixed number of fractional digits for ledger amounts.
const MoneyScale = 2

// moneyPrecision bounds the integral digits (NUMERIC(18,2) in the store).
const moneyPrecision = 18

// Money is an immutable fixed-point amount. The zero value is 0.00.
type Money struct {
	amount decimal.Decimal
}

// NewMoney parses a decimal string into Money.
// The string may carry at most MoneyScale fractional digits; anything finer
// is rejected rather than rounded, because rounding client input silently
// changes the posted amount.
func NewMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.Exponent() < -MoneyScale {
		return Money{}, fmt.Errorf("invalid amount %q: more than %d decimal places", s, MoneyScale)
	}
	if len(d.Truncate(0).String()) > moneyPrecision-MoneyScale+1 {
		return Money{}, fmt.Errorf("invalid amount %q: exceeds precision", s)
	}
	return Money{amount: d}, nil
}

// NewMoneyFromDecimal wraps an already-validated decimal. Used when scanning
// NUMERIC columns, which are constrained to the right scale by the schema.
func NewMoneyFromDecimal(d decimal.Decimal) Money {
	return Money{amount: d}
}

// MustNewMoney is NewMoney that panics on invalid input. Test helper.
func MustNewMoney(s string) Money {
	m, err := NewMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// ZeroMoney returns 0.00.
func ZeroMoney() Money {
	return Money{amount: decimal.Zero}
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount)}
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{amount: m.amount.Neg()}
}

// Cmp compares m with other: -1 if m < other, 0 if equal, +1 if m > other.
func (m Money) Cmp(other Money) int {
	return m.amount.Cmp(other.amount)
}

// IsPositive reports m > 0.
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative reports m < 0.
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// IsZero reports m == 0.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// LessThan reports m < other.
func (m Money) LessThan(other Money) bool {
	return m.amount.LessThan(other.amount)
}

// GreaterThanOrEqual reports m >= other.
func (m Money) GreaterThanOrEqual(other Money) bool {
	return m.amount.GreaterThanOrEqual(other.amount)
}

// Equals reports m == other by value.
func (m Money) Equals(other Money) bool {
	return m.amount.Equal(other.amount)
}

// Decimal exposes the underlying decimal for persistence.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// Float64 widens the amount for display aggregates. Not for arithmetic.
func (m Money) Float64() float64 {
	f, _ := m.amount.Float64()
	return f
}

// String renders the amount with exactly MoneyScale fractional digits.
// This is the wire format for every amount in API responses.
func (m Money) String() string {
	return m.amount.StringFixed(MoneyScale)
}

// MarshalJSON serializes Money as a quoted fixed-scale string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON parses a quoted decimal string into Money.
func (m *Money) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("money must be a JSON string, got %s", string(data))
	}
	parsed, err := NewMoney(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
