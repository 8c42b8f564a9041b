package money

import (
	"fmt"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/Estevanavelar/naldogas-backend/pkg/errors"
)

// Money is an amount in integer minor units (cents). Arithmetic rounds
// half-up to the nearest cent at each operation, never at output only.
type Money struct {
	cents int64
}

// Zero is the additive identity.
var Zero = Money{}

// FromCents wraps an already-minor-unit amount.
func FromCents(cents int64) Money {
	return Money{cents: cents}
}

// FromDecimalString parses a decimal amount such as "100.00" or "8.5",
// rounding half-up to cents. Amounts are unsigned in this domain, so
// negative input is rejected.
func FromDecimalString(value string) (Money, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Zero, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid amount %q", value))
	}
	if d.IsNegative() {
		return Zero, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("amount %q must not be negative", value))
	}
	return fromDecimal(d), nil
}

func fromDecimal(d decimal.Decimal) Money {
	return Money{cents: d.Shift(2).Round(0).IntPart()}
}

// Cents returns the amount in minor units.
func (m Money) Cents() int64 {
	return m.cents
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.cents == 0
}

// IsPositive reports whether the amount is greater than zero.
func (m Money) IsPositive() bool {
	return m.cents > 0
}

// Multiply scales by an integer quantity, rounding at the operation.
func (m Money) Multiply(quantity int) Money {
	d := decimal.New(m.cents, -2).Mul(decimal.NewFromInt(int64(quantity)))
	return fromDecimal(d)
}

// Add sums two amounts.
func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

// Sub subtracts other, failing when the result would be negative.
func (m Money) Sub(other Money) (Money, error) {
	if other.cents > m.cents {
		return Zero, pkgerrors.New(pkgerrors.CodeNegativeResult, "subtraction would produce a negative amount")
	}
	return Money{cents: m.cents - other.cents}, nil
}

// Compare returns -1, 0 or 1 ordering m against other.
func (m Money) Compare(other Money) int {
	switch {
	case m.cents < other.cents:
		return -1
	case m.cents > other.cents:
		return 1
	default:
		return 0
	}
}

// String renders the amount with two decimal places, e.g. "215.50".
func (m Money) String() string {
	return decimal.New(m.cents, -2).StringFixed(2)
}
