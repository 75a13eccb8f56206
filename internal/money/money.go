// Package money holds the fixed-scale decimal policy shared by every
// monetary computation in the engine.  All amounts are
// shopspring/decimal values.  Intermediate results (shares, sums) are
// never rounded; only divisions are carried out at Scale and cached
// totals are rounded half-up to Scale when they are written.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits used for divisions and for
// cached totals.  It matches the widest scale a MySQL DECIMAL column
// can store (DECIMAL(65,30)).
const Scale int32 = 30

var (
	// Zero is the additive identity.
	Zero = decimal.Zero
	// One is the multiplicative identity.
	One = decimal.NewFromInt(1)
	// Tolerance is the largest difference at which two totals are still
	// considered equal during validation against the source system.
	Tolerance = decimal.New(1, -5)
)

// Div divides a by b at Scale, rounding half-up (away from zero on the
// final digit).  Division by zero panics in the underlying library, so
// callers must guard the divisor.
func Div(a, b decimal.Decimal) decimal.Decimal {
	return a.DivRound(b, Scale)
}

// Round rounds d half-up to Scale.  It is applied only at the final
// cached-field write.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Sum adds all values.  The sum of no values is Zero.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Max returns the larger of a and b.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThanOrEqual(b) {
		return a
	}
	return b
}

// WithinTolerance reports whether |a - b| < Tolerance.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(Tolerance)
}

// Parse converts a decimal string into a Decimal, wrapping the parse
// error with the offending input.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}

// MustParse is like Parse but panics on malformed input.  It is meant
// for constants and tests.
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}
