package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// quantityScale is the number of decimal places a Quantity keeps
const quantityScale = 3

// ErrQuantity is returned for quantities that are not a finite number with
// at most three decimal places
var ErrQuantity = errors.New("invalid quantity")

var maxQuantity = decimal.NewFromInt(math.MaxInt64)

// Quantity is an amount in a post's unit, held as an integer count of
// thousandths so sums and comparisons are exact. On the wire it is a plain
// JSON number in whole units.
type Quantity int64

// Units returns n whole units
func Units(n int64) Quantity {
	return Quantity(n) * 1000
}

// ParseQuantity parses a decimal string such as "0.3" without going through float64
func ParseQuantity(s string) (Quantity, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrQuantity, s)
	}
	return quantityFromDecimal(d)
}

// QuantityFromFloat converts f using its shortest decimal representation, so
// 0.1 becomes exactly one tenth
func QuantityFromFloat(f float64) (Quantity, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrQuantity, f)
	}
	return quantityFromDecimal(decimal.NewFromFloat(f))
}

func quantityFromDecimal(d decimal.Decimal) (Quantity, error) {
	scaled := d.Shift(quantityScale)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s has more than %d decimal places", ErrQuantity, d.String(), quantityScale)
	}
	if scaled.Abs().GreaterThan(maxQuantity) {
		return 0, fmt.Errorf("%w: %s is out of range", ErrQuantity, d.String())
	}
	return Quantity(scaled.IntPart()), nil
}

// Decimal returns q in whole units
func (q Quantity) Decimal() decimal.Decimal {
	return decimal.New(int64(q), -quantityScale)
}

// Float64 returns q in whole units, for metrics
func (q Quantity) Float64() float64 {
	f, _ := q.Decimal().Float64()
	return f
}

func (q Quantity) String() string {
	return q.Decimal().String()
}

// MarshalJSON writes q as a JSON number
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string
func (q *Quantity) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	parsed, err := ParseQuantity(s)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
