package money

import (
	"github.com/shopspring/decimal"
)

// Amount is a fixed-point value with two fractional digits on the wire.
// It is used for both currency amounts and fee percentages.
type Amount struct {
	decimal.Decimal
}

// New wraps d, rounding to cents
func New(d decimal.Decimal) Amount {
	return Amount{Decimal: d.Round(2)}
}

// NewPtr is New for optional values
func NewPtr(d *decimal.Decimal) *Amount {
	if d == nil {
		return nil
	}
	a := New(*d)
	return &a
}

// Zero returns a zero amount
func Zero() Amount {
	return Amount{Decimal: decimal.Zero}
}

// Parse parses a decimal string such as "100.50"
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return New(d), nil
}

// MustParse is Parse that panics on malformed input. Intended for constants and tests.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// MarshalJSON renders the amount as a JSON number with exactly two decimals.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.StringFixed(2)), nil
}

// String renders the amount with exactly two decimals.
func (a Amount) String() string {
	return a.StringFixed(2)
}

// Add returns a + b
func (a Amount) Add(b Amount) Amount {
	return New(a.Decimal.Add(b.Decimal))
}

// Sub returns a - b
func (a Amount) Sub(b Amount) Amount {
	return New(a.Decimal.Sub(b.Decimal))
}

// Equal reports whether a and b represent the same value.
func (a Amount) Equal(b Amount) bool {
	return a.Decimal.Equal(b.Decimal)
}

// Float64 is a lossy conversion used for spreadsheet cells and metrics.
func (a Amount) Float64() float64 {
	f, _ := a.Decimal.Float64()
	return f
}

// UnmarshalJSON accepts a JSON number or a quoted decimal and rounds to cents.
func (a *Amount) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*a = New(d)
	return nil
}
