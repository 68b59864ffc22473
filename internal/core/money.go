// Package core provides money parsing and handling utilities.
//
// Money is an exact decimal with two fraction digits on the wire and in
// storage. Arithmetic goes through shopspring/decimal so no binary floating
// point is ever involved.
package core

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// MoneyScale is the number of fraction digits kept for amounts.
	MoneyScale = 2
	// MoneyIntegerDigits bounds amounts to NUMERIC(15,2).
	MoneyIntegerDigits = 13

	// maxAmountLiteral bounds the text form of an amount. Longer inputs,
	// including exponents, are rejected before any arithmetic.
	maxAmountLiteral  = 64
	minAmountExponent = -(MoneyScale + MoneyIntegerDigits)
)

var (
	ErrInvalidAmount = errors.New("invalid amount")

	moneyUpperBound = decimal.New(1, MoneyIntegerDigits)
	// OneCent is the smallest strictly positive amount.
	OneCent = decimal.New(1, -MoneyScale)
)

// Money wraps decimal.Decimal with fixed-scale serialization.
type Money struct {
	decimal.Decimal
}

// NewMoney wraps a decimal.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// ParseMoney parses a decimal string such as "123.45".
//
// Examples:
//
//	ParseMoney("12.34")  -> 12.34, nil
//	ParseMoney("12.345") -> error (more than two fraction digits)
//	ParseMoney("abc")    -> error
func ParseMoney(s string) (Money, error) {
	if len(s) > maxAmountLiteral {
		return Money{}, fmt.Errorf("%w: literal too long", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if err := checkExponent(d); err != nil {
		return Money{}, err
	}
	m := Money{Decimal: d}
	if err := m.CheckPrecision(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// MustMoney is ParseMoney for literals known to be valid.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// CheckPrecision rejects values that would not survive NUMERIC(15,2) exactly.
func (m Money) CheckPrecision() error {
	if !m.Decimal.Equal(m.Decimal.Truncate(MoneyScale)) {
		return fmt.Errorf("%w: at most %d decimal places allowed", ErrInvalidAmount, MoneyScale)
	}
	if m.Decimal.Abs().GreaterThanOrEqual(moneyUpperBound) {
		return fmt.Errorf("%w: at most %d integer digits allowed", ErrInvalidAmount, MoneyIntegerDigits)
	}
	return nil
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Decimal: m.Decimal.Add(o.Decimal)}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{Decimal: m.Decimal.Sub(o.Decimal)}
}

func (m Money) String() string {
	return m.Decimal.StringFixed(MoneyScale)
}

// MarshalJSON renders a JSON number with exactly two fraction digits.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and numeric strings. The number is
// parsed from its literal text, never through float64.
// Oversized literals and out-of-range exponents fail with ErrInvalidAmount
// before the value is rescaled or printed.
func (m *Money) UnmarshalJSON(data []byte) error {
	if len(data) > maxAmountLiteral {
		return fmt.Errorf("%w: literal too long", ErrInvalidAmount)
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if err := checkExponent(d); err != nil {
		return err
	}
	m.Decimal = d
	return nil
}

// checkExponent keeps rescaling cheap: 1e13 and above can never fit, and
// anything below 1e-15 has too many fraction digits.
func checkExponent(d decimal.Decimal) error {
	if exp := d.Exponent(); exp > MoneyIntegerDigits || exp < minAmountExponent {
		return fmt.Errorf("%w: exponent %d out of range", ErrInvalidAmount, exp)
	}
	return nil
}

func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

func (m *Money) Scan(src any) error {
	return m.Decimal.Scan(src)
}
