package ratemath

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RoundingMode selects how a half-way or surplus digit is resolved.
type RoundingMode int

const (
	HalfUp   RoundingMode = iota // round half away from zero
	HalfEven                     // banker's rounding
	Down                         // truncate toward zero
)

// ParseRoundingMode maps a configuration string onto a RoundingMode.
func ParseRoundingMode(s string) (RoundingMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HALF_UP":
		return HalfUp, nil
	case "HALF_EVEN":
		return HalfEven, nil
	case "DOWN":
		return Down, nil
	default:
		return HalfUp, fmt.Errorf("unknown rounding mode %q", s)
	}
}

// Context is the explicit decimal precision context threaded through every
// rate computation: a fixed number of significant digits plus a rounding
// mode. It replaces the legacy process-wide math-context holder so identical
// inputs always produce identical digits.
type Context struct {
	Precision int32
	Rounding  RoundingMode
}

func NewContext(precision int32, rounding RoundingMode) Context {
	if precision <= 0 {
		precision = 12
	}
	return Context{Precision: precision, Rounding: rounding}
}

// guardDigits are the extra decimal places carried through a division before
// the quotient is cut back to the context precision.
const guardDigits = 4

// adjustedExponent is the base-10 exponent of d's most significant digit.
func adjustedExponent(d decimal.Decimal) int32 {
	return int32(d.NumDigits()) + d.Exponent() - 1
}

// Round cuts d back to the context's significant digits. Values already
// within the digit budget pass through unchanged.
func (c Context) Round(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return d
	}
	places := c.Precision - adjustedExponent(d) - 1
	if places >= -d.Exponent() {
		return d
	}
	return c.roundTo(d, places)
}

// Div divides a by b within the context. The quotient is computed with guard
// digits beyond the precision and then rounded back, so non-terminating
// expansions stay bounded.
func (c Context) Div(a, b decimal.Decimal) decimal.Decimal {
	scale := c.Precision + guardDigits
	if !a.IsZero() {
		// keep enough decimal places for small quotients (e.g. 0.07/360)
		est := adjustedExponent(a) - adjustedExponent(b)
		if est < 0 {
			scale -= est
		}
	}
	return c.Round(a.DivRound(b, scale))
}

// Mul multiplies within the context.
func (c Context) Mul(a, b decimal.Decimal) decimal.Decimal {
	return c.Round(a.Mul(b))
}

// Pow raises base to a non-negative integer exponent, rounding to the context
// after each multiplication.
func (c Context) Pow(base decimal.Decimal, n int) decimal.Decimal {
	result := decimal.NewFromInt(1)
	for i := 0; i < n; i++ {
		result = c.Round(result.Mul(base))
	}
	return result
}

func (c Context) roundTo(d decimal.Decimal, places int32) decimal.Decimal {
	switch c.Rounding {
	case HalfEven:
		return d.RoundBank(places)
	case Down:
		return d.RoundDown(places)
	default:
		return d.Round(places)
	}
}
