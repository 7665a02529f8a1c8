package ratemath

import (
	"github.com/shopspring/decimal"

	"github.com/wicaksana/loan-engine/internal/domain"
)

var one = decimal.NewFromInt(1)
var hundred = decimal.NewFromInt(100)

// DailyRate derives the per-day rate from an annual nominal percentage.
// The two divisions are performed separately on purpose; combining them into
// one division changes the intermediate rounding and therefore the digits.
func DailyRate(annualNominalRate decimal.Decimal, daysInYear int, ctx Context) decimal.Decimal {
	fraction := ctx.Div(annualNominalRate, hundred)
	return ctx.Div(fraction, decimal.NewFromInt(int64(daysInYear)))
}

// PeriodInterest accrues numDays of interest on the outstanding balance at
// the given daily rate, rounded in the context.
func PeriodInterest(outstandingBalance, dailyRate decimal.Decimal, numDays int, ctx Context) decimal.Decimal {
	return ctx.Round(outstandingBalance.Mul(dailyRate).Mul(decimal.NewFromInt(int64(numDays))))
}

// PMT is the standard annuity payment formula. The operation sequence matches
// the reference implementation step for step; do not simplify algebraically,
// the intermediate roundings are observable in the output.
//
// The sign convention is the spreadsheet one: a positive present value yields
// a negative payment.
func PMT(ratePerPeriod decimal.Decimal, numPeriods int, presentValue, futureValue decimal.Decimal, dueAtPeriodStart bool, ctx Context) decimal.Decimal {
	n := decimal.NewFromInt(int64(numPeriods))
	if ratePerPeriod.IsZero() {
		return ctx.Div(presentValue.Sub(futureValue), n).Neg()
	}

	onePlusR := one.Add(ratePerPeriod)
	compound := ctx.Pow(onePlusR, numPeriods)

	numerator := ctx.Mul(presentValue, compound).Sub(futureValue)
	denominator := ctx.Div(compound.Sub(one), ratePerPeriod)
	if dueAtPeriodStart {
		denominator = ctx.Mul(denominator, onePlusR)
	}

	return ctx.Div(numerator, denominator).Neg()
}

// RoundMoney rescales an amount to the given number of decimal places.
func RoundMoney(amount decimal.Decimal, scale int32, mode RoundingMode) decimal.Decimal {
	switch mode {
	case HalfEven:
		return amount.RoundBank(scale)
	case Down:
		return amount.RoundDown(scale)
	default:
		return amount.Round(scale)
	}
}

// RoundToCurrency rounds an amount to the currency's decimal places, or to
// its rounding increment when the currency trades in multiples.
func RoundToCurrency(amount decimal.Decimal, currency domain.Currency, mode RoundingMode) decimal.Decimal {
	if currency.RoundingIncrement.IsPositive() {
		multiples := amount.DivRound(currency.RoundingIncrement, 8)
		return RoundMoney(multiples, 0, mode).Mul(currency.RoundingIncrement)
	}
	return RoundMoney(amount, currency.DecimalPlaces, mode)
}
