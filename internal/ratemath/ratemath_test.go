package ratemath

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wicaksana/loan-engine/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPMTReferenceValue(t *testing.T) {
	ctx := NewContext(8, HalfEven)

	payment := PMT(dec("0.01"), 12, dec("10000"), decimal.Zero, false, ctx)

	assert.True(t, payment.IsNegative(), "spreadsheet sign convention: positive pv yields negative payment")
	rounded := RoundMoney(payment.Neg(), 2, HalfEven)
	assert.True(t, rounded.Equal(dec("888.49")), "got %s", rounded)
}

func TestPMTZeroRate(t *testing.T) {
	ctx := NewContext(8, HalfEven)

	payment := PMT(decimal.Zero, 12, dec("10000"), decimal.Zero, false, ctx)

	rounded := RoundMoney(payment.Neg(), 2, HalfEven)
	assert.True(t, rounded.Equal(dec("833.33")), "got %s", rounded)
}

func TestPMTDueAtPeriodStart(t *testing.T) {
	ctx := NewContext(12, HalfEven)

	end := PMT(dec("0.01"), 12, dec("10000"), decimal.Zero, false, ctx)
	start := PMT(dec("0.01"), 12, dec("10000"), decimal.Zero, true, ctx)

	// paying at period start makes each installment slightly smaller
	assert.True(t, start.Neg().LessThan(end.Neg()))
}

func TestDailyRateTwoStepDivision(t *testing.T) {
	ctx := NewContext(12, HalfEven)

	rate := DailyRate(dec("7"), 360, ctx)

	// 7 / 100 / 360
	diff := rate.Sub(dec("0.000194444444444")).Abs()
	assert.True(t, diff.LessThan(dec("0.000000000001")), "got %s", rate)
}

func TestDailyRateZero(t *testing.T) {
	ctx := NewContext(12, HalfEven)
	assert.True(t, DailyRate(decimal.Zero, 365, ctx).IsZero())
}

func TestPeriodInterest(t *testing.T) {
	ctx := NewContext(12, HalfEven)

	rate := DailyRate(dec("7"), 360, ctx)
	interest := PeriodInterest(dec("100"), rate, 30, ctx)

	rounded := RoundMoney(interest, 2, HalfEven)
	assert.True(t, rounded.Equal(dec("0.58")), "got %s", rounded)
}

func TestRoundMoneyModes(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		mode     RoundingMode
		expected string
	}{
		{"half up rounds half away", "2.345", HalfUp, "2.35"},
		{"half even rounds half to even", "2.345", HalfEven, "2.34"},
		{"half even rounds half to even up", "2.355", HalfEven, "2.36"},
		{"down truncates", "2.349", Down, "2.34"},
		{"down truncates negative toward zero", "-2.349", Down, "-2.34"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundMoney(dec(tt.amount), 2, tt.mode)
			assert.True(t, got.Equal(dec(tt.expected)), "got %s", got)
		})
	}
}

func TestRoundToCurrencyIncrement(t *testing.T) {
	currency := domain.Currency{
		Code:              "IDR",
		DecimalPlaces:     0,
		RoundingIncrement: dec("50"),
	}

	got := RoundToCurrency(dec("1024"), currency, HalfUp)
	assert.True(t, got.Equal(dec("1000")), "got %s", got)

	got = RoundToCurrency(dec("1026"), currency, HalfUp)
	assert.True(t, got.Equal(dec("1050")), "got %s", got)
}

func TestContextRoundSignificantDigits(t *testing.T) {
	ctx := NewContext(8, HalfEven)

	got := ctx.Round(dec("1.126825030131969"))
	assert.True(t, got.Equal(dec("1.1268250")), "got %s", got)

	// values inside the digit budget pass through untouched
	got = ctx.Round(dec("12.5"))
	assert.True(t, got.Equal(dec("12.5")))
}

func TestContextDivBounded(t *testing.T) {
	ctx := NewContext(10, HalfUp)

	// a non-terminating expansion stays within the digit budget
	q := ctx.Div(decimal.NewFromInt(1), decimal.NewFromInt(3))
	diff := q.Sub(dec("0.3333333333")).Abs()
	assert.True(t, diff.LessThan(dec("0.0000000001")), "got %s", q)
}

func TestParseRoundingMode(t *testing.T) {
	mode, err := ParseRoundingMode("half_even")
	require.NoError(t, err)
	assert.Equal(t, HalfEven, mode)

	mode, err = ParseRoundingMode("HALF_UP")
	require.NoError(t, err)
	assert.Equal(t, HalfUp, mode)

	mode, err = ParseRoundingMode("DOWN")
	require.NoError(t, err)
	assert.Equal(t, Down, mode)

	_, err = ParseRoundingMode("CEILING")
	assert.Error(t, err)
}
