package schedule

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wicaksana/loan-engine/internal/domain"
	"github.com/wicaksana/loan-engine/internal/ratemath"
	customError "github.com/wicaksana/loan-engine/pkg/errors"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testGenerator() *Generator {
	return NewGenerator(ratemath.NewContext(12, ratemath.HalfEven))
}

func monthlyTerms(principal string, annualRate string, numRepayments int) domain.LoanTerms {
	return domain.LoanTerms{
		Currency:          domain.Currency{Code: "EUR", DecimalPlaces: 2},
		Principal:         dec(principal),
		AnnualNominalRate: dec(annualRate),
		NumRepayments:     numRepayments,
		Frequency:         domain.RepaymentFrequency{Every: 1, Unit: domain.FrequencyMonths},
		DaysInYear:        domain.DaysInYear360,
		DaysInMonth:       domain.DaysInMonth30,
		DisbursementDate:  date(2024, 1, 1),
	}
}

func TestGenerateProgressiveReferenceCase(t *testing.T) {
	// 100 at 7% nominal over 6 monthly periods, 30/360
	sched, err := testGenerator().Generate(monthlyTerms("100", "7", 6))
	require.NoError(t, err)

	require.Len(t, sched.Periods, 7) // 1 disbursement + 6 repayments

	disbursement := sched.Periods[0]
	assert.Equal(t, domain.PeriodDisbursement, disbursement.Kind)
	assert.True(t, disbursement.Principal.Equal(dec("100")))
	assert.True(t, disbursement.OutstandingAfter.Equal(dec("100")))

	first := sched.Periods[1]
	assert.Equal(t, domain.PeriodRepayment, first.Kind)
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, date(2024, 1, 1), first.FromDate)
	assert.Equal(t, date(2024, 2, 1), first.DueDate)
	assert.True(t, first.Principal.Equal(dec("16.43")), "principal %s", first.Principal)
	assert.True(t, first.Interest.Equal(dec("0.58")), "interest %s", first.Interest)
	assert.True(t, first.TotalDue.Equal(dec("17.01")), "total due %s", first.TotalDue)
	assert.True(t, first.OutstandingAfter.Equal(dec("83.57")), "outstanding %s", first.OutstandingAfter)

	assert.Equal(t, 182, sched.LoanTermDays)
	assert.True(t, sched.TotalInterest.Equal(dec("2.05")), "total interest %s", sched.TotalInterest)
	assert.True(t, sched.TotalRepayment.Equal(dec("102.05")), "total repayment %s", sched.TotalRepayment)
	assert.True(t, sched.TotalDisbursed.Equal(dec("100")))
}

func TestGenerateAmortizationCompleteness(t *testing.T) {
	tests := []struct {
		name          string
		principal     string
		annualRate    string
		numRepayments int
	}{
		{"100 at 7% over 6", "100", "7", 6},
		{"250000 at 9.9% over 48", "250000", "9.9", 48},
		{"1000 at 0% over 4", "1000", "0", 4},
		{"7321.55 at 13.75% over 12", "7321.55", "13.75", 12},
		{"5000000 at 10% over 50", "5000000", "10", 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched, err := testGenerator().Generate(monthlyTerms(tt.principal, tt.annualRate, tt.numRepayments))
			require.NoError(t, err)

			repayments := sched.Repayments()
			require.Len(t, repayments, tt.numRepayments)

			principalSum := decimal.Zero
			prevNumber := 0
			for _, p := range repayments {
				assert.Equal(t, prevNumber+1, p.Number, "period numbers are contiguous")
				prevNumber = p.Number
				assert.False(t, p.Principal.IsNegative())
				assert.False(t, p.Interest.IsNegative())
				principalSum = principalSum.Add(p.Principal)
			}

			assert.True(t, principalSum.Equal(dec(tt.principal)),
				"repayment principal %s must sum to disbursed %s", principalSum, tt.principal)
			assert.True(t, repayments[len(repayments)-1].OutstandingAfter.IsZero(),
				"final outstanding balance must be exactly zero")
		})
	}
}

func TestGenerateZeroInterest(t *testing.T) {
	sched, err := testGenerator().Generate(monthlyTerms("1000", "0", 4))
	require.NoError(t, err)

	for _, p := range sched.Repayments() {
		assert.True(t, p.Interest.IsZero())
		assert.True(t, p.Principal.Equal(dec("250")), "period %d principal %s", p.Number, p.Principal)
	}
	assert.True(t, sched.TotalInterest.IsZero())
	assert.True(t, sched.TotalRepayment.Equal(dec("1000")))
}

func TestGenerateDownPayment(t *testing.T) {
	terms := monthlyTerms("1000", "0", 5)
	terms.DownPaymentPercentage = dec("25")

	sched, err := testGenerator().Generate(terms)
	require.NoError(t, err)

	require.Len(t, sched.Periods, 7) // disbursement + down payment + 5 repayments

	downPayment := sched.Periods[1]
	assert.Equal(t, domain.PeriodDownPayment, downPayment.Kind)
	assert.Equal(t, 1, downPayment.Number)
	assert.Equal(t, date(2024, 1, 1), downPayment.DueDate)
	assert.True(t, downPayment.Principal.Equal(dec("250")))
	assert.True(t, downPayment.OutstandingAfter.Equal(dec("750")))

	for _, p := range sched.Repayments() {
		assert.True(t, p.Principal.Equal(dec("150")), "period %d principal %s", p.Number, p.Principal)
	}
	assert.True(t, sched.LastRepayment().OutstandingAfter.IsZero())
}

func TestGenerateDueDatesAdvanceByFrequency(t *testing.T) {
	terms := monthlyTerms("1200", "0", 3)
	terms.Frequency = domain.RepaymentFrequency{Every: 2, Unit: domain.FrequencyWeeks}

	sched, err := testGenerator().Generate(terms)
	require.NoError(t, err)

	repayments := sched.Repayments()
	assert.Equal(t, date(2024, 1, 15), repayments[0].DueDate)
	assert.Equal(t, date(2024, 1, 29), repayments[1].DueDate)
	assert.Equal(t, date(2024, 2, 12), repayments[2].DueDate)
	assert.Equal(t, date(2024, 1, 15), repayments[1].FromDate)
}

func TestGenerateRejectsNonPositiveRepayments(t *testing.T) {
	terms := monthlyTerms("100", "7", 0)
	_, err := testGenerator().Generate(terms)
	assert.ErrorIs(t, err, customError.ErrInvalidNumRepayments)

	terms.NumRepayments = -3
	_, err = testGenerator().Generate(terms)
	assert.ErrorIs(t, err, customError.ErrInvalidNumRepayments)
}

func TestRegenerateFromKeepsEarlierPeriods(t *testing.T) {
	gen := testGenerator()
	terms := monthlyTerms("100", "7", 6)

	original, err := gen.Generate(terms)
	require.NoError(t, err)

	// a rate change applicable from the fourth repayment period
	changed := terms
	changed.AnnualNominalRate = dec("12")
	regenerated, err := gen.RegenerateFrom(original, changed, date(2024, 4, 2))
	require.NoError(t, err)

	require.Len(t, regenerated.Periods, len(original.Periods))

	// periods due before the cut are byte-for-byte stable
	for i := 0; i <= 3; i++ {
		assert.Equal(t, original.Periods[i].DueDate, regenerated.Periods[i].DueDate)
		assert.True(t, original.Periods[i].Principal.Equal(regenerated.Periods[i].Principal), "period %d", i)
		assert.True(t, original.Periods[i].Interest.Equal(regenerated.Periods[i].Interest), "period %d", i)
	}

	// the tail re-amortizes at the higher rate
	oldTail := original.Periods[4]
	newTail := regenerated.Periods[4]
	assert.Equal(t, oldTail.DueDate, newTail.DueDate)
	assert.True(t, newTail.Interest.GreaterThan(oldTail.Interest))
	assert.True(t, regenerated.LastRepayment().OutstandingAfter.IsZero())
}

func TestRegenerateFromIsDeterministic(t *testing.T) {
	gen := testGenerator()
	terms := monthlyTerms("7321.55", "13.75", 12)

	original, err := gen.Generate(terms)
	require.NoError(t, err)

	a, err := gen.RegenerateFrom(original, terms, date(2024, 6, 15))
	require.NoError(t, err)
	b, err := gen.RegenerateFrom(original, terms, date(2024, 6, 15))
	require.NoError(t, err)

	require.Len(t, b.Periods, len(a.Periods))
	for i := range a.Periods {
		assert.True(t, a.Periods[i].Principal.Equal(b.Periods[i].Principal))
		assert.True(t, a.Periods[i].Interest.Equal(b.Periods[i].Interest))
		assert.True(t, a.Periods[i].OutstandingAfter.Equal(b.Periods[i].OutstandingAfter))
	}
}

func TestApplyPrepaymentReamortizesTail(t *testing.T) {
	gen := testGenerator()
	terms := monthlyTerms("1200", "0", 12)

	original, err := gen.Generate(terms)
	require.NoError(t, err)
	for _, p := range original.Repayments() {
		assert.True(t, p.Principal.Equal(dec("100")))
	}

	// 100 prepaid mid-April: the first three periods stay, the rest shrink
	adjusted, err := gen.ApplyPrepayment(original, terms, date(2024, 4, 15), dec("100"))
	require.NoError(t, err)

	repayments := adjusted.Repayments()
	require.Len(t, repayments, 12)
	for i := 0; i < 3; i++ {
		assert.True(t, repayments[i].Principal.Equal(dec("100")), "kept period %d", i+1)
	}

	principalSum := decimal.Zero
	for _, p := range repayments {
		principalSum = principalSum.Add(p.Principal)
	}
	assert.True(t, principalSum.Equal(dec("1100")), "prepaid principal is not re-collected, got %s", principalSum)
	assert.True(t, repayments[11].OutstandingAfter.IsZero())
}
