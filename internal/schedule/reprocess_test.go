package schedule

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wicaksana/loan-engine/internal/domain"
)

func testReprocessor() *Reprocessor {
	return NewReprocessor(testGenerator())
}

func chargeOp(due, submitted time.Time, isPenalty bool, amount string) domain.ChangeOperation {
	createdAt := submitted.Add(9 * time.Hour)
	return domain.NewChargeOp(due, submitted, &createdAt, isPenalty, dec(amount))
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestReplayWithoutOperationsMatchesGenerate(t *testing.T) {
	terms := monthlyTerms("100", "7", 6)
	businessDate := date(2024, 6, 1)

	expected, err := testGenerator().Generate(terms)
	require.NoError(t, err)

	result, err := testReprocessor().Replay(terms, nil, nil, businessDate)
	require.NoError(t, err)

	require.Len(t, result.Schedule.Periods, len(expected.Periods))
	for i, p := range result.Schedule.Periods {
		assert.True(t, p.TotalDue.Equal(expected.Periods[i].TotalDue), "period %d total due", i)
		assert.True(t, p.Principal.Equal(expected.Periods[i].Principal), "period %d principal", i)
	}
	assert.Empty(t, result.Deltas)
	assert.Empty(t, result.Accumulators)
}

func TestReplayAllocatesChargeOntoInstallment(t *testing.T) {
	terms := monthlyTerms("100", "7", 6)
	businessDate := date(2024, 6, 1)

	// due mid-way through the second window (2024-02-01 .. 2024-03-01)
	op := chargeOp(date(2024, 2, 15), date(2024, 2, 15), false, "10")

	result, err := testReprocessor().Replay(terms, nil, []domain.ChangeOperation{op}, businessDate)
	require.NoError(t, err)

	require.Len(t, result.Deltas, 1)
	assert.Equal(t, 2, result.Deltas[0].PeriodNumber)
	assert.True(t, result.Deltas[0].FeeDue.Equal(dec("10")))
	assert.True(t, result.Deltas[0].PenaltyDue.IsZero())

	acc := result.Accumulators[2]
	require.NotNil(t, acc)
	assert.True(t, acc.FeeDue.Equal(dec("10")))

	second := result.Schedule.PeriodByNumber(2)
	require.NotNil(t, second)
	assert.True(t, second.Fee.Equal(dec("10")))
	assert.True(t, second.TotalDue.Equal(dec("27.01")), "total due %s", second.TotalDue)
}

func TestReplayRoutesPenaltyChargesSeparately(t *testing.T) {
	terms := monthlyTerms("100", "7", 6)
	businessDate := date(2024, 6, 1)

	ops := []domain.ChangeOperation{
		chargeOp(date(2024, 2, 15), date(2024, 2, 15), false, "10"),
		chargeOp(date(2024, 2, 20), date(2024, 2, 20), true, "4"),
	}

	result, err := testReprocessor().Replay(terms, nil, ops, businessDate)
	require.NoError(t, err)

	acc := result.Accumulators[2]
	require.NotNil(t, acc)
	assert.True(t, acc.FeeDue.Equal(dec("10")))
	assert.True(t, acc.PenaltyDue.Equal(dec("4")))

	second := result.Schedule.PeriodByNumber(2)
	require.NotNil(t, second)
	assert.True(t, second.Fee.Equal(dec("10")))
	assert.True(t, second.Penalty.Equal(dec("4")))
	assert.True(t, second.TotalDue.Equal(dec("31.01")), "total due %s", second.TotalDue)
}

func TestReplayClampsChargeToScheduleBounds(t *testing.T) {
	terms := monthlyTerms("100", "7", 6)
	businessDate := date(2024, 6, 1)

	ops := []domain.ChangeOperation{
		chargeOp(date(2023, 12, 15), date(2023, 12, 15), false, "3"), // before the first window
		chargeOp(date(2024, 9, 30), date(2024, 9, 30), true, "5"),    // after the last window
	}

	result, err := testReprocessor().Replay(terms, nil, ops, businessDate)
	require.NoError(t, err)

	require.NotNil(t, result.Accumulators[1])
	assert.True(t, result.Accumulators[1].FeeDue.Equal(dec("3")))
	require.NotNil(t, result.Accumulators[6])
	assert.True(t, result.Accumulators[6].PenaltyDue.Equal(dec("5")))
}

func TestReplayTermVariationReamortizesTail(t *testing.T) {
	terms := monthlyTerms("100", "7", 6)
	businessDate := date(2024, 6, 1)

	ops := []domain.ChangeOperation{
		domain.NewTermVariationOp(date(2024, 4, 2), decPtr("12")),
	}

	result, err := testReprocessor().Replay(terms, nil, ops, businessDate)
	require.NoError(t, err)

	assert.True(t, result.Terms.AnnualNominalRate.Equal(dec("12")))

	baseline, err := testGenerator().Generate(terms)
	require.NoError(t, err)

	// periods due before the variation date are untouched
	for i := 0; i <= 3; i++ {
		assert.True(t, result.Schedule.Periods[i].TotalDue.Equal(baseline.Periods[i].TotalDue), "period %d", i)
	}

	// the re-amortized tail accrues at the higher rate
	for _, n := range []int{4, 5, 6} {
		p := result.Schedule.PeriodByNumber(n)
		require.NotNil(t, p)
		assert.True(t, p.Interest.GreaterThan(baseline.PeriodByNumber(n).Interest), "period %d interest", n)
	}

	last := result.Schedule.LastRepayment()
	require.NotNil(t, last)
	assert.True(t, last.OutstandingAfter.IsZero())
}

func TestReplayReappliesChargesAfterRegeneration(t *testing.T) {
	terms := monthlyTerms("100", "7", 6)
	businessDate := date(2024, 6, 1)

	ops := []domain.ChangeOperation{
		chargeOp(date(2024, 2, 15), date(2024, 2, 15), false, "10"),
		domain.NewTermVariationOp(date(2024, 4, 2), decPtr("12")),
	}

	result, err := testReprocessor().Replay(terms, nil, ops, businessDate)
	require.NoError(t, err)

	// the charge landed before regeneration on a period the regeneration kept;
	// re-application must not double it
	second := result.Schedule.PeriodByNumber(2)
	require.NotNil(t, second)
	assert.True(t, second.Fee.Equal(dec("10")), "fee %s", second.Fee)
	assert.True(t, second.TotalDue.Equal(dec("27.01")), "total due %s", second.TotalDue)

	acc := result.Accumulators[2]
	require.NotNil(t, acc)
	assert.True(t, acc.FeeDue.Equal(dec("10")))
}

func TestReplayTransactionPrepaysPrincipal(t *testing.T) {
	terms := monthlyTerms("1200", "0", 12)
	businessDate := date(2024, 6, 1)

	createdAt := date(2024, 4, 15).Add(10 * time.Hour)
	ops := []domain.ChangeOperation{
		domain.NewTransactionOp(date(2024, 4, 15), date(2024, 4, 15), &createdAt, dec("100")),
	}

	result, err := testReprocessor().Replay(terms, nil, ops, businessDate)
	require.NoError(t, err)

	repayments := result.Schedule.Repayments()
	require.Len(t, repayments, 12)

	for i := 0; i < 3; i++ {
		assert.True(t, repayments[i].Principal.Equal(dec("100")), "kept period %d", i+1)
	}

	sum := decimal.Zero
	for _, p := range repayments {
		sum = sum.Add(p.Principal)
	}
	assert.True(t, sum.Equal(dec("1100")), "principal sum %s", sum)
	assert.True(t, repayments[len(repayments)-1].OutstandingAfter.IsZero())
}

func TestReplayIsOrderInsensitive(t *testing.T) {
	terms := monthlyTerms("100", "7", 6)
	businessDate := date(2024, 6, 1)

	charge := chargeOp(date(2024, 2, 15), date(2024, 2, 15), false, "10")
	variation := domain.NewTermVariationOp(date(2024, 4, 2), decPtr("12"))
	createdAt := date(2024, 3, 10).Add(8 * time.Hour)
	tx := domain.NewTransactionOp(date(2024, 3, 10), date(2024, 3, 10), &createdAt, dec("20"))

	forward, err := testReprocessor().Replay(terms, nil, []domain.ChangeOperation{charge, variation, tx}, businessDate)
	require.NoError(t, err)

	reversed, err := testReprocessor().Replay(terms, nil, []domain.ChangeOperation{tx, variation, charge}, businessDate)
	require.NoError(t, err)

	require.Len(t, reversed.Schedule.Periods, len(forward.Schedule.Periods))
	for i := range forward.Schedule.Periods {
		a, b := forward.Schedule.Periods[i], reversed.Schedule.Periods[i]
		assert.True(t, a.TotalDue.Equal(b.TotalDue), "period %d total due %s vs %s", i, a.TotalDue, b.TotalDue)
		assert.True(t, a.Principal.Equal(b.Principal), "period %d principal", i)
		assert.True(t, a.Interest.Equal(b.Interest), "period %d interest", i)
		assert.True(t, a.Fee.Equal(b.Fee), "period %d fee", i)
	}
	assert.True(t, forward.Terms.AnnualNominalRate.Equal(reversed.Terms.AnnualNominalRate))
}
