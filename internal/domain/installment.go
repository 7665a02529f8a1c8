package domain

import "github.com/shopspring/decimal"

// InstallmentAccumulator tracks the running fee/penalty buckets of one
// installment. Due amounts only move into the waived/written-off buckets via
// an explicit waive or write-off; nothing here ever decreases otherwise.
type InstallmentAccumulator struct {
	FeeDue            decimal.Decimal `json:"fee_due"`
	FeeWaived         decimal.Decimal `json:"fee_waived"`
	FeeWrittenOff     decimal.Decimal `json:"fee_written_off"`
	PenaltyDue        decimal.Decimal `json:"penalty_due"`
	PenaltyWaived     decimal.Decimal `json:"penalty_waived"`
	PenaltyWrittenOff decimal.Decimal `json:"penalty_written_off"`
}

// AllocationDelta is the exact tuple one allocation applied to an installment,
// reported back for audit/event purposes.
type AllocationDelta struct {
	PeriodNumber      int             `json:"period_number"`
	FeeDue            decimal.Decimal `json:"fee_due"`
	FeeWaived         decimal.Decimal `json:"fee_waived"`
	FeeWrittenOff     decimal.Decimal `json:"fee_written_off"`
	PenaltyDue        decimal.Decimal `json:"penalty_due"`
	PenaltyWaived     decimal.Decimal `json:"penalty_waived"`
	PenaltyWrittenOff decimal.Decimal `json:"penalty_written_off"`
}

// Apply merges a delta into the accumulator.
func (a *InstallmentAccumulator) Apply(d AllocationDelta) {
	a.FeeDue = a.FeeDue.Add(d.FeeDue)
	a.FeeWaived = a.FeeWaived.Add(d.FeeWaived)
	a.FeeWrittenOff = a.FeeWrittenOff.Add(d.FeeWrittenOff)
	a.PenaltyDue = a.PenaltyDue.Add(d.PenaltyDue)
	a.PenaltyWaived = a.PenaltyWaived.Add(d.PenaltyWaived)
	a.PenaltyWrittenOff = a.PenaltyWrittenOff.Add(d.PenaltyWrittenOff)
}
