// Package charge distributes resolved charge amounts into the fee/penalty
// buckets of the correct installment. Amounts arriving here are already flat
// currency amounts; percentage-based charge types are resolved upstream.
package charge

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wicaksana/loan-engine/internal/domain"
	"github.com/wicaksana/loan-engine/internal/ratemath"
)

// Allocator places charges onto a time-ordered installment list.
type Allocator struct {
	rounding ratemath.RoundingMode
}

func NewAllocator(rounding ratemath.RoundingMode) *Allocator {
	return &Allocator{rounding: rounding}
}

// Allocate finds the installment whose [from, due] window contains the charge
// due date and returns the delta to apply to it. A due date before the first
// window clamps to the first installment, one after the last window clamps to
// the last; date skew from upstream is tolerated, never an error.
//
// The caller merges the delta into its period-indexed accumulator map and
// into the period itself (ApplyToPeriod); the allocator holds no state, so
// re-running the same charge against the same initial installments yields the
// same delta.
func (a *Allocator) Allocate(currency domain.Currency, referenceDate time.Time, installments []*domain.Period, op domain.ChangeOperation) domain.AllocationDelta {
	target := a.targetInstallment(installments, chargeDate(op, referenceDate))
	if target == nil {
		return domain.AllocationDelta{}
	}

	amount := ratemath.RoundToCurrency(op.Amount, currency, a.rounding)
	delta := domain.AllocationDelta{PeriodNumber: target.Number}
	if op.IsPenalty {
		delta.PenaltyDue = amount
	} else {
		delta.FeeDue = amount
	}
	return delta
}

// Waive moves up to amount from the due bucket into the waived bucket.
func (a *Allocator) Waive(acc domain.InstallmentAccumulator, periodNumber int, isPenalty bool, amount decimal.Decimal) domain.AllocationDelta {
	return moveOut(acc, periodNumber, isPenalty, amount, true)
}

// WriteOff moves up to amount from the due bucket into the written-off bucket.
func (a *Allocator) WriteOff(acc domain.InstallmentAccumulator, periodNumber int, isPenalty bool, amount decimal.Decimal) domain.AllocationDelta {
	return moveOut(acc, periodNumber, isPenalty, amount, false)
}

// ApplyToPeriod folds an allocation delta into the period's own fee/penalty
// columns and its total due.
func ApplyToPeriod(p *domain.Period, d domain.AllocationDelta) {
	net := d.FeeDue.Add(d.PenaltyDue)
	p.Fee = p.Fee.Add(d.FeeDue)
	p.Penalty = p.Penalty.Add(d.PenaltyDue)
	p.TotalDue = p.TotalDue.Add(net)
}

func (a *Allocator) targetInstallment(installments []*domain.Period, due time.Time) *domain.Period {
	var last *domain.Period
	for _, p := range installments {
		if p.Kind != domain.PeriodRepayment {
			continue
		}
		last = p
		if !due.After(p.DueDate) {
			return p
		}
	}
	return last
}

func chargeDate(op domain.ChangeOperation, referenceDate time.Time) time.Time {
	if op.DueDate.IsZero() {
		return referenceDate
	}
	return op.DueDate
}

func moveOut(acc domain.InstallmentAccumulator, periodNumber int, isPenalty bool, amount decimal.Decimal, waive bool) domain.AllocationDelta {
	delta := domain.AllocationDelta{PeriodNumber: periodNumber}
	due := acc.FeeDue
	if isPenalty {
		due = acc.PenaltyDue
	}
	if amount.GreaterThan(due) {
		amount = due
	}
	switch {
	case isPenalty && waive:
		delta.PenaltyDue = amount.Neg()
		delta.PenaltyWaived = amount
	case isPenalty:
		delta.PenaltyDue = amount.Neg()
		delta.PenaltyWrittenOff = amount
	case waive:
		delta.FeeDue = amount.Neg()
		delta.FeeWaived = amount
	default:
		delta.FeeDue = amount.Neg()
		delta.FeeWrittenOff = amount
	}
	return delta
}
