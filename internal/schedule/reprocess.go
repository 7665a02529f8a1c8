package schedule

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wicaksana/loan-engine/internal/charge"
	"github.com/wicaksana/loan-engine/internal/domain"
	"github.com/wicaksana/loan-engine/internal/timeline"
)

// Reprocessor merges late-arriving mutation events into a schedule. Events
// are sorted into replay order first, so a backdated charge or payment lands
// exactly where it would have had it arrived on time.
type Reprocessor struct {
	gen   *Generator
	alloc *charge.Allocator
}

func NewReprocessor(gen *Generator) *Reprocessor {
	return &Reprocessor{
		gen:   gen,
		alloc: charge.NewAllocator(gen.ctx.Rounding),
	}
}

// ReplayResult is everything a caller needs to persist after a replay.
type ReplayResult struct {
	Schedule     *domain.Schedule
	Terms        domain.LoanTerms
	Accumulators map[int]*domain.InstallmentAccumulator
	Deltas       []domain.AllocationDelta
}

// Replay applies the pending operations to the schedule in replay order.
// A term variation swaps the rate inputs and regenerates from its applicable
// date; a transaction prepays principal and re-amortizes forward; a charge is
// allocated onto its installment. Regeneration drops the fee/penalty columns
// of the rebuilt periods, so previously placed charges are re-allocated onto
// the fresh periods afterwards.
func (r *Reprocessor) Replay(terms domain.LoanTerms, base *domain.Schedule, ops []domain.ChangeOperation, businessDate time.Time) (*ReplayResult, error) {
	sorted := make([]domain.ChangeOperation, len(ops))
	copy(sorted, ops)
	timeline.Sort(sorted)

	current := base
	if current == nil {
		generated, err := r.gen.Generate(terms)
		if err != nil {
			return nil, err
		}
		current = generated
	}

	accumulators := make(map[int]*domain.InstallmentAccumulator)
	var deltas []domain.AllocationDelta
	var placedCharges []domain.ChangeOperation

	for _, op := range sorted {
		switch op.Kind {
		case domain.OpTermVariation:
			if op.AnnualNominalRate != nil {
				terms.AnnualNominalRate = *op.AnnualNominalRate
			}
			regenerated, err := r.gen.RegenerateFrom(current, terms, op.ApplicableFrom)
			if err != nil {
				return nil, err
			}
			current = regenerated
			accumulators, deltas = r.reapply(terms, current, placedCharges, businessDate)

		case domain.OpTransaction:
			regenerated, err := r.gen.ApplyPrepayment(current, terms, op.TransactionDate, op.Amount)
			if err != nil {
				return nil, err
			}
			current = regenerated
			accumulators, deltas = r.reapply(terms, current, placedCharges, businessDate)

		case domain.OpCharge:
			placedCharges = append(placedCharges, op)
			deltas = append(deltas, r.place(terms, current, accumulators, op, businessDate))
		}
	}

	r.gen.finalize(current, terms)
	return &ReplayResult{
		Schedule:     current,
		Terms:        terms,
		Accumulators: accumulators,
		Deltas:       deltas,
	}, nil
}

// place allocates one charge onto the schedule and merges its delta.
func (r *Reprocessor) place(terms domain.LoanTerms, s *domain.Schedule, accumulators map[int]*domain.InstallmentAccumulator, op domain.ChangeOperation, businessDate time.Time) domain.AllocationDelta {
	delta := r.alloc.Allocate(terms.Currency, businessDate, s.Periods, op)
	if p := s.PeriodByNumber(delta.PeriodNumber); p != nil {
		charge.ApplyToPeriod(p, delta)
	}
	acc, ok := accumulators[delta.PeriodNumber]
	if !ok {
		acc = &domain.InstallmentAccumulator{}
		accumulators[delta.PeriodNumber] = acc
	}
	acc.Apply(delta)
	return delta
}

// reapply rebuilds the accumulator map and delta list by re-allocating every
// previously placed charge onto a regenerated schedule. Charge columns are
// cleared first; kept periods still carry the pre-regeneration placements and
// would otherwise double count.
func (r *Reprocessor) reapply(terms domain.LoanTerms, s *domain.Schedule, placed []domain.ChangeOperation, businessDate time.Time) (map[int]*domain.InstallmentAccumulator, []domain.AllocationDelta) {
	for _, p := range s.Periods {
		if p.Kind == domain.PeriodDisbursement {
			continue
		}
		p.Fee = decimal.Zero
		p.Penalty = decimal.Zero
		p.TotalDue = p.Principal.Add(p.Interest)
	}

	accumulators := make(map[int]*domain.InstallmentAccumulator)
	deltas := make([]domain.AllocationDelta, 0, len(placed))
	for _, op := range placed {
		deltas = append(deltas, r.place(terms, s, accumulators, op, businessDate))
	}
	return accumulators, deltas
}
