package schedule

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wicaksana/loan-engine/internal/daycount"
	"github.com/wicaksana/loan-engine/internal/domain"
	"github.com/wicaksana/loan-engine/internal/ratemath"
	customError "github.com/wicaksana/loan-engine/pkg/errors"
)

// Generator builds progressive repayment schedules. The installment amount is
// recomputed every period against the current remaining balance and remaining
// period count, so early principal reductions re-amortize the tail.
type Generator struct {
	ctx ratemath.Context
}

func NewGenerator(ctx ratemath.Context) *Generator {
	return &Generator{ctx: ctx}
}

// Generate builds the full schedule for the given terms: a disbursement
// period, an optional down-payment period, then the repayment periods.
func (g *Generator) Generate(terms domain.LoanTerms) (*domain.Schedule, error) {
	if terms.NumRepayments <= 0 {
		return nil, customError.ErrInvalidNumRepayments
	}

	schedule := &domain.Schedule{}

	// 1. Disbursement period carries the full principal out.
	balance := terms.Principal
	schedule.Periods = append(schedule.Periods, &domain.Period{
		Kind:             domain.PeriodDisbursement,
		FromDate:         terms.DisbursementDate,
		DueDate:          terms.DisbursementDate,
		Principal:        terms.Principal,
		OutstandingAfter: balance,
	})

	// 2. Optional down payment at the disbursement date.
	number := 1
	if terms.DownPaymentPercentage.IsPositive() {
		downPayment := ratemath.RoundToCurrency(
			g.ctx.Div(terms.Principal.Mul(terms.DownPaymentPercentage), decimal.NewFromInt(100)),
			terms.Currency, g.ctx.Rounding,
		)
		balance = balance.Sub(downPayment)
		schedule.Periods = append(schedule.Periods, &domain.Period{
			Kind:             domain.PeriodDownPayment,
			Number:           number,
			FromDate:         terms.DisbursementDate,
			DueDate:          terms.DisbursementDate,
			Principal:        downPayment,
			TotalDue:         downPayment,
			OutstandingAfter: balance,
		})
		number++
	}

	// 3. Repayment periods.
	g.appendRepayments(schedule, terms, number, terms.DisbursementDate, balance, terms.NumRepayments, true)

	g.finalize(schedule, terms)
	return schedule, nil
}

// RegenerateFrom rebuilds the schedule from the first period whose due date
// is on/after the given date, reusing the already-finalized earlier periods
// unchanged.
func (g *Generator) RegenerateFrom(prev *domain.Schedule, terms domain.LoanTerms, from time.Time) (*domain.Schedule, error) {
	return g.regenerate(prev, terms, from, decimal.Zero)
}

// ApplyPrepayment reduces the outstanding balance carried into the first
// period due on/after the transaction date and re-amortizes the tail.
func (g *Generator) ApplyPrepayment(prev *domain.Schedule, terms domain.LoanTerms, transactionDate time.Time, amount decimal.Decimal) (*domain.Schedule, error) {
	return g.regenerate(prev, terms, transactionDate, amount)
}

func (g *Generator) regenerate(prev *domain.Schedule, terms domain.LoanTerms, from time.Time, balanceReduction decimal.Decimal) (*domain.Schedule, error) {
	if terms.NumRepayments <= 0 {
		return nil, customError.ErrInvalidNumRepayments
	}

	schedule := &domain.Schedule{}

	// Keep every finalized period strictly before the cut date. The
	// disbursement (and any down payment dated with it) is always kept.
	keptRepayments := 0
	balance := terms.Principal
	lastDue := terms.DisbursementDate
	nextNumber := 1
	for _, p := range prev.Periods {
		if p.Kind == domain.PeriodRepayment && !p.DueDate.Before(from) {
			break
		}
		cp := *p
		schedule.Periods = append(schedule.Periods, &cp)
		balance = p.OutstandingAfter
		lastDue = p.DueDate
		if p.Kind == domain.PeriodRepayment {
			keptRepayments++
		}
		if p.Kind != domain.PeriodDisbursement {
			nextNumber = p.Number + 1
		}
	}

	balance = balance.Sub(balanceReduction)
	if balance.IsNegative() {
		balance = decimal.Zero
	}

	remaining := terms.NumRepayments - keptRepayments
	if remaining > 0 && balance.IsPositive() {
		g.appendRepayments(schedule, terms, nextNumber, lastDue, balance, remaining, keptRepayments == 0)
	}

	g.finalize(schedule, terms)
	return schedule, nil
}

// appendRepayments runs the per-period amortization loop. firstOfLoan marks
// whether the first generated period is the loan's first repayment period,
// which matters for interest recognition on the disbursement date.
func (g *Generator) appendRepayments(schedule *domain.Schedule, terms domain.LoanTerms, startNumber int, startFrom time.Time, balance decimal.Decimal, count int, firstOfLoan bool) {
	from := startFrom
	for i := 1; i <= count; i++ {
		due := g.nextDueDate(from, terms)

		daysInYear := daycount.DaysInYear(terms.DaysInYear, due)
		dailyRate := ratemath.DailyRate(terms.AnnualNominalRate, daysInYear, g.ctx)

		periodDays := g.periodDays(terms, from, due)
		if firstOfLoan && i == 1 && terms.InterestOnDisbursement {
			periodDays++
		}

		interest := ratemath.RoundToCurrency(
			ratemath.PeriodInterest(balance, dailyRate, periodDays, g.ctx),
			terms.Currency, g.ctx.Rounding,
		)

		// Progressive: PMT runs against the current balance and the periods
		// still ahead, not the origination values.
		ratePerPeriod := g.ctx.Mul(dailyRate, decimal.NewFromInt(int64(periodDays)))
		remaining := count - i + 1
		installment := ratemath.RoundToCurrency(
			ratemath.PMT(ratePerPeriod, remaining, balance, decimal.Zero, false, g.ctx).Neg(),
			terms.Currency, g.ctx.Rounding,
		)

		principalDue := installment.Sub(interest)
		if principalDue.IsNegative() {
			principalDue = decimal.Zero
		}
		if i == count || principalDue.GreaterThan(balance) {
			// final period absorbs the rounding residue so the balance
			// lands on exactly zero
			principalDue = balance
		}

		balance = balance.Sub(principalDue)
		schedule.Periods = append(schedule.Periods, &domain.Period{
			Kind:             domain.PeriodRepayment,
			Number:           startNumber,
			FromDate:         from,
			DueDate:          due,
			Principal:        principalDue,
			Interest:         interest,
			Fee:              decimal.Zero,
			Penalty:          decimal.Zero,
			TotalDue:         principalDue.Add(interest),
			OutstandingAfter: balance,
		})
		startNumber++
		from = due

		if balance.IsZero() {
			break
		}
	}
}

// periodDays is the interest day count of one period. Under DAYS_30 with a
// monthly frequency the count is conventional (30 per month); otherwise it is
// the calendar distance between the period boundaries.
func (g *Generator) periodDays(terms domain.LoanTerms, from, due time.Time) int {
	if terms.Frequency.Unit == domain.FrequencyMonths && terms.DaysInMonth == domain.DaysInMonth30 {
		return terms.Frequency.Every * 30
	}
	return daycount.DaysBetween(from, due)
}

func (g *Generator) nextDueDate(from time.Time, terms domain.LoanTerms) time.Time {
	if terms.FixedLengthDays > 0 {
		return from.AddDate(0, 0, terms.FixedLengthDays)
	}
	switch terms.Frequency.Unit {
	case domain.FrequencyMonths:
		return from.AddDate(0, terms.Frequency.Every, 0)
	case domain.FrequencyWeeks:
		return from.AddDate(0, 0, 7*terms.Frequency.Every)
	default:
		return from.AddDate(0, 0, terms.Frequency.Every)
	}
}

// finalize recomputes schedule totals and the remaining-owed column.
func (g *Generator) finalize(schedule *domain.Schedule, terms domain.LoanTerms) {
	totalInterest := decimal.Zero
	totalRepayment := decimal.Zero
	for _, p := range schedule.Periods {
		if p.Kind == domain.PeriodDisbursement {
			continue
		}
		totalInterest = totalInterest.Add(p.Interest)
		totalRepayment = totalRepayment.Add(p.TotalDue)
	}

	// remaining principal+interest+fee+penalty owed after each period
	owed := decimal.Zero
	for i := len(schedule.Periods) - 1; i >= 0; i-- {
		p := schedule.Periods[i]
		p.TotalOutstandingAfter = owed
		if p.Kind != domain.PeriodDisbursement {
			owed = owed.Add(p.TotalDue)
		}
	}

	schedule.TotalDisbursed = terms.Principal
	schedule.TotalInterest = totalInterest
	schedule.TotalRepayment = totalRepayment

	lastDue := terms.DisbursementDate
	if n := len(schedule.Periods); n > 0 {
		lastDue = schedule.Periods[n-1].DueDate
	}
	schedule.LoanTermDays = daycount.DaysBetween(terms.DisbursementDate, lastDue)
}
