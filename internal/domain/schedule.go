package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PeriodKind string

const (
	PeriodDisbursement PeriodKind = "disbursement"
	PeriodDownPayment  PeriodKind = "down_payment"
	PeriodRepayment    PeriodKind = "repayment"
)

// Period is one entry of a loan schedule. Number is 0 for the disbursement
// period and strictly increasing from 1 otherwise. Interest, Fee, Penalty and
// TotalDue are only meaningful on repayment periods.
type Period struct {
	Kind                  PeriodKind      `json:"kind"`
	Number                int             `json:"number"`
	FromDate              time.Time       `json:"from_date"`
	DueDate               time.Time       `json:"due_date"`
	Principal             decimal.Decimal `json:"principal"`
	Interest              decimal.Decimal `json:"interest"`
	Fee                   decimal.Decimal `json:"fee"`
	Penalty               decimal.Decimal `json:"penalty"`
	TotalDue              decimal.Decimal `json:"total_due"`
	OutstandingAfter      decimal.Decimal `json:"outstanding_after"`
	TotalOutstandingAfter decimal.Decimal `json:"total_outstanding_after"`
}

// Schedule owns its ordered period list together with the computed totals.
type Schedule struct {
	Periods        []*Period       `json:"periods"`
	TotalDisbursed decimal.Decimal `json:"total_disbursed"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
	TotalRepayment decimal.Decimal `json:"total_repayment"`
	LoanTermDays   int             `json:"loan_term_days"`
}

// Repayments returns the repayment periods in schedule order.
func (s *Schedule) Repayments() []*Period {
	out := make([]*Period, 0, len(s.Periods))
	for _, p := range s.Periods {
		if p.Kind == PeriodRepayment {
			out = append(out, p)
		}
	}
	return out
}

// LastRepayment returns the final repayment period, or nil for an empty schedule.
func (s *Schedule) LastRepayment() *Period {
	var last *Period
	for _, p := range s.Periods {
		if p.Kind == PeriodRepayment {
			last = p
		}
	}
	return last
}

// PeriodByNumber returns the repayment or down-payment period with the given
// number, or nil.
func (s *Schedule) PeriodByNumber(n int) *Period {
	for _, p := range s.Periods {
		if p.Kind != PeriodDisbursement && p.Number == n {
			return p
		}
	}
	return nil
}

// LoanPeriod is the persisted form of a schedule period.
type LoanPeriod struct {
	ID                    uuid.UUID       `json:"id" db:"id"`
	LoanID                string          `json:"loan_id" db:"loan_id"`
	Kind                  PeriodKind      `json:"kind" db:"kind"`
	PeriodNumber          int             `json:"period_number" db:"period_number"`
	FromDate              time.Time       `json:"from_date" db:"from_date"`
	DueDate               time.Time       `json:"due_date" db:"due_date"`
	Principal             decimal.Decimal `json:"principal" db:"principal"`
	Interest              decimal.Decimal `json:"interest" db:"interest"`
	Fee                   decimal.Decimal `json:"fee" db:"fee"`
	Penalty               decimal.Decimal `json:"penalty" db:"penalty"`
	TotalDue              decimal.Decimal `json:"total_due" db:"total_due"`
	OutstandingAfter      decimal.Decimal `json:"outstanding_after" db:"outstanding_after"`
	TotalOutstandingAfter decimal.Decimal `json:"total_outstanding_after" db:"total_outstanding_after"`
	CreatedAt             time.Time       `json:"created_at" db:"created_at"`
}

// ToLoanPeriods converts the schedule into persistable rows for one loan.
func (s *Schedule) ToLoanPeriods(loanID string, now time.Time) []*LoanPeriod {
	rows := make([]*LoanPeriod, 0, len(s.Periods))
	for _, p := range s.Periods {
		rows = append(rows, &LoanPeriod{
			ID:                    uuid.New(),
			LoanID:                loanID,
			Kind:                  p.Kind,
			PeriodNumber:          p.Number,
			FromDate:              p.FromDate,
			DueDate:               p.DueDate,
			Principal:             p.Principal,
			Interest:              p.Interest,
			Fee:                   p.Fee,
			Penalty:               p.Penalty,
			TotalDue:              p.TotalDue,
			OutstandingAfter:      p.OutstandingAfter,
			TotalOutstandingAfter: p.TotalOutstandingAfter,
			CreatedAt:             now,
		})
	}
	return rows
}

type ScheduleResponse struct {
	LoanID   string    `json:"loan_id"`
	Schedule *Schedule `json:"schedule"`
}
