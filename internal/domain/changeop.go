package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ChangeOpKind string

const (
	OpTermVariation ChangeOpKind = "term_variation"
	OpCharge        ChangeOpKind = "charge"
	OpTransaction   ChangeOpKind = "transaction"
)

// ChangeOperation is one closed sum over the three mutation event kinds that
// can hit a loan after origination. Values are ephemeral: built from the
// stored records, sorted into replay order, applied, discarded.
//
// CreatedAt is nil only for term variations, which carry no audit timestamp.
type ChangeOperation struct {
	Kind ChangeOpKind

	// term variation
	ApplicableFrom    time.Time
	AnnualNominalRate *decimal.Decimal // nil keeps the current rate

	// charge
	DueDate   time.Time
	IsPenalty bool

	// transaction
	TransactionDate time.Time

	// charge + transaction
	SubmittedOn time.Time
	CreatedAt   *time.Time
	Amount      decimal.Decimal
}

func NewTermVariationOp(applicableFrom time.Time, rate *decimal.Decimal) ChangeOperation {
	return ChangeOperation{
		Kind:              OpTermVariation,
		ApplicableFrom:    applicableFrom,
		AnnualNominalRate: rate,
	}
}

func NewChargeOp(dueDate, submittedOn time.Time, createdAt *time.Time, isPenalty bool, amount decimal.Decimal) ChangeOperation {
	return ChangeOperation{
		Kind:        OpCharge,
		DueDate:     dueDate,
		SubmittedOn: submittedOn,
		CreatedAt:   createdAt,
		IsPenalty:   isPenalty,
		Amount:      amount,
	}
}

func NewTransactionOp(transactionDate, submittedOn time.Time, createdAt *time.Time, amount decimal.Decimal) ChangeOperation {
	return ChangeOperation{
		Kind:            OpTransaction,
		TransactionDate: transactionDate,
		SubmittedOn:     submittedOn,
		CreatedAt:       createdAt,
		Amount:          amount,
	}
}

// EffectiveDate is the date the operation acts on the schedule: the charge due
// date, the transaction date, or the variation's applicable-from date.
func (op ChangeOperation) EffectiveDate() time.Time {
	switch op.Kind {
	case OpCharge:
		return op.DueDate
	case OpTransaction:
		return op.TransactionDate
	default:
		return op.ApplicableFrom
	}
}

// Persisted mutation records. Each maps 1:1 onto a ChangeOperation at replay time.

type Charge struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	LoanID      string          `json:"loan_id" db:"loan_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	IsPenalty   bool            `json:"is_penalty" db:"is_penalty"`
	DueDate     time.Time       `json:"due_date" db:"due_date"`
	SubmittedOn time.Time       `json:"submitted_on" db:"submitted_on"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

func (c *Charge) Operation() ChangeOperation {
	createdAt := c.CreatedAt
	return NewChargeOp(c.DueDate, c.SubmittedOn, &createdAt, c.IsPenalty, c.Amount)
}

type LoanTransaction struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	LoanID          string          `json:"loan_id" db:"loan_id"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	TransactionDate time.Time       `json:"transaction_date" db:"transaction_date"`
	SubmittedOn     time.Time       `json:"submitted_on" db:"submitted_on"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

func (t *LoanTransaction) Operation() ChangeOperation {
	createdAt := t.CreatedAt
	return NewTransactionOp(t.TransactionDate, t.SubmittedOn, &createdAt, t.Amount)
}

type TermVariation struct {
	ID                uuid.UUID        `json:"id" db:"id"`
	LoanID            string           `json:"loan_id" db:"loan_id"`
	ApplicableFrom    time.Time        `json:"applicable_from" db:"applicable_from"`
	AnnualNominalRate *decimal.Decimal `json:"annual_nominal_rate" db:"annual_nominal_rate"`
}

func (v *TermVariation) Operation() ChangeOperation {
	return NewTermVariationOp(v.ApplicableFrom, v.AnnualNominalRate)
}
