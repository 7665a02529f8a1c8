package repository

import (
	"context"

	"github.com/wicaksana/loan-engine/internal/domain"
)

// LoanRepository defines the interface for loan and schedule data operations
type LoanRepository interface {
	// Create creates a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByLoanID retrieves a loan by its loan ID
	GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error)

	// Update updates a loan
	Update(ctx context.Context, loan *domain.Loan) error

	// ReplacePeriods deletes and re-inserts the schedule periods of a loan
	ReplacePeriods(ctx context.Context, loanID string, periods []*domain.LoanPeriod) error

	// GetPeriodsByLoanID retrieves the stored schedule periods of a loan
	GetPeriodsByLoanID(ctx context.Context, loanID string) ([]*domain.LoanPeriod, error)

	// ListActiveLoanIDs lists the IDs of loans still open for reprocessing
	ListActiveLoanIDs(ctx context.Context) ([]string, error)
}

// EventRepository defines the interface for the loan mutation records that
// feed the replay timeline
type EventRepository interface {
	// CreateCharge stores a charge record
	CreateCharge(ctx context.Context, charge *domain.Charge) error

	// CreateTransaction stores a transaction record
	CreateTransaction(ctx context.Context, tx *domain.LoanTransaction) error

	// CreateTermVariation stores a term variation record
	CreateTermVariation(ctx context.Context, variation *domain.TermVariation) error

	// GetChargesByLoanID retrieves all charges for a loan
	GetChargesByLoanID(ctx context.Context, loanID string) ([]*domain.Charge, error)

	// GetTransactionsByLoanID retrieves all transactions for a loan
	GetTransactionsByLoanID(ctx context.Context, loanID string) ([]*domain.LoanTransaction, error)

	// GetTermVariationsByLoanID retrieves all term variations for a loan
	GetTermVariationsByLoanID(ctx context.Context, loanID string) ([]*domain.TermVariation, error)
}
