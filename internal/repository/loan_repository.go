package repository

import (
	"context"
	"time"

	"github.com/wicaksana/loan-engine/internal/domain"

	"github.com/jmoiron/sqlx"
)

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (id, loan_id, currency_code, currency_digits, principal, annual_nominal_rate,
			num_repayments, repayment_every, repayment_unit, days_in_year, days_in_month,
			down_payment_percentage, disbursement_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.LoanID,
		loan.CurrencyCode,
		loan.CurrencyDigits,
		loan.Principal,
		loan.AnnualNominalRate,
		loan.NumRepayments,
		loan.RepaymentEvery,
		loan.RepaymentUnit,
		loan.DaysInYear,
		loan.DaysInMonth,
		loan.DownPaymentPercentage,
		loan.DisbursementDate,
		loan.Status,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

func (r *loanRepository) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	query := `
		SELECT id, loan_id, currency_code, currency_digits, principal, annual_nominal_rate,
			num_repayments, repayment_every, repayment_unit, days_in_year, days_in_month,
			down_payment_percentage, disbursement_date, status, created_at, updated_at
		FROM loans
		WHERE loan_id = $1
	`

	var loan domain.Loan
	err := r.db.GetContext(ctx, &loan, query, loanID)
	if err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	query := `
		UPDATE loans
		SET annual_nominal_rate = $2, num_repayments = $3, status = $4, updated_at = $5
		WHERE loan_id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.LoanID,
		loan.AnnualNominalRate,
		loan.NumRepayments,
		loan.Status,
		time.Now(),
	)

	return err
}

func (r *loanRepository) ReplacePeriods(ctx context.Context, loanID string, periods []*domain.LoanPeriod) error {
	insert := `
		INSERT INTO loan_periods (id, loan_id, kind, period_number, from_date, due_date,
			principal, interest, fee, penalty, total_due, outstanding_after, total_outstanding_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM loan_periods WHERE loan_id = $1`, loanID); err != nil {
		return err
	}

	for _, period := range periods {
		_, err = tx.ExecContext(ctx, insert,
			period.ID,
			period.LoanID,
			period.Kind,
			period.PeriodNumber,
			period.FromDate,
			period.DueDate,
			period.Principal,
			period.Interest,
			period.Fee,
			period.Penalty,
			period.TotalDue,
			period.OutstandingAfter,
			period.TotalOutstandingAfter,
			period.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *loanRepository) GetPeriodsByLoanID(ctx context.Context, loanID string) ([]*domain.LoanPeriod, error) {
	query := `
		SELECT id, loan_id, kind, period_number, from_date, due_date,
			principal, interest, fee, penalty, total_due, outstanding_after, total_outstanding_after, created_at
		FROM loan_periods
		WHERE loan_id = $1
		ORDER BY due_date, period_number
	`

	var periods []*domain.LoanPeriod
	err := r.db.SelectContext(ctx, &periods, query, loanID)
	if err != nil {
		return nil, err
	}

	return periods, nil
}

func (r *loanRepository) ListActiveLoanIDs(ctx context.Context) ([]string, error) {
	query := `SELECT loan_id FROM loans WHERE status = $1 ORDER BY loan_id`

	var ids []string
	err := r.db.SelectContext(ctx, &ids, query, domain.LoanStatusActive)
	if err != nil {
		return nil, err
	}

	return ids, nil
}
