package repository

import (
	"context"

	"github.com/wicaksana/loan-engine/internal/domain"

	"github.com/jmoiron/sqlx"
)

type eventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) CreateCharge(ctx context.Context, charge *domain.Charge) error {
	query := `
		INSERT INTO loan_charges (id, loan_id, amount, is_penalty, due_date, submitted_on, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		charge.ID,
		charge.LoanID,
		charge.Amount,
		charge.IsPenalty,
		charge.DueDate,
		charge.SubmittedOn,
		charge.CreatedAt,
	)

	return err
}

func (r *eventRepository) CreateTransaction(ctx context.Context, tx *domain.LoanTransaction) error {
	query := `
		INSERT INTO loan_transactions (id, loan_id, amount, transaction_date, submitted_on, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		tx.ID,
		tx.LoanID,
		tx.Amount,
		tx.TransactionDate,
		tx.SubmittedOn,
		tx.CreatedAt,
	)

	return err
}

func (r *eventRepository) CreateTermVariation(ctx context.Context, variation *domain.TermVariation) error {
	query := `
		INSERT INTO loan_term_variations (id, loan_id, applicable_from, annual_nominal_rate)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query,
		variation.ID,
		variation.LoanID,
		variation.ApplicableFrom,
		variation.AnnualNominalRate,
	)

	return err
}

func (r *eventRepository) GetChargesByLoanID(ctx context.Context, loanID string) ([]*domain.Charge, error) {
	query := `
		SELECT id, loan_id, amount, is_penalty, due_date, submitted_on, created_at
		FROM loan_charges
		WHERE loan_id = $1
		ORDER BY created_at
	`

	var charges []*domain.Charge
	err := r.db.SelectContext(ctx, &charges, query, loanID)
	if err != nil {
		return nil, err
	}

	return charges, nil
}

func (r *eventRepository) GetTransactionsByLoanID(ctx context.Context, loanID string) ([]*domain.LoanTransaction, error) {
	query := `
		SELECT id, loan_id, amount, transaction_date, submitted_on, created_at
		FROM loan_transactions
		WHERE loan_id = $1
		ORDER BY created_at
	`

	var transactions []*domain.LoanTransaction
	err := r.db.SelectContext(ctx, &transactions, query, loanID)
	if err != nil {
		return nil, err
	}

	return transactions, nil
}

func (r *eventRepository) GetTermVariationsByLoanID(ctx context.Context, loanID string) ([]*domain.TermVariation, error) {
	query := `
		SELECT id, loan_id, applicable_from, annual_nominal_rate
		FROM loan_term_variations
		WHERE loan_id = $1
		ORDER BY applicable_from
	`

	var variations []*domain.TermVariation
	err := r.db.SelectContext(ctx, &variations, query, loanID)
	if err != nil {
		return nil, err
	}

	return variations, nil
}
