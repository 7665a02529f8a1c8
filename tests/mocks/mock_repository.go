package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/wicaksana/loan-engine/internal/domain"
)

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) ReplacePeriods(ctx context.Context, loanID string, periods []*domain.LoanPeriod) error {
	args := m.Called(ctx, loanID, periods)
	return args.Error(0)
}

func (m *MockLoanRepository) GetPeriodsByLoanID(ctx context.Context, loanID string) ([]*domain.LoanPeriod, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanPeriod), args.Error(1)
}

func (m *MockLoanRepository) ListActiveLoanIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) CreateCharge(ctx context.Context, charge *domain.Charge) error {
	args := m.Called(ctx, charge)
	return args.Error(0)
}

func (m *MockEventRepository) CreateTransaction(ctx context.Context, tx *domain.LoanTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockEventRepository) CreateTermVariation(ctx context.Context, variation *domain.TermVariation) error {
	args := m.Called(ctx, variation)
	return args.Error(0)
}

func (m *MockEventRepository) GetChargesByLoanID(ctx context.Context, loanID string) ([]*domain.Charge, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Charge), args.Error(1)
}

func (m *MockEventRepository) GetTransactionsByLoanID(ctx context.Context, loanID string) ([]*domain.LoanTransaction, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanTransaction), args.Error(1)
}

func (m *MockEventRepository) GetTermVariationsByLoanID(ctx context.Context, loanID string) ([]*domain.TermVariation, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TermVariation), args.Error(1)
}
