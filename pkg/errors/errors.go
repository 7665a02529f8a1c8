package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrLoanNotFound         = errors.New("loan not found")
	ErrLoanAlreadyExists    = errors.New("loan already exists")
	ErrLoanAlreadyClosed    = errors.New("loan is already closed")
	ErrInvalidNumRepayments = errors.New("number of repayments must be greater than zero")
	ErrInvalidChargeAmount  = errors.New("invalid charge amount")
	ErrInvalidTransaction   = errors.New("invalid transaction amount")
	ErrScheduleNotFound     = errors.New("schedule not found")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeLoanNotFound         = "LOAN_NOT_FOUND"
	ErrCodeLoanAlreadyExists    = "LOAN_ALREADY_EXISTS"
	ErrCodeLoanAlreadyClosed    = "LOAN_ALREADY_CLOSED"
	ErrCodeInvalidNumRepayments = "INVALID_NUM_REPAYMENTS"
	ErrCodeInvalidChargeAmount  = "INVALID_CHARGE_AMOUNT"
	ErrCodeInvalidTransaction   = "INVALID_TRANSACTION"
	ErrCodeScheduleNotFound     = "SCHEDULE_NOT_FOUND"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
	ErrCodeCacheError           = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapLoanAlreadyExists(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanAlreadyExists,
		fmt.Sprintf("Loan with ID %s already exists", loanID),
		ErrLoanAlreadyExists,
	)
}

func WrapLoanAlreadyClosed(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanAlreadyClosed,
		fmt.Sprintf("Loan with ID %s is already closed", loanID),
		ErrLoanAlreadyClosed,
	)
}

func WrapScheduleNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeScheduleNotFound,
		fmt.Sprintf("No schedule found for loan %s", loanID),
		ErrScheduleNotFound,
	)
}

func WrapInvalidNumRepayments(n int) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidNumRepayments,
		fmt.Sprintf("Number of repayments must be positive, got %d", n),
		ErrInvalidNumRepayments,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
