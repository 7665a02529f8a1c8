package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusActive = "active"
	LoanStatusClosed = "closed"
)

// Day count conventions. Unrecognized values fall back to DaysInYear365 /
// DaysInMonth30 in the daycount package.
type DaysInYearType string

const (
	DaysInYear360    DaysInYearType = "DAYS_360"
	DaysInYear364    DaysInYearType = "DAYS_364"
	DaysInYear365    DaysInYearType = "DAYS_365"
	DaysInYearActual DaysInYearType = "ACTUAL"
)

type DaysInMonthType string

const (
	DaysInMonth30     DaysInMonthType = "DAYS_30"
	DaysInMonthActual DaysInMonthType = "ACTUAL"
)

type FrequencyUnit string

const (
	FrequencyDays   FrequencyUnit = "DAYS"
	FrequencyWeeks  FrequencyUnit = "WEEKS"
	FrequencyMonths FrequencyUnit = "MONTHS"
)

// RepaymentFrequency is the spacing between repayment periods, e.g. every 1 MONTHS.
type RepaymentFrequency struct {
	Every int           `json:"every"`
	Unit  FrequencyUnit `json:"unit"`
}

// Currency carries the precision metadata the engine rounds against.
// A zero RoundingIncrement means plain rounding to DecimalPlaces.
type Currency struct {
	Code              string          `json:"code"`
	DecimalPlaces     int32           `json:"decimal_places"`
	RoundingIncrement decimal.Decimal `json:"rounding_increment"`
}

// LoanTerms is the immutable input to schedule generation. Construct it once
// per loan; reprocessing with changed terms builds a fresh value.
type LoanTerms struct {
	Currency               Currency
	Principal              decimal.Decimal
	AnnualNominalRate      decimal.Decimal
	NumRepayments          int
	Frequency              RepaymentFrequency
	DaysInYear             DaysInYearType
	DaysInMonth            DaysInMonthType
	DownPaymentPercentage  decimal.Decimal
	DisbursementDate       time.Time
	FixedLengthDays        int // 0 means derive period length from Frequency
	InterestOnDisbursement bool
}

// Loan is the persisted loan entity.
type Loan struct {
	ID                    uuid.UUID       `json:"id" db:"id"`
	LoanID                string          `json:"loan_id" db:"loan_id"`
	CurrencyCode          string          `json:"currency_code" db:"currency_code"`
	CurrencyDigits        int32           `json:"currency_digits" db:"currency_digits"`
	Principal             decimal.Decimal `json:"principal" db:"principal"`
	AnnualNominalRate     decimal.Decimal `json:"annual_nominal_rate" db:"annual_nominal_rate"`
	NumRepayments         int             `json:"num_repayments" db:"num_repayments"`
	RepaymentEvery        int             `json:"repayment_every" db:"repayment_every"`
	RepaymentUnit         FrequencyUnit   `json:"repayment_unit" db:"repayment_unit"`
	DaysInYear            DaysInYearType  `json:"days_in_year" db:"days_in_year"`
	DaysInMonth           DaysInMonthType `json:"days_in_month" db:"days_in_month"`
	DownPaymentPercentage decimal.Decimal `json:"down_payment_percentage" db:"down_payment_percentage"`
	DisbursementDate      time.Time       `json:"disbursement_date" db:"disbursement_date"`
	Status                string          `json:"status" db:"status"`
	CreatedAt             time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at" db:"updated_at"`
}

// Terms rebuilds the engine input value from the persisted columns.
func (l *Loan) Terms() LoanTerms {
	return LoanTerms{
		Currency: Currency{
			Code:          l.CurrencyCode,
			DecimalPlaces: l.CurrencyDigits,
		},
		Principal:             l.Principal,
		AnnualNominalRate:     l.AnnualNominalRate,
		NumRepayments:         l.NumRepayments,
		Frequency:             RepaymentFrequency{Every: l.RepaymentEvery, Unit: l.RepaymentUnit},
		DaysInYear:            l.DaysInYear,
		DaysInMonth:           l.DaysInMonth,
		DownPaymentPercentage: l.DownPaymentPercentage,
		DisbursementDate:      l.DisbursementDate,
	}
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	LoanID                string          `json:"loan_id" validate:"required"`
	CurrencyCode          string          `json:"currency_code" validate:"required,len=3"`
	CurrencyDigits        int32           `json:"currency_digits" validate:"gte=0,lte=6"`
	Principal             decimal.Decimal `json:"principal" validate:"required"`
	AnnualNominalRate     decimal.Decimal `json:"annual_nominal_rate"`
	NumRepayments         int             `json:"num_repayments" validate:"required,gt=0"`
	RepaymentEvery        int             `json:"repayment_every" validate:"required,gt=0"`
	RepaymentUnit         FrequencyUnit   `json:"repayment_unit" validate:"required,oneof=DAYS WEEKS MONTHS"`
	DaysInYear            DaysInYearType  `json:"days_in_year" validate:"omitempty,oneof=DAYS_360 DAYS_364 DAYS_365 ACTUAL"`
	DaysInMonth           DaysInMonthType `json:"days_in_month" validate:"omitempty,oneof=DAYS_30 ACTUAL"`
	DownPaymentPercentage decimal.Decimal `json:"down_payment_percentage"`
	DisbursementDate      string          `json:"disbursement_date" validate:"required,datetime=2006-01-02"`
}

type AddChargeRequest struct {
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	IsPenalty bool            `json:"is_penalty"`
	DueDate   string          `json:"due_date" validate:"required,datetime=2006-01-02"`
}

type RecordTransactionRequest struct {
	Amount          decimal.Decimal `json:"amount" validate:"required"`
	TransactionDate string          `json:"transaction_date" validate:"required,datetime=2006-01-02"`
}

type TermVariationRequest struct {
	ApplicableFrom    string           `json:"applicable_from" validate:"required,datetime=2006-01-02"`
	AnnualNominalRate *decimal.Decimal `json:"annual_nominal_rate"`
}

type CreateLoanResponse struct {
	Loan     *Loan     `json:"loan"`
	Schedule *Schedule `json:"schedule"`
}

type OutstandingResponse struct {
	LoanID      string          `json:"loan_id"`
	Outstanding decimal.Decimal `json:"outstanding"`
}
