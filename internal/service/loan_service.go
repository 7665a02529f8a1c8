package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/wicaksana/loan-engine/internal/config"
	"github.com/wicaksana/loan-engine/internal/domain"
	"github.com/wicaksana/loan-engine/internal/repository"
	"github.com/wicaksana/loan-engine/internal/schedule"
	customError "github.com/wicaksana/loan-engine/pkg/errors"
)

const (
	scheduleCacheKeyFormat = "loan:%s:schedule"
	scheduleCacheTTL       = 24 * time.Hour
	dateLayout             = "2006-01-02"
)

type LoanService struct {
	LoanRepo    repository.LoanRepository
	EventRepo   repository.EventRepository
	redis       *redis.Client
	config      *config.Config
	generator   *schedule.Generator
	reprocessor *schedule.Reprocessor
}

func NewLoanService(
	loanRepo repository.LoanRepository,
	eventRepo repository.EventRepository,
	redisClient *redis.Client,
	cfg *config.Config,
) *LoanService {
	gen := schedule.NewGenerator(cfg.MathContext())
	return &LoanService{
		LoanRepo:    loanRepo,
		EventRepo:   eventRepo,
		redis:       redisClient,
		config:      cfg,
		generator:   gen,
		reprocessor: schedule.NewReprocessor(gen),
	}
}

// CreateLoan creates a new loan and generates its repayment schedule
func (s *LoanService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, *domain.Schedule, error) {
	// 1. Check if loan already exists
	existingLoan, err := s.LoanRepo.GetByLoanID(ctx, request.LoanID)
	if err == nil && existingLoan != nil {
		return nil, nil, customError.WrapLoanAlreadyExists(request.LoanID)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	disbursementDate, err := time.Parse(dateLayout, request.DisbursementDate)
	if err != nil {
		return nil, nil, err
	}

	// 2. Build the loan entity, filling convention defaults from config
	daysInYear := request.DaysInYear
	if daysInYear == "" {
		daysInYear = s.config.DefaultDaysInYear()
	}
	daysInMonth := request.DaysInMonth
	if daysInMonth == "" {
		daysInMonth = s.config.DefaultDaysInMonth()
	}

	now := time.Now()
	loan := &domain.Loan{
		ID:                    uuid.New(),
		LoanID:                request.LoanID,
		CurrencyCode:          request.CurrencyCode,
		CurrencyDigits:        request.CurrencyDigits,
		Principal:             request.Principal,
		AnnualNominalRate:     request.AnnualNominalRate,
		NumRepayments:         request.NumRepayments,
		RepaymentEvery:        request.RepaymentEvery,
		RepaymentUnit:         request.RepaymentUnit,
		DaysInYear:            daysInYear,
		DaysInMonth:           daysInMonth,
		DownPaymentPercentage: request.DownPaymentPercentage,
		DisbursementDate:      disbursementDate,
		Status:                domain.LoanStatusActive,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	// 3. Generate the progressive schedule
	generated, err := s.generator.Generate(loan.Terms())
	if err != nil {
		return nil, nil, err
	}

	// 4. Persist loan and periods
	if err = s.LoanRepo.Create(ctx, loan); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}
	if err = s.LoanRepo.ReplacePeriods(ctx, loan.LoanID, generated.ToLoanPeriods(loan.LoanID, now)); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	s.cacheSchedule(ctx, loan.LoanID, generated)

	return loan, generated, nil
}

// GetSchedule returns the current repayment schedule for a loan
func (s *LoanService) GetSchedule(ctx context.Context, loanID string) (*domain.Schedule, error) {
	if cached := s.cachedSchedule(ctx, loanID); cached != nil {
		return cached, nil
	}

	loan, err := s.LoanRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(loanID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	rows, err := s.LoanRepo.GetPeriodsByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if len(rows) == 0 {
		return nil, customError.WrapScheduleNotFound(loanID)
	}

	sched := scheduleFromRows(loan, rows)
	s.cacheSchedule(ctx, loanID, sched)
	return sched, nil
}

// GetOutstanding returns the total amount still owed on a loan
func (s *LoanService) GetOutstanding(ctx context.Context, loanID string) (decimal.Decimal, error) {
	sched, err := s.GetSchedule(ctx, loanID)
	if err != nil {
		return decimal.Zero, err
	}

	outstanding := decimal.Zero
	for _, p := range sched.Periods {
		if p.Kind == domain.PeriodDisbursement {
			continue
		}
		outstanding = outstanding.Add(p.TotalDue)
	}
	return outstanding, nil
}

// AddCharge records a charge and reprocesses the loan's schedule
func (s *LoanService) AddCharge(ctx context.Context, loanID string, request *domain.AddChargeRequest) (*domain.Charge, []domain.AllocationDelta, error) {
	loan, err := s.activeLoan(ctx, loanID)
	if err != nil {
		return nil, nil, err
	}

	dueDate, err := time.Parse(dateLayout, request.DueDate)
	if err != nil {
		return nil, nil, err
	}
	if !request.Amount.IsPositive() {
		return nil, nil, customError.ErrInvalidChargeAmount
	}

	now := time.Now()
	charge := &domain.Charge{
		ID:          uuid.New(),
		LoanID:      loanID,
		Amount:      request.Amount,
		IsPenalty:   request.IsPenalty,
		DueDate:     dueDate,
		SubmittedOn: truncateToDay(now),
		CreatedAt:   now,
	}
	if err = s.EventRepo.CreateCharge(ctx, charge); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	result, err := s.reprocess(ctx, loan, truncateToDay(now))
	if err != nil {
		return nil, nil, err
	}

	return charge, result.Deltas, nil
}

// RecordTransaction records a repayment transaction and reprocesses the schedule
func (s *LoanService) RecordTransaction(ctx context.Context, loanID string, request *domain.RecordTransactionRequest) (*domain.LoanTransaction, error) {
	loan, err := s.activeLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	transactionDate, err := time.Parse(dateLayout, request.TransactionDate)
	if err != nil {
		return nil, err
	}
	if !request.Amount.IsPositive() {
		return nil, customError.ErrInvalidTransaction
	}

	now := time.Now()
	tx := &domain.LoanTransaction{
		ID:              uuid.New(),
		LoanID:          loanID,
		Amount:          request.Amount,
		TransactionDate: transactionDate,
		SubmittedOn:     truncateToDay(now),
		CreatedAt:       now,
	}
	if err = s.EventRepo.CreateTransaction(ctx, tx); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if _, err = s.reprocess(ctx, loan, truncateToDay(now)); err != nil {
		return nil, err
	}

	return tx, nil
}

// ApplyTermVariation records a rate/term change and reprocesses the schedule
func (s *LoanService) ApplyTermVariation(ctx context.Context, loanID string, request *domain.TermVariationRequest) (*domain.TermVariation, error) {
	loan, err := s.activeLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	applicableFrom, err := time.Parse(dateLayout, request.ApplicableFrom)
	if err != nil {
		return nil, err
	}

	variation := &domain.TermVariation{
		ID:                uuid.New(),
		LoanID:            loanID,
		ApplicableFrom:    applicableFrom,
		AnnualNominalRate: request.AnnualNominalRate,
	}
	if err = s.EventRepo.CreateTermVariation(ctx, variation); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	result, err := s.reprocess(ctx, loan, truncateToDay(time.Now()))
	if err != nil {
		return nil, err
	}

	// keep the loan row aligned with the effective terms
	loan.AnnualNominalRate = result.Terms.AnnualNominalRate
	loan.UpdatedAt = time.Now()
	if err = s.LoanRepo.Update(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return variation, nil
}

// ReprocessLoan replays a loan's full mutation history against a freshly
// generated schedule. The scheduler runs this nightly for active loans.
func (s *LoanService) ReprocessLoan(ctx context.Context, loanID string, businessDate time.Time) error {
	loan, err := s.activeLoan(ctx, loanID)
	if err != nil {
		return err
	}
	_, err = s.reprocess(ctx, loan, businessDate)
	return err
}

// ListActiveLoanIDs exposes the loans the scheduler iterates.
func (s *LoanService) ListActiveLoanIDs(ctx context.Context) ([]string, error) {
	ids, err := s.LoanRepo.ListActiveLoanIDs(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return ids, nil
}

// reprocess rebuilds the ChangeOperation set from the stored records, replays
// it, and persists the regenerated periods.
func (s *LoanService) reprocess(ctx context.Context, loan *domain.Loan, businessDate time.Time) (*schedule.ReplayResult, error) {
	ops, err := s.pendingOperations(ctx, loan.LoanID)
	if err != nil {
		return nil, err
	}

	result, err := s.reprocessor.Replay(loan.Terms(), nil, ops, businessDate)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err = s.LoanRepo.ReplacePeriods(ctx, loan.LoanID, result.Schedule.ToLoanPeriods(loan.LoanID, now)); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateSchedule(ctx, loan.LoanID)
	return result, nil
}

func (s *LoanService) pendingOperations(ctx context.Context, loanID string) ([]domain.ChangeOperation, error) {
	charges, err := s.EventRepo.GetChargesByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	transactions, err := s.EventRepo.GetTransactionsByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	variations, err := s.EventRepo.GetTermVariationsByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	ops := make([]domain.ChangeOperation, 0, len(charges)+len(transactions)+len(variations))
	for _, c := range charges {
		ops = append(ops, c.Operation())
	}
	for _, t := range transactions {
		ops = append(ops, t.Operation())
	}
	for _, v := range variations {
		ops = append(ops, v.Operation())
	}
	return ops, nil
}

func (s *LoanService) activeLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	loan, err := s.LoanRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(loanID)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	if loan.Status != domain.LoanStatusActive {
		return nil, customError.WrapLoanAlreadyClosed(loanID)
	}
	return loan, nil
}

func (s *LoanService) cachedSchedule(ctx context.Context, loanID string) *domain.Schedule {
	if s.redis == nil {
		return nil
	}
	data, err := s.redis.Get(ctx, fmt.Sprintf(scheduleCacheKeyFormat, loanID)).Bytes()
	if err != nil {
		return nil
	}
	var sched domain.Schedule
	if err := json.Unmarshal(data, &sched); err != nil {
		return nil
	}
	return &sched
}

func (s *LoanService) cacheSchedule(ctx context.Context, loanID string, sched *domain.Schedule) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(sched)
	if err != nil {
		return
	}
	s.redis.Set(ctx, fmt.Sprintf(scheduleCacheKeyFormat, loanID), data, scheduleCacheTTL)
}

func (s *LoanService) invalidateSchedule(ctx context.Context, loanID string) {
	if s.redis == nil {
		return
	}
	s.redis.Del(ctx, fmt.Sprintf(scheduleCacheKeyFormat, loanID))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// scheduleFromRows rebuilds the schedule value from its stored periods.
func scheduleFromRows(loan *domain.Loan, rows []*domain.LoanPeriod) *domain.Schedule {
	sched := &domain.Schedule{TotalDisbursed: loan.Principal}
	lastDue := loan.DisbursementDate
	for _, row := range rows {
		sched.Periods = append(sched.Periods, &domain.Period{
			Kind:                  row.Kind,
			Number:                row.PeriodNumber,
			FromDate:              row.FromDate,
			DueDate:               row.DueDate,
			Principal:             row.Principal,
			Interest:              row.Interest,
			Fee:                   row.Fee,
			Penalty:               row.Penalty,
			TotalDue:              row.TotalDue,
			OutstandingAfter:      row.OutstandingAfter,
			TotalOutstandingAfter: row.TotalOutstandingAfter,
		})
		if row.Kind != domain.PeriodDisbursement {
			sched.TotalInterest = sched.TotalInterest.Add(row.Interest)
			sched.TotalRepayment = sched.TotalRepayment.Add(row.TotalDue)
		}
		if row.DueDate.After(lastDue) {
			lastDue = row.DueDate
		}
	}
	sched.LoanTermDays = int(lastDue.Sub(truncateToDay(loan.DisbursementDate)).Hours() / 24)
	return sched
}
