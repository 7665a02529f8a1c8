package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/wicaksana/loan-engine/internal/domain"
	"github.com/wicaksana/loan-engine/internal/service"
	customError "github.com/wicaksana/loan-engine/pkg/errors"
	"github.com/wicaksana/loan-engine/pkg/response"
)

type LoanHandler struct {
	service   *service.LoanService
	validator *validator.Validate
}

func NewLoanHandler(service *service.LoanService) *LoanHandler {
	return &LoanHandler{
		service:   service,
		validator: validator.New(),
	}
}

// CreateLoan handles POST /api/v1/loans
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	loan, schedule, err := h.service.CreateLoan(r.Context(), &request)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.Created(w, &domain.CreateLoanResponse{Loan: loan, Schedule: schedule})
}

// GetSchedule handles GET /api/v1/loans/{loanId}/schedule
func (h *LoanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	schedule, err := h.service.GetSchedule(r.Context(), loanID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.Success(w, &domain.ScheduleResponse{LoanID: loanID, Schedule: schedule})
}

// GetOutstanding handles GET /api/v1/loans/{loanId}/outstanding
func (h *LoanHandler) GetOutstanding(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	outstanding, err := h.service.GetOutstanding(r.Context(), loanID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.Success(w, &domain.OutstandingResponse{LoanID: loanID, Outstanding: outstanding})
}

// AddCharge handles POST /api/v1/loans/{loanId}/charges
func (h *LoanHandler) AddCharge(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	var request domain.AddChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	charge, deltas, err := h.service.AddCharge(r.Context(), loanID, &request)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.Created(w, map[string]interface{}{
		"charge": charge,
		"deltas": deltas,
	})
}

// RecordTransaction handles POST /api/v1/loans/{loanId}/transactions
func (h *LoanHandler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	var request domain.RecordTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	tx, err := h.service.RecordTransaction(r.Context(), loanID, &request)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.Created(w, tx)
}

// ApplyTermVariation handles POST /api/v1/loans/{loanId}/term-variations
func (h *LoanHandler) ApplyTermVariation(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	var request domain.TermVariationRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	variation, err := h.service.ApplyTermVariation(r.Context(), loanID, &request)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.Created(w, variation)
}

func (h *LoanHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, customError.ErrLoanNotFound), errors.Is(err, customError.ErrScheduleNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, customError.ErrLoanAlreadyExists):
		response.Conflict(w, "Loan already exists", err)
	case errors.Is(err, customError.ErrLoanAlreadyClosed),
		errors.Is(err, customError.ErrInvalidNumRepayments),
		errors.Is(err, customError.ErrInvalidChargeAmount),
		errors.Is(err, customError.ErrInvalidTransaction):
		response.BadRequest(w, "Request rejected", err)
	default:
		response.InternalServerError(w, "Internal server error", err)
	}
}
