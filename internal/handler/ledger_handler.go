package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/kailashkoshti/udhaar-backend/internal/domain"
	"github.com/kailashkoshti/udhaar-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// LedgerHandler handles the HTTP surface of one loan ledger. The daily,
// weekly, and monthly route groups each get their own instance.
type LedgerHandler struct {
	ledger *service.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledger *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// CreateLoanRequest represents the create loan request body. Plan-specific
// fields are ignored by the plans that do not use them.
type CreateLoanRequest struct {
	CustomerName string  `json:"customerName"`
	PhoneNumber  *string `json:"phoneNumber,omitempty"`
	LoanAmount   int64   `json:"loanAmount"`
	AmountGiven  int64   `json:"amountGiven"`
	IssuingDate  string  `json:"issuingDate"`

	ExpectedProfit   int64   `json:"expectedProfit,omitempty"`
	AmountPerDay     int64   `json:"amountPerDay,omitempty"`
	NumberOfDays     int64   `json:"numberOfDays,omitempty"`
	ProfitPercentage *string `json:"profitPercentage,omitempty"`

	InterestAmount     int64   `json:"interestAmount,omitempty"`
	InterestPercentage *string `json:"interestPercentage,omitempty"`
}

// InstallmentEntry is one desired installment end state in a reconciliation
// request
type InstallmentEntry struct {
	Period int64   `json:"period"`
	Status string  `json:"status"`
	Date   *string `json:"date,omitempty"`
	Amount *int64  `json:"amount,omitempty"`
	PaidOn *string `json:"paidOn,omitempty"`
}

// UpdateInstallmentsRequest represents the reconciliation request body: the
// complete replacement list of installments.
type UpdateInstallmentsRequest struct {
	Installments []InstallmentEntry `json:"installments"`
}

// InstallmentResponse represents an installment in API responses
type InstallmentResponse struct {
	Period int64   `json:"period"`
	Date   string  `json:"date"`
	Amount int64   `json:"amount"`
	Status string  `json:"status"`
	PaidOn *string `json:"paidOn"`
}

// LoanResponse represents a loan in API responses. The running profit field
// keeps its historical per-plan name: totalProfit on daily loans,
// profitAmount on weekly and monthly ones.
type LoanResponse struct {
	ID           string  `json:"id"`
	Plan         string  `json:"plan"`
	LoanNumber   *int64  `json:"loanNumber,omitempty"`
	CustomerName string  `json:"customerName"`
	PhoneNumber  *string `json:"phoneNumber,omitempty"`
	LoanAmount   int64   `json:"loanAmount"`
	AmountGiven  int64   `json:"amountGiven"`
	IssuingDate  string  `json:"issuingDate"`
	Status       string  `json:"status"`

	ExpectedProfit   *int64  `json:"expectedProfit,omitempty"`
	AmountPerDay     *int64  `json:"amountPerDay,omitempty"`
	NumberOfDays     *int64  `json:"numberOfDays,omitempty"`
	ProfitPercentage *string `json:"profitPercentage,omitempty"`

	InterestAmount     *int64  `json:"interestAmount,omitempty"`
	InterestPercentage *string `json:"interestPercentage,omitempty"`

	TotalProfit  *int64 `json:"totalProfit,omitempty"`
	ProfitAmount *int64 `json:"profitAmount,omitempty"`

	CollectedAmount int64                 `json:"collectedAmount"`
	RemainingAmount int64                 `json:"remainingAmount"`
	Installments    []InstallmentResponse `json:"installments"`
	CreatedAt       string                `json:"createdAt"`
	UpdatedAt       string                `json:"updatedAt"`
}

// CreateLoan handles POST /{plan}
func (h *LedgerHandler) CreateLoan(c echo.Context) error {
	var req CreateLoanRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "invalid request body")
	}

	issuingDate, err := time.Parse(dateLayout, req.IssuingDate)
	if err != nil {
		return NewValidationError(c, "issuingDate must be a valid date in YYYY-MM-DD format")
	}

	input := service.CreateLoanInput{
		CustomerName:   req.CustomerName,
		PhoneNumber:    req.PhoneNumber,
		LoanAmount:     req.LoanAmount,
		AmountGiven:    req.AmountGiven,
		IssuingDate:    issuingDate,
		ExpectedProfit: req.ExpectedProfit,
		AmountPerDay:   req.AmountPerDay,
		NumberOfDays:   req.NumberOfDays,
		InterestAmount: req.InterestAmount,
	}

	if req.ProfitPercentage != nil && *req.ProfitPercentage != "" {
		pct, err := decimal.NewFromString(*req.ProfitPercentage)
		if err != nil {
			return NewValidationError(c, "profitPercentage must be a valid decimal number")
		}
		input.ProfitPercentage = pct
	}
	if req.InterestPercentage != nil && *req.InterestPercentage != "" {
		pct, err := decimal.NewFromString(*req.InterestPercentage)
		if err != nil {
			return NewValidationError(c, "interestPercentage must be a valid decimal number")
		}
		input.InterestPercentage = pct
	}

	loan, err := h.ledger.CreateLoan(input)
	if err != nil {
		return h.respondLoanError(c, err, "Failed to create loan")
	}

	log.Info().
		Str("plan", string(loan.Plan)).
		Str("loan_id", loan.ID).
		Int64("loan_number", loan.LoanNumber).
		Str("customer", loan.CustomerName).
		Msg("Loan created")

	return Respond(c, http.StatusCreated, "loan created", toLoanResponse(loan))
}

// GetLoans handles GET /{plan}
func (h *LedgerHandler) GetLoans(c echo.Context) error {
	loans, err := h.ledger.GetLoans()
	if err != nil {
		log.Error().Err(err).Str("plan", string(h.ledger.Policy().Plan)).Msg("Failed to list loans")
		return NewInternalError(c, "Failed to list loans")
	}

	response := make([]LoanResponse, len(loans))
	for i, loan := range loans {
		response[i] = toLoanResponse(loan)
	}
	return Respond(c, http.StatusOK, "loans fetched", response)
}

// GetLoan handles GET /{plan}/:id
func (h *LedgerHandler) GetLoan(c echo.Context) error {
	id := c.Param("id")
	if !domain.ValidLoanID(id) {
		return NewValidationError(c, "invalid loan id")
	}

	loan, err := h.ledger.GetLoanByID(id)
	if err != nil {
		return h.respondLoanError(c, err, "Failed to get loan")
	}
	return Respond(c, http.StatusOK, "loan fetched", toLoanResponse(loan))
}

// DeleteLoan handles DELETE /{plan}/:id, echoing the deleted loan
func (h *LedgerHandler) DeleteLoan(c echo.Context) error {
	id := c.Param("id")
	if !domain.ValidLoanID(id) {
		return NewValidationError(c, "invalid loan id")
	}

	loan, err := h.ledger.DeleteLoan(id)
	if err != nil {
		return h.respondLoanError(c, err, "Failed to delete loan")
	}

	log.Info().Str("plan", string(loan.Plan)).Str("loan_id", loan.ID).Msg("Loan deleted")

	return Respond(c, http.StatusOK, "loan deleted", toLoanResponse(loan))
}

// UpdateInstallments handles PATCH /{plan}/:id/installments
func (h *LedgerHandler) UpdateInstallments(c echo.Context) error {
	id := c.Param("id")
	if !domain.ValidLoanID(id) {
		return NewValidationError(c, "invalid loan id")
	}

	var req UpdateInstallmentsRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "invalid request body")
	}

	updates := make([]domain.InstallmentUpdate, 0, len(req.Installments))
	for _, entry := range req.Installments {
		update := domain.InstallmentUpdate{
			Period: entry.Period,
			Status: domain.InstallmentStatus(entry.Status),
			Amount: entry.Amount,
		}
		if entry.Date != nil && *entry.Date != "" {
			date, err := time.Parse(dateLayout, *entry.Date)
			if err != nil {
				return NewValidationError(c, "installment date must be a valid date in YYYY-MM-DD format")
			}
			update.Date = &date
		}
		if entry.PaidOn != nil && *entry.PaidOn != "" {
			paidOn, err := time.Parse(dateLayout, *entry.PaidOn)
			if err != nil {
				return NewValidationError(c, "paidOn must be a valid date in YYYY-MM-DD format")
			}
			update.PaidOn = &paidOn
		}
		updates = append(updates, update)
	}

	loan, err := h.ledger.ReconcileInstallments(id, updates)
	if err != nil {
		return h.respondLoanError(c, err, "Failed to update installments")
	}

	log.Info().
		Str("plan", string(loan.Plan)).
		Str("loan_id", loan.ID).
		Int("installments", len(loan.Installments)).
		Str("status", string(loan.Status)).
		Msg("Installments reconciled")

	return Respond(c, http.StatusOK, "installments updated", toLoanResponse(loan))
}

// MarkPaid handles PATCH /{plan}/:id/mark-paid
func (h *LedgerHandler) MarkPaid(c echo.Context) error {
	id := c.Param("id")
	if !domain.ValidLoanID(id) {
		return NewValidationError(c, "invalid loan id")
	}

	loan, err := h.ledger.MarkLoanPaid(id)
	if err != nil {
		return h.respondLoanError(c, err, "Failed to mark loan as paid")
	}

	log.Info().Str("plan", string(loan.Plan)).Str("loan_id", loan.ID).Msg("Loan marked as paid")

	return Respond(c, http.StatusOK, "loan marked as paid", toLoanResponse(loan))
}

// respondLoanError maps domain errors to the error envelope
func (h *LedgerHandler) respondLoanError(c echo.Context, err error, logMsg string) error {
	switch {
	case errors.Is(err, domain.ErrCustomerNameRequired):
		return NewValidationError(c, "customerName is required")
	case errors.Is(err, domain.ErrCustomerNameTooLong):
		return NewValidationError(c, "customerName must be at most 255 characters")
	case errors.Is(err, domain.ErrPhoneNumberInvalid):
		if h.ledger.Policy().Plan == domain.PlanDaily {
			return NewValidationError(c, "phoneNumber must be exactly 10 digits")
		}
		return NewValidationError(c, "phoneNumber must be at least 10 digits")
	case errors.Is(err, domain.ErrLoanAmountInvalid):
		return NewValidationError(c, "loanAmount must be a positive number")
	case errors.Is(err, domain.ErrAmountGivenInvalid):
		return NewValidationError(c, "amountGiven must be a positive number")
	case errors.Is(err, domain.ErrExpectedProfitInvalid):
		return NewValidationError(c, "expectedProfit must be a positive number")
	case errors.Is(err, domain.ErrAmountPerDayInvalid):
		return NewValidationError(c, "amountPerDay must be a positive number")
	case errors.Is(err, domain.ErrNumberOfDaysInvalid):
		return NewValidationError(c, "numberOfDays must be a positive number")
	case errors.Is(err, domain.ErrInterestInvalid):
		return NewValidationError(c, "interestAmount must not be negative")
	case errors.Is(err, domain.ErrIssuingDateInvalid):
		return NewValidationError(c, "issuingDate is invalid")
	case errors.Is(err, domain.ErrInstallmentsRequired):
		return NewValidationError(c, "installments list is required")
	case errors.Is(err, domain.ErrInstallmentPeriodInvalid):
		return NewValidationError(c, "installment period must be a positive number")
	case errors.Is(err, domain.ErrInstallmentStatusInvalid):
		return NewValidationError(c, "installment status is invalid for this plan")
	case errors.Is(err, domain.ErrInstallmentDateInvalid):
		return NewValidationError(c, "installment date is required")
	case errors.Is(err, domain.ErrInstallmentAmountInvalid):
		return NewValidationError(c, "installment amount must be a positive number")
	case errors.Is(err, domain.ErrLoanAlreadyCompleted):
		return NewValidationError(c, "loan is already completed")
	case errors.Is(err, domain.ErrLoanNotFound):
		return NewNotFoundError(c, "loan not found")
	case errors.Is(err, domain.ErrPhoneNumberExists):
		return NewConflictError(c, "phoneNumber is already registered")
	case errors.Is(err, domain.ErrStaleLoan):
		return NewConflictError(c, "loan was modified by another request, please retry")
	default:
		log.Error().Err(err).Str("plan", string(h.ledger.Policy().Plan)).Msg(logMsg)
		return NewInternalError(c, logMsg)
	}
}

func toLoanResponse(loan *domain.Loan) LoanResponse {
	resp := LoanResponse{
		ID:              loan.ID,
		Plan:            string(loan.Plan),
		CustomerName:    loan.CustomerName,
		PhoneNumber:     loan.PhoneNumber,
		LoanAmount:      loan.LoanAmount,
		AmountGiven:     loan.AmountGiven,
		IssuingDate:     loan.IssuingDate.Format(dateLayout),
		Status:          string(loan.Status),
		CollectedAmount: loan.CollectedAmount,
		RemainingAmount: loan.RemainingAmount,
		CreatedAt:       loan.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       loan.UpdatedAt.Format(time.RFC3339),
	}

	if loan.LoanNumber > 0 {
		number := loan.LoanNumber
		resp.LoanNumber = &number
	}

	profit := loan.ProfitAmount
	if loan.Plan == domain.PlanDaily {
		resp.TotalProfit = &profit
		resp.ExpectedProfit = &loan.ExpectedProfit
		resp.AmountPerDay = &loan.AmountPerDay
		resp.NumberOfDays = &loan.NumberOfDays
		pct := loan.ProfitPercentage.String()
		resp.ProfitPercentage = &pct
	} else {
		resp.ProfitAmount = &profit
		resp.InterestAmount = &loan.InterestAmount
		pct := loan.InterestPercentage.String()
		resp.InterestPercentage = &pct
	}

	resp.Installments = make([]InstallmentResponse, len(loan.Installments))
	for i, inst := range loan.Installments {
		resp.Installments[i] = InstallmentResponse{
			Period: inst.Period,
			Date:   inst.Date.Format(dateLayout),
			Amount: inst.Amount,
			Status: string(inst.Status),
		}
		if inst.PaidOn != nil {
			paidOn := inst.PaidOn.Format(dateLayout)
			resp.Installments[i].PaidOn = &paidOn
		}
	}
	return resp
}
