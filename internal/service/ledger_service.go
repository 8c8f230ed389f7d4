package service

import (
	"strings"
	"time"

	"github.com/kailashkoshti/udhaar-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// LedgerService handles the loan bookkeeping for one repayment plan. The
// three plan instances share this machinery and differ only in their policy.
type LedgerService struct {
	loanRepo domain.LoanRepository
	policy   PlanPolicy
}

// NewLedgerService creates a LedgerService for one plan
func NewLedgerService(loanRepo domain.LoanRepository, policy PlanPolicy) *LedgerService {
	return &LedgerService{
		loanRepo: loanRepo,
		policy:   policy,
	}
}

// Policy returns the plan policy the service runs under
func (s *LedgerService) Policy() PlanPolicy {
	return s.policy
}

// CreateLoanInput contains input for creating a loan. Plan-specific fields
// are ignored by plans that do not use them.
type CreateLoanInput struct {
	CustomerName string
	PhoneNumber  *string
	LoanAmount   int64
	AmountGiven  int64
	IssuingDate  time.Time

	// Daily
	ExpectedProfit   int64
	AmountPerDay     int64
	NumberOfDays     int64
	ProfitPercentage decimal.Decimal

	// Weekly/monthly
	InterestAmount     int64
	InterestPercentage decimal.Decimal
}

// CreateLoan validates the input, derives the initial schedule and aggregates
// for the plan, assigns the next loan number where the plan is numbered, and
// persists the new loan.
func (s *LedgerService) CreateLoan(input CreateLoanInput) (*domain.Loan, error) {
	customerName := strings.TrimSpace(input.CustomerName)
	if customerName == "" {
		return nil, domain.ErrCustomerNameRequired
	}
	if len(customerName) > domain.MaxCustomerNameLength {
		return nil, domain.ErrCustomerNameTooLong
	}

	if input.PhoneNumber != nil && *input.PhoneNumber != "" {
		if !s.policy.ValidPhone(*input.PhoneNumber) {
			return nil, domain.ErrPhoneNumberInvalid
		}
	}

	if input.IssuingDate.IsZero() {
		return nil, domain.ErrIssuingDateInvalid
	}

	if err := s.policy.ValidateCreate(input); err != nil {
		return nil, err
	}

	now := nowFunc()
	loan := &domain.Loan{
		ID:              domain.NewLoanID(),
		Plan:            s.policy.Plan,
		CustomerName:    customerName,
		PhoneNumber:     input.PhoneNumber,
		LoanAmount:      input.LoanAmount,
		AmountGiven:     input.AmountGiven,
		IssuingDate:     input.IssuingDate,
		Status:          domain.LoanActive,
		CollectedAmount: 0,
		RemainingAmount: input.LoanAmount,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.policy.InitSchedule(input, loan)

	if s.policy.AssignsLoanNumber {
		number, err := s.loanRepo.NextLoanNumber(s.policy.Plan)
		if err != nil {
			return nil, err
		}
		loan.LoanNumber = number
	}

	return s.loanRepo.Create(loan)
}

// GetLoans retrieves all loans of the plan, newest first
func (s *LedgerService) GetLoans() ([]*domain.Loan, error) {
	return s.loanRepo.ListByPlan(s.policy.Plan)
}

// GetLoanByID retrieves one loan of the plan
func (s *LedgerService) GetLoanByID(id string) (*domain.Loan, error) {
	return s.loanRepo.GetByID(s.policy.Plan, id)
}

// DeleteLoan removes a loan outright. Installments are embedded in the loan
// document, so nothing cascades.
func (s *LedgerService) DeleteLoan(id string) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(s.policy.Plan, id)
	if err != nil {
		return nil, err
	}
	if err := s.loanRepo.Delete(s.policy.Plan, id); err != nil {
		return nil, err
	}
	return loan, nil
}

// ReconcileInstallments applies a full-state replacement of the loan's
// installment list: every submitted period either overwrites the status of an
// existing installment or, for plans with a growable schedule, appends a new
// one. Aggregate fields and the loan status are then recomputed from the
// resulting list and the loan is persisted as a single document update.
//
// The server trusts the caller's desired end state; it makes no
// date-versus-today decision of its own.
func (s *LedgerService) ReconcileInstallments(id string, updates []domain.InstallmentUpdate) (*domain.Loan, error) {
	if len(updates) == 0 {
		return nil, domain.ErrInstallmentsRequired
	}
	for _, u := range updates {
		if u.Period <= 0 {
			return nil, domain.ErrInstallmentPeriodInvalid
		}
		if !s.policy.AllowsStatus(u.Status) {
			return nil, domain.ErrInstallmentStatusInvalid
		}
		if s.policy.AllowsNewPeriods {
			if u.Date == nil || u.Date.IsZero() {
				return nil, domain.ErrInstallmentDateInvalid
			}
			if u.Amount == nil || *u.Amount <= 0 {
				return nil, domain.ErrInstallmentAmountInvalid
			}
		}
	}

	loan, err := s.loanRepo.GetByID(s.policy.Plan, id)
	if err != nil {
		return nil, err
	}

	appended := false
	for _, u := range updates {
		idx := loan.FindInstallment(u.Period)
		if idx >= 0 {
			inst := &loan.Installments[idx]
			inst.Status = u.Status
			inst.PaidOn = paidOnFor(u)
			continue
		}
		if !s.policy.AllowsNewPeriods {
			// Unknown periods in a fixed schedule are not an error; the
			// schedule never grows past its creation size.
			continue
		}
		loan.Installments = append(loan.Installments, domain.Installment{
			Period: u.Period,
			Date:   *u.Date,
			Amount: *u.Amount,
			Status: u.Status,
			PaidOn: paidOnFor(u),
		})
		appended = true
	}

	s.policy.Recompute(loan, appended)
	loan.UpdatedAt = nowFunc()

	return s.loanRepo.Update(loan)
}

// MarkLoanPaid settles the principal of a weekly or monthly loan. The loan
// completes only when every installment is also paid; otherwise it stays
// active with the principal recovered.
func (s *LedgerService) MarkLoanPaid(id string) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(s.policy.Plan, id)
	if err != nil {
		return nil, err
	}
	if loan.Status == domain.LoanCompleted {
		return nil, domain.ErrLoanAlreadyCompleted
	}

	s.policy.ApplyMarkPaid(loan)
	if loan.AllInstallmentsPaid() {
		loan.Status = domain.LoanCompleted
	} else {
		loan.Status = domain.LoanActive
	}
	loan.UpdatedAt = nowFunc()

	return s.loanRepo.Update(loan)
}

// paidOnFor resolves the paidOn timestamp for a desired installment state:
// the caller's timestamp, or now when the caller marks paid without one.
// Any transition away from paid clears it.
func paidOnFor(u domain.InstallmentUpdate) *time.Time {
	if u.Status != domain.InstallmentPaid {
		return nil
	}
	if u.PaidOn != nil {
		return u.PaidOn
	}
	now := nowFunc()
	return &now
}
