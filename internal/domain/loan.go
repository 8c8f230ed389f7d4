package domain

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrLoanNotFound          = errors.New("loan not found")
	ErrCustomerNameRequired  = errors.New("customer name is required")
	ErrCustomerNameTooLong   = errors.New("customer name is too long")
	ErrPhoneNumberInvalid    = errors.New("phone number is invalid")
	ErrPhoneNumberExists     = errors.New("phone number already registered")
	ErrLoanAmountInvalid     = errors.New("loan amount must be positive")
	ErrAmountGivenInvalid    = errors.New("amount given must be positive")
	ErrExpectedProfitInvalid = errors.New("expected profit must be positive")
	ErrAmountPerDayInvalid   = errors.New("amount per day must be positive")
	ErrNumberOfDaysInvalid   = errors.New("number of days must be positive")
	ErrInterestInvalid       = errors.New("interest amount must not be negative")
	ErrIssuingDateInvalid    = errors.New("issuing date is invalid")
	ErrLoanAlreadyCompleted  = errors.New("loan is already completed")
	ErrStaleLoan             = errors.New("loan was modified by another request")
)

// PlanType identifies one of the three repayment plans
type PlanType string

const (
	PlanDaily   PlanType = "daily"
	PlanWeekly  PlanType = "weekly"
	PlanMonthly PlanType = "monthly"
)

// LoanStatus is derived from the installment state, never set by clients
type LoanStatus string

const (
	LoanActive    LoanStatus = "active"
	LoanCompleted LoanStatus = "completed"
)

// Loan is one ledger entry. A loan and its installments are persisted as a
// single document; every mutation replaces the whole row.
type Loan struct {
	ID           string     `json:"id"`
	Plan         PlanType   `json:"plan"`
	LoanNumber   int64      `json:"loanNumber,omitempty"` // 0 = unnumbered (weekly)
	CustomerName string     `json:"customerName"`
	PhoneNumber  *string    `json:"phoneNumber,omitempty"`
	LoanAmount   int64      `json:"loanAmount"`
	AmountGiven  int64      `json:"amountGiven"`
	IssuingDate  time.Time  `json:"issuingDate"`
	Status       LoanStatus `json:"status"`

	// Daily plan schedule parameters
	ExpectedProfit int64 `json:"expectedProfit,omitempty"`
	AmountPerDay   int64 `json:"amountPerDay,omitempty"`
	NumberOfDays   int64 `json:"numberOfDays,omitempty"`

	// Weekly/monthly interest
	InterestAmount int64 `json:"interestAmount,omitempty"`

	ProfitPercentage   decimal.Decimal `json:"profitPercentage"`
	InterestPercentage decimal.Decimal `json:"interestPercentage"`

	// Running aggregates, recomputed on every reconciliation
	ProfitAmount    int64 `json:"profitAmount"`
	CollectedAmount int64 `json:"collectedAmount"`
	RemainingAmount int64 `json:"remainingAmount"`

	Installments []Installment `json:"installments"`

	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Settled reports whether the principal has been fully recovered. Weekly and
// monthly loans reach this state only through the mark-paid operation.
func (l *Loan) Settled() bool {
	return l.RemainingAmount <= 0
}

// AllInstallmentsPaid reports whether every installment currently on the loan
// is marked paid. True for an empty list.
func (l *Loan) AllInstallmentsPaid() bool {
	for _, inst := range l.Installments {
		if inst.Status != InstallmentPaid {
			return false
		}
	}
	return true
}

// FindInstallment returns the index of the installment with the given period,
// or -1 when no such period exists.
func (l *Loan) FindInstallment(period int64) int {
	for i := range l.Installments {
		if l.Installments[i].Period == period {
			return i
		}
	}
	return -1
}

// LoanIDLength is the length of a loan id in its hex form
const LoanIDLength = 24

// NewLoanID returns a fresh 24-character hex loan id
func NewLoanID() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err) // crypto/rand failure is not recoverable
	}
	return hex.EncodeToString(b[:])
}

// ValidLoanID checks the id format convention of the storage layer.
// Only the length is checked, per the API contract.
func ValidLoanID(id string) bool {
	return len(id) == LoanIDLength
}

// LoanRepository defines the interface for loan persistence operations
type LoanRepository interface {
	Create(loan *Loan) (*Loan, error)
	GetByID(plan PlanType, id string) (*Loan, error)
	ListByPlan(plan PlanType) ([]*Loan, error) // newest first
	ListAll() ([]*Loan, error)
	Update(loan *Loan) (*Loan, error) // optimistic, ErrStaleLoan on version mismatch
	Delete(plan PlanType, id string) error
	NextLoanNumber(plan PlanType) (int64, error)
}
