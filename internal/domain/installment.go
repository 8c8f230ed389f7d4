package domain

import (
	"errors"
	"time"
)

var (
	ErrInstallmentPeriodInvalid = errors.New("installment period must be positive")
	ErrInstallmentStatusInvalid = errors.New("installment status is invalid")
	ErrInstallmentDateInvalid   = errors.New("installment date is invalid")
	ErrInstallmentAmountInvalid = errors.New("installment amount must be positive")
	ErrInstallmentsRequired     = errors.New("installments list is required")
)

// InstallmentStatus is the payment state of a single installment
type InstallmentStatus string

const (
	InstallmentPaid    InstallmentStatus = "paid"
	InstallmentPending InstallmentStatus = "pending"
	InstallmentMissed  InstallmentStatus = "missed"
)

// Installment is one scheduled payment obligation within a loan. Installments
// are embedded in the loan document, keyed by their 1-based period.
type Installment struct {
	Period int64             `json:"period"`
	Date   time.Time         `json:"date"`
	Amount int64             `json:"amount"`
	Status InstallmentStatus `json:"status"`
	PaidOn *time.Time        `json:"paidOn"`
}

// InstallmentUpdate is one entry of a reconciliation request: the desired end
// state for a period. Date and Amount are required only for plans that allow
// appending new periods.
type InstallmentUpdate struct {
	Period int64
	Status InstallmentStatus
	Date   *time.Time
	Amount *int64
	PaidOn *time.Time
}
