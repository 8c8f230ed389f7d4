package service

import (
	"time"

	"github.com/kailashkoshti/udhaar-backend/internal/domain"
)

// PlanPolicy captures the points where the three repayment plans genuinely
// diverge: creation validation, schedule initialization, the aggregate
// recompute applied after every reconciliation, and mark-paid semantics.
// Everything else is shared ledger machinery in LedgerService.
type PlanPolicy struct {
	Plan              domain.PlanType
	AssignsLoanNumber bool
	UniquePhone       bool
	AllowsNewPeriods  bool
	SupportsMarkPaid  bool

	AllowedStatuses []domain.InstallmentStatus

	ValidPhone     func(phone string) bool
	ValidateCreate func(in CreateLoanInput) error
	InitSchedule   func(in CreateLoanInput, loan *domain.Loan)

	// Recompute derives the aggregate fields and status from the resulting
	// installment list. appended reports whether the reconciliation call
	// introduced any new period.
	Recompute func(loan *domain.Loan, appended bool)

	// ApplyMarkPaid settles the principal. Status derivation happens in the
	// ledger service afterwards.
	ApplyMarkPaid func(loan *domain.Loan)
}

// AllowsStatus reports whether the plan accepts the given installment status
// in reconciliation input.
func (p PlanPolicy) AllowsStatus(s domain.InstallmentStatus) bool {
	for _, allowed := range p.AllowedStatuses {
		if allowed == s {
			return true
		}
	}
	return false
}

// DailyPlan: fixed schedule generated at creation, statuses paid/pending only,
// fully recomputed collected amount, no mark-paid operation.
var DailyPlan = PlanPolicy{
	Plan:              domain.PlanDaily,
	AssignsLoanNumber: true,
	UniquePhone:       true,
	AllowsNewPeriods:  false,
	SupportsMarkPaid:  false,
	AllowedStatuses:   []domain.InstallmentStatus{domain.InstallmentPaid, domain.InstallmentPending},
	ValidPhone:        phoneExactlyTenDigits,
	ValidateCreate:    validateDailyCreate,
	InitSchedule:      initDailySchedule,
	Recompute:         recomputeDaily,
}

// WeeklyPlan: operator-added installments, profit accrues per paid
// installment, principal settled only through mark-paid. Weekly loans carry no
// loan number; the upstream books never assigned one and the numbering gap is
// preserved rather than silently fixed.
var WeeklyPlan = PlanPolicy{
	Plan:              domain.PlanWeekly,
	AssignsLoanNumber: false,
	UniquePhone:       false,
	AllowsNewPeriods:  true,
	SupportsMarkPaid:  true,
	AllowedStatuses:   []domain.InstallmentStatus{domain.InstallmentPaid, domain.InstallmentMissed, domain.InstallmentPending},
	ValidPhone:        phoneAtLeastTenDigits,
	ValidateCreate:    validateInterestCreate,
	InitSchedule:      initInterestSchedule,
	Recompute:         recomputeWeekly,
	ApplyMarkPaid: func(loan *domain.Loan) {
		loan.CollectedAmount = loan.LoanAmount
		loan.RemainingAmount = 0
	},
}

// MonthlyPlan: like weekly but collected amount is recomputed from paid
// installments on every reconciliation, with the loan amount added on top
// once the principal has been settled.
var MonthlyPlan = PlanPolicy{
	Plan:              domain.PlanMonthly,
	AssignsLoanNumber: true,
	UniquePhone:       false,
	AllowsNewPeriods:  true,
	SupportsMarkPaid:  true,
	AllowedStatuses:   []domain.InstallmentStatus{domain.InstallmentPaid, domain.InstallmentMissed, domain.InstallmentPending},
	ValidPhone:        phoneAtLeastTenDigits,
	ValidateCreate:    validateInterestCreate,
	InitSchedule:      initInterestSchedule,
	Recompute:         recomputeMonthly,
	ApplyMarkPaid: func(loan *domain.Loan) {
		loan.CollectedAmount += loan.LoanAmount
		loan.RemainingAmount = 0
	},
}

func phoneExactlyTenDigits(phone string) bool {
	if len(phone) != 10 {
		return false
	}
	return allDigits(phone)
}

func phoneAtLeastTenDigits(phone string) bool {
	if len(phone) < 10 {
		return false
	}
	return allDigits(phone)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func validateDailyCreate(in CreateLoanInput) error {
	if in.ExpectedProfit <= 0 {
		return domain.ErrExpectedProfitInvalid
	}
	if in.AmountPerDay <= 0 {
		return domain.ErrAmountPerDayInvalid
	}
	if in.NumberOfDays <= 0 {
		return domain.ErrNumberOfDaysInvalid
	}
	if in.LoanAmount <= 0 {
		return domain.ErrLoanAmountInvalid
	}
	return nil
}

func validateInterestCreate(in CreateLoanInput) error {
	if in.LoanAmount <= 0 {
		return domain.ErrLoanAmountInvalid
	}
	if in.AmountGiven <= 0 {
		return domain.ErrAmountGivenInvalid
	}
	if in.InterestAmount < 0 {
		return domain.ErrInterestInvalid
	}
	return nil
}

// initDailySchedule pre-generates one pending installment per day, starting
// the day after the issuing date. Past due dates are not special-cased.
func initDailySchedule(in CreateLoanInput, loan *domain.Loan) {
	loan.ExpectedProfit = in.ExpectedProfit
	loan.AmountPerDay = in.AmountPerDay
	loan.NumberOfDays = in.NumberOfDays
	loan.ProfitPercentage = in.ProfitPercentage
	loan.ProfitAmount = 0

	loan.Installments = make([]domain.Installment, 0, in.NumberOfDays)
	for i := int64(1); i <= in.NumberOfDays; i++ {
		loan.Installments = append(loan.Installments, domain.Installment{
			Period: i,
			Date:   in.IssuingDate.AddDate(0, 0, int(i)),
			Amount: in.AmountPerDay,
			Status: domain.InstallmentPending,
		})
	}
}

// initInterestSchedule starts weekly/monthly loans with an empty schedule and
// the interest amount as the profit base.
func initInterestSchedule(in CreateLoanInput, loan *domain.Loan) {
	loan.InterestAmount = in.InterestAmount
	loan.InterestPercentage = in.InterestPercentage
	loan.ProfitAmount = in.InterestAmount
	loan.Installments = []domain.Installment{}
}

func recomputeDaily(loan *domain.Loan, _ bool) {
	collected := sumPaid(loan.Installments)
	loan.CollectedAmount = collected
	// Remaining may go negative on over-payment; the books carry it as-is.
	loan.RemainingAmount = loan.LoanAmount - collected

	profit := collected - loan.AmountGiven
	if profit < 0 {
		profit = 0
	}
	loan.ProfitAmount = profit

	if loan.RemainingAmount <= 0 {
		loan.Status = domain.LoanCompleted
	} else {
		loan.Status = domain.LoanActive
	}
}

func recomputeMonthly(loan *domain.Loan, _ bool) {
	paid := sumPaid(loan.Installments)
	loan.ProfitAmount = loan.InterestAmount + paid

	loan.CollectedAmount = paid
	if loan.Settled() {
		loan.CollectedAmount += loan.LoanAmount
	}
	// RemainingAmount changes only through mark-paid.

	if loan.Settled() && loan.AllInstallmentsPaid() {
		loan.Status = domain.LoanCompleted
	} else {
		loan.Status = domain.LoanActive
	}
}

func recomputeWeekly(loan *domain.Loan, appended bool) {
	paid := sumPaid(loan.Installments)
	loan.ProfitAmount = loan.InterestAmount + paid
	// CollectedAmount and RemainingAmount change only through mark-paid.

	// Appending a period reopens the loan even when it was completed.
	if appended {
		loan.Status = domain.LoanActive
		return
	}
	if loan.Settled() && loan.AllInstallmentsPaid() {
		loan.Status = domain.LoanCompleted
	} else {
		loan.Status = domain.LoanActive
	}
}

func sumPaid(installments []domain.Installment) int64 {
	var total int64
	for _, inst := range installments {
		if inst.Status == domain.InstallmentPaid {
			total += inst.Amount
		}
	}
	return total
}

// nowFunc is swapped in tests that assert on paidOn defaults
var nowFunc = time.Now
