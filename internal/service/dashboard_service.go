package service

import (
	"github.com/kailashkoshti/udhaar-backend/internal/domain"
)

// DashboardService aggregates financial totals across all three loan ledgers
type DashboardService struct {
	loanRepo domain.LoanRepository
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(loanRepo domain.LoanRepository) *DashboardService {
	return &DashboardService{loanRepo: loanRepo}
}

// GetTotals reads every loan across all plans and sums the five grand totals.
// Pure read, no mutation.
func (s *DashboardService) GetTotals() (*domain.DashboardTotals, error) {
	loans, err := s.loanRepo.ListAll()
	if err != nil {
		return nil, err
	}

	totals := &domain.DashboardTotals{}
	for _, loan := range loans {
		totals.Add(loan)
	}
	return totals, nil
}
