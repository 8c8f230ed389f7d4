package domain

// DashboardTotals holds the grand totals across every loan of all three plans
type DashboardTotals struct {
	TotalAmountGiven     int64 `json:"totalAmountGiven"`
	TotalCollectedAmount int64 `json:"totalCollectedAmount"`
	TotalRemainingAmount int64 `json:"totalRemainingAmount"`
	TotalProfitAmount    int64 `json:"totalProfitAmount"`
	TotalLoanAmount      int64 `json:"totalLoanAmount"`
}

// Add accumulates one loan into the totals
func (d *DashboardTotals) Add(l *Loan) {
	d.TotalAmountGiven += l.AmountGiven
	d.TotalCollectedAmount += l.CollectedAmount
	d.TotalRemainingAmount += l.RemainingAmount
	d.TotalProfitAmount += l.ProfitAmount
	d.TotalLoanAmount += l.LoanAmount
}
