package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/kailashkoshti/udhaar-backend/internal/domain"
)

// MockLoanRepository is an in-memory implementation of domain.LoanRepository.
// It mirrors the persistence contract of the Postgres repository: reads hand
// out copies, updates check the document version, loan numbers come from a
// per-plan counter.
type MockLoanRepository struct {
	Loans    []*domain.Loan
	Counters map[domain.PlanType]int64

	CreateErr error
	UpdateErr error
	ListErr   error
}

// NewMockLoanRepository creates a new MockLoanRepository
func NewMockLoanRepository() *MockLoanRepository {
	return &MockLoanRepository{
		Counters: make(map[domain.PlanType]int64),
	}
}

// Create stores a new loan
func (m *MockLoanRepository) Create(loan *domain.Loan) (*domain.Loan, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if loan.Plan == domain.PlanDaily && loan.PhoneNumber != nil {
		for _, existing := range m.Loans {
			if existing.Plan == domain.PlanDaily && existing.PhoneNumber != nil && *existing.PhoneNumber == *loan.PhoneNumber {
				return nil, domain.ErrPhoneNumberExists
			}
		}
	}
	stored := cloneLoan(loan)
	stored.Version = 1
	m.Loans = append(m.Loans, stored)
	return cloneLoan(stored), nil
}

// GetByID retrieves a loan by plan and id
func (m *MockLoanRepository) GetByID(plan domain.PlanType, id string) (*domain.Loan, error) {
	for _, loan := range m.Loans {
		if loan.Plan == plan && loan.ID == id {
			return cloneLoan(loan), nil
		}
	}
	return nil, domain.ErrLoanNotFound
}

// ListByPlan returns the plan's loans newest first
func (m *MockLoanRepository) ListByPlan(plan domain.PlanType) ([]*domain.Loan, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	loans := []*domain.Loan{}
	for i := len(m.Loans) - 1; i >= 0; i-- {
		if m.Loans[i].Plan == plan {
			loans = append(loans, cloneLoan(m.Loans[i]))
		}
	}
	return loans, nil
}

// ListAll returns every loan newest first
func (m *MockLoanRepository) ListAll() ([]*domain.Loan, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	loans := []*domain.Loan{}
	for i := len(m.Loans) - 1; i >= 0; i-- {
		loans = append(loans, cloneLoan(m.Loans[i]))
	}
	return loans, nil
}

// Update replaces a stored loan if the caller's version is current
func (m *MockLoanRepository) Update(loan *domain.Loan) (*domain.Loan, error) {
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	for i, existing := range m.Loans {
		if existing.Plan == loan.Plan && existing.ID == loan.ID {
			if existing.Version != loan.Version {
				return nil, domain.ErrStaleLoan
			}
			stored := cloneLoan(loan)
			stored.Version = existing.Version + 1
			m.Loans[i] = stored
			return cloneLoan(stored), nil
		}
	}
	return nil, domain.ErrLoanNotFound
}

// Delete removes a stored loan
func (m *MockLoanRepository) Delete(plan domain.PlanType, id string) error {
	for i, loan := range m.Loans {
		if loan.Plan == plan && loan.ID == id {
			m.Loans = append(m.Loans[:i], m.Loans[i+1:]...)
			return nil
		}
	}
	return domain.ErrLoanNotFound
}

// NextLoanNumber allocates the next number for a plan
func (m *MockLoanRepository) NextLoanNumber(plan domain.PlanType) (int64, error) {
	m.Counters[plan]++
	return m.Counters[plan], nil
}

// AddLoan adds a loan to the mock repository (helper for tests)
func (m *MockLoanRepository) AddLoan(loan *domain.Loan) {
	stored := cloneLoan(loan)
	if stored.Version == 0 {
		stored.Version = 1
	}
	m.Loans = append(m.Loans, stored)
}

// StoredLoan returns the stored state of a loan (helper for tests)
func (m *MockLoanRepository) StoredLoan(plan domain.PlanType, id string) *domain.Loan {
	for _, loan := range m.Loans {
		if loan.Plan == plan && loan.ID == id {
			return cloneLoan(loan)
		}
	}
	return nil
}

func cloneLoan(loan *domain.Loan) *domain.Loan {
	clone := *loan
	if loan.PhoneNumber != nil {
		phone := *loan.PhoneNumber
		clone.PhoneNumber = &phone
	}
	clone.Installments = make([]domain.Installment, len(loan.Installments))
	for i, inst := range loan.Installments {
		clone.Installments[i] = inst
		if inst.PaidOn != nil {
			paidOn := *inst.PaidOn
			clone.Installments[i].PaidOn = &paidOn
		}
	}
	return &clone
}

// MockOperatorRepository is an in-memory implementation of
// domain.OperatorRepository
type MockOperatorRepository struct {
	Operators map[string]*domain.Operator
	ByID      map[uuid.UUID]*domain.Operator
}

// NewMockOperatorRepository creates a new MockOperatorRepository
func NewMockOperatorRepository() *MockOperatorRepository {
	return &MockOperatorRepository{
		Operators: make(map[string]*domain.Operator),
		ByID:      make(map[uuid.UUID]*domain.Operator),
	}
}

// GetByID retrieves an operator by ID
func (m *MockOperatorRepository) GetByID(id uuid.UUID) (*domain.Operator, error) {
	if op, ok := m.ByID[id]; ok {
		return op, nil
	}
	return nil, domain.ErrOperatorNotFound
}

// GetByUsername retrieves an operator by username
func (m *MockOperatorRepository) GetByUsername(username string) (*domain.Operator, error) {
	if op, ok := m.Operators[username]; ok {
		return op, nil
	}
	return nil, domain.ErrOperatorNotFound
}

// Upsert creates or replaces an operator
func (m *MockOperatorRepository) Upsert(op *domain.Operator) (*domain.Operator, error) {
	stored := *op
	now := time.Now()
	if existing, ok := m.Operators[op.Username]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	m.Operators[stored.Username] = &stored
	m.ByID[stored.ID] = &stored
	return &stored, nil
}

// AddOperator adds an operator to the mock repository (helper for tests)
func (m *MockOperatorRepository) AddOperator(op *domain.Operator) {
	m.Operators[op.Username] = op
	m.ByID[op.ID] = op
}
