package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kailashkoshti/udhaar-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// LoanRepository implements domain.LoanRepository using PostgreSQL. A loan
// row carries its installment list as a JSONB document, so every update is a
// single-row replace.
type LoanRepository struct {
	pool *pgxpool.Pool
}

// NewLoanRepository creates a new LoanRepository
func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

const loanColumns = `id, plan, loan_number, customer_name, phone_number, loan_amount, amount_given,
	issuing_date, status, expected_profit, amount_per_day, number_of_days, interest_amount,
	profit_percentage, interest_percentage, profit_amount, collected_amount, remaining_amount,
	installments, version, created_at, updated_at`

// Create inserts a new loan
func (r *LoanRepository) Create(loan *domain.Loan) (*domain.Loan, error) {
	ctx := context.Background()

	installments, err := json.Marshal(loan.Installments)
	if err != nil {
		return nil, err
	}
	profitPct, err := decimalToPgNumeric(loan.ProfitPercentage)
	if err != nil {
		return nil, err
	}
	interestPct, err := decimalToPgNumeric(loan.InterestPercentage)
	if err != nil {
		return nil, err
	}

	loanNumber := pgtype.Int8{}
	if loan.LoanNumber > 0 {
		loanNumber.Int64 = loan.LoanNumber
		loanNumber.Valid = true
	}
	phone := pgtype.Text{}
	if loan.PhoneNumber != nil {
		phone.String = *loan.PhoneNumber
		phone.Valid = true
	}
	issuingDate := pgtype.Date{Time: loan.IssuingDate, Valid: true}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO loans (
			id, plan, loan_number, customer_name, phone_number, loan_amount, amount_given,
			issuing_date, status, expected_profit, amount_per_day, number_of_days, interest_amount,
			profit_percentage, interest_percentage, profit_amount, collected_amount, remaining_amount,
			installments, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING `+loanColumns,
		loan.ID, loan.Plan, loanNumber, loan.CustomerName, phone, loan.LoanAmount, loan.AmountGiven,
		issuingDate, loan.Status, loan.ExpectedProfit, loan.AmountPerDay, loan.NumberOfDays, loan.InterestAmount,
		profitPct, interestPct, loan.ProfitAmount, loan.CollectedAmount, loan.RemainingAmount,
		installments, loan.CreatedAt, loan.UpdatedAt,
	)

	created, err := scanLoan(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrPhoneNumberExists
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a loan by its ID within a plan
func (r *LoanRepository) GetByID(plan domain.PlanType, id string) (*domain.Loan, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE id = $1 AND plan = $2`, id, plan)
	loan, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}

// ListByPlan retrieves all loans of a plan, newest first
func (r *LoanRepository) ListByPlan(plan domain.PlanType) ([]*domain.Loan, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE plan = $1 ORDER BY created_at DESC`, plan)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLoans(rows)
}

// ListAll retrieves every loan across all plans
func (r *LoanRepository) ListAll() ([]*domain.Loan, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		`SELECT `+loanColumns+` FROM loans ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLoans(rows)
}

// Update replaces the mutable part of the loan document. The version check
// closes the lost-update race between two concurrent reconciliations: the
// update only applies against the version the caller read.
func (r *LoanRepository) Update(loan *domain.Loan) (*domain.Loan, error) {
	ctx := context.Background()

	installments, err := json.Marshal(loan.Installments)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE loans SET
			status = $1,
			profit_amount = $2,
			collected_amount = $3,
			remaining_amount = $4,
			installments = $5,
			version = version + 1,
			updated_at = $6
		WHERE id = $7 AND plan = $8 AND version = $9
		RETURNING `+loanColumns,
		loan.Status, loan.ProfitAmount, loan.CollectedAmount, loan.RemainingAmount,
		installments, loan.UpdatedAt, loan.ID, loan.Plan, loan.Version,
	)

	updated, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the loan is gone or someone else won the write.
			if _, getErr := r.GetByID(loan.Plan, loan.ID); getErr != nil {
				return nil, getErr
			}
			return nil, domain.ErrStaleLoan
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a loan row outright
func (r *LoanRepository) Delete(plan domain.PlanType, id string) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `DELETE FROM loans WHERE id = $1 AND plan = $2`, id, plan)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}
	return nil
}

// NextLoanNumber allocates the next loan number for a plan atomically via the
// per-plan counter row, so concurrent creations can never share a number.
func (r *LoanRepository) NextLoanNumber(plan domain.PlanType) (int64, error) {
	ctx := context.Background()
	var number int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO plan_counters (plan, last_number) VALUES ($1, 1)
		ON CONFLICT (plan) DO UPDATE SET last_number = plan_counters.last_number + 1
		RETURNING last_number`, plan).Scan(&number)
	if err != nil {
		return 0, err
	}
	return number, nil
}

// scanLoan maps one loans row to the domain type
func scanLoan(row pgx.Row) (*domain.Loan, error) {
	var (
		loan        domain.Loan
		loanNumber  pgtype.Int8
		phone       pgtype.Text
		issuingDate pgtype.Date
		profitPct   pgtype.Numeric
		interestPct pgtype.Numeric
		raw         []byte
	)

	err := row.Scan(
		&loan.ID, &loan.Plan, &loanNumber, &loan.CustomerName, &phone, &loan.LoanAmount, &loan.AmountGiven,
		&issuingDate, &loan.Status, &loan.ExpectedProfit, &loan.AmountPerDay, &loan.NumberOfDays, &loan.InterestAmount,
		&profitPct, &interestPct, &loan.ProfitAmount, &loan.CollectedAmount, &loan.RemainingAmount,
		&raw, &loan.Version, &loan.CreatedAt, &loan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if loanNumber.Valid {
		loan.LoanNumber = loanNumber.Int64
	}
	if phone.Valid {
		loan.PhoneNumber = &phone.String
	}
	loan.IssuingDate = issuingDate.Time

	if loan.ProfitPercentage, err = pgNumericToDecimal(profitPct); err != nil {
		return nil, err
	}
	if loan.InterestPercentage, err = pgNumericToDecimal(interestPct); err != nil {
		return nil, err
	}

	loan.Installments = []domain.Installment{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &loan.Installments); err != nil {
			return nil, err
		}
	}
	return &loan, nil
}

func collectLoans(rows pgx.Rows) ([]*domain.Loan, error) {
	loans := []*domain.Loan{}
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return loans, nil
}

// decimalToPgNumeric converts a decimal.Decimal to pgtype.Numeric
func decimalToPgNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, fmt.Errorf("convert decimal to numeric: %w", err)
	}
	return n, nil
}

// pgNumericToDecimal converts a pgtype.Numeric back to decimal.Decimal
func pgNumericToDecimal(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Zero, nil
	}
	v, err := n.Value()
	if err != nil {
		return decimal.Zero, err
	}
	s, ok := v.(string)
	if !ok {
		return decimal.Zero, fmt.Errorf("unexpected numeric driver value %T", v)
	}
	return decimal.NewFromString(s)
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
