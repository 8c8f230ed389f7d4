package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kailashkoshti/udhaar-backend/internal/domain"
)

// OperatorRepository implements domain.OperatorRepository using PostgreSQL
type OperatorRepository struct {
	pool *pgxpool.Pool
}

// NewOperatorRepository creates a new OperatorRepository
func NewOperatorRepository(pool *pgxpool.Pool) *OperatorRepository {
	return &OperatorRepository{pool: pool}
}

// GetByID retrieves an operator by ID
func (r *OperatorRepository) GetByID(id uuid.UUID) (*domain.Operator, error) {
	ctx := context.Background()
	return r.scanOperator(r.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at, updated_at FROM operators WHERE id = $1`, id))
}

// GetByUsername retrieves an operator by username
func (r *OperatorRepository) GetByUsername(username string) (*domain.Operator, error) {
	ctx := context.Background()
	return r.scanOperator(r.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at, updated_at FROM operators WHERE username = $1`, username))
}

// Upsert creates the operator row or refreshes its password hash
func (r *OperatorRepository) Upsert(op *domain.Operator) (*domain.Operator, error) {
	ctx := context.Background()
	return r.scanOperator(r.pool.QueryRow(ctx, `
		INSERT INTO operators (id, username, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash, updated_at = now()
		RETURNING id, username, password_hash, created_at, updated_at`,
		op.ID, op.Username, op.PasswordHash))
}

func (r *OperatorRepository) scanOperator(row pgx.Row) (*domain.Operator, error) {
	var op domain.Operator
	err := row.Scan(&op.ID, &op.Username, &op.PasswordHash, &op.CreatedAt, &op.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOperatorNotFound
		}
		return nil, err
	}
	return &op, nil
}
