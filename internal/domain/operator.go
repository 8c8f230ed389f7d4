package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrOperatorNotFound   = errors.New("operator not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Operator is the single bookkeeping identity that all requests act as
type Operator struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// OperatorRepository defines the interface for operator persistence operations
type OperatorRepository interface {
	GetByID(id uuid.UUID) (*Operator, error)
	GetByUsername(username string) (*Operator, error)
	Upsert(op *Operator) (*Operator, error)
}
