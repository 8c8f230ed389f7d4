package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kailashkoshti/udhaar-backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles operator login and access-token issue/verify
type AuthService struct {
	operatorRepo domain.OperatorRepository
	jwtSecret    []byte
	tokenTTL     time.Duration
}

// NewAuthService creates a new AuthService
func NewAuthService(operatorRepo domain.OperatorRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		operatorRepo: operatorRepo,
		jwtSecret:    []byte(jwtSecret),
		tokenTTL:     tokenTTL,
	}
}

// operatorClaims are the claims carried by an access token
type operatorClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Login verifies the operator credentials and returns the operator together
// with a signed access token.
func (s *AuthService) Login(username, password string) (*domain.Operator, string, error) {
	operator, err := s.operatorRepo.GetByUsername(username)
	if err != nil {
		if err == domain.ErrOperatorNotFound {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	now := nowFunc()
	claims := operatorClaims{
		Username: operator.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operator.ID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, "", err
	}

	return operator, token, nil
}

// ResolveOperator validates an access token and returns the operator it was
// issued to. Any parse, signature, or expiry failure maps to ErrUnauthorized.
func (s *AuthService) ResolveOperator(token string) (*domain.Operator, error) {
	parsed, err := jwt.ParseWithClaims(token, &operatorClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*operatorClaims)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	operatorID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	operator, err := s.operatorRepo.GetByID(operatorID)
	if err != nil {
		if err == domain.ErrOperatorNotFound {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return operator, nil
}

// SeedOperator ensures the configured operator credential exists, hashing the
// password with bcrypt. Called once at boot.
func (s *AuthService) SeedOperator(username, password string) (*domain.Operator, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	existing, err := s.operatorRepo.GetByUsername(username)
	if err != nil && err != domain.ErrOperatorNotFound {
		return nil, err
	}

	operator := &domain.Operator{
		Username:     username,
		PasswordHash: string(hash),
	}
	if existing != nil {
		operator.ID = existing.ID
	} else {
		operator.ID = uuid.New()
	}
	return s.operatorRepo.Upsert(operator)
}
