package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/kailashkoshti/udhaar-backend/internal/domain"
	"github.com/kailashkoshti/udhaar-backend/internal/middleware"
	"github.com/kailashkoshti/udhaar-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles operator authentication HTTP requests
type AuthHandler struct {
	authService *service.AuthService
	cookieTTL   time.Duration
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService, cookieTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieTTL:    cookieTTL,
		secureCookie: secureCookie,
	}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// OperatorResponse represents an operator in API responses
type OperatorResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// LoginResponse represents the login response payload
type LoginResponse struct {
	User        OperatorResponse `json:"user"`
	AccessToken string           `json:"accessToken"`
}

// Login handles POST /users/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return NewValidationError(c, "username and password are required")
	}

	operator, token, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return NewUnauthorizedError(c, "invalid username or password")
		}
		log.Error().Err(err).Str("username", req.Username).Msg("Login failed")
		return NewInternalError(c, "Login failed")
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.cookieTTL),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})

	log.Info().Str("username", operator.Username).Msg("Operator logged in")

	return Respond(c, http.StatusOK, "login successful", LoginResponse{
		User:        toOperatorResponse(operator),
		AccessToken: token,
	})
}

// Me handles GET /users/me
func (h *AuthHandler) Me(c echo.Context) error {
	operator := middleware.GetOperator(c)
	if operator == nil {
		return NewUnauthorizedError(c, "authentication required")
	}
	return Respond(c, http.StatusOK, "operator fetched", toOperatorResponse(operator))
}

func toOperatorResponse(op *domain.Operator) OperatorResponse {
	return OperatorResponse{
		ID:       op.ID.String(),
		Username: op.Username,
	}
}
