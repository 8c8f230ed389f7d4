package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/kailashkoshti/udhaar-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AccessTokenCookie is the cookie the login handler sets and the middleware
// falls back to when no Authorization header is present.
const AccessTokenCookie = "accessToken"

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// OperatorKey is the context key for the authenticated operator
const OperatorKey contextKey = "operator"

// OperatorResolver validates an access token and resolves the operator it
// belongs to.
type OperatorResolver interface {
	ResolveOperator(token string) (*domain.Operator, error)
}

// AuthMiddleware authenticates requests and scopes the resolved operator to
// the request context. There is no module-level principal; handlers read it
// back with GetOperator.
type AuthMiddleware struct {
	resolver OperatorResolver
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(resolver OperatorResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// Authenticate returns an Echo middleware that validates the bearer token or
// the access-token cookie.
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}

			operator, err := m.resolver.ResolveOperator(token)
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			ctx := context.WithValue(c.Request().Context(), OperatorKey, operator)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// bearerToken extracts the token from the Authorization header, falling back
// to the access-token cookie.
func bearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// GetOperator extracts the authenticated operator from the context
func GetOperator(c echo.Context) *domain.Operator {
	if op, ok := c.Request().Context().Value(OperatorKey).(*domain.Operator); ok {
		return op
	}
	return nil
}
