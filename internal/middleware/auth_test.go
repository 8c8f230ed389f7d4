package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/kailashkoshti/udhaar-backend/internal/domain"
	"github.com/labstack/echo/v4"
)

type stubResolver struct {
	operator *domain.Operator
	token    string
}

func (s *stubResolver) ResolveOperator(token string) (*domain.Operator, error) {
	if token == s.token {
		return s.operator, nil
	}
	return nil, domain.ErrUnauthorized
}

func runAuthenticated(t *testing.T, resolver OperatorResolver, decorate func(*http.Request)) (*httptest.ResponseRecorder, *domain.Operator) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/daily", nil)
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var resolved *domain.Operator
	handler := NewAuthMiddleware(resolver).Authenticate()(func(c echo.Context) error {
		resolved = GetOperator(c)
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, resolved
}

func TestAuthenticate_BearerHeader(t *testing.T) {
	operator := &domain.Operator{ID: uuid.New(), Username: "admin"}
	resolver := &stubResolver{operator: operator, token: "good-token"}

	rec, resolved := runAuthenticated(t, resolver, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer good-token")
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if resolved == nil || resolved.ID != operator.ID {
		t.Error("Expected operator scoped to the request context")
	}
}

func TestAuthenticate_CookieFallback(t *testing.T) {
	operator := &domain.Operator{ID: uuid.New(), Username: "admin"}
	resolver := &stubResolver{operator: operator, token: "good-token"}

	rec, resolved := runAuthenticated(t, resolver, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "good-token"})
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if resolved == nil {
		t.Error("Expected operator resolved from cookie")
	}
}

func TestAuthenticate_HeaderWinsOverCookie(t *testing.T) {
	resolver := &stubResolver{operator: &domain.Operator{ID: uuid.New()}, token: "header-token"}

	rec, _ := runAuthenticated(t, resolver, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer header-token")
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "cookie-token"})
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected header token to be used, got %d", rec.Code)
	}
}

func TestAuthenticate_MissingToken(t *testing.T) {
	resolver := &stubResolver{token: "good-token"}

	rec, _ := runAuthenticated(t, resolver, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	resolver := &stubResolver{token: "good-token"}

	rec, _ := runAuthenticated(t, resolver, func(req *http.Request) {
		req.Header.Set("Authorization", "good-token")
	})

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for header without Bearer scheme, got %d", rec.Code)
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	resolver := &stubResolver{token: "good-token"}

	rec, _ := runAuthenticated(t, resolver, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer bad-token")
	})

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
}

func TestGetOperator_Unauthenticated(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	if op := GetOperator(c); op != nil {
		t.Errorf("Expected nil operator, got %+v", op)
	}
}
