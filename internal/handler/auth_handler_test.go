package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kailashkoshti/udhaar-backend/internal/domain"
	"github.com/kailashkoshti/udhaar-backend/internal/middleware"
	"github.com/kailashkoshti/udhaar-backend/internal/service"
	"github.com/kailashkoshti/udhaar-backend/internal/testutil"
	"github.com/labstack/echo/v4"
)

func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	repo := testutil.NewMockOperatorRepository()
	svc := service.NewAuthService(repo, "test-secret", time.Hour)
	if _, err := svc.SeedOperator("admin", "changeme"); err != nil {
		t.Fatalf("Failed to seed operator: %v", err)
	}
	return NewAuthHandler(svc, 24*time.Hour, false)
}

func TestLoginHandler_Success(t *testing.T) {
	h := newAuthHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/users/login", strings.NewReader(`{"username":"admin","password":"changeme"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	var payload LoginResponse
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("Failed to parse login data: %v", err)
	}
	if payload.User.Username != "admin" {
		t.Errorf("Expected username admin, got %q", payload.User.Username)
	}
	if payload.AccessToken == "" {
		t.Error("Expected access token in response body")
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.AccessTokenCookie {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("Expected accessToken cookie to be set")
	}
	if cookie.Value != payload.AccessToken {
		t.Error("Expected cookie to carry the same token as the body")
	}
	if !cookie.HttpOnly {
		t.Error("Expected httpOnly cookie")
	}
}

func TestLoginHandler_WrongPassword(t *testing.T) {
	h := newAuthHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/users/login", strings.NewReader(`{"username":"admin","password":"wrong"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("Expected no cookie on failed login")
	}
}

func TestLoginHandler_MissingFields(t *testing.T) {
	h := newAuthHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/users/login", strings.NewReader(`{"username":"admin"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestMeHandler(t *testing.T) {
	h := newAuthHandler(t)
	operator := &domain.Operator{ID: uuid.New(), Username: "admin"}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	ctx := context.WithValue(req.Context(), middleware.OperatorKey, operator)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	if err := h.Me(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	var payload OperatorResponse
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("Failed to parse operator data: %v", err)
	}
	if payload.ID != operator.ID.String() || payload.Username != "admin" {
		t.Errorf("Expected operator echoed back, got %+v", payload)
	}
}

func TestMeHandler_Unauthenticated(t *testing.T) {
	h := newAuthHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	rec := httptest.NewRecorder()

	if err := h.Me(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
}
