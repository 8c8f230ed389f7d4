package handler

import (
	"github.com/kailashkoshti/udhaar-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes. The three ledger groups share the
// same shape; weekly and monthly additionally expose mark-paid.
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, authHandler *AuthHandler, dashboardHandler *DashboardHandler, daily, weekly, monthly *LedgerHandler) {
	authenticated := []echo.MiddlewareFunc{
		authMiddleware.Authenticate(),
		middleware.RateLimitMiddleware(rateLimiter),
	}

	// Operator routes
	users := e.Group("/users")
	users.POST("/login", authHandler.Login)
	users.GET("/me", authHandler.Me, authenticated...)
	users.GET("/dashboard", dashboardHandler.GetTotals, authenticated...)

	registerLedgerRoutes(e.Group("/daily", authenticated...), daily, false)
	registerLedgerRoutes(e.Group("/weekly", authenticated...), weekly, true)
	registerLedgerRoutes(e.Group("/monthly", authenticated...), monthly, true)
}

func registerLedgerRoutes(g *echo.Group, h *LedgerHandler, markPaid bool) {
	g.POST("", h.CreateLoan)
	g.GET("", h.GetLoans)
	g.GET("/:id", h.GetLoan)
	g.DELETE("/:id", h.DeleteLoan)
	g.PATCH("/:id/installments", h.UpdateInstallments)
	if markPaid {
		g.PATCH("/:id/mark-paid", h.MarkPaid)
	}
}
