package handler

import (
	"net/http"

	"github.com/kailashkoshti/udhaar-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// DashboardHandler handles the aggregate totals endpoint
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetTotals handles GET /users/dashboard
func (h *DashboardHandler) GetTotals(c echo.Context) error {
	totals, err := h.dashboardService.GetTotals()
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute dashboard totals")
		return NewInternalError(c, "Failed to compute dashboard totals")
	}
	return Respond(c, http.StatusOK, "dashboard totals fetched", totals)
}
