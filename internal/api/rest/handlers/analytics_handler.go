package handlers

import (
	"net/http"

	"github.com/subzcrib/billing-platform/internal/api/rest/middleware"
	"github.com/subzcrib/billing-platform/internal/service"
	"github.com/subzcrib/billing-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler exposes the revenue dashboard payload
type AnalyticsHandler struct {
	analyticsSvc service.AnalyticsService
	log          *logger.Logger
}

// NewAnalyticsHandler creates the analytics handler
func NewAnalyticsHandler(analyticsSvc service.AnalyticsService, log *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsSvc: analyticsSvc, log: log}
}

// GetReport returns the analytics report for the caller's scope
func (h *AnalyticsHandler) GetReport(c *gin.Context) {
	caller, _ := middleware.CallerIdentity(c)

	report, err := h.analyticsSvc.Report(c.Request.Context(), caller)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
