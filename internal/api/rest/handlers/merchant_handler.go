package handlers

import (
	"net/http"

	"github.com/subzcrib/billing-platform/internal/api/rest/middleware"
	"github.com/subzcrib/billing-platform/internal/domain"
	"github.com/subzcrib/billing-platform/internal/service"
	"github.com/subzcrib/billing-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// MerchantHandler exposes the portal-side merchant endpoints
type MerchantHandler struct {
	merchantSvc service.MerchantService
	log         *logger.Logger
}

// NewMerchantHandler creates the merchant handler
func NewMerchantHandler(merchantSvc service.MerchantService, log *logger.Logger) *MerchantHandler {
	return &MerchantHandler{merchantSvc: merchantSvc, log: log}
}

// GetMerchant returns a merchant by ID
func (h *MerchantHandler) GetMerchant(c *gin.Context) {
	caller, _ := middleware.CallerIdentity(c)

	merchant, err := h.merchantSvc.GetByID(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, merchant)
}

// GetMerchants returns the page of all tenants for the portal admin
func (h *MerchantHandler) GetMerchants(c *gin.Context) {
	caller, _ := middleware.CallerIdentity(c)

	opts := listOptions(c)
	merchants, total, err := h.merchantSvc.List(c.Request.Context(), caller, opts)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"merchants": merchants,
		"total":     total,
		"page":      opts.Page,
		"limit":     opts.Limit,
	})
}

// UpdateMerchant changes a merchant's business profile
func (h *MerchantHandler) UpdateMerchant(c *gin.Context) {
	caller, _ := middleware.CallerIdentity(c)

	var req domain.MerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	merchant, err := h.merchantSvc.Update(c.Request.Context(), caller, c.Param("id"), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, merchant)
}

// ApproveMerchant marks a merchant as reviewed
func (h *MerchantHandler) ApproveMerchant(c *gin.Context) {
	caller, _ := middleware.CallerIdentity(c)

	merchant, err := h.merchantSvc.Approve(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, merchant)
}
