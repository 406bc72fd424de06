package handlers

import (
	"net/http"

	"github.com/subzcrib/billing-platform/internal/domain"
	"github.com/subzcrib/billing-platform/internal/service"
	"github.com/subzcrib/billing-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AuthHandler exposes login and registration
type AuthHandler struct {
	authSvc service.AuthService
	log     *logger.Logger
}

// NewAuthHandler creates the auth handler
func NewAuthHandler(authSvc service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, log: log}
}

// Login authenticates a user and returns a token
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid login request: %v", err)
		// Malformed credentials get the same answer as wrong ones
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Register creates a merchant tenant with its owning user
func (h *AuthHandler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid register request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authSvc.RegisterMerchant(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// RegisterCustomer creates a customer account under a merchant
func (h *AuthHandler) RegisterCustomer(c *gin.Context) {
	var req domain.RegisterCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid customer register request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authSvc.RegisterCustomer(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}
