package handlers

import (
	"net/http"

	"github.com/subzcrib/billing-platform/internal/api/rest/middleware"
	"github.com/subzcrib/billing-platform/internal/domain"
	"github.com/subzcrib/billing-platform/internal/service"
	"github.com/subzcrib/billing-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CustomerHandler exposes the customer roster over HTTP
type CustomerHandler struct {
	customerSvc service.CustomerService
	log         *logger.Logger
}

// NewCustomerHandler creates the customer handler
func NewCustomerHandler(customerSvc service.CustomerService, log *logger.Logger) *CustomerHandler {
	return &CustomerHandler{customerSvc: customerSvc, log: log}
}

// CreateCustomer adds a customer to the caller's merchant
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	caller, _ := middleware.CallerIdentity(c)

	var req domain.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.customerSvc.Create(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// GetCustomer returns a customer by ID
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	caller, _ := middleware.CallerIdentity(c)

	customer, err := h.customerSvc.GetByID(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

// GetCustomers returns the page of the caller's merchant customers
func (h *CustomerHandler) GetCustomers(c *gin.Context) {
	caller, _ := middleware.CallerIdentity(c)

	opts := listOptions(c)
	customers, total, err := h.customerSvc.List(c.Request.Context(), caller, opts)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customers": customers,
		"total":     total,
		"page":      opts.Page,
		"limit":     opts.Limit,
	})
}
