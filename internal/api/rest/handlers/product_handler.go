package handlers

import (
	"net/http"

	"github.com/subzcrib/billing-platform/internal/api/rest/middleware"
	"github.com/subzcrib/billing-platform/internal/domain"
	"github.com/subzcrib/billing-platform/internal/service"
	"github.com/subzcrib/billing-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ProductHandler exposes the product catalog over HTTP
type ProductHandler struct {
	productSvc service.ProductService
	log        *logger.Logger
}

// NewProductHandler creates the product handler
func NewProductHandler(productSvc service.ProductService, log *logger.Logger) *ProductHandler {
	return &ProductHandler{productSvc: productSvc, log: log}
}

// CreateProduct adds a product to the caller's catalog
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	caller, _ := middleware.CallerIdentity(c)

	var req domain.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.productSvc.Create(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// GetProduct returns a product by ID
func (h *ProductHandler) GetProduct(c *gin.Context) {
	caller, _ := middleware.CallerIdentity(c)

	product, err := h.productSvc.GetByID(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// GetProducts returns the page of the caller's catalog
func (h *ProductHandler) GetProducts(c *gin.Context) {
	caller, _ := middleware.CallerIdentity(c)

	opts := listOptions(c)
	products, total, err := h.productSvc.List(c.Request.Context(), caller, opts)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    total,
		"page":     opts.Page,
		"limit":    opts.Limit,
	})
}

// UpdateProduct changes a product
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	caller, _ := middleware.CallerIdentity(c)

	var req domain.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.productSvc.Update(c.Request.Context(), caller, c.Param("id"), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, product)
}
