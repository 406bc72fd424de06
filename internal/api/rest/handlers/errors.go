package handlers

import (
	"errors"
	"net/http"

	"github.com/subzcrib/billing-platform/internal/domain"
	"github.com/subzcrib/billing-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// respondError maps a typed domain error onto the HTTP status taxonomy.
// Internal failures are logged with detail but the response body never
// carries it.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	var validationErrs domain.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": validationErrs.Fields()})
	case errors.Is(err, domain.ErrInvalidCycle):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown billing cycle"})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		// Same body for every credential failure
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	case errors.Is(err, domain.ErrForbidden):
		// Never reveals whether the target exists
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied for this scope"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.Is(err, domain.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "Resource already exists"})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Concurrent update conflict, retry the request"})
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Error("Unhandled error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
