package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/subzcrib/billing-platform/internal/api/rest/middleware"
	"github.com/subzcrib/billing-platform/internal/auth"
	"github.com/subzcrib/billing-platform/internal/domain"
	"github.com/subzcrib/billing-platform/internal/repository"
	"github.com/subzcrib/billing-platform/internal/service"
	"github.com/subzcrib/billing-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SubscriptionHandler exposes the subscription lifecycle over HTTP
type SubscriptionHandler struct {
	subscriptionSvc service.SubscriptionService
	log             *logger.Logger
}

// NewSubscriptionHandler creates the subscription handler
func NewSubscriptionHandler(subscriptionSvc service.SubscriptionService, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionSvc: subscriptionSvc, log: log}
}

// CreateSubscription creates a new subscription
func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	caller, _ := middleware.CallerIdentity(c)

	var req domain.SubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subscription, err := h.subscriptionSvc.Create(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, subscription)
}

// GetSubscription returns a subscription by ID
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	caller, _ := middleware.CallerIdentity(c)

	subscription, err := h.subscriptionSvc.GetByID(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, subscription)
}

// GetSubscriptions returns the caller's page of subscriptions
func (h *SubscriptionHandler) GetSubscriptions(c *gin.Context) {
	caller, _ := middleware.CallerIdentity(c)

	opts := listOptions(c)
	status := c.Query("status")

	subs, total, err := h.subscriptionSvc.List(c.Request.Context(), caller, status, opts)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subscriptions": subs,
		"total":         total,
		"page":          opts.Page,
		"limit":         opts.Limit,
	})
}

// UpdateSubscription changes non-lifecycle fields of a subscription
func (h *SubscriptionHandler) UpdateSubscription(c *gin.Context) {
	caller, _ := middleware.CallerIdentity(c)

	var req domain.SubscriptionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subscription, err := h.subscriptionSvc.Update(c.Request.Context(), caller, c.Param("id"), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, subscription)
}

// PauseSubscription freezes an active subscription
func (h *SubscriptionHandler) PauseSubscription(c *gin.Context) {
	h.transition(c, h.subscriptionSvc.Pause)
}

// ResumeSubscription reactivates a paused subscription
func (h *SubscriptionHandler) ResumeSubscription(c *gin.Context) {
	h.transition(c, h.subscriptionSvc.Resume)
}

// CancelSubscription ends a subscription
func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	h.transition(c, h.subscriptionSvc.Cancel)
}

// RenewSubscription advances the billing date or expires the
// subscription
func (h *SubscriptionHandler) RenewSubscription(c *gin.Context) {
	h.transition(c, h.subscriptionSvc.Renew)
}

// DeleteSubscription removes a subscription record entirely
func (h *SubscriptionHandler) DeleteSubscription(c *gin.Context) {
	caller, _ := middleware.CallerIdentity(c)

	if err := h.subscriptionSvc.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *SubscriptionHandler) transition(c *gin.Context, fn func(ctx context.Context, caller *auth.Identity, id string) (domain.Subscription, error)) {
	caller, _ := middleware.CallerIdentity(c)

	subscription, err := fn(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, subscription)
}

// listOptions reads page/limit query parameters with sane fallbacks
func listOptions(c *gin.Context) repository.ListOptions {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return repository.ListOptions{Page: page, Limit: limit}.Normalize()
}
