package rest

import (
	"github.com/subzcrib/billing-platform/internal/api/rest/handlers"
	"github.com/subzcrib/billing-platform/internal/api/rest/middleware"
	"github.com/subzcrib/billing-platform/internal/auth"
	"github.com/subzcrib/billing-platform/internal/service"
	"github.com/subzcrib/billing-platform/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles the application services the router depends on
type Services struct {
	Auth         service.AuthService
	Subscription service.SubscriptionService
	Customer     service.CustomerService
	Product      service.ProductService
	Merchant     service.MerchantService
	Analytics    service.AnalyticsService
}

// SetupRouter configures the Gin router with routes and middleware
func SetupRouter(svcs Services, issuer auth.TokenIssuer, registry *prometheus.Registry, log *logger.Logger) *gin.Engine {
	r := gin.New()

	r.Use(middleware.LoggerMiddleware(log))
	r.Use(gin.Recovery())

	r.GET("/health", handlers.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	authHandler := handlers.NewAuthHandler(svcs.Auth, log)
	subscriptionHandler := handlers.NewSubscriptionHandler(svcs.Subscription, log)
	customerHandler := handlers.NewCustomerHandler(svcs.Customer, log)
	productHandler := handlers.NewProductHandler(svcs.Product, log)
	merchantHandler := handlers.NewMerchantHandler(svcs.Merchant, log)
	analyticsHandler := handlers.NewAnalyticsHandler(svcs.Analytics, log)

	v1 := r.Group("/api/v1")
	{
		// Public auth endpoints
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/register-customer", authHandler.RegisterCustomer)
		}

		// Everything below requires a verified identity
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(issuer, log))
		{
			subscriptions := protected.Group("/subscriptions")
			{
				subscriptions.GET("", subscriptionHandler.GetSubscriptions)
				subscriptions.GET("/:id", subscriptionHandler.GetSubscription)
				subscriptions.POST("", subscriptionHandler.CreateSubscription)
				subscriptions.PUT("/:id", subscriptionHandler.UpdateSubscription)
				subscriptions.DELETE("/:id", subscriptionHandler.DeleteSubscription)
				subscriptions.POST("/:id/pause", subscriptionHandler.PauseSubscription)
				subscriptions.POST("/:id/resume", subscriptionHandler.ResumeSubscription)
				subscriptions.POST("/:id/cancel", subscriptionHandler.CancelSubscription)
				subscriptions.POST("/:id/renew", subscriptionHandler.RenewSubscription)
			}

			customers := protected.Group("/customers")
			{
				customers.GET("", customerHandler.GetCustomers)
				customers.GET("/:id", customerHandler.GetCustomer)
				customers.POST("", customerHandler.CreateCustomer)
			}

			products := protected.Group("/products")
			{
				products.GET("", productHandler.GetProducts)
				products.GET("/:id", productHandler.GetProduct)
				products.POST("", productHandler.CreateProduct)
				products.PUT("/:id", productHandler.UpdateProduct)
			}

			merchants := protected.Group("/merchants")
			{
				merchants.GET("", merchantHandler.GetMerchants)
				merchants.GET("/:id", merchantHandler.GetMerchant)
				merchants.PUT("/:id", merchantHandler.UpdateMerchant)
				merchants.POST("/:id/approve", merchantHandler.ApproveMerchant)
			}

			protected.GET("/analytics", analyticsHandler.GetReport)
		}
	}

	return r
}
