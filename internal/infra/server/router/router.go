// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/finance-tracker/budget-sync/internal/infra/metrics"
	"github.com/finance-tracker/budget-sync/internal/integration/entrypoint/controller"
	"github.com/finance-tracker/budget-sync/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine            *gin.Engine
	healthController  *controller.HealthController
	importController  *controller.ImportController
	budgetController  *controller.BudgetController
	importRateLimiter *middleware.RateLimiter
	authMiddleware    *middleware.AuthMiddleware
	metrics           *metrics.Metrics
}

// NewRouter creates a new router instance with all dependencies.
// A nil metrics disables request instrumentation and the /metrics endpoint.
func NewRouter(
	healthController *controller.HealthController,
	importController *controller.ImportController,
	budgetController *controller.BudgetController,
	importRateLimiter *middleware.RateLimiter,
	authMiddleware *middleware.AuthMiddleware,
	metrics *metrics.Metrics,
) *Router {
	return &Router{
		healthController:  healthController,
		importController:  importController,
		budgetController:  budgetController,
		importRateLimiter: importRateLimiter,
		authMiddleware:    authMiddleware,
		metrics:           metrics,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	// Set Gin mode based on environment
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	r.engine = gin.New()
	r.engine.Use(gin.Logger(), gin.Recovery())
	if r.metrics != nil {
		r.engine.Use(r.metrics.Middleware())
	}

	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check and metrics endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
	if r.metrics != nil {
		r.engine.GET("/metrics", gin.WrapH(r.metrics.Handler()))
	}
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	if r.authMiddleware == nil {
		return
	}

	v1 := r.engine.Group("/api/v1")
	v1.Use(r.authMiddleware.Authenticate())
	{
		if r.importController != nil {
			imports := v1.Group("/transactions/import")
			if r.importRateLimiter != nil {
				imports.Use(r.importRateLimiter.Middleware())
			}
			{
				imports.POST("", r.importController.Import)
				imports.POST("/file", r.importController.ImportFile)
			}
		}

		if r.budgetController != nil {
			budgets := v1.Group("/budgets")
			{
				budgets.POST("/materialize", r.budgetController.Materialize)
			}
		}
	}
}
