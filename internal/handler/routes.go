package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/islandpros/directory_api/internal/middleware"
)

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health        *HealthHandler
	Directory     *DirectoryHandler
	Reference     *ReferenceHandler
	ProviderAdmin *ProviderAdminHandler
	SSE           *SSEHandler
}

// SetupRoutes registers all routes.
func SetupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware) {
	router.GET("/v1/health", handlers.Health.GetHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	{
		v1.GET("/providers", handlers.Directory.ListProviders)
		v1.GET("/providers/:id", handlers.Directory.GetProvider)
		v1.GET("/categories", handlers.Reference.GetCategories)
		v1.GET("/areas", handlers.Reference.GetAreas)
	}

	// Authenticates with ?token= because EventSource cannot send headers.
	if handlers.SSE != nil {
		router.GET("/v1/admin/events", handlers.SSE.Stream)
	}

	admin := router.Group("/v1/admin")
	admin.Use(jwtMiddleware.Handle())
	{
		admin.POST("/providers", handlers.ProviderAdmin.Register)
		admin.PUT("/providers/:id/status", handlers.ProviderAdmin.UpdateStatus)
		admin.PUT("/providers/:id/plan", handlers.ProviderAdmin.UpdatePlan)
		admin.PUT("/providers/:id/lifecycle", handlers.ProviderAdmin.UpdateLifecycle)
		admin.PUT("/providers/:id/categories", handlers.ProviderAdmin.SetCategories)
		admin.PUT("/providers/:id/areas", handlers.ProviderAdmin.SetAreas)
		admin.POST("/providers/:id/badges", handlers.ProviderAdmin.AssignBadge)
		admin.DELETE("/providers/:id/badges/:badge", handlers.ProviderAdmin.RemoveBadge)
		admin.POST("/providers/:id/activity", handlers.ProviderAdmin.RecordActivity)

		admin.POST("/categories", handlers.Reference.CreateCategory)
		admin.POST("/areas", handlers.Reference.CreateArea)
	}
}
