package router

import (
	"github.com/labstack/echo/v4"

	"hiawto/internal/adapter/api/handler"
	"hiawto/internal/adapter/api/middleware"
)

func SetupAdminRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	adminHandler := handler.GetAdminHandler()

	// Admin routes - require authentication and admin role
	admin := e.Group("/v1/admin")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(adminMiddleware.AdminOnly)

	// Support agents see the thread overview too; destructive thread
	// operations stay admin only
	staff := e.Group("/v1/admin")
	staff.Use(authMiddleware.Authenticate)
	staff.Use(adminMiddleware.AgentOrAdmin)
	staff.GET("/threads", adminHandler.ListAllThreads)

	// Thread moderation
	admin.POST("/threads/bulk-delete", adminHandler.BulkDeleteThreads)
	admin.POST("/threads/assign", adminHandler.AssignSupportThreads)

	// Listing moderation
	admin.POST("/listings/:id/moderate", adminHandler.ModerateListing)
	admin.PUT("/listings/:id/featured", adminHandler.SetFeatured)

	// User management
	admin.PUT("/users/:id/suspend", adminHandler.SuspendUser)

	// Dashboard
	admin.GET("/analytics", adminHandler.GetAnalytics)

	// Fraud review
	admin.GET("/fraud-reviews", adminHandler.ListFraudReviews)
	admin.GET("/fraud-reviews/export", adminHandler.ExportFraudReviews)
	admin.POST("/fraud-reviews/:id/resolve", adminHandler.ResolveFraudReview)
	admin.POST("/listings/:id/analyze", adminHandler.AnalyzeListing)
}
