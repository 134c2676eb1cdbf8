package router

import (
	"github.com/labstack/echo/v4"

	"hiawto/internal/adapter/api/handler"
	"hiawto/internal/adapter/api/middleware"
)

func SetupListingRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	listingHandler := handler.GetListingHandler()

	// Public browse endpoints; a valid token only affects view counting
	public := e.Group("/v1/listings")
	public.Use(authMiddleware.OptionalAuthenticate)

	public.GET("", listingHandler.BrowseListings)
	public.GET("/search", listingHandler.SearchListings)
	public.GET("/:id", listingHandler.GetListing)

	// Seller and agent endpoints
	protected := e.Group("/v1/listings")
	protected.Use(authMiddleware.Authenticate)

	protected.POST("", listingHandler.CreateListing)
	protected.GET("/mine/all", listingHandler.ListMyListings)
	protected.PATCH("/:id", listingHandler.UpdateListing)
	protected.DELETE("/:id", listingHandler.DeleteListing)
	protected.POST("/:id/submit-review", listingHandler.SubmitForReview)
	protected.POST("/:id/close", listingHandler.MarkClosed)
	protected.POST("/:id/photos", listingHandler.AddPhoto)
	protected.PUT("/:id/photos", listingHandler.ReorderPhotos)
	protected.DELETE("/:id/photos", listingHandler.RemovePhoto)
}
