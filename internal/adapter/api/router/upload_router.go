package router

import (
	"github.com/labstack/echo/v4"

	"hiawto/internal/adapter/api/handler"
	"hiawto/internal/adapter/api/middleware"
)

func SetupUploadRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	uploadHandler := handler.GetUploadHandler()

	uploads := e.Group("/v1/listings/:id/uploads")
	uploads.Use(authMiddleware.Authenticate)

	uploads.POST("", uploadHandler.EnqueuePhoto)
	uploads.GET("", uploadHandler.QueueStatus)
	uploads.DELETE("/:uploadId", uploadHandler.CancelUpload)
	uploads.POST("/:uploadId/ack", uploadHandler.AcknowledgeError)
}
