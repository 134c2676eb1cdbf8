package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hiawto/internal/adapter/api/handler"
	"hiawto/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware, wsHandler *handler.WebSocketHandler) {
	SetupAuthRouter(e, authMiddleware)
	SetupUserRouter(e, authMiddleware)
	SetupListingRouter(e, authMiddleware, adminMiddleware)
	SetupThreadRouter(e, authMiddleware)
	SetupInboxRouter(e, authMiddleware)
	SetupUploadRouter(e, authMiddleware)
	SetupAdminRouter(e, authMiddleware, adminMiddleware)
	SetupWebSocketRouter(e, wsHandler)
	SetupHealthRouter(e)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
