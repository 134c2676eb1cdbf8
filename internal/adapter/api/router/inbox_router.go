package router

import (
	"github.com/labstack/echo/v4"

	"hiawto/internal/adapter/api/handler"
	"hiawto/internal/adapter/api/middleware"
)

func SetupInboxRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	inboxHandler := handler.GetInboxHandler()

	inbox := e.Group("/v1/inbox")
	inbox.Use(authMiddleware.Authenticate)

	inbox.GET("/summary", inboxHandler.GetSummary)
	inbox.GET("/search", inboxHandler.Search)
	inbox.GET("/threads/:id/typing", inboxHandler.TypingUsers)
}
