package router

import (
	"github.com/labstack/echo/v4"

	"hiawto/internal/adapter/api/handler"
	"hiawto/internal/adapter/api/middleware"
)

// SetupThreadRouter sets up all messaging routes (excluding WebSocket)
func SetupThreadRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	threadHandler := handler.GetThreadHandler()

	threads := e.Group("/v1/threads")
	threads.Use(authMiddleware.Authenticate)

	// Thread management
	threads.POST("", threadHandler.EnsureThread)
	threads.GET("", threadHandler.GetUserThreads)
	threads.GET("/:id", threadHandler.GetThread)
	threads.DELETE("/:id", threadHandler.DeleteThread)

	// Messages
	threads.GET("/:id/messages", threadHandler.ListMessages)
	threads.POST("/:id/messages", threadHandler.SendMessage)
	threads.POST("/:id/messages/:messageId/reactions", threadHandler.ReactToMessage)
	threads.PUT("/:id/messages/:messageId/delivered", threadHandler.MarkMessageDelivered)

	// Inbox interactions
	threads.PUT("/:id/seen", threadHandler.MarkSeen)
	threads.PUT("/:id/typing", threadHandler.SetTyping)
	threads.POST("/:id/swipe", threadHandler.ResolveSwipe)
	threads.POST("/:id/draft", threadHandler.DraftReply)
}
