package handler

import (
	"github.com/labstack/echo/v4"

	"hiawto/internal/usecase"
	"hiawto/pkg/response"
)

type InboxHandler struct {
	inboxUseCase *usecase.InboxUseCase
}

func NewInboxHandler(inboxUseCase *usecase.InboxUseCase) *InboxHandler {
	return &InboxHandler{
		inboxUseCase: inboxUseCase,
	}
}

func (h *InboxHandler) GetSummary(c echo.Context) error {
	userID := c.Get("uid").(string)

	summary, err := h.inboxUseCase.GetSummary(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, summary)
}

func (h *InboxHandler) TypingUsers(c echo.Context) error {
	threadID := c.Param("id")
	userID := c.Get("uid").(string)

	users, err := h.inboxUseCase.TypingUsers(c.Request().Context(), userID, threadID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, users)
}

func (h *InboxHandler) Search(c echo.Context) error {
	userID := c.Get("uid").(string)
	query := c.QueryParam("q")

	hits, err := h.inboxUseCase.Search(c.Request().Context(), userID, query)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, hits)
}
