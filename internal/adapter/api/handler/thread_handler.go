package handler

import (
	"github.com/labstack/echo/v4"

	"hiawto/internal/usecase"
	"hiawto/pkg/errors"
	"hiawto/pkg/response"
	"hiawto/pkg/utils"
)

type ThreadHandler struct {
	messagingUseCase *usecase.MessagingUseCase
}

func NewThreadHandler(messagingUseCase *usecase.MessagingUseCase) *ThreadHandler {
	return &ThreadHandler{
		messagingUseCase: messagingUseCase,
	}
}

type ensureThreadRequest struct {
	ThreadID    string `json:"thread_id"`
	OtherUserID string `json:"other_user_id"`
	ListingID   string `json:"listing_id"`
	Subject     string `json:"subject" validate:"omitempty,max=200"`
	Type        string `json:"type" validate:"omitempty,oneof=direct support"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
	Type string `json:"type" validate:"omitempty,oneof=text system"`
}

// EnsureThread opens an existing thread when thread_id is supplied, and
// otherwise creates a fresh one for the given counterpart.
func (h *ThreadHandler) EnsureThread(c echo.Context) error {
	var req ensureThreadRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, errors.BadRequest(err.Error(), err))
	}

	userID := c.Get("uid").(string)

	thread, err := h.messagingUseCase.EnsureThread(c.Request().Context(), userID, usecase.EnsureThreadInput{
		ThreadID:    req.ThreadID,
		OtherUserID: req.OtherUserID,
		ListingID:   req.ListingID,
		Subject:     req.Subject,
		Type:        req.Type,
	})
	if err != nil {
		return response.Error(c, err)
	}

	if req.ThreadID != "" {
		return response.Success(c, thread)
	}
	return response.Created(c, thread)
}

func (h *ThreadHandler) GetUserThreads(c echo.Context) error {
	userID := c.Get("uid").(string)
	pagination := utils.GetPaginationParams(c)

	threads, total, err := h.messagingUseCase.GetUserThreads(c.Request().Context(), userID, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, threads, total, pagination.PageSize, pagination.Offset)
}

func (h *ThreadHandler) GetThread(c echo.Context) error {
	threadID := c.Param("id")
	userID := c.Get("uid").(string)

	thread, err := h.messagingUseCase.GetThread(c.Request().Context(), userID, threadID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, thread)
}

func (h *ThreadHandler) ListMessages(c echo.Context) error {
	threadID := c.Param("id")
	userID := c.Get("uid").(string)
	pagination := utils.GetPaginationParams(c)

	messages, total, err := h.messagingUseCase.ListMessages(c.Request().Context(), userID, threadID, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, messages, total, pagination.PageSize, pagination.Offset)
}

func (h *ThreadHandler) SendMessage(c echo.Context) error {
	threadID := c.Param("id")
	userID := c.Get("uid").(string)

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, errors.BadRequest(err.Error(), err))
	}

	message, err := h.messagingUseCase.SendMessage(c.Request().Context(), userID, usecase.SendMessageInput{
		ThreadID: threadID,
		Text:     req.Text,
		Type:     req.Type,
	})
	if err != nil {
		return response.Error(c, err)
	}

	// Blank sends are dropped without an error; report them as such.
	if message == nil {
		return response.Success(c, map[string]bool{"sent": false})
	}

	return response.Created(c, message)
}

func (h *ThreadHandler) MarkSeen(c echo.Context) error {
	threadID := c.Param("id")
	userID := c.Get("uid").(string)

	if err := h.messagingUseCase.MarkThreadSeen(c.Request().Context(), userID, threadID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"seen": true})
}

func (h *ThreadHandler) SetTyping(c echo.Context) error {
	threadID := c.Param("id")
	userID := c.Get("uid").(string)

	var req struct {
		Typing bool `json:"typing"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := h.messagingUseCase.SetTyping(c.Request().Context(), userID, threadID, req.Typing); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"typing": req.Typing})
}

func (h *ThreadHandler) ReactToMessage(c echo.Context) error {
	threadID := c.Param("id")
	messageID := c.Param("messageId")
	userID := c.Get("uid").(string)

	var req struct {
		Reaction string `json:"reaction" validate:"required,max=16"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, errors.BadRequest(err.Error(), err))
	}

	if err := h.messagingUseCase.ReactToMessage(c.Request().Context(), userID, threadID, messageID, req.Reaction); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"reaction": req.Reaction})
}

// ResolveSwipe maps a horizontal swipe distance on an inbox row to its
// gesture outcome and applies it server side.
func (h *ThreadHandler) ResolveSwipe(c echo.Context) error {
	threadID := c.Param("id")
	userID := c.Get("uid").(string)

	var req struct {
		Delta float64 `json:"delta"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	action, err := h.messagingUseCase.ResolveSwipe(c.Request().Context(), userID, threadID, req.Delta)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"action": action.String()})
}

func (h *ThreadHandler) DraftReply(c echo.Context) error {
	threadID := c.Param("id")
	userID := c.Get("uid").(string)

	draft, err := h.messagingUseCase.DraftReply(c.Request().Context(), userID, threadID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"draft": draft})
}

func (h *ThreadHandler) DeleteThread(c echo.Context) error {
	threadID := c.Param("id")
	userID := c.Get("uid").(string)

	if err := h.messagingUseCase.DeleteThread(c.Request().Context(), userID, threadID, false); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"deleted": true})
}

func (h *ThreadHandler) MarkMessageDelivered(c echo.Context) error {
	threadID := c.Param("id")
	messageID := c.Param("messageId")
	userID := c.Get("uid").(string)

	if err := h.messagingUseCase.MarkMessageDelivered(c.Request().Context(), userID, threadID, messageID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"delivered": true})
}
