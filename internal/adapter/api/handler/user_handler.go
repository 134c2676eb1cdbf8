package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"hiawto/internal/usecase"
	"hiawto/pkg/errors"
	"hiawto/pkg/response"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
	}
}

type updateProfileRequest struct {
	Username string `json:"username" validate:"omitempty,min=3"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone" validate:"omitempty,e164"`
	Bio      string `json:"bio" validate:"omitempty,max=500"`
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	uid := c.Get("uid").(string)

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, errors.BadRequest(err.Error(), err))
	}

	user, err := h.userUseCase.UpdateProfile(c.Request().Context(), uid, usecase.UpdateProfileInput{
		Username: req.Username,
		FullName: req.FullName,
		Phone:    req.Phone,
		Bio:      req.Bio,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	userID := c.Param("id")

	user, err := h.userUseCase.GetUserProfile(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *UserHandler) UploadAvatar(c echo.Context) error {
	uid := c.Get("uid").(string)

	file, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.BadRequest("Missing or invalid file", err))
	}

	fileType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(fileType, "image/") {
		return response.Error(c, errors.BadRequest("Avatar must be an image", nil))
	}

	src, err := file.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Unable to read file", err))
	}
	defer src.Close()

	user, err := h.userUseCase.UploadAvatar(c.Request().Context(), uid, src, file.Size, fileType)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *UserHandler) SetPresence(c echo.Context) error {
	uid := c.Get("uid").(string)

	var req struct {
		Online bool `json:"online"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := h.userUseCase.SetPresence(c.Request().Context(), uid, req.Online); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"online": req.Online})
}

func (h *UserHandler) ListAgents(c echo.Context) error {
	agents, err := h.userUseCase.ListAgents(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, agents)
}
