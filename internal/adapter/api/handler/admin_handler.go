package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"hiawto/internal/usecase"
	"hiawto/pkg/errors"
	"hiawto/pkg/response"
	"hiawto/pkg/utils"
)

type AdminHandler struct {
	adminUseCase *usecase.AdminUseCase
	fraudUseCase *usecase.FraudReviewUseCase
}

func NewAdminHandler(adminUseCase *usecase.AdminUseCase, fraudUseCase *usecase.FraudReviewUseCase) *AdminHandler {
	return &AdminHandler{
		adminUseCase: adminUseCase,
		fraudUseCase: fraudUseCase,
	}
}

type bulkThreadRequest struct {
	ThreadIDs []string `json:"thread_ids" validate:"required,min=1,max=100"`
}

func (h *AdminHandler) BulkDeleteThreads(c echo.Context) error {
	var req bulkThreadRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, errors.BadRequest(err.Error(), err))
	}

	result, err := h.adminUseCase.BulkDeleteThreads(c.Request().Context(), req.ThreadIDs)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *AdminHandler) AssignSupportThreads(c echo.Context) error {
	var req struct {
		ThreadIDs []string `json:"thread_ids" validate:"required,min=1,max=100"`
		AgentID   string   `json:"agent_id" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, errors.BadRequest(err.Error(), err))
	}

	result, err := h.adminUseCase.AssignSupportThreads(c.Request().Context(), req.ThreadIDs, req.AgentID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *AdminHandler) ListAllThreads(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	threads, total, err := h.adminUseCase.ListAllThreads(c.Request().Context(), pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, threads, total, pagination.PageSize, pagination.Offset)
}

func (h *AdminHandler) ModerateListing(c echo.Context) error {
	listingID := c.Param("id")
	adminID := c.Get("uid").(string)

	var req struct {
		Decision string `json:"decision" validate:"required,oneof=approve flag unflag"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, errors.BadRequest(err.Error(), err))
	}

	listing, err := h.adminUseCase.ModerateListing(c.Request().Context(), adminID, listingID, req.Decision)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listing)
}

func (h *AdminHandler) SetFeatured(c echo.Context) error {
	listingID := c.Param("id")

	var req struct {
		Featured bool `json:"featured"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	listing, err := h.adminUseCase.SetFeatured(c.Request().Context(), listingID, req.Featured)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listing)
}

func (h *AdminHandler) SuspendUser(c echo.Context) error {
	userID := c.Param("id")
	adminID := c.Get("uid").(string)

	var req struct {
		Suspended bool `json:"suspended"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	user, err := h.adminUseCase.SuspendUser(c.Request().Context(), adminID, userID, req.Suspended)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *AdminHandler) GetAnalytics(c echo.Context) error {
	summary, err := h.adminUseCase.GetAnalytics(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, summary)
}

func (h *AdminHandler) AnalyzeListing(c echo.Context) error {
	listingID := c.Param("id")

	review, err := h.fraudUseCase.AnalyzeListing(c.Request().Context(), listingID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, review)
}

func (h *AdminHandler) ListFraudReviews(c echo.Context) error {
	status := c.QueryParam("status")
	pagination := utils.GetPaginationParams(c)

	reviews, total, err := h.fraudUseCase.ListReviews(c.Request().Context(), status, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, reviews, total, pagination.PageSize, pagination.Offset)
}

func (h *AdminHandler) ResolveFraudReview(c echo.Context) error {
	reviewID := c.Param("id")
	adminID := c.Get("uid").(string)

	var req struct {
		Decision string `json:"decision" validate:"required,oneof=cleared blocked"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, errors.BadRequest(err.Error(), err))
	}

	review, err := h.fraudUseCase.ResolveReview(c.Request().Context(), adminID, reviewID, req.Decision)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, review)
}

func (h *AdminHandler) ExportFraudReviews(c echo.Context) error {
	status := c.QueryParam("status")

	data, err := h.fraudUseCase.ExportCSV(c.Request().Context(), status)
	if err != nil {
		return response.Error(c, err)
	}

	filename := fmt.Sprintf("fraud-reviews-%s.csv", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/csv", data)
}
