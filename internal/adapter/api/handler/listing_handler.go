package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"hiawto/internal/usecase"
	"hiawto/pkg/errors"
	"hiawto/pkg/response"
	"hiawto/pkg/utils"
)

type ListingHandler struct {
	listingUseCase *usecase.ListingUseCase
}

func NewListingHandler(listingUseCase *usecase.ListingUseCase) *ListingHandler {
	return &ListingHandler{
		listingUseCase: listingUseCase,
	}
}

type createListingRequest struct {
	Street      string  `json:"street" validate:"required"`
	City        string  `json:"city" validate:"required"`
	State       string  `json:"state" validate:"required,len=2"`
	Zip         string  `json:"zip" validate:"omitempty,len=5"`
	Description string  `json:"description" validate:"omitempty,max=5000"`
	Price       float64 `json:"price" validate:"gte=0"`
	Rent        float64 `json:"rent" validate:"gte=0"`
	Beds        int     `json:"beds" validate:"gte=0,lte=20"`
	Baths       float64 `json:"baths" validate:"gte=0,lte=20"`
	SquareFeet  int     `json:"square_feet" validate:"gte=0"`
	AgentID     string  `json:"agent_id"`
}

type updateListingRequest struct {
	Street      *string  `json:"street"`
	City        *string  `json:"city"`
	State       *string  `json:"state" validate:"omitempty,len=2"`
	Zip         *string  `json:"zip" validate:"omitempty,len=5"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Rent        *float64 `json:"rent" validate:"omitempty,gte=0"`
	Beds        *int     `json:"beds" validate:"omitempty,gte=0,lte=20"`
	Baths       *float64 `json:"baths" validate:"omitempty,gte=0,lte=20"`
	SquareFeet  *int     `json:"square_feet" validate:"omitempty,gte=0"`
}

func (h *ListingHandler) CreateListing(c echo.Context) error {
	var req createListingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, errors.BadRequest(err.Error(), err))
	}

	sellerID := c.Get("uid").(string)

	listing, err := h.listingUseCase.CreateListing(c.Request().Context(), sellerID, usecase.CreateListingInput{
		Street:      req.Street,
		City:        req.City,
		State:       req.State,
		Zip:         req.Zip,
		Description: req.Description,
		Price:       req.Price,
		Rent:        req.Rent,
		Beds:        req.Beds,
		Baths:       req.Baths,
		SquareFeet:  req.SquareFeet,
		AgentID:     req.AgentID,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, listing)
}

func (h *ListingHandler) GetListing(c echo.Context) error {
	listingID := c.Param("id")

	viewerID := ""
	if uid, ok := c.Get("uid").(string); ok {
		viewerID = uid
	}

	listing, err := h.listingUseCase.GetListing(c.Request().Context(), viewerID, listingID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listing)
}

func (h *ListingHandler) UpdateListing(c echo.Context) error {
	listingID := c.Param("id")
	userID := c.Get("uid").(string)

	var req updateListingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, errors.BadRequest(err.Error(), err))
	}

	listing, err := h.listingUseCase.UpdateListing(c.Request().Context(), userID, listingID, usecase.UpdateListingInput{
		Street:      req.Street,
		City:        req.City,
		State:       req.State,
		Zip:         req.Zip,
		Description: req.Description,
		Price:       req.Price,
		Rent:        req.Rent,
		Beds:        req.Beds,
		Baths:       req.Baths,
		SquareFeet:  req.SquareFeet,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listing)
}

func (h *ListingHandler) DeleteListing(c echo.Context) error {
	listingID := c.Param("id")
	userID := c.Get("uid").(string)

	if err := h.listingUseCase.DeleteListing(c.Request().Context(), userID, listingID, false); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"deleted": true})
}

func (h *ListingHandler) BrowseListings(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	input := usecase.BrowseListingsInput{
		City:   c.QueryParam("city"),
		State:  c.QueryParam("state"),
		Sort:   c.QueryParam("sort"),
		Limit:  pagination.PageSize,
		Offset: pagination.Offset,
	}

	if minPrice := c.QueryParam("min_price"); minPrice != "" {
		if parsed, err := strconv.ParseFloat(minPrice, 64); err == nil {
			input.MinPrice = parsed
		}
	}
	if maxPrice := c.QueryParam("max_price"); maxPrice != "" {
		if parsed, err := strconv.ParseFloat(maxPrice, 64); err == nil {
			input.MaxPrice = parsed
		}
	}
	if minBeds := c.QueryParam("min_beds"); minBeds != "" {
		if parsed, err := strconv.Atoi(minBeds); err == nil {
			input.MinBeds = parsed
		}
	}
	if featured := c.QueryParam("featured"); featured != "" {
		input.Featured, _ = strconv.ParseBool(featured)
	}

	listings, total, err := h.listingUseCase.BrowseListings(c.Request().Context(), input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, listings, total, pagination.PageSize, pagination.Offset)
}

func (h *ListingHandler) SearchListings(c echo.Context) error {
	query := c.QueryParam("q")
	pagination := utils.GetPaginationParams(c)

	listings, total, err := h.listingUseCase.SearchListings(c.Request().Context(), query, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, listings, total, pagination.PageSize, pagination.Offset)
}

func (h *ListingHandler) ListMyListings(c echo.Context) error {
	sellerID := c.Get("uid").(string)
	status := c.QueryParam("status")
	pagination := utils.GetPaginationParams(c)

	listings, total, err := h.listingUseCase.ListMyListings(c.Request().Context(), sellerID, status, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, listings, total, pagination.PageSize, pagination.Offset)
}

func (h *ListingHandler) SubmitForReview(c echo.Context) error {
	listingID := c.Param("id")
	userID := c.Get("uid").(string)

	listing, err := h.listingUseCase.SubmitForReview(c.Request().Context(), userID, listingID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listing)
}

func (h *ListingHandler) MarkClosed(c echo.Context) error {
	listingID := c.Param("id")
	userID := c.Get("uid").(string)

	var req struct {
		Outcome string `json:"outcome" validate:"required,oneof=sold rented"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, errors.BadRequest(err.Error(), err))
	}

	listing, err := h.listingUseCase.MarkClosed(c.Request().Context(), userID, listingID, req.Outcome)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listing)
}

func (h *ListingHandler) AddPhoto(c echo.Context) error {
	listingID := c.Param("id")
	userID := c.Get("uid").(string)

	var req struct {
		URL string `json:"url" validate:"required,url"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, errors.BadRequest(err.Error(), err))
	}

	listing, err := h.listingUseCase.AddPhoto(c.Request().Context(), userID, listingID, req.URL)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listing)
}

func (h *ListingHandler) ReorderPhotos(c echo.Context) error {
	listingID := c.Param("id")
	userID := c.Get("uid").(string)

	var req struct {
		Photos []string `json:"photos" validate:"required,min=1"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, errors.BadRequest(err.Error(), err))
	}

	listing, err := h.listingUseCase.ReorderPhotos(c.Request().Context(), userID, listingID, req.Photos)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listing)
}

func (h *ListingHandler) RemovePhoto(c echo.Context) error {
	listingID := c.Param("id")
	userID := c.Get("uid").(string)

	var req struct {
		URL string `json:"url" validate:"required,url"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, errors.BadRequest(err.Error(), err))
	}

	listing, err := h.listingUseCase.RemovePhoto(c.Request().Context(), userID, listingID, req.URL)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listing)
}
