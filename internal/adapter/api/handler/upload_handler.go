package handler

import (
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"hiawto/internal/infrastructure/imaging"
	"hiawto/internal/usecase"
	"hiawto/pkg/errors"
	"hiawto/pkg/response"
)

type UploadHandler struct {
	uploadUseCase *usecase.UploadUseCase
}

func NewUploadHandler(uploadUseCase *usecase.UploadUseCase) *UploadHandler {
	return &UploadHandler{
		uploadUseCase: uploadUseCase,
	}
}

// EnqueuePhoto accepts a multipart photo with an optional crop rectangle and
// hands it to the serial upload queue. It returns immediately with the
// queued item; clients poll QueueStatus for progress.
func (h *UploadHandler) EnqueuePhoto(c echo.Context) error {
	listingID := c.Param("id")
	userID := c.Get("uid").(string)

	file, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.BadRequest("Missing or invalid file", err))
	}

	fileType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(fileType, "image/") {
		return response.Error(c, errors.BadRequest("Only image uploads are supported", nil))
	}

	src, err := file.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Unable to read file", err))
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return response.Error(c, errors.Internal("Unable to read file", err))
	}

	crop, err := parseCrop(c)
	if err != nil {
		return response.Error(c, err)
	}

	view, err := h.uploadUseCase.EnqueuePhoto(c.Request().Context(), userID, listingID, file.Filename, data, crop)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, view)
}

func (h *UploadHandler) QueueStatus(c echo.Context) error {
	listingID := c.Param("id")

	return response.Success(c, h.uploadUseCase.QueueStatus(listingID))
}

func (h *UploadHandler) CancelUpload(c echo.Context) error {
	uploadID := c.Param("uploadId")

	if err := h.uploadUseCase.CancelUpload(uploadID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"cancelled": true})
}

func (h *UploadHandler) AcknowledgeError(c echo.Context) error {
	uploadID := c.Param("uploadId")

	if err := h.uploadUseCase.AcknowledgeError(uploadID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"acknowledged": true})
}

// parseCrop reads the optional crop form fields. All four must be present
// for a crop to apply; width and height must be positive.
func parseCrop(c echo.Context) (*imaging.CropRect, error) {
	widthStr := c.FormValue("crop_width")
	heightStr := c.FormValue("crop_height")
	if widthStr == "" && heightStr == "" {
		return nil, nil
	}

	x, errX := strconv.Atoi(c.FormValue("crop_x"))
	y, errY := strconv.Atoi(c.FormValue("crop_y"))
	width, errW := strconv.Atoi(widthStr)
	height, errH := strconv.Atoi(heightStr)
	if errX != nil || errY != nil || errW != nil || errH != nil {
		return nil, errors.BadRequest("Crop parameters must be integers", nil)
	}
	if width < 1 || height < 1 {
		return nil, errors.BadRequest("Crop dimensions must be positive", nil)
	}

	return &imaging.CropRect{X: x, Y: y, Width: width, Height: height}, nil
}
