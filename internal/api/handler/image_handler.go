package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/revuo/reviews-api/internal/api/metrics"
	"github.com/revuo/reviews-api/internal/core/ports"
)

// maxAttachFiles mirrors the service-side bound so oversized requests fail
// before any file is read into memory.
const maxAttachFiles = 4

// ImageHandler handles the hosted-image routes on a review.
type ImageHandler struct {
	images ports.ImageService
}

func NewImageHandler(images ports.ImageService) *ImageHandler {
	return &ImageHandler{images: images}
}

// Attach uploads up to 4 multipart files (field "images") and appends their
// public identifiers to the review.
//
// @Summary      Attach images to a review
// @Tags         reviews
// @Accept       multipart/form-data
// @Produce      json
// @Param        id      path      string  true  "Review id"
// @Param        images  formData  file    true  "Image files (max 4)"
// @Success      200     {object}  dataResponse
// @Failure      401     {object}  messageResponse
// @Failure      422     {object}  messageResponse
// @Router       /api/reviews/{id}/images [patch]
func (h *ImageHandler) Attach(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid multipart payload")
	}
	files := form.File["images"]
	if len(files) == 0 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "no images provided")
	}
	if len(files) > maxAttachFiles {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "too many images, at most 4 per upload")
	}

	uploads := make([]ports.ImageUpload, 0, len(files))
	for _, fh := range files {
		upload, err := readUpload(fh)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "could not read uploaded file")
		}
		uploads = append(uploads, upload)
	}

	review, err := h.images.Attach(c.Request().Context(), c.Param("id"), userID, uploads)
	if err != nil {
		metrics.ImageUploadsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.ImageUploadsTotal.WithLabelValues("ok").Inc()
	metrics.MutationsTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, dataResponse{Data: toReviewResponse(review)})
}

// Detach removes one hosted image from the review by public identifier.
//
// @Summary      Detach an image from a review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Review id"
// @Param        body  body      detachImageRequest  true  "Image public id"
// @Success      200   {object}  dataResponse
// @Failure      401   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /api/reviews/{id}/images/delete [patch]
func (h *ImageHandler) Detach(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req detachImageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	review, err := h.images.Detach(c.Request().Context(), c.Param("id"), userID, req.PublicID)
	if err != nil {
		return err
	}

	metrics.MutationsTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, dataResponse{Data: toReviewResponse(review)})
}

func readUpload(fh *multipart.FileHeader) (ports.ImageUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return ports.ImageUpload{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return ports.ImageUpload{}, err
	}

	return ports.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
