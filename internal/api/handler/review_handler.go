package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/revuo/reviews-api/internal/api/metrics"
	"github.com/revuo/reviews-api/internal/core/ports"
)

// ReviewHandler handles the review CRUD routes.
type ReviewHandler struct {
	reviews ports.ReviewService
}

func NewReviewHandler(reviews ports.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// List returns every review, newest first, authors populated.
//
// @Summary      List reviews
// @Tags         reviews
// @Produce      json
// @Success      200  {object}  dataResponse
// @Router       /api/reviews [get]
func (h *ReviewHandler) List(c echo.Context) error {
	reviews, err := h.reviews.GetAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: toReviewListResponse(reviews)})
}

// Get returns one review by id.
//
// @Summary      Get a review
// @Tags         reviews
// @Produce      json
// @Param        id  path      string  true  "Review id"
// @Success      200  {object}  dataResponse
// @Failure      404  {object}  messageResponse
// @Router       /api/reviews/{id} [get]
func (h *ReviewHandler) Get(c echo.Context) error {
	review, err := h.reviews.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: toReviewResponse(review)})
}

// ListByUser returns the reviews authored by one user, newest first.
//
// @Summary      List a user's reviews
// @Tags         reviews
// @Produce      json
// @Param        userId  path      string  true  "User id"
// @Success      200     {object}  dataResponse
// @Router       /api/reviews/{userId}/reviews [get]
func (h *ReviewHandler) ListByUser(c echo.Context) error {
	reviews, err := h.reviews.GetByAuthor(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: toReviewListResponse(reviews)})
}

// Count returns how many reviews exist for a subject name, matched
// case-insensitively.
//
// @Summary      Count reviews for a subject
// @Tags         reviews
// @Produce      json
// @Param        name  path      string  true  "Subject name"
// @Success      200   {object}  dataResponse
// @Router       /api/reviews/{name}/count [get]
func (h *ReviewHandler) Count(c echo.Context) error {
	count, err := h.reviews.CountBySubject(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: countResponse{Count: count}})
}

// Create posts a new review authored by the acting user.
//
// @Summary      Create a review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        body  body      createReviewRequest  true  "Review"
// @Success      201   {object}  dataResponse
// @Failure      401   {object}  messageResponse
// @Failure      422   {object}  messageResponse
// @Router       /api/reviews [post]
func (h *ReviewHandler) Create(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req createReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	review, err := h.reviews.Create(c.Request().Context(), userID, ports.CreateReviewInput{
		ReviewedName:  req.ReviewedName,
		IntroText:     req.IntroText,
		Category:      req.Category,
		Website:       req.Website,
		Telephone:     req.Telephone,
		Address:       req.Address,
		ReviewDetails: req.ReviewDetails,
	})
	if err != nil {
		return err
	}

	metrics.MutationsTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, dataResponse{Data: toReviewResponse(review)})
}

// Update applies an allow-listed partial update to an owned review. Any field
// outside the allow-list rejects the whole request.
//
// @Summary      Update a review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        id  path      string  true  "Review id"
// @Success      200  {object}  dataResponse
// @Failure      400  {object}  messageResponse
// @Failure      401  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /api/reviews/{id} [patch]
func (h *ReviewHandler) Update(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	fields := map[string]any{}
	if err := c.Bind(&fields); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	review, err := h.reviews.Update(c.Request().Context(), c.Param("id"), userID, fields)
	if err != nil {
		return err
	}

	metrics.MutationsTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, dataResponse{Data: toReviewResponse(review)})
}

// Delete removes an owned review.
//
// @Summary      Delete a review
// @Tags         reviews
// @Param        id  path  string  true  "Review id"
// @Success      204
// @Failure      401  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /api/reviews/{id} [delete]
func (h *ReviewHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.reviews.Delete(c.Request().Context(), c.Param("id"), userID); err != nil {
		return err
	}

	metrics.MutationsTotal.WithLabelValues("delete").Inc()
	return c.NoContent(http.StatusNoContent)
}
