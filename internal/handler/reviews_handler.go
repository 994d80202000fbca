package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/beanpath/coffee-directory/internal/dto"
	"github.com/beanpath/coffee-directory/internal/service"
)

// ReviewsHandler exposes review endpoints.
type ReviewsHandler struct {
	service *service.ReviewsService
}

// NewReviewsHandler creates a new handler instance.
func NewReviewsHandler(service *service.ReviewsService) *ReviewsHandler {
	return &ReviewsHandler{service: service}
}

// ListByShop handles GET /shops/:id/reviews requests.
func (h *ReviewsHandler) ListByShop(c echo.Context) error {
	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid shop id")
	}

	reviews, err := h.service.ListByShop(c.Request().Context(), shopID)
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "reviews retrieved", reviews)
}

// Create handles POST /shops/:id/reviews requests.
func (h *ReviewsHandler) Create(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "authentication required")
	}

	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid shop id")
	}

	var req dto.CreateReviewRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	review, err := h.service.Create(c.Request().Context(), userID, shopID, req)
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusCreated, "review created", review)
}

// Update handles PATCH /reviews/:id requests.
func (h *ReviewsHandler) Update(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "authentication required")
	}

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid review id")
	}

	var req dto.UpdateReviewRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	review, err := h.service.Update(c.Request().Context(), reviewID, userID, req)
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "review updated", review)
}

// Delete handles DELETE /reviews/:id and DELETE /admin/reviews/:id requests.
// An admin may remove any review; other callers only their own.
func (h *ReviewsHandler) Delete(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "authentication required")
	}

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid review id")
	}

	if err := h.service.Delete(c.Request().Context(), reviewID, userID, currentUserRole(c)); err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "review deleted", nil)
}
