package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/beanpath/coffee-directory/internal/service"
)

// FeaturesHandler exposes the amenity label catalogue.
type FeaturesHandler struct {
	service *service.FeaturesService
}

// NewFeaturesHandler creates a new handler instance.
func NewFeaturesHandler(service *service.FeaturesService) *FeaturesHandler {
	return &FeaturesHandler{service: service}
}

type featurePayload struct {
	Label string `json:"label"`
}

// List handles GET /features requests.
func (h *FeaturesHandler) List(c echo.Context) error {
	features, err := h.service.List(c.Request().Context())
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "features retrieved", features)
}

// Create handles POST /admin/features requests.
func (h *FeaturesHandler) Create(c echo.Context) error {
	var req featurePayload
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	feature, err := h.service.Create(c.Request().Context(), req.Label)
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusCreated, "feature created", feature)
}

// Rename handles PATCH /admin/features/:id requests.
func (h *FeaturesHandler) Rename(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid feature id")
	}

	var req featurePayload
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	feature, err := h.service.Rename(c.Request().Context(), id, req.Label)
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "feature renamed", feature)
}

// Delete handles DELETE /admin/features/:id requests.
func (h *FeaturesHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid feature id")
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "feature deleted", nil)
}
