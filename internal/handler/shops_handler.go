package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/beanpath/coffee-directory/internal/dto"
	"github.com/beanpath/coffee-directory/internal/service"
)

// ShopsHandler exposes the coffee shop catalogue endpoints.
type ShopsHandler struct {
	service *service.ShopsService
}

// NewShopsHandler creates a new handler instance.
func NewShopsHandler(service *service.ShopsService) *ShopsHandler {
	return &ShopsHandler{service: service}
}

// List handles GET /shops requests.
func (h *ShopsHandler) List(c echo.Context) error {
	filter := dto.ShopFilter{
		Q:          strings.TrimSpace(c.QueryParam("q")),
		CitySlug:   strings.TrimSpace(c.QueryParam("city")),
		Feature:    strings.TrimSpace(c.QueryParam("feature")),
		PriceRange: strings.TrimSpace(c.QueryParam("price_range")),
		Sort:       strings.TrimSpace(c.QueryParam("sort")),
		Page:       parseIntDefault(c.QueryParam("page"), 1),
		PerPage:    parseIntDefault(c.QueryParam("per_page"), 20),
	}

	if minRatingStr := strings.TrimSpace(c.QueryParam("min_rating")); minRatingStr != "" {
		if minRating, err := strconv.ParseFloat(minRatingStr, 64); err == nil {
			filter.MinRating = &minRating
		}
	}

	shops, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "shops retrieved", shops)
}

// GetBySlug handles GET /shops/:slug requests.
func (h *ShopsHandler) GetBySlug(c echo.Context) error {
	shop, err := h.service.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "shop retrieved", shop)
}

// GetByID handles GET /admin/shops/:id requests.
func (h *ShopsHandler) GetByID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid shop id")
	}

	shop, err := h.service.GetByID(c.Request().Context(), id)
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "shop retrieved", shop)
}

// Create handles POST /admin/shops requests.
func (h *ShopsHandler) Create(c echo.Context) error {
	var req dto.ShopInput
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	shop, err := h.service.Create(c.Request().Context(), req)
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusCreated, "shop created", shop)
}

// Update handles PUT /admin/shops/:id requests.
func (h *ShopsHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid shop id")
	}

	var req dto.ShopInput
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	shop, err := h.service.Update(c.Request().Context(), id, req)
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "shop updated", shop)
}

// Delete handles DELETE /admin/shops/:id requests.
func (h *ShopsHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid shop id")
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "shop deleted", nil)
}

func parseIntDefault(input string, fallback int) int {
	if input == "" {
		return fallback
	}
	if value, err := strconv.Atoi(input); err == nil {
		return value
	}
	return fallback
}
