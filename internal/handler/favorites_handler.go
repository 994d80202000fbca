package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/beanpath/coffee-directory/internal/service"
)

// FavoritesHandler exposes the caller's favorite shops.
type FavoritesHandler struct {
	service *service.FavoritesService
}

// NewFavoritesHandler creates a new handler instance.
func NewFavoritesHandler(service *service.FavoritesService) *FavoritesHandler {
	return &FavoritesHandler{service: service}
}

// List handles GET /me/favorites requests.
func (h *FavoritesHandler) List(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "authentication required")
	}

	shops, err := h.service.ListShops(c.Request().Context(), userID)
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "favorites retrieved", shops)
}

// Add handles PUT /me/favorites/:shop_id requests.
func (h *FavoritesHandler) Add(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "authentication required")
	}

	shopID, err := uuid.Parse(c.Param("shop_id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid shop id")
	}

	if err := h.service.Add(c.Request().Context(), userID, shopID); err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusCreated, "favorite added", nil)
}

// Remove handles DELETE /me/favorites/:shop_id requests.
func (h *FavoritesHandler) Remove(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "authentication required")
	}

	shopID, err := uuid.Parse(c.Param("shop_id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid shop id")
	}

	if err := h.service.Remove(c.Request().Context(), userID, shopID); err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "favorite removed", nil)
}
