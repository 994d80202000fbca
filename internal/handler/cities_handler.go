package handler

import (
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/beanpath/coffee-directory/internal/dto"
	"github.com/beanpath/coffee-directory/internal/service"
)

// CitiesHandler exposes the city directory endpoints.
type CitiesHandler struct {
	service  *service.CitiesService
	geocoder Geocoder
}

// NewCitiesHandler creates a new handler instance.
func NewCitiesHandler(service *service.CitiesService, geocoder Geocoder) *CitiesHandler {
	return &CitiesHandler{service: service, geocoder: geocoder}
}

// List handles GET /cities requests.
func (h *CitiesHandler) List(c echo.Context) error {
	cities, err := h.service.List(c.Request().Context())
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "cities retrieved", cities)
}

// GetBySlug handles GET /cities/:slug requests.
func (h *CitiesHandler) GetBySlug(c echo.Context) error {
	city, err := h.service.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "city retrieved", city)
}

// Create handles POST /admin/cities requests. Coordinates are resolved
// through the geocoder worker when available; a geocoder outage never blocks
// city creation.
func (h *CitiesHandler) Create(c echo.Context) error {
	var req dto.CityInput
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Country = strings.TrimSpace(req.Country)
	if req.Name == "" || req.Country == "" {
		return Error(c, http.StatusBadRequest, "name and country are required")
	}

	var lat, lng *float64
	if h.geocoder != nil {
		point, err := h.geocoder.Geocode(c.Request().Context(), req.Name, req.Country)
		if err != nil {
			log.Printf("level=warn msg=\"geocode failed\" city=%q err=%q", req.Name, err)
		} else {
			lat, lng = &point.Latitude, &point.Longitude
		}
	}

	city, err := h.service.Create(c.Request().Context(), req, lat, lng)
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusCreated, "city created", city)
}

// Update handles PATCH /admin/cities/:id requests.
func (h *CitiesHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid city id")
	}

	var req struct {
		Name      *string  `json:"name"`
		Country   *string  `json:"country"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	city, err := h.service.Update(c.Request().Context(), id, req.Name, req.Country, req.Latitude, req.Longitude)
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "city updated", city)
}

// Delete handles DELETE /admin/cities/:id requests.
func (h *CitiesHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid city id")
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "city deleted", nil)
}
