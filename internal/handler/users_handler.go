package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/beanpath/coffee-directory/internal/dto"
	"github.com/beanpath/coffee-directory/internal/service"
)

// UsersHandler exposes the caller's profile and administrative user management.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs a handler instance.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// Me handles GET /me requests.
func (h *UsersHandler) Me(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "authentication required")
	}

	user, err := h.users.Get(c.Request().Context(), userID)
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "profile retrieved", user)
}

// UpdateProfile handles PATCH /me requests.
func (h *UsersHandler) UpdateProfile(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "authentication required")
	}

	var req dto.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), userID, req)
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "profile updated", user)
}

// List handles GET /admin/users requests.
func (h *UsersHandler) List(c echo.Context) error {
	records, err := h.users.List(c.Request().Context())
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "users retrieved", records)
}

// Create handles POST /admin/users requests.
func (h *UsersHandler) Create(c echo.Context) error {
	var req dto.UserAdminInput
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.CreateUser(c.Request().Context(), req)
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusCreated, "user created", user)
}

// Update handles PATCH /admin/users/:id requests.
func (h *UsersHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid user id")
	}

	var req dto.UserAdminInput
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.UpdateUser(c.Request().Context(), id, req)
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "user updated", user)
}

// Delete handles DELETE /admin/users/:id requests.
func (h *UsersHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid user id")
	}

	if err := h.users.DeleteUser(c.Request().Context(), id); err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "user deleted", nil)
}
