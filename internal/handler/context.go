package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/beanpath/coffee-directory/internal/middleware"
)

// currentUserID extracts the authenticated user's id stored by the JWT middleware.
func currentUserID(c echo.Context) (uuid.UUID, bool) {
	raw, ok := c.Get(middleware.ContextKeyUserID).(string)
	if !ok || raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// currentUserRole extracts the authenticated user's role, if any.
func currentUserRole(c echo.Context) string {
	role, _ := c.Get(middleware.ContextKeyUserRole).(string)
	return role
}
