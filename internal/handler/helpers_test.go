package handler

import (
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/beanpath/coffee-directory/internal/middleware"
)

func bodyJSON(payload string) io.Reader {
	return strings.NewReader(payload)
}

// authenticate mimics the JWT middleware storing session metadata.
func authenticate(c echo.Context, userID uuid.UUID, role string) {
	c.Set(middleware.ContextKeyUserID, userID.String())
	c.Set(middleware.ContextKeyUserRole, role)
}
