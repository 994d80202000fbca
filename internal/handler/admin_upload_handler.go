package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/beanpath/coffee-directory/internal/service"
)

// AdminUploadHandler handles CSV ingestion for administrators.
type AdminUploadHandler struct {
	shopsService *service.ShopsService
}

// NewAdminUploadHandler wires a handler backed by the shops service.
func NewAdminUploadHandler(shopsService *service.ShopsService) *AdminUploadHandler {
	return &AdminUploadHandler{shopsService: shopsService}
}

// UploadCSV handles POST /admin/upload-csv requests.
func (h *AdminUploadHandler) UploadCSV(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing csv file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open file")
	}
	defer file.Close()

	summary, err := h.shopsService.ImportShopsCSV(c.Request().Context(), file)
	if err != nil {
		return FromError(c, err)
	}

	return Success(c, http.StatusOK, "shops CSV processed", summary)
}
