package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/beanpath/coffee-directory/internal/repository"
	"github.com/beanpath/coffee-directory/internal/service"
)

// APIResponse describes the standard envelope returned by the API.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Success sends a successful response using the shared envelope format.
func Success(c echo.Context, status int, message string, data any) error {
	if status == 0 {
		status = http.StatusOK
	}
	payload := APIResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	}
	return c.JSON(status, payload)
}

// Error sends an error response using the shared envelope format.
func Error(c echo.Context, status int, message string) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	payload := APIResponse{
		Status:  "error",
		Message: message,
	}
	return c.JSON(status, payload)
}

// FromError maps service and repository errors onto HTTP statuses so every
// handler reports the same taxonomy. Unknown errors become a generic 500
// without leaking internals to the client.
func FromError(c echo.Context, err error) error {
	var validationErr service.ValidationError
	var invalidState service.InvalidStateError
	var csvErr service.CSVValidationError
	switch {
	case errors.As(err, &validationErr):
		return Error(c, http.StatusBadRequest, validationErr.Message)
	case errors.As(err, &invalidState):
		return Error(c, http.StatusBadRequest, invalidState.Message)
	case errors.As(err, &csvErr):
		return Error(c, http.StatusBadRequest, csvErr.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return Error(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrNotReviewAuthor):
		return Error(c, http.StatusForbidden, "not the review author")
	case errors.Is(err, repository.ErrCityNotFound),
		errors.Is(err, repository.ErrShopNotFound),
		errors.Is(err, repository.ErrReviewNotFound),
		errors.Is(err, repository.ErrFavoriteNotFound),
		errors.Is(err, repository.ErrProposalNotFound),
		errors.Is(err, repository.ErrFeatureNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrCitySlugDuplicate),
		errors.Is(err, repository.ErrShopSlugDuplicate),
		errors.Is(err, repository.ErrDuplicateReview),
		errors.Is(err, repository.ErrDuplicateFavorite),
		errors.Is(err, repository.ErrFeatureDuplicate),
		errors.Is(err, repository.ErrEmailDuplicate):
		return Error(c, http.StatusConflict, err.Error())
	default:
		log.Printf("level=error msg=\"request failed\" path=%s err=%q", c.Path(), err)
		return Error(c, http.StatusInternalServerError, "internal server error")
	}
}
