package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/beanpath/coffee-directory/internal/dto"
	"github.com/beanpath/coffee-directory/internal/service"
)

// ProposalsHandler exposes public proposal intake and the admin moderation queue.
type ProposalsHandler struct {
	workflow *service.ProposalWorkflow
}

// NewProposalsHandler creates a new handler instance.
func NewProposalsHandler(workflow *service.ProposalWorkflow) *ProposalsHandler {
	return &ProposalsHandler{workflow: workflow}
}

// Submit handles POST /proposals requests. The endpoint is public; a
// submitter id is attached only when the request carries a valid session.
func (h *ProposalsHandler) Submit(c echo.Context) error {
	var req dto.SubmitProposalRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	var submitterID *uuid.UUID
	if id, ok := currentUserID(c); ok {
		submitterID = &id
	}

	proposal, err := h.workflow.Submit(c.Request().Context(), req, submitterID)
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusCreated, "proposal submitted", proposal)
}

// List handles GET /admin/proposals requests.
func (h *ProposalsHandler) List(c echo.Context) error {
	filter := dto.ProposalFilter{
		Status:  strings.TrimSpace(c.QueryParam("status")),
		Page:    parseIntDefault(c.QueryParam("page"), 1),
		PerPage: parseIntDefault(c.QueryParam("per_page"), 20),
	}

	proposals, err := h.workflow.List(c.Request().Context(), filter)
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "proposals retrieved", proposals)
}

// Get handles GET /admin/proposals/:id requests.
func (h *ProposalsHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid proposal id")
	}

	proposal, err := h.workflow.Get(c.Request().Context(), id)
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "proposal retrieved", proposal)
}

// SetStatus handles PATCH /admin/proposals/:id/status requests.
func (h *ProposalsHandler) SetStatus(c echo.Context) error {
	actor, ok := currentUserID(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid proposal id")
	}

	var req dto.SetStatusRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	proposal, err := h.workflow.SetStatus(c.Request().Context(), id, req.Status, req.AdminNotes, actor)
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "proposal status updated", proposal)
}

// BulkSetStatus handles POST /admin/proposals/bulk-status requests. The
// update is all-or-nothing: one ineligible proposal fails the whole batch.
func (h *ProposalsHandler) BulkSetStatus(c echo.Context) error {
	actor, ok := currentUserID(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "authentication required")
	}

	var req dto.BulkSetStatusRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if len(req.IDs) == 0 {
		return Error(c, http.StatusBadRequest, "ids are required")
	}

	if err := h.workflow.BulkSetStatus(c.Request().Context(), req, actor); err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "proposal statuses updated", nil)
}

// UpdateNotes handles PATCH /admin/proposals/:id/notes requests.
func (h *ProposalsHandler) UpdateNotes(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid proposal id")
	}

	var req dto.UpdateNotesRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	proposal, err := h.workflow.UpdateNotes(c.Request().Context(), id, req.AdminNotes)
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusOK, "proposal notes updated", proposal)
}

// Convert handles POST /admin/proposals/:id/convert requests.
func (h *ProposalsHandler) Convert(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid proposal id")
	}

	shop, err := h.workflow.ConvertToOfficial(c.Request().Context(), id)
	if err != nil {
		return FromError(c, err)
	}
	return Success(c, http.StatusCreated, "proposal converted", shop)
}
