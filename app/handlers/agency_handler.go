// Package handlers contains the HTTP handlers for the directory API
package handlers

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/mostovoy/agency-directory/app/dto"
	businessflow "github.com/mostovoy/agency-directory/business_flow"
)

type AgencyHandlerInterface interface {
	ListAgencies(c fiber.Ctx) error
	ListDirectory(c fiber.Ctx) error
	SelectAgencies(c fiber.Ctx) error
}

type AgencyHandler struct {
	searchFlow    businessflow.AgencySearchFlow
	directoryFlow businessflow.DirectoryFlow
	adminFlow     businessflow.AgencyAdminFlow
	validator     *validator.Validate
}

func NewAgencyHandler(
	searchFlow businessflow.AgencySearchFlow,
	directoryFlow businessflow.DirectoryFlow,
	adminFlow businessflow.AgencyAdminFlow,
) *AgencyHandler {
	return &AgencyHandler{
		searchFlow:    searchFlow,
		directoryFlow: directoryFlow,
		adminFlow:     adminFlow,
		validator:     validator.New(),
	}
}

func (h *AgencyHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AgencyHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ListAgencies runs the filtered, paginated listing search
func (h *AgencyHandler) ListAgencies(c fiber.Ctx) error {
	var req dto.AgencySearchRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_QUERY", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid search parameters", "VALIDATION_FAILED", err.Error())
	}

	res, err := h.searchFlow.ListAgencies(h.createRequestContext(c), &req)
	if err != nil {
		if businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid page size", "INVALID_PAGE_SIZE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list agencies", "LIST_AGENCIES_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

// ListDirectory returns every visible agency sorted by name (cached)
func (h *AgencyHandler) ListDirectory(c fiber.Ctx) error {
	agencies, err := h.directoryFlow.ListVisibleSortedByName(h.createRequestContext(c))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list directory", "LIST_DIRECTORY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Directory retrieved", fiber.Map{
		"agencies": agencies,
	})
}

// SelectAgencies returns the ordered id/name projection for selects
func (h *AgencyHandler) SelectAgencies(c fiber.Ctx) error {
	var cityID, countryID *uint
	if v := fiber.Query[uint](c, "cityId"); v != 0 {
		cityID = &v
	}
	if v := fiber.Query[uint](c, "countryId"); v != 0 {
		countryID = &v
	}

	res, err := h.adminFlow.SelectAgencies(h.createRequestContext(c), cityID, countryID)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to select agencies", "SELECT_AGENCIES_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

func (h *AgencyHandler) createRequestContext(c fiber.Ctx) context.Context {
	return createRequestContext(c, 30*time.Second)
}
