// Package handlers contains the HTTP handlers for the directory API
package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/mostovoy/agency-directory/app/dto"
	"github.com/mostovoy/agency-directory/app/middleware"
	businessflow "github.com/mostovoy/agency-directory/business_flow"
)

type AdminHandlerInterface interface {
	CreateAgency(c fiber.Ctx) error
	UpdateAgency(c fiber.Ctx) error
	DeleteAgency(c fiber.Ctx) error
	GetAgency(c fiber.Ctx) error
	RebuildAgencyCities(c fiber.Ctx) error
	ScoreReferrals(c fiber.Ctx) error
}

type AdminHandler struct {
	adminFlow    businessflow.AgencyAdminFlow
	cityFlow     businessflow.AgencyCityFlow
	referralFlow businessflow.ReferralFlow
	validator    *validator.Validate
}

func NewAdminHandler(
	adminFlow businessflow.AgencyAdminFlow,
	cityFlow businessflow.AgencyCityFlow,
	referralFlow businessflow.ReferralFlow,
) *AdminHandler {
	return &AdminHandler{
		adminFlow:    adminFlow,
		cityFlow:     cityFlow,
		referralFlow: referralFlow,
		validator:    validator.New(),
	}
}

func (h *AdminHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AdminHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func (h *AdminHandler) agencyID(c fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// CreateAgency creates a new agency
func (h *AdminHandler) CreateAgency(c fiber.Ctx) error {
	var req dto.CreateAgencyRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_BODY", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid agency payload", "VALIDATION_FAILED", err.Error())
	}

	res, err := h.adminFlow.CreateAgency(h.createRequestContext(c), &req)
	if err != nil {
		if businessflow.IsAgencyNameTaken(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Agency name is already taken", "AGENCY_NAME_TAKEN", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create agency", "CREATE_AGENCY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, res.Message, res.Agency)
}

// UpdateAgency updates an existing agency
func (h *AdminHandler) UpdateAgency(c fiber.Ctx) error {
	id, ok := h.agencyID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid agency id", "INVALID_AGENCY_ID", nil)
	}

	var req dto.CreateAgencyRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_BODY", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid agency payload", "VALIDATION_FAILED", err.Error())
	}

	res, err := h.adminFlow.UpdateAgency(h.createRequestContext(c), id, &req)
	if err != nil {
		if businessflow.IsAgencyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Agency not found", "AGENCY_NOT_FOUND", nil)
		}
		if businessflow.IsAgencyNameTaken(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Agency name is already taken", "AGENCY_NAME_TAKEN", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update agency", "UPDATE_AGENCY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res.Agency)
}

// DeleteAgency removes an agency with its profiles and view counts
func (h *AdminHandler) DeleteAgency(c fiber.Ctx) error {
	id, ok := h.agencyID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid agency id", "INVALID_AGENCY_ID", nil)
	}

	if err := h.adminFlow.DeleteAgency(h.createRequestContext(c), id); err != nil {
		if businessflow.IsAgencyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Agency not found", "AGENCY_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete agency", "DELETE_AGENCY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Agency deleted successfully", nil)
}

// GetAgency returns a single agency
func (h *AdminHandler) GetAgency(c fiber.Ctx) error {
	id, ok := h.agencyID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid agency id", "INVALID_AGENCY_ID", nil)
	}

	res, err := h.adminFlow.GetAgency(h.createRequestContext(c), id)
	if err != nil {
		if businessflow.IsAgencyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Agency not found", "AGENCY_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get agency", "GET_AGENCY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res.Agency)
}

// RebuildAgencyCities recomputes the agency-city relation for one agency
func (h *AdminHandler) RebuildAgencyCities(c fiber.Ctx) error {
	id, ok := h.agencyID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid agency id", "INVALID_AGENCY_ID", nil)
	}

	report, err := h.cityFlow.RebuildAgencyCities(h.createRequestContext(c), id)
	if err != nil {
		middleware.RebuildRuns.WithLabelValues("error").Inc()
		if businessflow.IsAgencyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Agency not found", "AGENCY_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to rebuild agency cities", "REBUILD_AGENCY_CITIES_FAILED", nil)
	}
	middleware.RebuildRuns.WithLabelValues("success").Inc()

	return h.SuccessResponse(c, fiber.StatusOK, report.Message, report)
}

// ScoreReferrals runs the one-shot referral-to-probability batch
func (h *AdminHandler) ScoreReferrals(c fiber.Ctx) error {
	var req dto.ScoreReferralsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_BODY", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid referral payload", "VALIDATION_FAILED", err.Error())
	}

	report, err := h.referralFlow.Score(h.createRequestContext(c), req.Rows)
	if err != nil {
		middleware.ReferralScoreRuns.WithLabelValues("error").Inc()
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to score referrals", "SCORE_REFERRALS_FAILED", nil)
	}
	middleware.ReferralScoreRuns.WithLabelValues("success").Inc()

	return h.SuccessResponse(c, fiber.StatusOK, report.Message, report)
}

func (h *AdminHandler) createRequestContext(c fiber.Ctx) context.Context {
	return createRequestContext(c, 60*time.Second)
}
