package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	"sevapoint/internal/models"
	"sevapoint/internal/services/application"
	"sevapoint/internal/utils"
)

type ApplicationHandler struct {
	appService application.Service
}

func NewApplicationHandler(appService application.Service) *ApplicationHandler {
	return &ApplicationHandler{appService: appService}
}

func actorFromClaims(claims *models.UserClaims) application.Actor {
	return application.Actor{ID: claims.UserID, Role: claims.Role}
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.ErrBadRequest
	}
	return uint(id), nil
}

// CreateApplication submits a new application for the authenticated retailer.
// Priced schemes charge the wallet before anything is stored.
func (h *ApplicationHandler) CreateApplication(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		SchemeID        uint           `json:"scheme_id"`
		CustomerName    string         `json:"customer_name"`
		CustomerPhone   string         `json:"customer_phone"`
		CustomerEmail   string         `json:"customer_email"`
		CustomerAddress string         `json:"customer_address"`
		FormData        models.JSON    `json:"form_data"`
		Documents       datatypes.JSON `json:"documents"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if input.SchemeID == 0 {
		return utils.BadRequest(c, "scheme_id is required")
	}
	if input.CustomerName == "" || input.CustomerPhone == "" || input.CustomerAddress == "" {
		return utils.BadRequest(c, "customer name, phone and address are required")
	}

	app, err := h.appService.Submit(c.Context(), actorFromClaims(claims), application.SubmitInput{
		SchemeID:        input.SchemeID,
		CustomerName:    input.CustomerName,
		CustomerPhone:   input.CustomerPhone,
		CustomerEmail:   input.CustomerEmail,
		CustomerAddress: input.CustomerAddress,
		FormData:        input.FormData,
		Documents:       input.Documents,
	})
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Created(c, fiber.Map{"application": app})
}

// ListApplications returns the caller's applications; reviewers see all.
func (h *ApplicationHandler) ListApplications(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	p := utils.GetPagination(c, 1, 20)
	apps, total, err := h.appService.List(c.Context(), actorFromClaims(claims), application.ListFilter{
		Status: c.Query("status"),
		Page:   p.Page,
		Limit:  p.Limit,
	})
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	p.SetTotal(total)

	return utils.Success(c, utils.NewPaginatedResponse(apps, p))
}

func (h *ApplicationHandler) GetApplication(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := parseID(c)
	if err != nil {
		return utils.BadRequest(c, "invalid application id")
	}

	app, err := h.appService.Get(c.Context(), actorFromClaims(claims), id)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"application": app})
}

// UpdateStatus approves or rejects a pending application.
func (h *ApplicationHandler) UpdateStatus(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := parseID(c)
	if err != nil {
		return utils.BadRequest(c, "invalid application id")
	}

	var input struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
		Refund bool   `json:"refund"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	actor := actorFromClaims(claims)
	var app *models.Application
	switch input.Status {
	case models.ApplicationStatusApproved:
		app, err = h.appService.Approve(c.Context(), actor, id, input.Notes)
	case models.ApplicationStatusRejected:
		app, err = h.appService.Reject(c.Context(), actor, id, input.Notes, input.Refund)
	default:
		return utils.BadRequest(c, "status must be APPROVED or REJECTED")
	}
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Success(c, fiber.Map{"application": app})
}

func (h *ApplicationHandler) CompleteApplication(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := parseID(c)
	if err != nil {
		return utils.BadRequest(c, "invalid application id")
	}

	app, err := h.appService.Complete(c.Context(), actorFromClaims(claims), id)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"application": app})
}

func (h *ApplicationHandler) DeleteApplication(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := parseID(c)
	if err != nil {
		return utils.BadRequest(c, "invalid application id")
	}

	if err := h.appService.Delete(c.Context(), actorFromClaims(claims), id); err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "Application deleted"})
}
