package handlers

import (
	"github.com/gofiber/fiber/v2"

	"sevapoint/internal/services/scheme"
	"sevapoint/internal/utils"
)

type SchemeHandler struct {
	schemeService scheme.Service
}

func NewSchemeHandler(schemeService scheme.Service) *SchemeHandler {
	return &SchemeHandler{schemeService: schemeService}
}

func (h *SchemeHandler) ListSchemes(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	schemes, err := h.schemeService.List(c.Context(), claims.Role)
	if err != nil {
		return utils.InternalError(c, "Failed to list schemes")
	}
	return utils.Success(c, fiber.Map{"schemes": schemes})
}

func (h *SchemeHandler) GetScheme(c *fiber.Ctx) error {
	if _, err := extractUserClaims(c); err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := parseID(c)
	if err != nil {
		return utils.BadRequest(c, "invalid scheme id")
	}

	s, err := h.schemeService.Get(c.Context(), id)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"scheme": s})
}

func (h *SchemeHandler) CreateScheme(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Name           string  `json:"name"`
		Description    string  `json:"description"`
		Category       string  `json:"category"`
		Price          float64 `json:"price"`
		CommissionRate float64 `json:"commission_rate"`
		IsFree         bool    `json:"is_free"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	s, err := h.schemeService.Create(c.Context(), *claims, scheme.CreateInput{
		Name:           input.Name,
		Description:    input.Description,
		Category:       input.Category,
		Price:          input.Price,
		CommissionRate: input.CommissionRate,
		IsFree:         input.IsFree,
	})
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Created(c, fiber.Map{"scheme": s})
}

func (h *SchemeHandler) UpdateScheme(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := parseID(c)
	if err != nil {
		return utils.BadRequest(c, "invalid scheme id")
	}

	var input struct {
		Name           *string  `json:"name"`
		Description    *string  `json:"description"`
		Category       *string  `json:"category"`
		Price          *float64 `json:"price"`
		CommissionRate *float64 `json:"commission_rate"`
		IsFree         *bool    `json:"is_free"`
		IsActive       *bool    `json:"is_active"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	s, err := h.schemeService.Update(c.Context(), *claims, id, scheme.UpdateInput{
		Name:           input.Name,
		Description:    input.Description,
		Category:       input.Category,
		Price:          input.Price,
		CommissionRate: input.CommissionRate,
		IsFree:         input.IsFree,
		IsActive:       input.IsActive,
	})
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"scheme": s})
}
