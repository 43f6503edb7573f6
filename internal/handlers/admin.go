package handlers

import (
	"github.com/gofiber/fiber/v2"

	"sevapoint/internal/services/cleanup"
	"sevapoint/internal/services/wallet"
	"sevapoint/internal/utils"
)

// AdminHandler groups the admin-only maintenance endpoints: manual refunds
// and data retention tasks.
type AdminHandler struct {
	walletService  wallet.Service
	cleanupService cleanup.Service
}

func NewAdminHandler(walletService wallet.Service, cleanupService cleanup.Service) *AdminHandler {
	return &AdminHandler{
		walletService:  walletService,
		cleanupService: cleanupService,
	}
}

// CreateRefund opens a pending refund against a completed scheme payment.
func (h *AdminHandler) CreateRefund(c *fiber.Ctx) error {
	if _, err := extractUserClaims(c); err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		TransactionID uint    `json:"transaction_id"`
		Amount        float64 `json:"amount"`
		Reason        string  `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if input.TransactionID == 0 {
		return utils.BadRequest(c, "transaction_id is required")
	}

	refund, err := h.walletService.Refund(c.Context(), input.TransactionID, input.Amount, input.Reason)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Created(c, fiber.Map{"refund": refund})
}

// SettleRefund moves a pending refund to its final status. Only the move to
// COMPLETED credits the wallet.
func (h *AdminHandler) SettleRefund(c *fiber.Ctx) error {
	if _, err := extractUserClaims(c); err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := parseID(c)
	if err != nil {
		return utils.BadRequest(c, "invalid refund id")
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil || input.Status == "" {
		return utils.BadRequest(c, "status is required")
	}

	refund, err := h.walletService.SettleRefund(c.Context(), id, input.Status)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"refund": refund})
}

// DataCleanup runs one retention task, or all of them when no task is named.
func (h *AdminHandler) DataCleanup(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Task string `json:"task"`
	}
	if err := c.BodyParser(&input); err != nil && len(c.Body()) > 0 {
		return utils.BadRequest(c, "Invalid request body")
	}

	if input.Task == "" {
		results, err := h.cleanupService.RunAll(c.Context(), *claims)
		if err != nil {
			return utils.DomainErrorResponse(c, err)
		}
		return utils.Success(c, fiber.Map{"results": results})
	}

	result, err := h.cleanupService.Run(c.Context(), *claims, input.Task)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"result": result})
}
