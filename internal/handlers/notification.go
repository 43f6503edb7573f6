package handlers

import (
	"github.com/gofiber/fiber/v2"

	"sevapoint/internal/services/notification"
	"sevapoint/internal/utils"
)

type NotificationHandler struct {
	notificationService notification.Service
}

func NewNotificationHandler(notificationService notification.Service) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	p := utils.GetPagination(c, 1, 20)
	notifications, err := h.notificationService.List(c.Context(), claims.UserID, p.Limit, p.Offset)
	if err != nil {
		return utils.InternalError(c, "Failed to list notifications")
	}
	return utils.Success(c, fiber.Map{"notifications": notifications})
}

func (h *NotificationHandler) MarkNotificationRead(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := parseID(c)
	if err != nil {
		return utils.BadRequest(c, "invalid notification id")
	}

	if err := h.notificationService.MarkRead(id, claims.UserID); err != nil {
		return utils.InternalError(c, "Failed to mark notification read")
	}
	return utils.Success(c, fiber.Map{"message": "Notification marked read"})
}
