package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"sevapoint/internal/repositories"
	"sevapoint/internal/utils"
)

type UserHandler struct {
	userRepo repositories.UserRepository
}

func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// GetProfile returns the authenticated user's own record.
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	user, err := h.userRepo.GetByID(claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return utils.NotFound(c, "user not found")
		}
		return utils.InternalError(c, "Failed to get profile")
	}

	return utils.Success(c, fiber.Map{"user": user})
}
