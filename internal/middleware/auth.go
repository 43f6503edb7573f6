// Package middleware provides HTTP middleware for the fiber app:
// JWT authentication and role gating.
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"sevapoint/internal/models"
	"sevapoint/internal/repositories"
	"sevapoint/internal/utils"
)

// AuthMiddleware validates the Bearer token on incoming requests and stores
// the verified claims in the request context.
type AuthMiddleware struct {
	userRepo repositories.UserRepository
}

func NewAuthMiddleware(userRepo repositories.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{userRepo: userRepo}
}

// Handler checks for a Bearer token, verifies signature and expiry, and
// rejects tokens whose version no longer matches the user row. A logout or
// password change bumps the version and kills every outstanding token.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	_, claims, err := utils.ParseToken(tokenString)
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
	}

	user, err := m.userRepo.GetByID(claims.UserID)
	if err != nil {
		log.Printf("User %d from token not found", claims.UserID)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
	}
	if !user.IsActive {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "account is disabled"})
	}
	if claims.TokenVersion != user.TokenVersion {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "session expired"})
	}

	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)

	return c.Next()
}

// RequireRoles gates a route to the given roles. Must run after Handler.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*models.UserClaims)
		if !ok || claims == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		for _, role := range roles {
			if claims.Role == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "insufficient permissions"})
	}
}

// AdminOnly gates a route to the admin role.
func AdminOnly() fiber.Handler {
	return RequireRoles(models.RoleAdmin)
}

// ReviewerOnly gates a route to roles that may review applications.
func ReviewerOnly() fiber.Handler {
	return RequireRoles(models.RoleAdmin, models.RoleEmployee)
}
