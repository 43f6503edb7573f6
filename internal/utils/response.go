package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"sevapoint/internal/apperrors"
)

// Respond sends a JSON response with the specified status code.
func Respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}

// Success sends a successful JSON response.
func Success(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusOK, data)
}

// Created sends a JSON response with status 201.
func Created(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusCreated, data)
}

// BadRequest sends a JSON error response with status 400.
func BadRequest(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusBadRequest, fiber.Map{"error": message})
}

// Unauthorized sends a JSON error response with status 401.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusUnauthorized, fiber.Map{"error": message})
}

// Forbidden sends a JSON error response with status 403.
func Forbidden(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusForbidden, fiber.Map{"error": message})
}

// NotFound sends a JSON error response with status 404.
func NotFound(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusNotFound, fiber.Map{"error": message})
}

// Conflict sends a JSON error response with status 409.
func Conflict(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusConflict, fiber.Map{"error": message})
}

// InternalError sends a JSON error response with status 500.
func InternalError(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusInternalServerError, fiber.Map{"error": message})
}

// DomainErrorResponse maps a service error to the matching HTTP status.
// Unrecognized errors become a generic 500 so internals never leak.
func DomainErrorResponse(c *fiber.Ctx, err error) error {
	var de *apperrors.DomainError
	if !errors.As(err, &de) {
		return InternalError(c, "internal server error")
	}
	status := fiber.StatusInternalServerError
	switch de.Code {
	case apperrors.ErrUnauthorized.Code:
		status = fiber.StatusForbidden
	case apperrors.ErrNotFound.Code:
		status = fiber.StatusNotFound
	case apperrors.ErrInvalidState.Code,
		apperrors.ErrInvalidAmount.Code,
		apperrors.ErrNotRefundable.Code,
		apperrors.ErrInsufficientBalance.Code,
		"INVALID_INPUT":
		status = fiber.StatusBadRequest
	case apperrors.ErrInvalidSignature.Code:
		status = fiber.StatusForbidden
	case apperrors.ErrConflict.Code:
		status = fiber.StatusConflict
	}
	return Respond(c, status, fiber.Map{"error": de.Message, "code": de.Code})
}
