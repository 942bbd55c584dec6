package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors bubbled out of handlers into JSON
// responses. Services return sentinel errors; controllers just `return err`.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse(400, validationErr.Error()))
		}

		switch {
		case errors.Is(err, ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse(404, err.Error()))
		case errors.Is(err, ErrUnauthorized):
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, err.Error()))
		case errors.Is(err, ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(ErrorResponse(403, err.Error()))
		case errors.Is(err, ErrConflict):
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse(409, err.Error()))
		case errors.Is(err, ErrBadRequest):
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse(400, err.Error()))
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(500, "Internal server error"))
		}
	}
}
