package serverutils

import (
	"errors"

	"ai-marketplace-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps service errors to the response envelope.
// Wired as the app-level Fiber ErrorHandler.
func ErrorHandlerMiddleware(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fiberErr *fiber.Error
	switch {
	case apperror.IsValidation(err):
		code = fiber.StatusBadRequest
		message = err.Error()
	case apperror.IsUnauthorized(err):
		code = fiber.StatusUnauthorized
		message = err.Error()
	case apperror.IsNotFound(err):
		code = fiber.StatusNotFound
		message = err.Error()
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return ctx.Status(code).JSON(ErrorResponse(code, message))
}
