package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"ai-ideation-be/internal/pkg/logger"
	"ai-ideation-be/pkg/ideation"
)

// RequestError carries an explicit HTTP status chosen by the layer that
// produced it.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return e.Message
}

func NewRequestError(statusCode int, message string) *RequestError {
	return &RequestError{StatusCode: statusCode, Message: message}
}

// ErrorHandler maps domain errors onto HTTP statuses and the standard
// envelope. Wired as the Fiber app-level error handler.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var reqErr *RequestError
		if errors.As(err, &reqErr) {
			return ctx.Status(reqErr.StatusCode).JSON(ErrorResponse(reqErr.StatusCode, reqErr.Message))
		}

		var validationErr *ideation.ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(400, validationErr.Error()))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		log.Error("HTTP", "Unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(500, "Internal server error"))
	}
}
