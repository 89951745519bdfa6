package serverutils

import (
	"errors"

	"unsubly-be/pkg/cancellation"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps errors bubbling out of controllers to HTTP
// responses. Engine errors carry their code; anything else is a 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		if engineErr, ok := cancellation.AsEngineError(err); ok {
			return ctx.Status(statusFor(engineErr.Code)).JSON(Response{
				Success: false,
				Message: engineErr.Message,
				Data: fiber.Map{
					"code":    string(engineErr.Code),
					"details": engineErr.Details,
				},
			})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("Internal server error"))
	}
}

func statusFor(code cancellation.ErrorCode) int {
	switch code {
	case cancellation.CodeValidationError, cancellation.CodeSchedulingValidation, cancellation.CodeUnsupportedMethod:
		return fiber.StatusBadRequest
	case cancellation.CodeNotFound, cancellation.CodeRequestNotFound:
		return fiber.StatusNotFound
	case cancellation.CodeAlreadyCancelled, cancellation.CodeCancellationInProgress:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
