package errxfiber

import (
	"errors"

	"github.com/Conversia-AI/craftable-dto/errx"
	"github.com/Conversia-AI/craftable-dto/logx"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderRequestID carries the request id echoed in error details
const HeaderRequestID = "X-Request-ID"

// ToFiber converts e into a plain *fiber.Error
func ToFiber(e *errx.Error) error {
	return fiber.NewError(e.Status(), e.Message)
}

// RequestID returns the incoming X-Request-ID, generating one when absent.
// The id is also set on the response.
func RequestID(c *fiber.Ctx) string {
	if id := c.Locals(HeaderRequestID); id != nil {
		if s, ok := id.(string); ok {
			return s
		}
	}
	id := c.Get(HeaderRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Locals(HeaderRequestID, id)
	c.Set(HeaderRequestID, id)
	return id
}

// ErrorHandler formats returned errors as {"error": {...}} responses
//
//	app := fiber.New(fiber.Config{ErrorHandler: errxfiber.ErrorHandler()})
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		requestID := RequestID(c)

		var xerr *errx.Error
		if errors.As(err, &xerr) {
			logx.Warn("errxfiber: %s %s [%s]: %v", c.Method(), c.Path(), requestID, err)

			body := fiber.Map{
				"code":       xerr.Code,
				"type":       xerr.Type,
				"message":    xerr.Message,
				"request_id": requestID,
			}
			if len(xerr.Details) > 0 {
				body["details"] = xerr.Details
			}
			return c.Status(xerr.Status()).JSON(fiber.Map{"error": body})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"error": fiber.Map{
					"code":       "FIBER_ERROR",
					"type":       errx.TypeBadRequest,
					"message":    fiberErr.Message,
					"request_id": requestID,
				},
			})
		}

		logx.Error("errxfiber: %s %s [%s]: %v", c.Method(), c.Path(), requestID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fiber.Map{
				"code":       "INTERNAL_ERROR",
				"type":       errx.TypeInternal,
				"message":    err.Error(),
				"request_id": requestID,
			},
		})
	}
}
