package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/keyscope/keyscope/internal/logging"
	"github.com/keyscope/keyscope/internal/models"
	"github.com/keyscope/keyscope/internal/services"
)

// ErrorHandler renders errors that escaped the handlers, including panics
// caught by the recover middleware. A nil logger selects the request
// logger installed by the logging middleware.
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		detail := models.ErrorDetail{
			Code:    "ERROR",
			Message: "Internal Server Error",
			Path:    c.Path(),
		}

		var (
			fiberErr *fiber.Error
			svcErr   *services.ServiceError
		)
		switch {
		case errors.As(err, &svcErr):
			status = svcErr.HTTPStatus()
			detail.Code = svcErr.Code
			detail.Message = svcErr.Message
			detail.Details = svcErr.Details
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
			detail.Message = fiberErr.Message
		}

		log := logger
		if log == nil {
			log = logging.FromContext(c.UserContext())
		}
		log = log.WithContext(c.UserContext())
		if status >= fiber.StatusInternalServerError {
			log.Error("Request error", "path", c.Path(), "method", c.Method(), "status", status, "error", err)
		} else {
			log.Debug("Request error", "path", c.Path(), "method", c.Method(), "status", status, "error", err)
		}

		return c.Status(status).JSON(models.ErrorResponse{Error: detail})
	}
}
