package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/keyscope/keyscope/internal/logging"
	"github.com/keyscope/keyscope/internal/models"
	"github.com/keyscope/keyscope/internal/services"
)

// Handler contains all HTTP handlers
type Handler struct {
	logger *logging.Logger

	databaseService  *services.DatabaseService
	keysService      *services.KeysService
	workbenchService *services.WorkbenchService
}

// New creates a new handler instance
func New(
	logger *logging.Logger,
	databaseService *services.DatabaseService,
	keysService *services.KeysService,
	workbenchService *services.WorkbenchService,
) *Handler {
	return &Handler{
		logger:           logger,
		databaseService:  databaseService,
		keysService:      keysService,
		workbenchService: workbenchService,
	}
}

// respondError writes err as an ErrorResponse. ServiceErrors keep their
// code and status; anything else is a 500.
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		return c.Status(svcErr.HTTPStatus()).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    svcErr.Code,
				Message: svcErr.Message,
				Path:    c.Path(),
				Details: svcErr.Details,
			},
		})
	}

	h.logger.WithContext(c.UserContext()).Error("Unhandled service error", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    services.CodeInternal,
			Message: err.Error(),
			Path:    c.Path(),
		},
	})
}

func invalidRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    services.CodeInvalidRequest,
			Message: message,
			Path:    c.Path(),
		},
	})
}
