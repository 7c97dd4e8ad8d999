package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/keyscope/keyscope/internal/models"
)

// ListDatabases handles GET /v1/databases
func (h *Handler) ListDatabases(c *fiber.Ctx) error {
	return c.JSON(models.DatabaseListResponse{Databases: h.databaseService.List()})
}

// GetDatabase handles GET /v1/databases/:database
func (h *Handler) GetDatabase(c *fiber.Ctx) error {
	db, err := h.databaseService.Get(c.Params("database"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(db)
}
