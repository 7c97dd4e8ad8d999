package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/keyscope/keyscope/internal/models"
)

// CreateCommandExecution handles
// POST /v1/databases/:database/workbench/command-executions
func (h *Handler) CreateCommandExecution(c *fiber.Ctx) error {
	var req models.CreateCommandExecutionRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidRequest(c, "Failed to parse request body: "+err.Error())
	}

	exec, err := h.workbenchService.Execute(c.UserContext(), c.Params("database"), &req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(exec)
}

// ListCommandExecutions handles
// GET /v1/databases/:database/workbench/command-executions
func (h *Handler) ListCommandExecutions(c *fiber.Ctx) error {
	list, err := h.workbenchService.List(c.UserContext(), c.Params("database"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(list)
}

// GetCommandExecution handles
// GET /v1/databases/:database/workbench/command-executions/:id
func (h *Handler) GetCommandExecution(c *fiber.Ctx) error {
	exec, err := h.workbenchService.Get(c.UserContext(), c.Params("database"), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(exec)
}

// DeleteCommandExecution handles
// DELETE /v1/databases/:database/workbench/command-executions/:id
func (h *Handler) DeleteCommandExecution(c *fiber.Ctx) error {
	if err := h.workbenchService.Delete(c.UserContext(), c.Params("database"), c.Params("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
