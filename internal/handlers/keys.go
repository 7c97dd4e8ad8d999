package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/keyscope/keyscope/internal/models"
)

// ScanCursorHeader carries the cursor of the next page.
const ScanCursorHeader = "X-Scan-Cursor"

// ScanKeys handles GET /v1/databases/:database/keys?cursor=&count=&match=&type=
// The body is one page per shard; the next cursor is returned in the
// X-Scan-Cursor header and is "0" once every shard is exhausted.
func (h *Handler) ScanKeys(c *fiber.Ctx) error {
	var req models.ScanKeysRequest
	if err := c.QueryParser(&req); err != nil {
		return invalidRequest(c, "Failed to parse query parameters: "+err.Error())
	}

	result, err := h.keysService.Scan(c.UserContext(), c.Params("database"), &req)
	if err != nil {
		return h.respondError(c, err)
	}

	c.Set(ScanCursorHeader, result.Cursor)
	return c.JSON(result.Shards)
}
