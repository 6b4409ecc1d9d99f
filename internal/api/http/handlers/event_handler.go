package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sanskruthi/fest-service/internal/catalog"
)

// EventHandler serves the public event catalog.
type EventHandler struct {
	catalog *catalog.Catalog
}

// NewEventHandler constructs handler.
func NewEventHandler(cat *catalog.Catalog) *EventHandler {
	return &EventHandler{catalog: cat}
}

// Get handles GET /event.
func (h *EventHandler) Get(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.catalog})
}
