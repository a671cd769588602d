package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"artyra/internal/services"
)

type APIHandler struct {
	Catalog  *services.CatalogService
	Orders   *services.OrderService
	Settings *services.SettingsService
	Now      func() time.Time
}

// GET /api/v1/products
func (h *APIHandler) Products(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"products": h.Catalog.List()})
}

// GET /api/v1/orders/track?q=
func (h *APIHandler) TrackOrder(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing q"})
	}
	o, ok := h.Orders.FindByHumanID(q)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": services.ErrOrderNotFound.Code})
	}
	return c.JSON(newTrackView(o))
}

// GET /api/v1/delivery-slots
func (h *APIHandler) DeliverySlots(c *fiber.Ctx) error {
	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	return c.JSON(fiber.Map{
		"dates": services.AvailableDates(now),
		"times": services.DeliveryTimes,
	})
}

// GET /api/v1/settings
func (h *APIHandler) StoreSettings(c *fiber.Ctx) error {
	return c.JSON(h.Settings.Get())
}
