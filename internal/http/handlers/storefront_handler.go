package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "artyra/internal/log"
	"artyra/internal/services"
)

type StorefrontHandler struct {
	Catalog *services.CatalogService
	Cart    *services.CartService
	State   *services.State
}

// GET /
func (h *StorefrontHandler) Home(c *fiber.Ctx) error {
	return h.page(c, fiber.StatusOK, "", c.Query("msg"))
}

func (h *StorefrontHandler) page(c *fiber.Ctx, status int, errMsg, msg string) error {
	cv := services.CartView{}
	if sid := c.Cookies("sid"); sid != "" {
		v, err := h.Cart.View(c.UserContext(), sid)
		if err != nil {
			applog.Error(c, "cart.view", err, nil)
			errMsg = "Keranjang tidak bisa dimuat."
		} else {
			cv = v
		}
	}
	if msg == "added" {
		msg = "Produk ditambahkan ke keranjang."
	} else {
		msg = ""
	}
	return render(c.Status(status), "storefront", fiber.Map{
		"Products": h.Catalog.List(),
		"Cart":     cv,
		"Fallback": h.State.Fallback(),
		"Err":      errMsg,
		"Msg":      msg,
	})
}
