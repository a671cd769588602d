package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "artyra/internal/log"
	"artyra/internal/services"
	"artyra/internal/validate"
)

type CartHandler struct {
	Cart       *services.CartService
	Storefront *StorefrontHandler
	Secure     bool
}

// POST /cart
func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c, h.Secure)
	productID, ok := validate.ID(c.FormValue("product_id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product_id"})
		return h.Storefront.page(c, fiber.StatusBadRequest, services.ErrProductNotFound.Message, "")
	}

	var toppings []string
	seen := map[string]bool{}
	for _, raw := range c.Request().PostArgs().PeekMulti("topping") {
		t := validate.Text(string(raw), 60)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		toppings = append(toppings, t)
	}

	if _, err := h.Cart.Add(c.UserContext(), sid, productID, toppings); err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			return h.Storefront.page(c, fiber.StatusBadRequest, ve.Message, "")
		}
		applog.Error(c, "cart.add", err, map[string]any{"product_id": productID})
		return h.Storefront.page(c, fiber.StatusInternalServerError, "Gagal menambahkan ke keranjang.", "")
	}
	return c.Redirect("/?msg=added#cart")
}

// POST /cart/remove
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := ensureSID(c, h.Secure)
	id, ok := validate.ID(c.FormValue("cart_item_id"))
	if !ok {
		return h.Storefront.page(c, fiber.StatusBadRequest, services.ErrCartItemNotFound.Message, "")
	}
	if err := h.Cart.Remove(c.UserContext(), sid, id); err != nil {
		if services.IsValidation(err) {
			return h.Storefront.page(c, fiber.StatusBadRequest, err.Error(), "")
		}
		applog.Error(c, "cart.remove", err, nil)
		return h.Storefront.page(c, fiber.StatusInternalServerError, "Gagal menghapus item.", "")
	}
	back := "/#cart"
	if c.FormValue("back") == "checkout" {
		back = "/checkout"
	}
	return c.Redirect(back)
}
