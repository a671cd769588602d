package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"artyra/internal/domain"
	applog "artyra/internal/log"
	"artyra/internal/services"
)

type OrderHandler struct {
	Cart     *services.CartService
	Checkout *services.CheckoutService
	Orders   *services.OrderService
	Secure   bool
	Now      func() time.Time
}

func (h *OrderHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *OrderHandler) form(c *fiber.Ctx, status int, in services.CheckoutInput, errMsg string) error {
	cv := services.CartView{}
	if sid := c.Cookies("sid"); sid != "" {
		v, err := h.Cart.View(c.UserContext(), sid)
		if err != nil {
			applog.Error(c, "checkout.load", err, nil)
			return notFound(c, fiber.StatusInternalServerError, "Keranjang tidak bisa dimuat.")
		}
		cv = v
	}
	return render(c.Status(status), "checkout", fiber.Map{
		"Title": "Checkout",
		"Cart":  cv,
		"Back":  "checkout",
		"Form":  in,
		"Dates": services.AvailableDates(h.now()),
		"Times": services.DeliveryTimes,
		"Err":   errMsg,
	})
}

// GET /checkout
func (h *OrderHandler) CheckoutPage(c *fiber.Ctx) error {
	return h.form(c, fiber.StatusOK, services.CheckoutInput{}, "")
}

// POST /orders
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	sid := ensureSID(c, h.Secure)
	in := services.CheckoutInput{
		Name:          c.FormValue("name"),
		Class:         c.FormValue("class"),
		WhatsApp:      c.FormValue("whatsapp"),
		PaymentMethod: domain.PaymentMethod(c.FormValue("payment_method")),
		Notes:         c.FormValue("notes"),
		DeliveryDate:  c.FormValue("delivery_date"),
		DeliveryTime:  c.FormValue("delivery_time"),
	}

	o, err := h.Checkout.Place(c.UserContext(), sid, in)
	if err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			applog.Security(c, "validation.fail", map[string]any{"code": ve.Code})
			return h.form(c, fiber.StatusBadRequest, in, ve.Message)
		}
		applog.Error(c, "order.place.fail", err, nil)
		return h.form(c, fiber.StatusInternalServerError, in, "Pesanan gagal disimpan. Silakan coba lagi.")
	}
	applog.Audit(c, "order.place", map[string]any{
		"order_id": o.ID,
		"total":    o.Total,
		"items":    len(o.Items),
		"method":   o.PaymentMethod,
	})
	return c.Redirect("/order/" + strconv.FormatInt(o.NumericID, 10))
}

// GET /order/:id
func (h *OrderHandler) View(c *fiber.Ctx) error {
	n, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || n <= 0 {
		return notFound(c, fiber.StatusNotFound, services.ErrOrderNotFound.Message)
	}
	o, ok := h.Orders.FindByNumericID(n)
	if !ok {
		return notFound(c, fiber.StatusNotFound, services.ErrOrderNotFound.Message)
	}
	return render(c, "order", fiber.Map{"Title": o.ID, "Order": &o})
}
