package handlers

import (
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"artyra/internal/domain"
	applog "artyra/internal/log"
	"artyra/internal/services"
	"artyra/internal/validate"
)

type AdminHandler struct {
	Orders   *services.OrderService
	Catalog  *services.CatalogService
	Settings *services.SettingsService
	Path     string
}

var adminNotices = map[string]string{
	"status":   "Status pesanan disimpan.",
	"created":  "Produk ditambahkan.",
	"updated":  "Produk diperbarui.",
	"deleted":  "Produk dihapus.",
	"settings": "Pengaturan toko disimpan.",
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	return h.page(c, fiber.StatusOK, "", adminNotices[c.Query("msg")])
}

func (h *AdminHandler) page(c *fiber.Ctx, status int, errMsg, msg string) error {
	return render(c.Status(status), "admin", fiber.Map{
		"Title":    "Admin",
		"Stats":    h.Orders.Stats(time.Now()),
		"Orders":   h.Orders.List(),
		"Products": h.Catalog.List(),
		"Statuses": domain.Statuses,
		"Store":    h.Settings.Get(),
		"Err":      errMsg,
		"Msg":      msg,
	})
}

func (h *AdminHandler) done(c *fiber.Ctx, notice string) error {
	return c.Redirect(h.Path + "?msg=" + url.QueryEscape(notice))
}

// fail maps service errors to a page: validation errors are 400, anything else is logged as 500.
func (h *AdminHandler) fail(c *fiber.Ctx, action string, err error, fields map[string]any) error {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		applog.Security(c, "validation.fail", map[string]any{"action": action, "code": ve.Code})
		return h.page(c, fiber.StatusBadRequest, ve.Message, "")
	}
	applog.Error(c, action+".fail", err, fields)
	return h.page(c, fiber.StatusInternalServerError, "Perubahan gagal disimpan. Silakan coba lagi.", "")
}

// POST /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	next := domain.Status(c.FormValue("status"))
	previous := domain.Status(c.FormValue("previous"))

	ch, err := h.Orders.ApplyStatusChange(c.UserContext(), id, next, previous)
	var rerr *services.ReconcileError
	if errors.As(err, &rerr) {
		applog.Error(c, "admin.orders.reconcile.fail", err, map[string]any{"order_id": id, "failures": len(rerr.Failures)})
		return h.page(c, fiber.StatusOK, "Status disimpan, tetapi stok gagal diperbarui: "+rerr.Error(), "")
	}
	if err != nil {
		return h.fail(c, "admin.orders.update", err, map[string]any{"order_id": id, "status": next})
	}
	applog.Audit(c, "admin.orders.update", map[string]any{
		"order_id":   id,
		"from":       ch.Previous,
		"status":     next,
		"reconciled": ch.Reconciled,
		"stock":      len(ch.Stock),
	})
	return h.done(c, "status")
}

func productInput(c *fiber.Ctx) (services.ProductInput, bool) {
	price, okPrice := validate.Price(c.FormValue("price"))
	stock, okStock := validate.Stock(c.FormValue("stock"))
	if !okPrice || !okStock {
		return services.ProductInput{}, false
	}
	in := services.ProductInput{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Price:       price,
		Stock:       stock,
		Image:       c.FormValue("image"),
		HasToppings: c.FormValue("has_toppings") != "",
	}
	if in.HasToppings {
		in.Toppings = validate.Toppings(c.FormValue("toppings"))
	}
	return in, true
}

// POST /admin/products
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	in, ok := productInput(c)
	if !ok {
		return h.fail(c, "admin.products.create", services.ErrInvalidProduct, nil)
	}
	p, err := h.Catalog.Create(c.UserContext(), in)
	if err != nil {
		return h.fail(c, "admin.products.create", err, nil)
	}
	applog.Audit(c, "admin.products.create", map[string]any{"product_id": p.ID, "name": p.Name})
	return h.done(c, "created")
}

// POST /admin/products/:id
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return h.fail(c, "admin.products.update", services.ErrProductNotFound, nil)
	}
	in, ok := productInput(c)
	if !ok {
		return h.fail(c, "admin.products.update", services.ErrInvalidProduct, nil)
	}
	p, err := h.Catalog.Update(c.UserContext(), id, in)
	if err != nil {
		return h.fail(c, "admin.products.update", err, map[string]any{"product_id": id})
	}
	applog.Audit(c, "admin.products.update", map[string]any{"product_id": p.ID, "stock": p.StockLabel()})
	return h.done(c, "updated")
}

// POST /admin/products/:id/delete
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return h.fail(c, "admin.products.delete", services.ErrProductNotFound, nil)
	}
	if err := h.Catalog.Delete(c.UserContext(), id); err != nil {
		return h.fail(c, "admin.products.delete", err, map[string]any{"product_id": id})
	}
	applog.Audit(c, "admin.products.delete", map[string]any{"product_id": id})
	return h.done(c, "deleted")
}

// POST /admin/settings
func (h *AdminHandler) SaveSettings(c *fiber.Ctx) error {
	s, err := h.Settings.Save(c.UserContext(), domain.StoreSettings{
		StoreName: c.FormValue("store_name"),
		LogoURL:   c.FormValue("logo_url"),
	})
	if err != nil {
		return h.fail(c, "admin.settings.save", err, nil)
	}
	applog.Audit(c, "admin.settings.save", map[string]any{"store_name": s.StoreName})
	return h.done(c, "settings")
}
