package handlers

import (
	"github.com/gofiber/fiber/v2"

	"artyra/internal/services"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	// Inject user if present
	if u := c.Locals("user"); u != nil {
		data["User"] = u
	}
	if _, ok := data["Store"]; !ok {
		if s := c.Locals("store"); s != nil {
			data["Store"] = s
		}
	}
	if p, ok := c.Locals("adminPath").(string); ok {
		data["AdminPath"] = p
	}
	// Pick up the token the CSRF middleware put into Locals
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		// The cookie still carries a valid token when Locals was not populated.
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

// notFound renders the shared message page with the given status.
func notFound(c *fiber.Ctx, status int, msg string) error {
	return render(c.Status(status), "notfound", fiber.Map{"Message": msg})
}

// StoreLocals exposes the store settings and admin path to every template.
func StoreLocals(settings *services.SettingsService, adminPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("store", settings.Get())
		c.Locals("adminPath", adminPath)
		return c.Next()
	}
}
