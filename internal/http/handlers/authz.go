package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "artyra/internal/log"
	"artyra/internal/services"
)

// RequireAdmin guards the admin group. Visitors without a session go to the login form;
// a session that is unknown or not bound to an admin gets 403.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Redirect("/login")
		}
		u, err := auth.CurrentUser(sid)
		if err != nil {
			applog.Security(c, "access.denied.admin", map[string]any{"session": applog.SessionTag(sid), "reason": "unknown_session"})
			return notFound(c, fiber.StatusForbidden, "Akses ditolak.")
		}
		if !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"session": applog.SessionTag(sid), "reason": "not_admin", "user": u.Username})
			return notFound(c, fiber.StatusForbidden, "Akses ditolak.")
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// AttachUser puts the signed-in admin into Locals so the header shows the admin link.
func AttachUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := auth.CurrentUser(sid); err == nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	}
}
