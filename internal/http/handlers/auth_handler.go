package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"artyra/internal/log"
	"artyra/internal/services"
	"artyra/internal/validate"
)

type AuthHandler struct {
	Auth      *services.AuthService
	AdminPath string
	Secure    bool
}

func ensureSID(c *fiber.Ctx, secure bool) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   secure,
		})
	}
	return sid
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c, h.Secure)
	username, ok := validate.Username(c.FormValue("username"))
	pass := c.FormValue("password")
	if !ok || !validate.Password(pass) {
		log.Security(c, "auth.login.fail", map[string]any{"username": username, "reason": "bad_format"})
		return render(c.Status(fiber.StatusUnauthorized), "login", fiber.Map{"Err": "Username atau password salah."})
	}

	if _, err := h.Auth.Login(sid, username, pass); err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"username": username})
		return render(c.Status(fiber.StatusUnauthorized), "login", fiber.Map{"Err": "Username atau password salah."})
	}

	log.Audit(c, "auth.login.success", map[string]any{"username": username})
	return c.Redirect(h.AdminPath)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c, h.Secure)
	_ = h.Auth.Logout(sid)
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.Secure,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", map[string]any{"session": log.SessionTag(sid)})
	return c.Redirect("/")
}
