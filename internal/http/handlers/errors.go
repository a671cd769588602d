package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "artyra/internal/log"
)

const friendlyError = "Terjadi kesalahan. Silakan coba lagi."

// ErrorHandler logs the failure and shows a generic page without internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < 500 {
		code = fe.Code
	}
	applog.Error(c, "server.error", err, map[string]any{"code": code})
	msg := friendlyError
	if code == fiber.StatusNotFound {
		msg = "Halaman tidak ditemukan."
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}
