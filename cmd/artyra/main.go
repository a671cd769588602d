package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"artyra/internal/config"
	"artyra/internal/http/handlers"
	applog "artyra/internal/log"
	"artyra/internal/notify"
	"artyra/internal/repos"
	"artyra/internal/seed"
	"artyra/internal/services"
	"artyra/web"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if cfg.SeedDemo {
		if ds, err := seed.Fallback(); err != nil {
			log.Printf("[seed] bundled dataset unreadable: %v", err)
		} else if err := repos.SeedProductsIfEmpty(ctx, db, ds.Products); err != nil {
			log.Printf("[seed] %v", err)
		}
	}

	// Auth wiring
	userRepo := repos.NewUserRepo(db)
	if cfg.AdminPass != "" {
		if err := userRepo.EnsureAdmin(cfg.AdminUser, cfg.AdminPass); err != nil {
			log.Fatal(err)
		}
	} else {
		log.Printf("[warn] ADMIN_PASSWORD not set; admin login only works for existing accounts")
	}
	authSvc := services.NewAuthService(userRepo)
	authH := &handlers.AuthHandler{Auth: authSvc, AdminPath: cfg.AdminPath, Secure: cfg.CookieSecure}

	wa := notify.NewWhatsApp(cfg.Notify)
	if !wa.Enabled() {
		applog.Info(nil, "notify.disabled", map[string]any{"reason": "NOTIFY_URL, NOTIFY_API_KEY or NOTIFY_ADMIN_PHONE missing"})
	}

	deps, err := handlers.NewDeps(ctx, db, cfg, wa)
	if err != nil {
		log.Fatal(err)
	}

	app := fiber.New(fiber.Config{
		Views:        web.Engine(),
		ErrorHandler: handlers.ErrorHandler,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(handlers.AttachUser(authSvc))
	app.Use(handlers.StoreLocals(deps.Settings, cfg.AdminPath))
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(string(c.Request().URI().Path()), "/static/")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.CookieSecure,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"path": c.Path()})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Pemeriksaan keamanan gagal. Muat ulang halaman lalu coba lagi."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	// ---------- Static assets ----------
	app.Use("/static", filesystem.New(filesystem.Config{Root: web.Static()}))

	// ---------- App handlers ----------
	app.Get("/", deps.Storefront.Home)
	app.Post("/cart", deps.CartH.Add)
	app.Post("/cart/remove", deps.CartH.Remove)
	app.Get("/checkout", deps.OrderH.CheckoutPage)
	app.Post("/orders", limiter.New(limiter.Config{Max: 10, Expiration: time.Minute}), deps.OrderH.Place)
	app.Get("/order/:id", deps.OrderH.View)
	app.Get("/track", limiter.New(limiter.Config{Max: 20, Expiration: time.Minute}), deps.TrackH.Track)

	// API
	api := app.Group("/api/v1")
	trackLimiter := limiter.New(limiter.Config{
		Max:        15,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|track"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.track.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	api.Get("/products", deps.APIH.Products)
	api.Get("/orders/track", trackLimiter, deps.APIH.TrackOrder)
	api.Get("/delivery-slots", deps.APIH.DeliverySlots)
	api.Get("/settings", deps.APIH.StoreSettings)

	// Auth routes (login throttled)
	app.Get("/login", authH.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Terlalu banyak percobaan. Coba lagi nanti."})
		},
	}), authH.Login)
	app.Post("/logout", authH.Logout)

	// Admin
	admin := app.Group(cfg.AdminPath, handlers.RequireAdmin(authSvc))
	admin.Get("/", deps.AdminH.Dashboard)
	admin.Post("/orders/:id/status", deps.AdminH.UpdateOrderStatus)
	admin.Post("/products", deps.AdminH.CreateProduct)
	admin.Post("/products/:id", deps.AdminH.UpdateProduct)
	admin.Post("/products/:id/delete", deps.AdminH.DeleteProduct)
	admin.Post("/settings", deps.AdminH.SaveSettings)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true, "fallback": deps.State.Fallback()})
	})
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Halaman tidak ditemukan."})
	})

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			log.Printf("[shutdown] %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Printf("[listen] %v", err)
	}
	deps.Checkout.Drain()
}
