package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"artyra/internal/config"
	"artyra/internal/domain"
	"artyra/internal/http/handlers"
	"artyra/internal/repos"
	"artyra/internal/services"
	"artyra/web"
)

type testApp struct {
	app      *fiber.App
	db       *sqlx.DB
	deps     *handlers.Deps
	users    *repos.UserRepo
	products *repos.ProductRepo
}

// newTestApp mirrors the production wiring minus the global limiter and access logger.
func newTestApp(t *testing.T, notifier services.Notifier, products ...domain.Product) *testApp {
	t.Helper()
	cfg := config.Config{DBDriver: repos.DriverSQLite, DBDSN: ":memory:", AdminPath: "/admin"}
	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	prodRepo := repos.NewProductRepo(db)
	for _, p := range products {
		_, err := prodRepo.Insert(context.Background(), p)
		require.NoError(t, err)
	}

	userRepo := repos.NewUserRepo(db)
	authSvc := services.NewAuthService(userRepo)
	authH := &handlers.AuthHandler{Auth: authSvc, AdminPath: cfg.AdminPath}
	deps, err := handlers.NewDeps(context.Background(), db, cfg, notifier)
	require.NoError(t, err)
	t.Cleanup(deps.Checkout.Drain)

	app := fiber.New(fiber.Config{Views: web.Engine(), ErrorHandler: handlers.ErrorHandler})
	app.Server().MaxRequestBodySize = 1 << 20
	app.Use(requestid.New())
	app.Use(handlers.AttachUser(authSvc))
	app.Use(handlers.StoreLocals(deps.Settings, cfg.AdminPath))
	app.Use(csrf.New(csrf.Config{KeyLookup: "form:csrf", CookieName: "csrf_", CookieSameSite: "Lax"}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	app.Get("/", deps.Storefront.Home)
	app.Post("/cart", deps.CartH.Add)
	app.Post("/cart/remove", deps.CartH.Remove)
	app.Get("/checkout", deps.OrderH.CheckoutPage)
	app.Post("/orders", deps.OrderH.Place)
	app.Get("/order/:id", deps.OrderH.View)
	app.Get("/track", deps.TrackH.Track)

	api := app.Group("/api/v1")
	api.Get("/products", deps.APIH.Products)
	api.Get("/orders/track", deps.APIH.TrackOrder)
	api.Get("/delivery-slots", deps.APIH.DeliverySlots)
	api.Get("/settings", deps.APIH.StoreSettings)

	app.Get("/login", authH.LoginForm)
	app.Post("/login", authH.Login)
	app.Post("/logout", authH.Logout)

	admin := app.Group(cfg.AdminPath, handlers.RequireAdmin(authSvc))
	admin.Get("/", deps.AdminH.Dashboard)
	admin.Post("/orders/:id/status", deps.AdminH.UpdateOrderStatus)
	admin.Post("/products", deps.AdminH.CreateProduct)
	admin.Post("/products/:id", deps.AdminH.UpdateProduct)
	admin.Post("/products/:id/delete", deps.AdminH.DeleteProduct)
	admin.Post("/settings", deps.AdminH.SaveSettings)

	return &testApp{app: app, db: db, deps: deps, users: userRepo, products: prodRepo}
}

// client keeps cookies between requests, like a browser tab.
type client struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func (ta *testApp) client(t *testing.T) *client {
	c := &client{t: t, app: ta.app, cookies: map[string]string{}}
	c.get("/login") // picks up the csrf_ cookie
	require.NotEmpty(t, c.cookies["csrf_"], "csrf token missing")
	return c
}

func (c *client) do(req *http.Request) *http.Response {
	c.t.Helper()
	for k, v := range c.cookies {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}
	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	for _, ck := range resp.Cookies() {
		if ck.Value == "" {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck.Value
	}
	return resp
}

func (c *client) get(path string) *http.Response {
	c.t.Helper()
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) post(path string, form url.Values) *http.Response {
	c.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf", c.cookies["csrf_"])
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) loginAdmin(ta *testApp) {
	c.t.Helper()
	require.NoError(c.t, ta.users.EnsureAdmin("owner", "s3cret-pass"))
	resp := c.post("/login", url.Values{"username": {"owner"}, "password": {"s3cret-pass"}})
	require.Equal(c.t, http.StatusFound, resp.StatusCode)
	require.Equal(c.t, "/admin", resp.Header.Get("Location"))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	Err    string         `json:"err"`
	Fields map[string]any `json:"fields"`
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// captureLogs swaps the standard logger output while fn runs and parses the JSON lines.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	log.SetFlags(0) // remove timestamps to make JSON parseable
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	mu.Lock()
	defer mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func hasAction(entries []logEntry, action string) bool {
	for _, e := range entries {
		if e.Action == action {
			return true
		}
	}
	return false
}
