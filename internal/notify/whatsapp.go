// Package notify sends admin messages through the WhatsApp bot webhook.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"artyra/internal/config"
	"artyra/internal/domain"
)

// ErrDisabled is returned when the webhook is not configured.
var ErrDisabled = errors.New("notify: webhook not configured")

// Error describes a failed send. Status is zero when the request never got a response.
type Error struct {
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return "notify: " + e.Err.Error()
	}
	return fmt.Sprintf("notify: webhook returned %d: %s", e.Status, e.Body)
}

func (e *Error) Unwrap() error { return e.Err }

type payload struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

type WhatsApp struct {
	url        string
	apiKey     string
	adminPhone string
	timeout    time.Duration
}

func NewWhatsApp(cfg config.NotifyConfig) *WhatsApp {
	return &WhatsApp{url: cfg.URL, apiKey: cfg.APIKey, adminPhone: cfg.AdminPhone, timeout: cfg.Timeout}
}

func (w *WhatsApp) Enabled() bool {
	return w != nil && w.url != "" && w.apiKey != "" && w.adminPhone != ""
}

// NewOrder tells the shop admin about a freshly placed order.
func (w *WhatsApp) NewOrder(ctx context.Context, o domain.Order) error {
	if !w.Enabled() {
		return ErrDisabled
	}
	return w.Send(ctx, w.adminPhone, FormatNewOrder(o))
}

// Send posts one message. Any non-2xx answer is an error.
func (w *WhatsApp) Send(ctx context.Context, to, message string) error {
	if !w.Enabled() {
		return ErrDisabled
	}
	if err := ctx.Err(); err != nil {
		return &Error{Err: err}
	}
	timeout := w.timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); timeout <= 0 || left < timeout {
			timeout = left
		}
	}

	a := fiber.Post(w.url)
	a.Set("x-api-key", w.apiKey)
	a.JSON(payload{To: to, Message: message})
	if timeout > 0 {
		a.Timeout(timeout)
	}
	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return &Error{Err: errors.Join(errs...)}
	}
	if code < 200 || code > 299 {
		b := string(body)
		if len(b) > 200 {
			b = b[:200]
		}
		return &Error{Status: code, Body: b}
	}
	return nil
}

// FormatNewOrder renders the admin message for o.
func FormatNewOrder(o domain.Order) string {
	var b strings.Builder
	b.WriteString("*PESANAN BARU DITERIMA!*\n\n")
	b.WriteString("*Detail Pesanan:*\n")
	fmt.Fprintf(&b, "• ID: `%s`\n", o.ID)
	fmt.Fprintf(&b, "• Nama: *%s*\n", o.Customer.Name)
	if o.Customer.Class != "" {
		fmt.Fprintf(&b, "• Kelas: *%s*\n", o.Customer.Class)
	}
	fmt.Fprintf(&b, "• WhatsApp: *%s*\n", o.Customer.WhatsApp)
	fmt.Fprintf(&b, "• Metode: *%s*\n", o.PaymentMethod.Label())
	if o.DeliveryInfo != nil {
		date := o.DeliveryInfo.Date
		if t, err := time.Parse("2006-01-02", date); err == nil {
			date = t.Format("2/1/2006")
		}
		fmt.Fprintf(&b, "• Pengiriman: *%s - %s*\n", date, o.DeliveryInfo.Time)
	}

	b.WriteString("\n*Items:*\n")
	for _, it := range o.Items {
		fmt.Fprintf(&b, "• %s x%d - %s\n", it.Name, it.Qty, domain.FormatRupiah(it.Subtotal()))
		if len(it.Toppings) > 0 {
			fmt.Fprintf(&b, "  Topping: %s\n", strings.Join(it.Toppings, ", "))
		}
	}
	fmt.Fprintf(&b, "\n*Total: %s*\n", domain.FormatRupiah(o.Total))
	if o.Notes != "" {
		fmt.Fprintf(&b, "\n*Catatan:* %s\n", o.Notes)
	}
	b.WriteString("\nSilakan cek admin panel untuk verifikasi.")
	return b.String()
}
