package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"artyra/internal/domain"
	"artyra/internal/services"
	"artyra/internal/validate"
)

type TrackHandler struct {
	Orders *services.OrderService
}

// GET /track?q=
func (h *TrackHandler) Track(c *fiber.Ctx) error {
	q := validate.Text(c.Query("q"), 40)
	if q == "" {
		// Initial page load: show the empty form without errors
		return render(c, "track", fiber.Map{"Title": "Lacak Pesanan", "Query": ""})
	}
	o, ok := h.Orders.FindByHumanID(q)
	if !ok {
		return render(c, "track", fiber.Map{
			"Title": "Lacak Pesanan",
			"Query": q,
			"Err":   "Pesanan " + strings.ToUpper(q) + " tidak ditemukan.",
		})
	}
	return render(c, "track", fiber.Map{"Title": "Lacak Pesanan", "Query": q, "Order": &o})
}

// trackView is the public projection of an order; the phone number is masked.
type trackView struct {
	ID            string               `json:"id"`
	Status        domain.Status        `json:"status"`
	StatusLabel   string               `json:"statusLabel"`
	Customer      string               `json:"customer"`
	WhatsApp      string               `json:"whatsapp"`
	Items         []domain.LineItem    `json:"items"`
	Total         int64                `json:"total"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	DeliveryInfo  *domain.DeliveryInfo `json:"deliveryInfo,omitempty"`
	OrderDate     string               `json:"orderDate"`
}

func newTrackView(o domain.Order) trackView {
	return trackView{
		ID:            o.ID,
		Status:        o.Status,
		StatusLabel:   o.Status.Label(),
		Customer:      o.Customer.Name,
		WhatsApp:      maskPhone(o.Customer.WhatsApp),
		Items:         o.Items,
		Total:         o.Total,
		PaymentMethod: o.PaymentMethod,
		DeliveryInfo:  o.DeliveryInfo,
		OrderDate:     o.OrderDate.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func maskPhone(p string) string {
	if len(p) <= 4 {
		return p
	}
	return strings.Repeat("*", len(p)-4) + p[len(p)-4:]
}
